// Package config provides configuration management for discdl.
//
// This package handles:
//   - Default configuration values
//   - Loading settings from a JSON, YAML or TOML file with DISCDL_*
//     environment overrides (configor)
//   - Saving settings as JSON
//   - Validation and derived values (input file, save file, wait backoff)
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Output to ~/Music/Spotify at 128 kbps
//	// Spotify playlists renamed-after and deleted
//	// Missing album tags filled
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/discdl.yaml")
//	// A missing file yields the defaults
//
// Environment variables win over the file:
//
//	DISCDL_OUTPUT_DIR=/mnt/music DISCDL_BITRATE=320 discdl --yt
//
// Command-line flags win over both; cmd/discdl only applies the flags the
// user actually set.
//
// # Saving Settings
//
//	settings.Bitrate = 320
//	err := settings.Save("/path/to/discdl.json")
package config
