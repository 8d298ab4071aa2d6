package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	ioutils "github.com/discdl/discdl/internal/io"
	"github.com/jinzhu/configor"
)

// Sources select the download workflow.
const (
	SourceSpotify = "spotify"
	SourceYouTube = "youtube"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DISCDL"

// Bitrates are the accepted MP3 bitrates in kbps.
var Bitrates = []int{64, 96, 128, 160, 192, 224, 256, 320}

// Settings holds all configuration options.
type Settings struct {
	// Input and output
	Source    string `json:"source" yaml:"source" env:"DISCDL_SOURCE"`
	InputFile string `json:"input_file" yaml:"input_file" env:"DISCDL_INPUT_FILE"`
	OutputDir string `json:"output_dir" yaml:"output_dir" env:"DISCDL_OUTPUT_DIR"`

	// Download settings
	Bitrate         int    `json:"bitrate" yaml:"bitrate" env:"DISCDL_BITRATE"`
	CookiesFile     string `json:"cookies_file" yaml:"cookies_file" env:"DISCDL_COOKIES_FILE"`
	Proxy           string `json:"proxy" yaml:"proxy" env:"DISCDL_PROXY"`
	RateLimit       string `json:"rate_limit" yaml:"rate_limit" env:"DISCDL_RATE_LIMIT"`
	NoPlaylist      bool   `json:"no_playlist" yaml:"no_playlist" env:"DISCDL_NO_PLAYLIST"`
	Threads         int    `json:"threads" yaml:"threads" env:"DISCDL_THREADS"`
	Retries         int    `json:"retries" yaml:"retries" env:"DISCDL_RETRIES"`
	FragmentRetries int    `json:"fragment_retries" yaml:"fragment_retries" env:"DISCDL_FRAGMENT_RETRIES"`

	// External tools
	YtDlpPath    string `json:"ytdlp_path" yaml:"ytdlp_path" env:"DISCDL_YTDLP_PATH"`
	SpotdlPath   string `json:"spotdl_path" yaml:"spotdl_path" env:"DISCDL_SPOTDL_PATH"`
	SaveFileName string `json:"save_file_name" yaml:"save_file_name" env:"DISCDL_SAVE_FILE_NAME"`
	SpotdlOutput string `json:"spotdl_output" yaml:"spotdl_output" env:"DISCDL_SPOTDL_OUTPUT"`

	// Save file wait: attempts, then cooldown seconds grown by exponent
	FileWaitAttempts int     `json:"file_wait_attempts" yaml:"file_wait_attempts" env:"DISCDL_FILE_WAIT_ATTEMPTS"`
	FileWaitCooldown float64 `json:"file_wait_cooldown" yaml:"file_wait_cooldown" env:"DISCDL_FILE_WAIT_COOLDOWN"`
	FileWaitExponent float64 `json:"file_wait_exponent" yaml:"file_wait_exponent" env:"DISCDL_FILE_WAIT_EXPONENT"`

	// Organizer
	RenameFromPlaylist bool   `json:"rename_from_playlist" yaml:"rename_from_playlist" env:"DISCDL_RENAME_FROM_PLAYLIST"`
	DeletePlaylists    bool   `json:"delete_playlists" yaml:"delete_playlists" env:"DISCDL_DELETE_PLAYLISTS"`
	NormalizeCovers    bool   `json:"normalize_covers" yaml:"normalize_covers" env:"DISCDL_NORMALIZE_COVERS"`
	CoverMarker        string `json:"cover_marker" yaml:"cover_marker" env:"DISCDL_COVER_MARKER"`
	WriteFolderCover   bool   `json:"write_folder_cover" yaml:"write_folder_cover" env:"DISCDL_WRITE_FOLDER_COVER"`
	FolderCoverMaxSize int    `json:"folder_cover_max_size" yaml:"folder_cover_max_size" env:"DISCDL_FOLDER_COVER_MAX_SIZE"`
	FixAlbumTags       bool   `json:"fix_album_tags" yaml:"fix_album_tags" env:"DISCDL_FIX_ALBUM_TAGS"`

	// Playlist written for YouTube discs
	CreatePlaylist bool   `json:"create_playlist" yaml:"create_playlist" env:"DISCDL_CREATE_PLAYLIST"`
	PlaylistFormat string `json:"playlist_format" yaml:"playlist_format" env:"DISCDL_PLAYLIST_FORMAT"` // m3u, pls
	M3UExtended    bool   `json:"m3u_extended" yaml:"m3u_extended" env:"DISCDL_M3U_EXTENDED"`

	// Logging
	Verbose bool   `json:"verbose" yaml:"verbose" env:"DISCDL_VERBOSE"`
	LogFile string `json:"log_file" yaml:"log_file" env:"DISCDL_LOG_FILE"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		Source:    SourceYouTube,
		OutputDir: filepath.Join(homeDir, "Music", "Spotify"),

		Bitrate:         128,
		Threads:         2,
		Retries:         10,
		FragmentRetries: 10,

		SaveFileName: "datos.spotdl",

		FileWaitAttempts: 7,
		FileWaitCooldown: 0.2,
		FileWaitExponent: 2.0,

		RenameFromPlaylist: true,
		DeletePlaylists:    true,
		NormalizeCovers:    true,
		CoverMarker:        ".cover",
		FolderCoverMaxSize: 1000,
		FixAlbumTags:       true,

		PlaylistFormat: "m3u",
		M3UExtended:    true,
	}
}

// Load reads settings from a JSON, YAML or TOML file and applies DISCDL_*
// environment overrides on top. A missing file yields the defaults with
// environment overrides. An empty path skips the file.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	var files []string
	if path != "" {
		if _, err := os.Stat(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		files = append(files, path)
	}

	loader := configor.New(&configor.Config{ENVPrefix: EnvPrefix})
	if err := loader.Load(settings, files...); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects unknown sources and bitrates outside Bitrates.
func (s *Settings) Validate() error {
	switch s.Source {
	case SourceSpotify, SourceYouTube:
	default:
		return fmt.Errorf("unknown source %q (want %q or %q)", s.Source, SourceSpotify, SourceYouTube)
	}
	if !slices.Contains(Bitrates, s.Bitrate) {
		return fmt.Errorf("bitrate %d not one of %v", s.Bitrate, Bitrates)
	}
	if s.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", s.Threads)
	}
	if s.OutputDir == "" {
		return errors.New("output directory is empty")
	}
	return nil
}

// ResolveInputFile returns the URL list path: InputFile when set, else
// "links.txt" for YouTube or "<output>/discos" for Spotify.
func (s *Settings) ResolveInputFile() string {
	if s.InputFile != "" {
		return s.InputFile
	}
	if s.Source == SourceSpotify {
		return filepath.Join(s.OutputDir, "discos")
	}
	return "links.txt"
}

// SaveFilePath is where spotdl writes album metadata, under the output root.
func (s *Settings) SaveFilePath() string {
	return filepath.Join(s.OutputDir, s.SaveFileName)
}

// Backoff converts the file wait settings.
func (s *Settings) Backoff() ioutils.Backoff {
	return ioutils.Backoff{
		Attempts: s.FileWaitAttempts,
		Cooldown: time.Duration(s.FileWaitCooldown * float64(time.Second)),
		Exponent: s.FileWaitExponent,
	}
}
