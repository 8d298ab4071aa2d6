// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Path segment sanitization (folder and file names)
//   - Directory creation and extension-filtered listing
//   - Waiting for files written by external processes
//   - Cover image conversion and resizing
//
// # Sanitization
//
// Sanitize makes arbitrary metadata safe to use as a path segment:
//
//	ioutils.Sanitize("Beyoncé: Live/Remix") // Returns "Beyonce Live Remix"
//	ioutils.Sanitize("con")                 // Returns "_con_"
//
// SanitizeTrackName keeps spacing and replaces forbidden characters with
// underscores:
//
//	ioutils.SanitizeTrackName("01 - AC/DC.mp3") // Returns "01 - AC_DC.mp3"
//
// # Waiting for Files
//
// External tools sometimes flush their output after exiting. WaitForFile polls
// with a bounded, exponentially growing cooldown instead of a fixed sleep:
//
//	err := ioutils.WaitForFile(ctx, savePath, ioutils.Backoff{Attempts: 5, Cooldown: 200 * time.Millisecond, Exponent: 2})
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//
//	// Convert a webp thumbnail to JPEG
//	jpeg, _ := svc.ConvertToJPEG(ctx, webpData)
//
//	// Resize image to fit within 1000x1000
//	resized, _ := svc.ResizeImage(ctx, jpeg, 1000, 1000)
package ioutils
