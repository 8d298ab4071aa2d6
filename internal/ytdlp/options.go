package ytdlp

import (
	"path/filepath"
	"strconv"

	"github.com/discdl/discdl/internal/model"
)

// DefaultPath is the executable looked up on PATH when Options.Path is empty.
const DefaultPath = "yt-dlp"

// Options holds the yt-dlp settings shared by probing and downloading.
type Options struct {
	// Path is the yt-dlp executable.
	Path string

	// Bitrate is the MP3 bitrate in kbps.
	Bitrate int

	// CookiesFile is a Netscape cookies file for restricted content.
	CookiesFile string

	// Proxy is passed through as --proxy (e.g. socks5://127.0.0.1:9050).
	Proxy string

	// RateLimit caps bandwidth (e.g. "2M").
	RateLimit string

	// NoPlaylist stops collection expansion when a URL names both an item
	// and a playlist.
	NoPlaylist bool

	// Retries and FragmentRetries are retry-count hints for yt-dlp.
	Retries         int
	FragmentRetries int

	// ConcurrentFragments is the thread-count hint for segmented downloads.
	ConcurrentFragments int
}

func (o Options) path() string {
	if o.Path == "" {
		return DefaultPath
	}
	return o.Path
}

// networkArgs are the flags both probing and downloading need to reach
// the same content.
func (o Options) networkArgs() []string {
	var args []string
	if o.CookiesFile != "" {
		args = append(args, "--cookies", o.CookiesFile)
	}
	if o.Proxy != "" {
		args = append(args, "--proxy", o.Proxy)
	}
	if o.NoPlaylist {
		args = append(args, "--no-playlist")
	}
	return args
}

// Request is one disc to download.
type Request struct {
	URL    string
	Folder string
	Kind   model.Kind
}

// ProbeArgs returns the arguments for a metadata-only probe.
//
// Only the first collection entry is resolved; the folder naming rules
// never look past it.
func (o Options) ProbeArgs(url string) []string {
	args := []string{
		"--dump-single-json",
		"--skip-download",
		"--ignore-errors",
		"--no-warnings",
		"--playlist-items", "1",
	}
	args = append(args, o.networkArgs()...)
	return append(args, url)
}

// DownloadArgs returns the arguments for downloading a disc.
//
// The post-processing chain is: extract to MP3 at the requested bitrate,
// convert the thumbnail to JPEG, embed it as cover art, write metadata
// tags. The thumbnail file is also kept next to each track.
func (o Options) DownloadArgs(req Request) []string {
	args := []string{
		"--format", "bestaudio/best",
		"--output", filepath.Join(req.Folder, model.TrackTemplate(req.Kind)),
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", strconv.Itoa(o.Bitrate) + "K",
		"--write-thumbnail",
		"--convert-thumbnails", "jpg",
		"--embed-thumbnail",
		"--embed-metadata",
		"--ignore-errors",
		"--continue",
		"--no-check-certificates",
		"--no-warnings",
		"--retries", strconv.Itoa(o.Retries),
		"--fragment-retries", strconv.Itoa(o.FragmentRetries),
		"--newline",
		"--progress-template", progressTemplate,
	}
	if o.ConcurrentFragments > 0 {
		args = append(args, "--concurrent-fragments", strconv.Itoa(o.ConcurrentFragments))
	}
	if o.RateLimit != "" {
		args = append(args, "--limit-rate", o.RateLimit)
	}
	args = append(args, o.networkArgs()...)
	return append(args, req.URL)
}
