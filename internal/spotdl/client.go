package spotdl

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"

	ioutils "github.com/discdl/discdl/internal/io"
	"github.com/discdl/discdl/internal/model"
	"github.com/discdl/discdl/internal/tool"
	"github.com/tidwall/gjson"
)

// DefaultPath is the executable looked up on PATH when Options.Path is empty.
const DefaultPath = "spotdl"

// DefaultOutput names downloaded files like the YouTube workflow does.
const DefaultOutput = "{track-number}-{title}.{output-ext}"

// Options holds the spotdl settings.
type Options struct {
	// Path is the spotdl executable.
	Path string

	// Bitrate is the MP3 bitrate in kbps.
	Bitrate int

	// Threads is the number of parallel track downloads.
	Threads int

	// CookiesFile is passed through as --cookie-file.
	CookiesFile string

	// Proxy is passed through as --proxy.
	Proxy string

	// Output is the spotdl file name template. Empty means DefaultOutput.
	Output string

	// SaveFile is where Resolve asks spotdl to write the track list. Empty
	// means a temporary file.
	SaveFile string

	// SaveWait bounds how long Resolve waits for the save file to appear.
	SaveWait ioutils.Backoff
}

// Hooks receive spotdl output while a download runs. Both are optional and
// are never called concurrently.
type Hooks struct {
	// OnTrack receives the display name of each track spotdl reports done.
	OnTrack func(name string)

	// OnOutput receives every output line.
	OnOutput func(line string)
}

// Client runs spotdl.
type Client struct {
	opts Options
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	return &Client{opts: opts}
}

func (c *Client) path() string {
	if c.opts.Path == "" {
		return DefaultPath
	}
	return c.opts.Path
}

func (c *Client) output() string {
	if c.opts.Output == "" {
		return DefaultOutput
	}
	return c.opts.Output
}

func (c *Client) networkArgs() []string {
	var args []string
	if c.opts.CookiesFile != "" {
		args = append(args, "--cookie-file", c.opts.CookiesFile)
	}
	if c.opts.Proxy != "" {
		args = append(args, "--proxy", c.opts.Proxy)
	}
	return args
}

// SaveArgs returns the arguments that write url's track list to saveFile.
func (c *Client) SaveArgs(url, saveFile string) []string {
	args := []string{"save", url, "--save-file", saveFile}
	return append(args, c.networkArgs()...)
}

// DownloadArgs returns the arguments that download url into the working
// directory with an M3U playlist.
func (c *Client) DownloadArgs(url string) []string {
	args := []string{
		"download", url,
		"--threads", strconv.Itoa(c.opts.Threads),
		"--bitrate", strconv.Itoa(c.opts.Bitrate) + "k",
		"--format", "mp3",
		"--output", c.output(),
		"--m3u",
	}
	return append(args, c.networkArgs()...)
}

// Resolve reads the album identity of url from a spotdl save file.
//
// The save file is removed before Resolve returns. Any failure is reported
// as model.ErrExtraction.
func (c *Client) Resolve(ctx context.Context, url string) (*model.SpotifyAlbum, error) {
	saveFile, err := c.saveFile()
	if err != nil {
		return nil, err
	}
	// spotdl creates the file; WaitForFile must not see a stale one.
	os.Remove(saveFile)
	defer os.Remove(saveFile)

	if _, err := tool.Run(ctx, tool.Command{Path: c.path(), Args: c.SaveArgs(url, saveFile)}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrExtraction, url, err)
	}

	if err := ioutils.WaitForFile(ctx, saveFile, c.opts.SaveWait); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrExtraction, url, err)
	}

	data, err := os.ReadFile(saveFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrExtraction, url, err)
	}
	album, err := ParseSaveFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return album, nil
}

func (c *Client) saveFile() (string, error) {
	if c.opts.SaveFile != "" {
		return c.opts.SaveFile, nil
	}
	f, err := os.CreateTemp("", "discdl-*.spotdl")
	if err != nil {
		return "", fmt.Errorf("%w: create save file: %w", model.ErrFileSystem, err)
	}
	f.Close()
	return f.Name(), nil
}

// ParseSaveFile reads the album identity from the first record of a spotdl
// save file. Missing fields fall back to the unknown placeholders.
func ParseSaveFile(data []byte) (*model.SpotifyAlbum, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid save file", model.ErrExtraction)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() || len(root.Array()) == 0 {
		return nil, fmt.Errorf("%w: save file has no songs", model.ErrExtraction)
	}

	first := root.Get("0")
	album := &model.SpotifyAlbum{
		Artist: first.Get("album_artist").String(),
		Album:  first.Get("album_name").String(),
	}
	if album.Artist == "" {
		album.Artist = first.Get("artist").String()
	}
	if album.Artist == "" {
		album.Artist = model.UnknownArtist
	}
	if album.Album == "" {
		album.Album = model.UnknownAlbum
	}
	return album, nil
}

var downloadedRe = regexp.MustCompile(`^Downloaded "(.+)":`)

// ParseDownloadedLine extracts the track name from spotdl's
// `Downloaded "Artist - Title": <url>` line.
func ParseDownloadedLine(line string) (string, bool) {
	m := downloadedRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Download fetches url into dir, running spotdl with dir as its working
// directory. dir must exist.
//
// A non-zero exit is returned as a *tool.ExitError.
func (c *Client) Download(ctx context.Context, url, dir string, hooks Hooks) error {
	var mu sync.Mutex
	onLine := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		if name, ok := ParseDownloadedLine(line); ok && hooks.OnTrack != nil {
			hooks.OnTrack(name)
		}
		if hooks.OnOutput != nil {
			hooks.OnOutput(line)
		}
	}

	_, err := tool.Run(ctx, tool.Command{
		Path:     c.path(),
		Args:     c.DownloadArgs(url),
		Dir:      dir,
		OnStdout: onLine,
		OnStderr: onLine,
	})
	return err
}
