package ytdlp

import (
	"context"
	"sync"

	"github.com/discdl/discdl/internal/tool"
)

// Hooks receive yt-dlp output while a download runs. Both are optional and
// are never called concurrently.
type Hooks struct {
	// OnProgress receives decoded progress updates.
	OnProgress func(Progress)

	// OnOutput receives every other output line, stdout and stderr.
	OnOutput func(line string)
}

// Downloader fetches discs as MP3 files.
type Downloader struct {
	opts Options
}

// NewDownloader creates a Downloader.
func NewDownloader(opts Options) *Downloader {
	return &Downloader{opts: opts}
}

// Download runs yt-dlp for one request and blocks until it exits.
//
// yt-dlp runs with --ignore-errors, so a *tool.ExitError usually means some
// items failed while the rest were written. Callers decide whether that is
// fatal; any other error means nothing ran.
func (d *Downloader) Download(ctx context.Context, req Request, hooks Hooks) error {
	var mu sync.Mutex
	output := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		if hooks.OnOutput != nil {
			hooks.OnOutput(line)
		}
	}

	_, err := tool.Run(ctx, tool.Command{
		Path: d.opts.path(),
		Args: d.opts.DownloadArgs(req),
		OnStdout: func(line string) {
			if p, ok := ParseProgressLine(line); ok {
				mu.Lock()
				defer mu.Unlock()
				if hooks.OnProgress != nil {
					hooks.OnProgress(p)
				}
				return
			}
			output(line)
		},
		OnStderr: output,
	})
	return err
}
