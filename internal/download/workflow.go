package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/discdl/discdl/internal/audio"
	"github.com/discdl/discdl/internal/config"
	ioutils "github.com/discdl/discdl/internal/io"
	"github.com/discdl/discdl/internal/model"
	"github.com/discdl/discdl/internal/spotdl"
	"github.com/discdl/discdl/internal/tool"
	"github.com/discdl/discdl/internal/ytdlp"
)

// process runs one URL through the workflow of the configured source and
// returns the disc folder.
func (m *Manager) process(ctx context.Context, url string) (string, error) {
	if m.settings.Source == config.SourceSpotify {
		return m.processSpotify(ctx, url)
	}
	return m.processYouTube(ctx, url)
}

// isSkip reports whether err means the URL was never resolved.
func isSkip(err error) bool {
	return errors.Is(err, model.ErrExtraction)
}

// processYouTube: probe → folder name → download → organize.
func (m *Manager) processYouTube(ctx context.Context, url string) (string, error) {
	m.progress(ProgressEvent{Message: "Reading metadata", Level: LevelVerbose, URL: url})
	meta, err := m.prober.Probe(ctx, url)
	if err != nil {
		return "", err
	}

	raw, isCollection := model.ComposeFolderName(meta)
	dir := model.FolderPath(m.settings.OutputDir, raw)
	m.claimFolder(dir, url)

	if err := ioutils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrFileSystem, err)
	}

	kind := "single"
	if isCollection {
		kind = fmt.Sprintf("collection of %d", len(meta.Entries))
	}
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Downloading %q (%s) to %s", meta.DisplayTitle(), kind, dir),
		Level:   LevelInfo,
		URL:     url,
	})

	err = m.fetcher.Download(ctx, ytdlp.Request{URL: url, Folder: dir, Kind: meta.Kind}, ytdlp.Hooks{
		OnProgress: func(p ytdlp.Progress) { m.transfer(url, p) },
		OnOutput:   m.toolOutput(url),
	})
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		var exitErr *tool.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %w", model.ErrExternalTool, err)
		}
		// yt-dlp skipped what it could not fetch; keep what it wrote.
		m.progress(ProgressEvent{Message: fmt.Sprintf("Some items failed: %v", err), Level: LevelWarning, URL: url})
	}

	disc := audio.Disc{Artist: meta.ResolveArtist(), Album: meta.DisplayTitle()}
	if err := m.organizer.Organize(ctx, dir, disc, false); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Organizing %s: %v", dir, err), Level: LevelWarning, URL: url})
	}

	if m.settings.CreatePlaylist {
		m.writePlaylist(url, dir, disc)
	}
	return dir, nil
}

// processSpotify: resolve → album dir → download → organize.
func (m *Manager) processSpotify(ctx context.Context, url string) (string, error) {
	m.progress(ProgressEvent{Message: "Reading album info", Level: LevelVerbose, URL: url})
	album, err := m.resolver.Resolve(ctx, url)
	if err != nil {
		return "", err
	}

	dir := album.Dir(m.settings.OutputDir)
	m.claimFolder(dir, url)

	if err := ioutils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrFileSystem, err)
	}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Downloading %s - %s to %s", album.Artist, album.Album, dir),
		Level:   LevelInfo,
		URL:     url,
	})

	err = m.albums.Download(ctx, url, dir, spotdl.Hooks{
		OnTrack: func(name string) {
			m.progress(ProgressEvent{Message: "Downloaded " + name, Level: LevelVerbose, URL: url})
		},
		OnOutput: m.toolOutput(url),
	})
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		var exitErr *tool.ExitError
		if errors.As(err, &exitErr) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", model.ErrExternalTool, err)
	}

	disc := audio.Disc{Artist: album.Artist, Album: album.Album}
	if err := m.organizer.Organize(ctx, dir, disc, m.settings.RenameFromPlaylist); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Organizing %s: %v", dir, err), Level: LevelWarning, URL: url})
	}
	return dir, nil
}

func (m *Manager) toolOutput(url string) func(string) {
	return func(line string) {
		if line == "" {
			return
		}
		m.progress(ProgressEvent{Message: line, Level: LevelVerbose, URL: url})
	}
}

func (m *Manager) transfer(url string, p ytdlp.Progress) {
	event := ProgressEvent{
		Level: LevelVerbose,
		URL:   url,
		Transfer: &Transfer{
			File:       filepath.Base(p.Filename),
			Downloaded: p.Downloaded,
			Total:      p.Total,
			ETA:        p.ETA,
			Speed:      p.Speed,
			Finished:   p.Finished(),
		},
	}
	if p.Finished() {
		event.Message = "Downloaded " + filepath.Base(p.Filename)
	}
	m.progress(event)
}

// writePlaylist writes "<folder>.m3u" (or .pls) listing the disc's tracks.
func (m *Manager) writePlaylist(url, dir string, disc audio.Disc) {
	names, err := ioutils.ListByExt(dir, ".mp3")
	if err != nil || len(names) == 0 {
		return
	}

	tracks := make([]model.Track, 0, len(names))
	for _, name := range names {
		tracks = append(tracks, model.ParseTrackFile(filepath.Join(dir, name)))
	}

	path := filepath.Join(dir, filepath.Base(dir)+m.playlist.Format().Extension())
	content := m.playlist.CreatePlaylist(disc, tracks)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning, URL: url})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", filepath.Base(path)), Level: LevelVerbose, URL: url})
}
