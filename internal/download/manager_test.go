package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/discdl/discdl/internal/config"
	ioutils "github.com/discdl/discdl/internal/io"
	"github.com/discdl/discdl/internal/model"
	"github.com/discdl/discdl/internal/spotdl"
	"github.com/discdl/discdl/internal/tool"
	"github.com/discdl/discdl/internal/ytdlp"
)

type fakeProber map[string]*model.Metadata

func (f fakeProber) Probe(_ context.Context, url string) (*model.Metadata, error) {
	meta, ok := f[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s: unsupported URL", model.ErrExtraction, url)
	}
	return meta, nil
}

// fakeFetcher writes one track and its thumbnail per request.
type fakeFetcher struct {
	requests []ytdlp.Request
	err      error
}

func (f *fakeFetcher) Download(_ context.Context, req ytdlp.Request, hooks ytdlp.Hooks) error {
	f.requests = append(f.requests, req)
	for _, name := range []string{"01-One.mp3", "01-One.jpg"} {
		if err := os.WriteFile(filepath.Join(req.Folder, name), []byte(name), 0o644); err != nil {
			return err
		}
	}
	if hooks.OnProgress != nil {
		hooks.OnProgress(ytdlp.Progress{Status: "finished", Filename: filepath.Join(req.Folder, "01-One.webm"), Downloaded: 10, Total: 10})
	}
	return f.err
}

type fakeResolver map[string]*model.SpotifyAlbum

func (f fakeResolver) Resolve(_ context.Context, url string) (*model.SpotifyAlbum, error) {
	album, ok := f[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrExtraction, url)
	}
	return album, nil
}

// fakeAlbumFetcher mimics spotdl: underscored file names plus a playlist
// naming the tracks with spaces.
type fakeAlbumFetcher struct {
	err error
}

func (f *fakeAlbumFetcher) Download(_ context.Context, url, dir string, hooks spotdl.Hooks) error {
	if f.err != nil {
		return f.err
	}
	files := map[string]string{
		"01-First_Song.mp3": "audio",
		"LP.m3u8":           "#EXTM3U\n#EXTINF:1,Band - First Song\n./01-First Song.mp3\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	if hooks.OnTrack != nil {
		hooks.OnTrack("Band - First Song")
	}
	return nil
}

type eventLog struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (l *eventLog) add(e ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) count(level ProgressLevel) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (l *eventLog) messages(level ProgressLevel) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.events {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func testSettings(t *testing.T, source string) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.Source = source
	s.OutputDir = t.TempDir()
	s.FixAlbumTags = false
	return s
}

func writeList(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "links.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunFile_YouTube_OneFailure(t *testing.T) {
	settings := testSettings(t, config.SourceYouTube)
	prober := fakeProber{
		"https://youtu.be/good": {
			Kind:  model.KindCollection,
			Type:  "playlist",
			Title: "B - Album",
			Entries: []model.Entry{
				{Artist: "A"},
			},
		},
	}
	fetcher := &fakeFetcher{}
	log := &eventLog{}

	m := NewManager(settings, log.add, WithProber(prober), WithMediaFetcher(fetcher))
	list := writeList(t, "# discs", "https://youtu.be/good", "", "https://youtu.be/bad")

	stats, err := m.RunFile(context.Background(), list)
	if err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}

	if stats.Total != 2 || stats.Succeeded != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 2 total, 1 succeeded, 1 failed", stats)
	}
	if got := log.count(LevelWarning); got != 1 {
		t.Errorf("warnings = %d, want 1: %v", got, log.messages(LevelWarning))
	}
	if got := log.count(LevelError); got != 0 {
		t.Errorf("errors = %d, want 0: %v", got, log.messages(LevelError))
	}

	wantDir := filepath.Join(settings.OutputDir, "A-B-")
	if len(stats.Folders) != 1 || stats.Folders[0] != wantDir {
		t.Errorf("Folders = %v, want [%s]", stats.Folders, wantDir)
	}
	entries, _ := os.ReadDir(settings.OutputDir)
	if len(entries) != 1 {
		t.Errorf("output root has %d entries, want 1", len(entries))
	}

	if len(fetcher.requests) != 1 || fetcher.requests[0].Kind != model.KindCollection {
		t.Errorf("requests = %+v", fetcher.requests)
	}
	if !ioutils.FileExists(filepath.Join(wantDir, "01-One.cover.jpg")) {
		t.Error("thumbnail was not paired")
	}
}

func TestRunFile_MissingList(t *testing.T) {
	settings := testSettings(t, config.SourceYouTube)
	log := &eventLog{}
	m := NewManager(settings, log.add, WithProber(fakeProber{}), WithMediaFetcher(&fakeFetcher{}))

	_, err := m.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, model.ErrMissingInputFile) {
		t.Errorf("RunFile() error = %v, want ErrMissingInputFile", err)
	}
	if log.count(LevelError) != 1 {
		t.Errorf("errors = %v", log.messages(LevelError))
	}
}

func TestRun_YouTube_PartialDownload(t *testing.T) {
	settings := testSettings(t, config.SourceYouTube)
	prober := fakeProber{"u": {Title: "Song", Artist: "Solo"}}
	fetcher := &fakeFetcher{err: &tool.ExitError{Tool: "yt-dlp", Code: 1}}
	log := &eventLog{}

	m := NewManager(settings, log.add, WithProber(prober), WithMediaFetcher(fetcher))
	stats, err := m.Run(context.Background(), []string{"u"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Succeeded != 1 || stats.Warnings != 1 {
		t.Errorf("stats = %+v, want 1 succeeded with 1 warning", stats)
	}
	if fetcher.requests[0].Kind != model.KindSingleItem {
		t.Errorf("Kind = %v, want single", fetcher.requests[0].Kind)
	}
}

func TestRun_YouTube_ToolMissing(t *testing.T) {
	settings := testSettings(t, config.SourceYouTube)
	prober := fakeProber{"u": {Title: "Song"}}
	fetcher := &fakeFetcher{err: errors.New("start yt-dlp: executable file not found")}
	log := &eventLog{}

	stats, _ := NewManager(settings, log.add, WithProber(prober), WithMediaFetcher(fetcher)).
		Run(context.Background(), []string{"u"})
	if stats.Failed != 1 {
		t.Errorf("stats = %+v, want 1 failed", stats)
	}
	if log.count(LevelError) != 1 {
		t.Errorf("errors = %v", log.messages(LevelError))
	}
}

func TestRun_FolderCollision(t *testing.T) {
	settings := testSettings(t, config.SourceYouTube)
	same := &model.Metadata{Title: "LP", Artist: "Band"}
	prober := fakeProber{"u1": same, "u2": same}
	log := &eventLog{}

	stats, err := NewManager(settings, log.add, WithProber(prober), WithMediaFetcher(&fakeFetcher{})).
		Run(context.Background(), []string{"u1", "u2"})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Succeeded != 2 {
		t.Errorf("stats = %+v", stats)
	}
	warnings := log.messages(LevelWarning)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "also used by u1") {
		t.Errorf("warnings = %v, want one collision warning", warnings)
	}
}

func TestRun_Spotify(t *testing.T) {
	tests := []struct {
		name           string
		deletePlaylist bool
	}{
		{name: "delete playlists", deletePlaylist: true},
		{name: "keep playlists", deletePlaylist: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings(t, config.SourceSpotify)
			settings.DeletePlaylists = tt.deletePlaylist
			// Leftover from an earlier run, removed by cleanup.
			if err := os.WriteFile(filepath.Join(settings.OutputDir, "old.m3u"), nil, 0o644); err != nil {
				t.Fatal(err)
			}

			resolver := fakeResolver{"https://open.spotify.com/album/x": {Artist: "The Band", Album: "First Light"}}
			log := &eventLog{}
			m := NewManager(settings, log.add, WithAlbumResolver(resolver), WithAlbumFetcher(&fakeAlbumFetcher{}))

			stats, err := m.Run(context.Background(), []string{"https://open.spotify.com/album/x", "https://open.spotify.com/album/y"})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if stats.Succeeded != 1 || stats.Failed != 1 {
				t.Errorf("stats = %+v", stats)
			}

			dir := filepath.Join(settings.OutputDir, "TheBand", "First_Light")
			if !ioutils.FileExists(filepath.Join(dir, "01-First Song.mp3")) {
				t.Error("track not renamed after the playlist")
			}
			if got := ioutils.FileExists(filepath.Join(dir, "LP.m3u8")); got == tt.deletePlaylist {
				t.Errorf("playlist exists = %v with DeletePlaylists = %v", got, tt.deletePlaylist)
			}
			if ioutils.FileExists(filepath.Join(settings.OutputDir, "old.m3u")) {
				t.Error("root playlist not cleaned up")
			}
		})
	}
}

func TestRun_Spotify_DownloadFails(t *testing.T) {
	settings := testSettings(t, config.SourceSpotify)
	resolver := fakeResolver{"u": {Artist: "A", Album: "B"}}
	fetcher := &fakeAlbumFetcher{err: &tool.ExitError{Tool: "spotdl", Code: 1}}
	log := &eventLog{}

	stats, err := NewManager(settings, log.add, WithAlbumResolver(resolver), WithAlbumFetcher(fetcher)).
		Run(context.Background(), []string{"u"})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Failed != 1 || stats.Succeeded != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if log.count(LevelError) != 1 {
		t.Errorf("errors = %v", log.messages(LevelError))
	}
}

func TestRun_Cancelled(t *testing.T) {
	settings := testSettings(t, config.SourceYouTube)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{}
	stats, err := NewManager(settings, nil, WithProber(fakeProber{"u": {Title: "x"}}), WithMediaFetcher(fetcher)).
		Run(ctx, []string{"u"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if stats.Succeeded != 0 || len(fetcher.requests) != 0 {
		t.Errorf("work done after cancel: %+v", stats)
	}
}

func TestRun_CreatePlaylist(t *testing.T) {
	settings := testSettings(t, config.SourceYouTube)
	settings.CreatePlaylist = true
	prober := fakeProber{"u": {Title: "LP", Artist: "Band"}}

	stats, err := NewManager(settings, nil, WithProber(prober), WithMediaFetcher(&fakeFetcher{})).
		Run(context.Background(), []string{"u"})
	if err != nil || len(stats.Folders) != 1 {
		t.Fatalf("Run() = %+v, %v", stats, err)
	}

	dir := stats.Folders[0]
	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(dir)+".m3u"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "01-One.mp3") {
		t.Errorf("playlist = %q", data)
	}
}

func TestParseURLs(t *testing.T) {
	got := ParseURLs("https://a\n\n  # comment\n  https://b  \r\n")
	if strings.Join(got, ",") != "https://a,https://b" {
		t.Errorf("ParseURLs() = %v", got)
	}
}
