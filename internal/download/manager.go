package download

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/discdl/discdl/internal/audio"
	"github.com/discdl/discdl/internal/config"
	ioutils "github.com/discdl/discdl/internal/io"
	"github.com/discdl/discdl/internal/model"
	"github.com/discdl/discdl/internal/organize"
	"github.com/discdl/discdl/internal/spotdl"
	"github.com/discdl/discdl/internal/ytdlp"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel = model.Level

const (
	LevelInfo    = model.LevelInfo
	LevelVerbose = model.LevelVerbose
	LevelWarning = model.LevelWarning
	LevelError   = model.LevelError
	LevelSuccess = model.LevelSuccess
)

// Transfer is a per-file progress snapshot reported by the download tool.
type Transfer struct {
	File       string
	Downloaded int64
	Total      int64 // 0 when unknown
	ETA        time.Duration
	Speed      float64 // bytes per second
	Finished   bool
}

// ProgressEvent represents a download progress update.
//
// Events with a non-nil Transfer are file progress; Message is empty for
// those unless the file finished.
type ProgressEvent struct {
	Message  string
	Level    ProgressLevel
	URL      string
	Transfer *Transfer
}

// MetadataProber resolves a YouTube URL without downloading it.
type MetadataProber interface {
	Probe(ctx context.Context, url string) (*model.Metadata, error)
}

// MediaFetcher downloads a YouTube disc into a folder.
type MediaFetcher interface {
	Download(ctx context.Context, req ytdlp.Request, hooks ytdlp.Hooks) error
}

// AlbumResolver resolves the album identity of a Spotify URL.
type AlbumResolver interface {
	Resolve(ctx context.Context, url string) (*model.SpotifyAlbum, error)
}

// AlbumFetcher downloads a Spotify album into a folder.
type AlbumFetcher interface {
	Download(ctx context.Context, url, dir string, hooks spotdl.Hooks) error
}

// Stats summarizes a batch run.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	Warnings  int

	// Folders lists the folders of successful discs in processing order.
	Folders []string
}

// Option customizes a Manager.
type Option func(*Manager)

// WithProber replaces the yt-dlp prober.
func WithProber(p MetadataProber) Option {
	return func(m *Manager) { m.prober = p }
}

// WithMediaFetcher replaces the yt-dlp downloader.
func WithMediaFetcher(f MediaFetcher) Option {
	return func(m *Manager) { m.fetcher = f }
}

// WithAlbumResolver replaces the spotdl resolver.
func WithAlbumResolver(r AlbumResolver) Option {
	return func(m *Manager) { m.resolver = r }
}

// WithAlbumFetcher replaces the spotdl downloader.
func WithAlbumFetcher(f AlbumFetcher) Option {
	return func(m *Manager) { m.albums = f }
}

// Manager drives a batch of discs through the workflow selected by
// settings.Source, one URL at a time.
type Manager struct {
	settings  *config.Settings
	prober    MetadataProber
	fetcher   MediaFetcher
	resolver  AlbumResolver
	albums    AlbumFetcher
	organizer *organize.Organizer
	playlist  *audio.PlaylistCreator

	onProgress func(ProgressEvent)

	mu      sync.Mutex
	stats   Stats
	folders map[string]string // folder → first URL that used it
	current string
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	playlistFormat, err := audio.ParsePlaylistFormat(settings.PlaylistFormat)
	if err != nil {
		playlistFormat = audio.FormatM3U
	}

	m := &Manager{
		settings:   settings,
		playlist:   audio.NewPlaylistCreator(playlistFormat, settings.M3UExtended),
		onProgress: onProgress,
		folders:    make(map[string]string),
	}

	yt := ytdlpOptions(settings)
	m.prober = ytdlp.NewProber(yt)
	m.fetcher = ytdlp.NewDownloader(yt)

	client := spotdl.NewClient(spotdlOptions(settings))
	m.resolver = client
	m.albums = client

	m.organizer = organize.New(organizeOptions(settings), audio.NewTagger(audio.DefaultTagConfig()), m.notify)

	for _, opt := range opts {
		opt(m)
	}
	return m
}

func ytdlpOptions(s *config.Settings) ytdlp.Options {
	return ytdlp.Options{
		Path:                s.YtDlpPath,
		Bitrate:             s.Bitrate,
		CookiesFile:         s.CookiesFile,
		Proxy:               s.Proxy,
		RateLimit:           s.RateLimit,
		NoPlaylist:          s.NoPlaylist,
		Retries:             s.Retries,
		FragmentRetries:     s.FragmentRetries,
		ConcurrentFragments: s.Threads,
	}
}

func spotdlOptions(s *config.Settings) spotdl.Options {
	return spotdl.Options{
		Path:        s.SpotdlPath,
		Bitrate:     s.Bitrate,
		Threads:     s.Threads,
		CookiesFile: s.CookiesFile,
		Proxy:       s.Proxy,
		Output:      s.SpotdlOutput,
		SaveFile:    s.SaveFilePath(),
		SaveWait:    s.Backoff(),
	}
}

func organizeOptions(s *config.Settings) organize.Options {
	return organize.Options{
		CoverMarker:        s.CoverMarker,
		NormalizeCovers:    s.NormalizeCovers,
		DeletePlaylists:    s.DeletePlaylists,
		FixAlbumTags:       s.FixAlbumTags,
		WriteFolderCover:   s.WriteFolderCover,
		FolderCoverMaxSize: s.FolderCoverMaxSize,
	}
}

// RunFile reads the URL list at path and runs it.
//
// A missing list is the only fatal error and wraps model.ErrMissingInputFile.
func (m *Manager) RunFile(ctx context.Context, path string) (Stats, error) {
	urls, err := ReadURLs(path)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Cannot read URL list: %v", err), Level: LevelError})
		return Stats{}, err
	}
	if len(urls) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("No URLs in %s", path), Level: LevelWarning})
	}
	return m.Run(ctx, urls)
}

// Run processes urls sequentially, then removes leftover playlists from the
// output root.
//
// Per-URL failures are reported and counted; they never stop the batch.
// The returned error is non-nil only when the output root cannot be
// created or ctx was cancelled.
func (m *Manager) Run(ctx context.Context, urls []string) (Stats, error) {
	m.mu.Lock()
	m.stats = Stats{Total: len(urls)}
	m.folders = make(map[string]string)
	m.mu.Unlock()

	root := m.settings.OutputDir
	if err := ioutils.EnsureDir(root); err != nil {
		err = fmt.Errorf("%w: create output root: %w", model.ErrFileSystem, err)
		m.progress(ProgressEvent{Message: err.Error(), Level: LevelError})
		return m.Stats(), err
	}

	for i, url := range urls {
		if ctx.Err() != nil {
			m.progress(ProgressEvent{Message: "Cancelled, skipping remaining URLs", Level: LevelWarning})
			break
		}

		m.setCurrent(url)
		m.progress(ProgressEvent{Message: fmt.Sprintf("[%d/%d] %s", i+1, len(urls), url), Level: LevelInfo})

		dir, err := m.process(ctx, url)
		if err != nil {
			m.fail(url, err)
			continue
		}
		m.succeed(url, dir)
	}
	m.setCurrent("")

	m.cleanup(root)

	stats := m.Stats()
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Done: %d succeeded, %d failed, %d warning(s)", stats.Succeeded, stats.Failed, stats.Warnings),
		Level:   LevelInfo,
	})
	return stats, ctx.Err()
}

// Stats returns a snapshot of the current run.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.Folders = append([]string(nil), m.stats.Folders...)
	return s
}

func (m *Manager) cleanup(root string) {
	n, err := m.organizer.CleanupPlaylists(root)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Cleanup failed: %v", err), Level: LevelWarning})
		return
	}
	if n > 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Removed %d leftover playlist(s) from %s", n, root), Level: LevelVerbose})
	}
}

func (m *Manager) fail(url string, err error) {
	m.mu.Lock()
	m.stats.Failed++
	m.mu.Unlock()

	// A URL that cannot be resolved is skipped; anything later in the
	// workflow is a failed disc.
	level := LevelError
	if isSkip(err) {
		level = LevelWarning
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: %v", url, err), Level: level, URL: url})
}

func (m *Manager) succeed(url, dir string) {
	m.mu.Lock()
	m.stats.Succeeded++
	m.stats.Folders = append(m.stats.Folders, dir)
	m.mu.Unlock()

	m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s", dir), Level: LevelSuccess, URL: url})
}

// claimFolder records dir for url and reports when another URL of this
// run already wrote there.
func (m *Manager) claimFolder(dir, url string) {
	m.mu.Lock()
	prev, seen := m.folders[dir]
	if !seen {
		m.folders[dir] = url
	}
	m.mu.Unlock()

	if seen && prev != url {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Folder %s is also used by %s; files will be merged", dir, prev),
			Level:   LevelWarning,
			URL:     url,
		})
	}
}

func (m *Manager) setCurrent(url string) {
	m.mu.Lock()
	m.current = url
	m.mu.Unlock()
}

// notify adapts component messages to progress events for the current URL.
func (m *Manager) notify(level model.Level, message string) {
	m.mu.Lock()
	url := m.current
	m.mu.Unlock()
	m.progress(ProgressEvent{Message: message, Level: level, URL: url})
}

func (m *Manager) progress(event ProgressEvent) {
	if event.Level == LevelWarning {
		m.mu.Lock()
		m.stats.Warnings++
		m.mu.Unlock()
	}
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
