package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/discdl/discdl/internal/audio"
	ioutils "github.com/discdl/discdl/internal/io"
	"github.com/discdl/discdl/internal/model"
)

const (
	// DefaultCoverMarker is inserted between a track stem and ".jpg".
	DefaultCoverMarker = ".cover"

	// FolderCoverName is the per-folder cover WriteFolderCover creates.
	FolderCoverName = "cover.jpg"
)

var (
	audioExts    = []string{".mp3"}
	playlistExts = []string{".m3u", ".m3u8"}
	leftoverExts = []string{".webp", ".png"}
)

// Options toggles the optional organizer steps.
type Options struct {
	// CoverMarker is the paired-cover marker. Empty means DefaultCoverMarker.
	CoverMarker string

	// NormalizeCovers converts .webp/.png thumbnails before pairing.
	NormalizeCovers bool

	// DeletePlaylists removes a playlist once tracks were renamed after it.
	DeletePlaylists bool

	// FixAlbumTags runs TagDisc.
	FixAlbumTags bool

	// WriteFolderCover runs WriteFolderCover, resizing to at most
	// FolderCoverMaxSize pixels per side.
	WriteFolderCover   bool
	FolderCoverMaxSize int
}

// Organizer runs the post-download steps on a disc folder.
type Organizer struct {
	opts   Options
	images *ioutils.ImageService
	tagger *audio.Tagger
	notify model.Notifier
}

// New creates an Organizer. notify may be nil.
func New(opts Options, tagger *audio.Tagger, notify model.Notifier) *Organizer {
	if opts.CoverMarker == "" {
		opts.CoverMarker = DefaultCoverMarker
	}
	if tagger == nil {
		tagger = audio.NewTagger(nil)
	}
	if notify == nil {
		notify = func(model.Level, string) {}
	}
	return &Organizer{
		opts:   opts,
		images: ioutils.NewImageService(),
		tagger: tagger,
		notify: notify,
	}
}

func (o *Organizer) logf(level model.Level, format string, args ...any) {
	o.notify(level, fmt.Sprintf(format, args...))
}

// Organize runs every enabled step on dir. withPlaylists enables the
// playlist renaming step.
//
// Only a folder that cannot be read is an error.
func (o *Organizer) Organize(ctx context.Context, dir string, disc audio.Disc, withPlaylists bool) error {
	if o.opts.NormalizeCovers {
		if _, err := o.NormalizeCovers(ctx, dir); err != nil {
			return err
		}
	}

	if withPlaylists {
		if _, err := o.ProcessPlaylists(dir); err != nil {
			return err
		}
	}

	paired, err := o.PairThumbnails(dir)
	if err != nil {
		return err
	}
	if paired > 0 {
		o.logf(model.LevelVerbose, "Paired %d cover image(s) in %s", paired, dir)
	}

	if o.opts.FixAlbumTags {
		if _, err := o.TagDisc(dir, disc); err != nil {
			return err
		}
	}

	if o.opts.WriteFolderCover {
		if err := o.WriteFolderCover(ctx, dir); err != nil {
			o.logf(model.LevelWarning, "Folder cover not written: %v", err)
		}
	}
	return nil
}

// coverPath returns the paired cover path for an audio file.
func (o *Organizer) coverPath(audioPath string) string {
	return stem(audioPath) + o.opts.CoverMarker + ".jpg"
}

func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// NormalizeCovers converts "<stem>.webp" and "<stem>.png" to "<stem>.jpg"
// when "<stem>.mp3" exists and no JPEG is there yet. It returns the number
// of converted images.
func (o *Organizer) NormalizeCovers(ctx context.Context, dir string) (int, error) {
	names, err := ioutils.ListByExt(dir, leftoverExts...)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrFileSystem, err)
	}

	converted := 0
	for _, name := range names {
		src := filepath.Join(dir, name)
		base := stem(src)
		if !hasAudio(base) || ioutils.FileExists(base+".jpg") || ioutils.FileExists(o.coverPath(base+".mp3")) {
			continue
		}
		if err := o.images.ConvertFileToJPEG(ctx, src, base+".jpg"); err != nil {
			o.logf(model.LevelVerbose, "Could not convert %s: %v", name, err)
			continue
		}
		converted++
	}
	return converted, nil
}

func hasAudio(base string) bool {
	for _, ext := range audioExts {
		if ioutils.FileExists(base + ext) {
			return true
		}
	}
	return false
}

// PairThumbnails renames every "<stem>.jpg" whose "<stem>.mp3" exists to
// "<stem><marker>.jpg". Images without a matching track are left alone.
// Rename failures are reported as verbose and skipped.
//
// It returns the number of renamed images.
func (o *Organizer) PairThumbnails(dir string) (int, error) {
	names, err := ioutils.ListByExt(dir, ".jpg")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrFileSystem, err)
	}

	paired := 0
	for _, name := range names {
		src := filepath.Join(dir, name)
		base := stem(src)
		if !hasAudio(base) {
			continue
		}

		dst := base + o.opts.CoverMarker + ".jpg"
		if _, err := os.Lstat(dst); err == nil {
			o.logf(model.LevelVerbose, "Cover %s already exists, keeping %s", filepath.Base(dst), name)
			continue
		}
		if err := os.Rename(src, dst); err != nil {
			o.logf(model.LevelVerbose, "Could not pair %s: %v", name, err)
			continue
		}
		paired++
	}
	return paired, nil
}

// RenameFromPlaylist renames the tracks in dir after the paths listed in
// playlistPath.
//
// For each entry the file on disk is expected under the path's base name
// with spaces replaced by underscores; it is renamed to the base name with
// forbidden characters replaced by underscores. Missing files, malformed
// entries and failed renames are reported and skipped.
//
// It returns the number of renamed files.
func (o *Organizer) RenameFromPlaylist(dir, playlistPath string) (int, error) {
	f, err := os.Open(playlistPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrFileSystem, err)
	}
	defer f.Close()

	pl, err := audio.ParsePlaylist(f)
	if err != nil {
		return 0, fmt.Errorf("%w: read %s: %w", model.ErrFileSystem, playlistPath, err)
	}
	for _, skipped := range pl.Skipped {
		o.logf(model.LevelWarning, "%s: %v", filepath.Base(playlistPath), skipped)
	}

	renamed := 0
	for _, entry := range pl.Entries {
		current, target := renamePair(entry.Path)
		if current == target {
			continue
		}

		oldPath := filepath.Join(dir, current)
		newPath := filepath.Join(dir, target)
		if !ioutils.FileExists(oldPath) {
			if ioutils.FileExists(newPath) {
				o.logf(model.LevelVerbose, "Already named %s", target)
			} else {
				o.logf(model.LevelWarning, "Audio file not found: %s", oldPath)
			}
			continue
		}

		if err := os.Rename(oldPath, newPath); err != nil {
			o.logf(model.LevelWarning, "Could not rename %s: %v", current, errors.Join(model.ErrFileSystem, err))
			continue
		}
		o.logf(model.LevelVerbose, "Renamed %s → %s", current, target)
		renamed++
	}
	return renamed, nil
}

// renamePair derives the on-disk name and the target name for a playlist
// path line.
func renamePair(entryPath string) (current, target string) {
	rel := strings.TrimPrefix(strings.TrimPrefix(entryPath, "./"), ".\\")
	rel = filepath.FromSlash(rel)
	name := filepath.Base(rel)
	return strings.ReplaceAll(name, " ", "_"), ioutils.SanitizeTrackName(name)
}

// ProcessPlaylists runs RenameFromPlaylist once per playlist in dir and
// deletes each playlist afterwards when DeletePlaylists is set. It returns
// the total number of renamed files.
func (o *Organizer) ProcessPlaylists(dir string) (int, error) {
	names, err := ioutils.ListByExt(dir, playlistExts...)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrFileSystem, err)
	}

	total := 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		n, err := o.RenameFromPlaylist(dir, path)
		if err != nil {
			o.logf(model.LevelWarning, "Playlist %s: %v", name, err)
		}
		total += n

		if !o.opts.DeletePlaylists {
			continue
		}
		if err := os.Remove(path); err != nil {
			o.logf(model.LevelWarning, "Could not delete playlist %s: %v", name, err)
			continue
		}
		o.logf(model.LevelVerbose, "Deleted playlist %s", name)
	}
	return total, nil
}

// CleanupPlaylists deletes playlist files directly under root. Folders are
// not descended into. It returns the number of deleted files.
func (o *Organizer) CleanupPlaylists(root string) (int, error) {
	names, err := ioutils.ListByExt(root, playlistExts...)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", model.ErrFileSystem, err)
	}

	deleted := 0
	for _, name := range names {
		if err := os.Remove(filepath.Join(root, name)); err != nil {
			o.logf(model.LevelWarning, "Could not delete %s: %v", name, err)
			continue
		}
		o.logf(model.LevelVerbose, "Deleted leftover playlist %s", name)
		deleted++
	}
	return deleted, nil
}

// TagDisc fills ID3 frames on every MP3 in dir so the folder reads as one
// album. The paired cover, if any, is offered as artwork. It returns the
// number of tagged files.
func (o *Organizer) TagDisc(dir string, disc audio.Disc) (int, error) {
	names, err := ioutils.ListByExt(dir, audioExts...)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrFileSystem, err)
	}

	tagged := 0
	for _, name := range names {
		track := model.ParseTrackFile(filepath.Join(dir, name))

		var artwork []byte
		if cover := o.coverPath(track.Path); ioutils.FileExists(cover) {
			artwork, _ = os.ReadFile(cover)
		}

		if err := o.tagger.SaveTags(track, disc, artwork); err != nil {
			o.logf(model.LevelWarning, "Could not tag %s: %v", name, err)
			continue
		}
		tagged++
	}
	return tagged, nil
}

// WriteFolderCover writes dir/cover.jpg from the first paired cover, resized
// to fit FolderCoverMaxSize. An existing cover.jpg is kept. Having no cover
// to copy is not an error.
func (o *Organizer) WriteFolderCover(ctx context.Context, dir string) error {
	dst := filepath.Join(dir, FolderCoverName)
	if ioutils.FileExists(dst) {
		return nil
	}

	names, err := ioutils.ListByExt(dir, ".jpg")
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrFileSystem, err)
	}

	var src string
	for _, name := range names {
		if strings.HasSuffix(name, o.opts.CoverMarker+".jpg") {
			src = filepath.Join(dir, name)
			break
		}
	}
	if src == "" {
		return nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrFileSystem, err)
	}

	size := o.opts.FolderCoverMaxSize
	if size <= 0 {
		size = 1000
	}
	resized, err := o.images.ResizeImage(ctx, data, size, size)
	if err != nil {
		return err
	}

	if err := os.WriteFile(dst, resized, 0644); err != nil {
		return fmt.Errorf("%w: %w", model.ErrFileSystem, err)
	}
	o.logf(model.LevelVerbose, "Wrote %s", dst)
	return nil
}
