package organize

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/discdl/discdl/internal/audio"
	ioutils "github.com/discdl/discdl/internal/io"
	"github.com/discdl/discdl/internal/model"
)

type recorder struct {
	events []string
}

func (r *recorder) notify(level model.Level, msg string) {
	r.events = append(r.events, level.String()+": "+msg)
}

func (r *recorder) count(level model.Level) int {
	n := 0
	for _, e := range r.events {
		if strings.HasPrefix(e, level.String()+": ") {
			n++
		}
	}
	return n
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPairThumbnails(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "track01.jpg", "track01.mp3", "track02.jpg", "notes.txt")

	rec := &recorder{}
	n, err := New(Options{}, nil, rec.notify).PairThumbnails(dir)
	if err != nil {
		t.Fatalf("PairThumbnails() error = %v", err)
	}
	if n != 1 {
		t.Errorf("PairThumbnails() = %d, want 1", n)
	}

	got := listDir(t, dir)
	want := []string{"notes.txt", "track01.cover.jpg", "track01.mp3", "track02.jpg"}
	if !slices.Equal(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestPairThumbnails_TargetExists(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.jpg", "a.mp3", "a.cover.jpg")

	rec := &recorder{}
	n, err := New(Options{}, nil, rec.notify).PairThumbnails(dir)
	if err != nil {
		t.Fatalf("PairThumbnails() error = %v", err)
	}
	if n != 0 {
		t.Errorf("PairThumbnails() = %d, want 0", n)
	}
	if !ioutils.FileExists(filepath.Join(dir, "a.jpg")) {
		t.Error("a.jpg should be left in place")
	}
	if rec.count(model.LevelVerbose) != 1 {
		t.Errorf("events = %v, want one verbose", rec.events)
	}
}

func TestPairThumbnails_CustomMarker(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "01-Song.jpg", "01-Song.mp3")

	if _, err := New(Options{CoverMarker: ".art"}, nil, nil).PairThumbnails(dir); err != nil {
		t.Fatal(err)
	}
	if !ioutils.FileExists(filepath.Join(dir, "01-Song.art.jpg")) {
		t.Errorf("files = %v", listDir(t, dir))
	}
}

func TestPairThumbnails_MissingDir(t *testing.T) {
	_, err := New(Options{}, nil, nil).PairThumbnails(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Error("PairThumbnails() on a missing dir should fail")
	}
}

func TestNormalizeCovers(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "01-One.mp3", "02-Two.mp3", "02-Two.jpg", "03-Orphan.png")
	// Decoders registered by ioutils accept PNG; write a real one for 01.
	pngPath := filepath.Join(dir, "01-One.png")
	if err := os.WriteFile(pngPath, pngBytes(t), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := New(Options{}, nil, nil).NormalizeCovers(context.Background(), dir)
	if err != nil {
		t.Fatalf("NormalizeCovers() error = %v", err)
	}
	if n != 1 {
		t.Errorf("NormalizeCovers() = %d, want 1", n)
	}
	if !ioutils.FileExists(filepath.Join(dir, "01-One.jpg")) || ioutils.FileExists(pngPath) {
		t.Errorf("files = %v", listDir(t, dir))
	}
	if !ioutils.FileExists(filepath.Join(dir, "03-Orphan.png")) {
		t.Error("image without a track should be untouched")
	}
}

func TestRenameFromPlaylist(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "01-First_Song.mp3")
	playlist := filepath.Join(dir, "album.m3u8")
	content := "#EXTM3U\n" +
		"#EXTINF:200,Band - First Song\n" +
		"./01-First Song.mp3\n" +
		"#EXTINF:100,Band - What: Why\n" +
		"./02-What: Why?.mp3\n" +
		"#EXTINF:100 broken\n" +
		"x.mp3\n" +
		"#EXTINF:100,Band - Missing\n" +
		"./03-Missing Track.mp3\n"
	if err := os.WriteFile(playlist, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	touch(t, dir, "02-What:_Why?.mp3")

	rec := &recorder{}
	n, err := New(Options{}, nil, rec.notify).RenameFromPlaylist(dir, playlist)
	if err != nil {
		t.Fatalf("RenameFromPlaylist() error = %v", err)
	}
	if n != 2 {
		t.Errorf("RenameFromPlaylist() = %d, want 2; events %v", n, rec.events)
	}

	for _, want := range []string{"01-First Song.mp3", "02-What_ Why_.mp3"} {
		if !ioutils.FileExists(filepath.Join(dir, want)) {
			t.Errorf("%q missing; files = %v", want, listDir(t, dir))
		}
	}
	// One malformed entry, one missing file.
	if got := rec.count(model.LevelWarning); got != 2 {
		t.Errorf("warnings = %d, want 2: %v", got, rec.events)
	}
}

func TestProcessPlaylists(t *testing.T) {
	tests := []struct {
		name       string
		delete     bool
		wantExists bool
	}{
		{name: "delete", delete: true, wantExists: false},
		{name: "keep", delete: false, wantExists: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, "01-A_B.mp3")
			playlist := filepath.Join(dir, "LP.m3u")
			if err := os.WriteFile(playlist, []byte("#EXTINF:1,A B\n01-A B.mp3\n"), 0o644); err != nil {
				t.Fatal(err)
			}

			rec := &recorder{}
			n, err := New(Options{DeletePlaylists: tt.delete}, nil, rec.notify).ProcessPlaylists(dir)
			if err != nil {
				t.Fatalf("ProcessPlaylists() error = %v", err)
			}
			if n != 1 {
				t.Errorf("ProcessPlaylists() = %d, want 1", n)
			}
			if got := ioutils.FileExists(playlist); got != tt.wantExists {
				t.Errorf("playlist exists = %v, want %v", got, tt.wantExists)
			}

			logged := slices.ContainsFunc(rec.events, func(e string) bool {
				return strings.Contains(e, "Deleted playlist")
			})
			if logged != tt.delete {
				t.Errorf("delete logged = %v, want %v", logged, tt.delete)
			}
		})
	}
}

func TestCleanupPlaylists(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "Band", "LP")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, root, "a.m3u", "b.M3U8", "keep.txt")
	touch(t, sub, "c.m3u")

	n, err := New(Options{}, nil, nil).CleanupPlaylists(root)
	if err != nil {
		t.Fatalf("CleanupPlaylists() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CleanupPlaylists() = %d, want 2", n)
	}
	if !ioutils.FileExists(filepath.Join(sub, "c.m3u")) {
		t.Error("nested playlist should be kept")
	}

	if n, err := New(Options{}, nil, nil).CleanupPlaylists(filepath.Join(root, "missing")); err != nil || n != 0 {
		t.Errorf("CleanupPlaylists(missing) = %d, %v", n, err)
	}
}

func TestWriteFolderCover(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "01-One.mp3")
	if err := os.WriteFile(filepath.Join(dir, "01-One.cover.jpg"), jpegBytes(t, 64, 32), 0o644); err != nil {
		t.Fatal(err)
	}

	o := New(Options{FolderCoverMaxSize: 16}, nil, nil)
	if err := o.WriteFolderCover(context.Background(), dir); err != nil {
		t.Fatalf("WriteFolderCover() error = %v", err)
	}

	f, err := os.Open(filepath.Join(dir, FolderCoverName))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 16 || cfg.Height != 8 {
		t.Errorf("cover size = %dx%d, want 16x8", cfg.Width, cfg.Height)
	}
}

func TestWriteFolderCover_NoCover(t *testing.T) {
	dir := t.TempDir()
	if err := New(Options{}, nil, nil).WriteFolderCover(context.Background(), dir); err != nil {
		t.Errorf("WriteFolderCover() error = %v", err)
	}
	if ioutils.FileExists(filepath.Join(dir, FolderCoverName)) {
		t.Error("cover.jpg written without a source")
	}
}

func TestOrganize(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "01-One.mp3", "02-Two.mp3")
	if err := os.WriteFile(filepath.Join(dir, "01-One.jpg"), jpegBytes(t, 8, 8), 0o644); err != nil {
		t.Fatal(err)
	}

	o := New(Options{FixAlbumTags: true, WriteFolderCover: true, NormalizeCovers: true}, audio.NewTagger(nil), nil)
	err := o.Organize(context.Background(), dir, audio.Disc{Artist: "Band", Album: "LP"}, false)
	if err != nil {
		t.Fatalf("Organize() error = %v", err)
	}

	for _, want := range []string{"01-One.cover.jpg", FolderCoverName} {
		if !ioutils.FileExists(filepath.Join(dir, want)) {
			t.Errorf("%s missing; files = %v", want, listDir(t, dir))
		}
	}
}
