package audio

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/discdl/discdl/internal/model"
)

const extinfPrefix = "#EXTINF"

// PlaylistEntry is one #EXTINF record paired with its path line.
type PlaylistEntry struct {
	// Duration is the track length in seconds, -1 when unknown.
	Duration int

	// Title is the display text after the comma.
	Title string

	// Path is the path line exactly as written, usually relative to the
	// playlist file.
	Path string

	// Line is the 1-based line number of the #EXTINF line.
	Line int
}

// Playlist is the parsed content of an M3U file.
type Playlist struct {
	Entries []PlaylistEntry

	// Skipped holds one error wrapping model.ErrMalformedPlaylistEntry per
	// #EXTINF line that could not be paired.
	Skipped []error
}

type playlistLine struct {
	text string
	num  int
}

// ParsePlaylist reads extended M3U content.
//
// Blank lines are ignored. An #EXTINF line without a comma, or one that is
// not followed by a path line, is skipped. Path lines without a preceding
// #EXTINF are ignored. The returned error is only set when r fails.
func ParsePlaylist(r io.Reader) (*Playlist, error) {
	var lines []playlistLine
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		text := strings.TrimSpace(scanner.Text())
		if n == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if text != "" {
			lines = append(lines, playlistLine{text: text, num: n})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	pl := &Playlist{}
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line.text, extinfPrefix) {
			continue
		}

		info, title, ok := strings.Cut(line.text, ",")
		if !ok {
			pl.Skipped = append(pl.Skipped, fmt.Errorf("line %d: no title separator: %w", line.num, model.ErrMalformedPlaylistEntry))
			continue
		}
		if i+1 >= len(lines) || strings.HasPrefix(lines[i+1].text, "#") {
			pl.Skipped = append(pl.Skipped, fmt.Errorf("line %d: no path after %s: %w", line.num, extinfPrefix, model.ErrMalformedPlaylistEntry))
			continue
		}

		i++
		pl.Entries = append(pl.Entries, PlaylistEntry{
			Duration: parseDuration(info),
			Title:    strings.TrimSpace(title),
			Path:     lines[i].text,
			Line:     line.num,
		})
	}
	return pl, nil
}

// parseDuration reads the seconds from "#EXTINF:123".
func parseDuration(info string) int {
	_, v, ok := strings.Cut(info, ":")
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return -1
	}
	return n
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files. Extended M3U adds #EXTINF lines.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS
)

// ParsePlaylistFormat maps "m3u" or "pls" to a format.
func ParsePlaylistFormat(s string) (PlaylistFormat, error) {
	switch strings.ToLower(s) {
	case "", "m3u":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	default:
		return FormatM3U, fmt.Errorf("unknown playlist format %q", s)
	}
}

// Extension returns the file extension including the dot.
func (f PlaylistFormat) Extension() string {
	if f == FormatPLS {
		return ".pls"
	}
	return ".m3u"
}

// PlaylistCreator generates playlist content for a disc.
//
// Track paths are written relative to the disc folder, assuming the
// playlist is saved next to the tracks.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(disc, tracks)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:-1,Band - Song Title
//	// 01-Song Title.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool
}

// NewPlaylistCreator creates a new PlaylistCreator. extended only affects
// FormatM3U.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the format the creator writes.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist generates playlist content for the tracks of a disc.
func (p *PlaylistCreator) CreatePlaylist(disc Disc, tracks []model.Track) string {
	if p.format == FormatPLS {
		return p.createPLS(tracks)
	}
	return p.createM3U(disc, tracks)
}

func (p *PlaylistCreator) createM3U(disc Disc, tracks []model.Track) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, track := range tracks {
		if p.extended {
			title := track.Title
			if disc.Artist != "" {
				title = disc.Artist + " - " + title
			}
			fmt.Fprintf(&sb, "%s:-1,%s\n", extinfPrefix, title)
		}
		sb.WriteString(filepath.Base(track.Path) + "\n")
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist:
//
//	[playlist]
//	File1=01-Song.mp3
//	Title1=Song
//	Length1=-1
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(tracks []model.Track) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, track := range tracks {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, filepath.Base(track.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, track.Title)
		fmt.Fprintf(&sb, "Length%d=-1\n", idx)
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(tracks))
	sb.WriteString("Version=2\n")

	return sb.String()
}
