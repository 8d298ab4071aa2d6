package model

import (
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// CollectionTrackTemplate numbers files by their position in the collection.
	CollectionTrackTemplate = "%(playlist_index)02d-%(title).200s.%(ext)s"

	// SingleTrackTemplate numbers files in download order.
	SingleTrackTemplate = "%(autonumber)02d-%(title).200s.%(ext)s"
)

// TrackTemplate returns the yt-dlp output template for a disc kind.
func TrackTemplate(kind Kind) string {
	if kind == KindCollection {
		return CollectionTrackTemplate
	}
	return SingleTrackTemplate
}

// Track is an audio file on disk inside a disc folder.
//
// Files produced by the numbering templates look like "03-Song Title.mp3";
// Number and Title are recovered from that shape.
type Track struct {
	// Path is the full path of the audio file.
	Path string

	// Number is the sequence index from the file name, 0 if there is none.
	Number int

	// Title is the file name without number prefix and extension.
	Title string
}

// ParseTrackFile splits a numbered file name into its parts.
//
// Example:
//
//	t := ParseTrackFile("/music/A-B/03-Song.mp3")
//	// t.Number == 3, t.Title == "Song"
func ParseTrackFile(path string) Track {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	track := Track{Path: path, Title: stem}

	prefix, rest, found := strings.Cut(stem, "-")
	if !found {
		return track
	}
	n, err := strconv.Atoi(strings.TrimSpace(prefix))
	if err != nil || n < 0 {
		return track
	}
	track.Number = n
	track.Title = strings.TrimSpace(rest)
	return track
}
