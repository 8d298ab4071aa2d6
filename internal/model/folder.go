package model

import (
	"path/filepath"
	"strings"
	"unicode"

	ioutils "github.com/discdl/discdl/internal/io"
)

const (
	// UnknownArtist is used when no artist can be resolved.
	UnknownArtist = "Unknown Artist"

	// UnknownAlbum is used when no title can be resolved.
	UnknownAlbum = "Unknown Album"
)

// ComposeFolderName derives the raw folder name for a disc and reports
// whether it is a collection.
//
// The album title is the collection title, else the title, else the album
// field. The artist follows Metadata.ResolveArtist. The literal "Album" is
// removed from the metadata values before every whitespace character is
// deleted, so {artist: "A", album: "B - Album"} gives "A-B-". Fallback
// names are inserted as-is: missing metadata gives
// "UnknownArtist-UnknownAlbum".
//
// The result is not sanitized; use FolderPath for that.
func ComposeFolderName(m *Metadata) (string, bool) {
	album := stripAlbumLiteral(m.DisplayTitle())
	if m.DisplayTitle() == "" {
		album = UnknownAlbum
	}

	artist := stripAlbumLiteral(m.ResolveArtist())
	if m.ResolveArtist() == "" {
		artist = UnknownArtist
	}

	name := strings.TrimSpace(artist + " - " + album)
	return removeWhitespace(name), m.IsCollection()
}

// FolderPath sanitizes a raw folder name and joins it under root.
func FolderPath(root, rawName string) string {
	return filepath.Join(root, ioutils.Sanitize(rawName))
}

// SpotifyAlbum is the album identity resolved from a spotdl save file.
type SpotifyAlbum struct {
	Artist string
	Album  string
}

// Dir returns <root>/<artist>/<album>. Spaces are removed from the artist and
// replaced with underscores in the album, then each segment is sanitized.
func (a SpotifyAlbum) Dir(root string) string {
	artist := ioutils.Sanitize(strings.ReplaceAll(a.Artist, " ", ""))
	album := ioutils.Sanitize(strings.ReplaceAll(a.Album, " ", "_"))
	return filepath.Join(root, artist, album)
}

func stripAlbumLiteral(s string) string {
	return strings.ReplaceAll(s, "Album", "")
}

func removeWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
