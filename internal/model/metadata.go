package model

// Kind tags whether probed metadata describes one item or a collection.
type Kind int

const (
	// KindSingleItem is a standalone video or track.
	KindSingleItem Kind = iota

	// KindCollection is a playlist or album with multiple entries.
	KindCollection
)

// String returns a lowercase name for the kind.
func (k Kind) String() string {
	if k == KindCollection {
		return "collection"
	}
	return "single"
}

// Entry is one item of a collection. Only the fields used for artist
// resolution are kept.
type Entry struct {
	Title   string
	Artist  string
	Artists []string
}

// Metadata is the probed description of a URL.
//
// The external tool returns a mapping whose shape depends on whether the URL
// resolved to a single item or a collection. Metadata holds the fields the
// naming rules need, with Kind resolved once when the metadata is built.
type Metadata struct {
	// Kind is KindCollection when the type tag is "playlist" or the
	// entries list is non-empty.
	Kind Kind

	// Type is the raw type tag reported by the prober (e.g. "playlist", "video").
	Type string

	// Title is the top-level title.
	Title string

	// PlaylistTitle is the collection title, when present.
	PlaylistTitle string

	// Album is the album field, when present.
	Album string

	// Artist is the top-level artist field.
	Artist string

	// Artists is the top-level artists list.
	Artists []string

	// Uploader is the channel or account that published the media.
	Uploader string

	// Entries holds collection items in order.
	Entries []Entry
}

// ClassifyKind applies the collection rule: a "playlist" type tag or a
// non-empty entries list makes a collection.
func ClassifyKind(typeTag string, entries int) Kind {
	if typeTag == "playlist" || entries > 0 {
		return KindCollection
	}
	return KindSingleItem
}

// IsCollection reports whether the metadata describes a collection.
func (m *Metadata) IsCollection() bool {
	return m.Kind == KindCollection
}

// DisplayTitle returns the first non-empty of collection title, title and album.
func (m *Metadata) DisplayTitle() string {
	return firstNonEmpty(m.PlaylistTitle, m.Title, m.Album)
}

// ResolveArtist returns the artist by precedence: first entry's artist,
// first entry's first artists element, top-level artist, first top-level
// artists element. It returns "" when none is present.
func (m *Metadata) ResolveArtist() string {
	if len(m.Entries) > 0 {
		first := m.Entries[0]
		if first.Artist != "" {
			return first.Artist
		}
		if len(first.Artists) > 0 && first.Artists[0] != "" {
			return first.Artists[0]
		}
	}
	if m.Artist != "" {
		return m.Artist
	}
	if len(m.Artists) > 0 {
		return m.Artists[0]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
