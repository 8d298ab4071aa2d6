package audio

import (
	"fmt"
	"strconv"

	"github.com/bogem/id3v2"
	"github.com/discdl/discdl/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty clears the frame.
	TagEmpty TagEditAction = iota

	// TagModify overwrites the frame with the disc value.
	TagModify

	// TagDoNotModify leaves the existing frame unchanged.
	TagDoNotModify

	// TagFillEmpty writes the disc value only when the frame is missing
	// or empty.
	TagFillEmpty
)

// Disc is the album identity every track of a folder should share.
type Disc struct {
	Artist string
	Album  string
}

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags:  true,
//	    AlbumArtist: TagFillEmpty,   // TPE2 from the disc artist if missing
//	    Album:       TagModify,      // TALB always set to the disc title
//	    TrackNumber: TagFillEmpty,   // TRCK from the "03-" file name prefix
//	    TrackTitle:  TagDoNotModify, // keep what yt-dlp wrote
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no text frames are touched.
	ModifyTags bool

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// AlbumArtist controls the TPE2 (Album artist) frame.
	AlbumArtist TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// TrackNumber controls the TRCK (Track number) frame.
	TrackNumber TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Artwork controls the APIC (Attached picture) frame.
	Artwork TagEditAction
}

// DefaultTagConfig fills missing disc-level frames and leaves per-track
// frames written by the download tool alone.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Artist:      TagFillEmpty,
		AlbumArtist: TagFillEmpty,
		Album:       TagFillEmpty,
		TrackNumber: TagFillEmpty,
		TrackTitle:  TagFillEmpty,
		Artwork:     TagFillEmpty,
	}
}

// Tagger writes ID3 tags to MP3 files.
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags applies the configured actions to the track's MP3 file.
//
// artwork is embedded as the front cover according to TagConfig.Artwork;
// nil skips artwork. Errors wrap model.ErrFileSystem.
func (t *Tagger) SaveTags(track model.Track, disc Disc, artwork []byte) error {
	tag, err := id3v2.Open(track.Path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("%w: open tags %s: %w", model.ErrFileSystem, track.Path, err)
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateStringTags(tag, track, disc)
	}

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("%w: save tags %s: %w", model.ErrFileSystem, track.Path, err)
	}
	return nil
}

func (t *Tagger) updateStringTags(tag *id3v2.Tag, track model.Track, disc Disc) {
	trackNumber := ""
	if track.Number > 0 {
		trackNumber = strconv.Itoa(track.Number)
	}

	applyText(tag, "TPE1", t.config.Artist, disc.Artist)
	applyText(tag, "TPE2", t.config.AlbumArtist, disc.Artist)
	applyText(tag, "TALB", t.config.Album, disc.Album)
	applyText(tag, "TRCK", t.config.TrackNumber, trackNumber)
	applyText(tag, "TIT2", t.config.TrackTitle, track.Title)
}

// applyText runs one action on a text frame. An empty value never
// overwrites anything.
func applyText(tag *id3v2.Tag, id string, action TagEditAction, value string) {
	switch action {
	case TagEmpty:
		tag.DeleteFrames(id)
	case TagModify:
		if value != "" {
			tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
		}
	case TagFillEmpty:
		if value != "" && tag.GetTextFrame(id).Text == "" {
			tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
		}
	}
}

// updateArtwork embeds cover art as an attached picture frame.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	apic := tag.CommonID("Attached picture")

	switch t.config.Artwork {
	case TagEmpty:
		tag.DeleteFrames(apic)
		return
	case TagDoNotModify:
		return
	case TagFillEmpty:
		if len(tag.GetFrames(apic)) > 0 {
			return
		}
	}

	tag.DeleteFrames(apic)
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	})
}
