// Package audio handles the files a disc download leaves behind: ID3 tags
// on the MP3s and the M3U playlists spotdl writes next to them.
//
// # ID3 Tagging
//
// The download tools write most tags themselves. Tagger fills the gaps
// afterwards so that every track of a disc agrees on album, album artist
// and track number:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(track, audio.Disc{Artist: "Band", Album: "LP"}, coverBytes)
//
// Each frame is controlled by a TagEditAction. TagFillEmpty, the default
// for disc-level frames, only writes a frame that is missing.
//
// # Playlists
//
// ParsePlaylist reads an extended M3U file into entries, pairing every
// #EXTINF line with the path line that follows it. Lines that cannot be
// paired are reported in Playlist.Skipped and do not stop the parse:
//
//	pl, err := audio.ParsePlaylist(f)
//	for _, e := range pl.Entries {
//	    fmt.Println(e.Title, e.Path)
//	}
//
// PlaylistCreator goes the other way and writes M3U or PLS content for a
// list of tracks.
package audio
