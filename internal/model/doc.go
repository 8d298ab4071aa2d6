// Package model defines the core data structures used throughout discdl.
//
// # Metadata
//
// Metadata is the probed description of one URL, resolved once from the
// external tool's loosely typed JSON into a tagged variant:
//
//	meta := &model.Metadata{Kind: model.KindCollection, PlaylistTitle: "Abbey Road"}
//	name, isCollection := model.ComposeFolderName(meta)
//
// # Folder Naming
//
// ComposeFolderName derives the raw "{artist}-{album}" folder name for the
// YouTube workflow. FolderPath sanitizes it under an output root. For the
// Spotify workflow, SpotifyAlbum.Dir builds the <root>/<artist>/<album> layout.
//
// # Tracks
//
// TrackTemplate picks the yt-dlp output template for a disc: collection
// position numbering for playlists, download-order numbering otherwise.
// ParseTrackFile recovers the number and title from a downloaded file name.
//
// # Errors
//
// The error taxonomy (ErrMissingInputFile, ErrExtraction, ErrExternalTool,
// ErrFileSystem, ErrMalformedPlaylistEntry) is shared by every package so
// callers can classify failures with errors.Is.
package model
