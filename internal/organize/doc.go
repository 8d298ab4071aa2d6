// Package organize tidies a disc folder after the download tool exits.
//
// The steps, in the order Organize runs them:
//
//  1. NormalizeCovers converts leftover .webp/.png thumbnails to .jpg
//  2. ProcessPlaylists renames tracks after the playlist spotdl wrote
//     and optionally deletes the playlist (Spotify discs only)
//  3. PairThumbnails renames "<stem>.jpg" to "<stem>.cover.jpg" when
//     "<stem>.mp3" exists
//  4. TagDisc fills missing album, album artist and track number frames
//  5. WriteFolderCover writes a resized cover.jpg for the folder
//
// Every step is best-effort. Problems with single files are reported
// through the Notifier and never stop the remaining steps.
//
// CleanupPlaylists is separate: it runs once per batch on the output root.
package organize
