// Package spotdl drives spotdl for the Spotify workflow.
//
// An album is handled in two steps. Resolve asks spotdl to save the
// album's track list to a JSON file and reads the album identity from the
// first record. Download then fetches the tracks inside the album folder:
//
//	client := spotdl.NewClient(opts)
//	album, err := client.Resolve(ctx, url)
//	dir := album.Dir(outputRoot)
//	err = client.Download(ctx, url, dir, spotdl.Hooks{})
//
// spotdl writes its files relative to the working directory, so Download
// runs the process inside dir rather than changing the current directory.
package spotdl
