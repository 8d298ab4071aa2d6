// Package download drives a batch of discs from a URL list to organized
// folders.
//
// # Manager
//
// The Manager runs each URL through the workflow of the configured source,
// strictly one after another:
//
//	YouTube: probe → folder name → download → organize
//	Spotify: resolve → album dir → download → organize (with playlist renaming)
//
// and removes leftover playlists from the output root at the end.
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	stats, err := manager.RunFile(ctx, settings.ResolveInputFile())
//	if errors.Is(err, model.ErrMissingInputFile) {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d of %d discs done\n", stats.Succeeded, stats.Total)
//
// # Failure Isolation
//
// Only a missing URL list aborts a run. A URL that cannot be resolved is
// skipped with a warning; a failed download is reported as an error; either
// way the batch continues. yt-dlp runs with --ignore-errors, so a YouTube
// disc where some items failed still counts as done, with a warning.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message  string
//	    Level    ProgressLevel // Info, Verbose, Warning, Error, Success
//	    URL      string
//	    Transfer *Transfer     // per-file bytes, ETA and speed
//	}
//
// The callback may be called from the goroutines that read tool output, but
// never concurrently.
//
// # Testing
//
// The external tools sit behind MetadataProber, MediaFetcher, AlbumResolver
// and AlbumFetcher; pass fakes with the With* options.
package download
