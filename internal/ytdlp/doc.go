// Package ytdlp drives yt-dlp for the YouTube workflow.
//
// The package handles two use cases:
//
//  1. Probing a URL for metadata without downloading media (Prober)
//  2. Downloading a disc into a folder as tagged MP3s with cover art (Downloader)
//
// # Probing
//
//	prober := ytdlp.NewProber(opts)
//	meta, err := prober.Probe(ctx, "https://music.youtube.com/playlist?list=...")
//	if errors.Is(err, model.ErrExtraction) {
//	    // skip this URL
//	}
//
// yt-dlp's JSON dump is loosely typed: fields are optional and the shape
// differs between single items and collections. ParseMetadata resolves it
// once into a model.Metadata.
//
// # Downloading
//
//	dl := ytdlp.NewDownloader(opts)
//	err := dl.Download(ctx, ytdlp.Request{URL: url, Folder: dir, Kind: meta.Kind}, ytdlp.Hooks{
//	    OnProgress: func(p ytdlp.Progress) { fmt.Println(p.Filename, p.Downloaded) },
//	})
//
// Progress is read from a machine-readable --progress-template line that
// ParseProgressLine decodes.
package ytdlp
