package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/discdl/discdl/internal/config"
	"github.com/discdl/discdl/internal/console"
	"github.com/discdl/discdl/internal/download"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "dev"

var colorError = color.New(color.FgRed)

type options struct {
	spotify       bool
	youtube       bool
	configPath    string
	saveConfig    string
	inputFile     string
	outputDir     string
	bitrate       int
	cookies       string
	proxy         string
	rateLimit     string
	noPlaylist    bool
	threads       int
	keepPlaylists bool
	folderCover   bool
	noTags        bool
	logFile       string
	verbose       bool
}

func main() {
	color.NoColor = !console.IsTerminal(os.Stdout)

	if err := newRootCmd(&options{}).Execute(); err != nil {
		colorError.Fprintf(os.Stderr, "❌ %v\n", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	defaults := config.DefaultSettings()

	cmd := &cobra.Command{
		Use:     "discdl (--sp | --yt) [flags]",
		Version: version,
		Short:   "Download Spotify and YouTube discs as organized MP3 folders.",
		Long: `discdl reads a list of URLs, one per line, and downloads each disc
(album, playlist or single track) into its own folder.

  --sp  Spotify URLs through spotdl: <output>/<Artist>/<Album>/
  --yt  YouTube URLs through yt-dlp: <output>/<Artist-Title>/

Lines starting with # and blank lines in the list are ignored. A URL that
fails is reported and skipped; only a missing list stops the run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), settings, opts.saveConfig)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.spotify, "sp", false, "download Spotify URLs with spotdl")
	f.BoolVar(&opts.youtube, "yt", false, "download YouTube URLs with yt-dlp")
	f.StringVarP(&opts.inputFile, "file", "f", "", `URL list (default "links.txt" for --yt, "<outdir>/discos" for --sp)`)
	f.StringVarP(&opts.outputDir, "outdir", "o", defaults.OutputDir, "output root directory")
	f.IntVar(&opts.bitrate, "kbps", defaults.Bitrate, fmt.Sprintf("MP3 bitrate, one of %v", config.Bitrates))
	f.StringVar(&opts.cookies, "cookies", "", "cookies file for restricted content")
	f.StringVar(&opts.proxy, "proxy", "", "proxy URL, e.g. socks5://127.0.0.1:9050")
	f.StringVar(&opts.rateLimit, "rate-limit", "", `bandwidth cap for yt-dlp, e.g. "2M"`)
	f.BoolVar(&opts.noPlaylist, "no-playlist", false, "download only the item when a URL names both an item and a playlist")
	f.IntVar(&opts.threads, "threads", defaults.Threads, "parallel downloads inside the tool")
	f.BoolVar(&opts.keepPlaylists, "keep-playlists", false, "keep the playlists spotdl writes into album folders")
	f.BoolVar(&opts.folderCover, "folder-cover", false, "write a cover.jpg into each disc folder")
	f.BoolVar(&opts.noTags, "no-tags", false, "do not fill missing album tags")
	f.StringVar(&opts.configPath, "config", "", "settings file (JSON, YAML or TOML)")
	f.StringVar(&opts.saveConfig, "save-config", "", "write the effective settings to this JSON file")
	f.StringVar(&opts.logFile, "log", "", "append all messages to this file")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "show tool output and detailed steps")

	cmd.MarkFlagsMutuallyExclusive("sp", "yt")
	cmd.MarkFlagsOneRequired("sp", "yt")

	return cmd
}

// loadSettings layers defaults, the settings file, DISCDL_* environment and
// the flags the user set, in that order.
func loadSettings(cmd *cobra.Command, opts *options) (*config.Settings, error) {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	settings.Source = config.SourceYouTube
	if opts.spotify {
		settings.Source = config.SourceSpotify
	}

	f := cmd.Flags()
	if f.Changed("file") {
		settings.InputFile = opts.inputFile
	}
	if f.Changed("outdir") {
		settings.OutputDir = opts.outputDir
	}
	if f.Changed("kbps") {
		settings.Bitrate = opts.bitrate
	}
	if f.Changed("cookies") {
		settings.CookiesFile = opts.cookies
	}
	if f.Changed("proxy") {
		settings.Proxy = opts.proxy
	}
	if f.Changed("rate-limit") {
		settings.RateLimit = opts.rateLimit
	}
	if f.Changed("no-playlist") {
		settings.NoPlaylist = opts.noPlaylist
	}
	if f.Changed("threads") {
		settings.Threads = opts.threads
	}
	if f.Changed("keep-playlists") {
		settings.DeletePlaylists = !opts.keepPlaylists
	}
	if f.Changed("folder-cover") {
		settings.WriteFolderCover = opts.folderCover
	}
	if f.Changed("no-tags") {
		settings.FixAlbumTags = !opts.noTags
	}
	if f.Changed("log") {
		settings.LogFile = opts.logFile
	}
	if f.Changed("verbose") {
		settings.Verbose = opts.verbose
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func run(ctx context.Context, settings *config.Settings, saveConfig string) error {
	if saveConfig != "" {
		if err := settings.Save(saveConfig); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}

	out, err := console.New(console.Options{Verbose: settings.Verbose, LogFile: settings.LogFile})
	if err != nil {
		return err
	}
	defer out.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := settings.ResolveInputFile()
	out.Handle(download.ProgressEvent{
		Message: fmt.Sprintf("💿 discdl: %s from %s into %s", settings.Source, input, settings.OutputDir),
		Level:   download.LevelInfo,
	})

	manager := download.NewManager(settings, out.Handle)
	_, err = manager.RunFile(ctx, input)
	return err
}
