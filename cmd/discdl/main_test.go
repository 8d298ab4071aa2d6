package main

import (
	"strings"
	"testing"

	"github.com/discdl/discdl/internal/config"
)

func TestSourceFlagsRequireExactlyOne(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "none", args: []string{}, want: "at least one"},
		{name: "both", args: []string{"--sp", "--yt"}, want: "none of the others"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd(&options{})
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			if err == nil {
				t.Fatal("Execute() error = nil, want flag group error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Execute() error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadSettingsAppliesChangedFlags(t *testing.T) {
	dir := t.TempDir()

	opts := &options{}
	cmd := newRootCmd(opts)
	args := []string{"--sp", "-o", dir, "--kbps", "320", "--keep-playlists", "--no-tags", "-v"}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	settings, err := loadSettings(cmd, opts)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}

	defaults := config.DefaultSettings()
	if settings.Source != config.SourceSpotify {
		t.Errorf("Source = %q, want %q", settings.Source, config.SourceSpotify)
	}
	if settings.OutputDir != dir {
		t.Errorf("OutputDir = %q, want %q", settings.OutputDir, dir)
	}
	if settings.Bitrate != 320 {
		t.Errorf("Bitrate = %d, want 320", settings.Bitrate)
	}
	if settings.DeletePlaylists {
		t.Error("DeletePlaylists = true, want false with --keep-playlists")
	}
	if settings.FixAlbumTags {
		t.Error("FixAlbumTags = true, want false with --no-tags")
	}
	if !settings.Verbose {
		t.Error("Verbose = false, want true")
	}
	if settings.Threads != defaults.Threads {
		t.Errorf("Threads = %d, want default %d", settings.Threads, defaults.Threads)
	}
}

func TestLoadSettingsRejectsBadBitrate(t *testing.T) {
	opts := &options{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--yt", "--kbps", "100"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	if _, err := loadSettings(cmd, opts); err == nil {
		t.Error("loadSettings() error = nil, want invalid bitrate error")
	}
}
