package ytdlp

import (
	"context"
	"errors"
	"fmt"

	"github.com/discdl/discdl/internal/model"
	"github.com/discdl/discdl/internal/tool"
	"github.com/tidwall/gjson"
)

// Prober resolves URL metadata without downloading media.
type Prober struct {
	opts Options
}

// NewProber creates a Prober.
func NewProber(opts Options) *Prober {
	return &Prober{opts: opts}
}

// Probe dumps the URL's metadata and resolves it into a model.Metadata.
//
// yt-dlp exits non-zero when some collection entries are unavailable but
// still prints the JSON for the rest; that output is accepted. Any failure
// to obtain valid JSON is reported as model.ErrExtraction.
func (p *Prober) Probe(ctx context.Context, url string) (*model.Metadata, error) {
	res, err := tool.Run(ctx, tool.Command{
		Path: p.opts.path(),
		Args: p.opts.ProbeArgs(url),
	})
	if err != nil {
		var exitErr *tool.ExitError
		if !errors.As(err, &exitErr) || !gjson.ValidBytes(res.Stdout) {
			return nil, fmt.Errorf("%w: %s: %w", model.ErrExtraction, url, err)
		}
	}

	meta, err := ParseMetadata(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return meta, nil
}

// ParseMetadata decodes a yt-dlp JSON dump.
//
// Null collection entries (items yt-dlp skipped) are dropped. Kind is
// resolved from the "_type" tag and the remaining entries.
func ParseMetadata(data []byte) (*model.Metadata, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", model.ErrExtraction)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected a JSON object", model.ErrExtraction)
	}

	meta := &model.Metadata{
		Type:          root.Get("_type").String(),
		Title:         root.Get("title").String(),
		PlaylistTitle: root.Get("playlist_title").String(),
		Album:         root.Get("album").String(),
		Artist:        root.Get("artist").String(),
		Artists:       stringList(root.Get("artists")),
		Uploader:      root.Get("uploader").String(),
	}

	for _, e := range root.Get("entries").Array() {
		if !e.IsObject() {
			continue
		}
		meta.Entries = append(meta.Entries, model.Entry{
			Title:   e.Get("title").String(),
			Artist:  e.Get("artist").String(),
			Artists: stringList(e.Get("artists")),
		})
	}

	meta.Kind = model.ClassifyKind(meta.Type, len(meta.Entries))
	return meta, nil
}

// stringList accepts both a JSON array and a bare string.
func stringList(r gjson.Result) []string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	if !r.IsArray() {
		if s := r.String(); s != "" {
			return []string{s}
		}
		return nil
	}

	var out []string
	for _, v := range r.Array() {
		if s := v.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
