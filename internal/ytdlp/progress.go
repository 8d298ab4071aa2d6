package ytdlp

import (
	"strconv"
	"strings"
	"time"
)

const progressMarker = "[discdl]"

// progressTemplate makes yt-dlp print one parseable line per progress update.
// The file name goes last since it may contain the separator.
const progressTemplate = "download:" + progressMarker +
	"|%(progress.status)s" +
	"|%(progress.downloaded_bytes)s" +
	"|%(progress.total_bytes,progress.total_bytes_estimate)s" +
	"|%(progress.eta)s" +
	"|%(progress.speed)s" +
	"|%(progress.filename)s"

// Progress is one per-file transfer update.
type Progress struct {
	// Status is "downloading", "finished" or "error".
	Status string

	// Filename is the file being written.
	Filename string

	// Downloaded and Total are byte counts. Total is 0 when unknown.
	Downloaded int64
	Total      int64

	// ETA is the estimated time remaining, 0 when unknown.
	ETA time.Duration

	// Speed is the transfer rate in bytes per second, 0 when unknown.
	Speed float64
}

// Finished reports whether the file is complete.
func (p Progress) Finished() bool {
	return p.Status == "finished"
}

// ParseProgressLine decodes a line printed through progressTemplate.
// It returns false for any other output line.
//
// Fields yt-dlp cannot fill are printed as "NA" and decode to zero.
func ParseProgressLine(line string) (Progress, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, progressMarker+"|") {
		return Progress{}, false
	}

	fields := strings.SplitN(strings.TrimPrefix(line, progressMarker+"|"), "|", 6)
	if len(fields) != 6 {
		return Progress{}, false
	}

	return Progress{
		Status:     fields[0],
		Downloaded: int64(parseNumber(fields[1])),
		Total:      int64(parseNumber(fields[2])),
		ETA:        time.Duration(parseNumber(fields[3]) * float64(time.Second)),
		Speed:      parseNumber(fields[4]),
		Filename:   fields[5],
	}, true
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
