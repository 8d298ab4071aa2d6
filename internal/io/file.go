package ioutils

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxNameLength is the maximum length, in characters, of a sanitized name.
	MaxNameLength = 120

	// UnknownName replaces names that sanitize to nothing.
	UnknownName = "Unknown"
)

var (
	forbiddenChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

var reservedNames = func() map[string]bool {
	names := map[string]bool{"CON": true, "PRN": true, "AUX": true, "NUL": true}
	for i := 1; i <= 9; i++ {
		names[fmt.Sprintf("COM%d", i)] = true
		names[fmt.Sprintf("LPT%d", i)] = true
	}
	return names
}()

// Sanitize converts an arbitrary metadata string into a safe path segment.
//
// The following transformations are applied, in order:
//   - Unicode is decomposed (NFKD) and combining marks are dropped
//   - Characters \ / : * ? " < > | become a single space
//   - Whitespace runs collapse to one space, ends are trimmed
//   - The result is cut to MaxNameLength characters and right-trimmed
//   - Reserved device names (CON, PRN, AUX, NUL, COM1-9, LPT1-9) are
//     wrapped in underscores, case-insensitively
//   - An empty result becomes UnknownName
//
// Example:
//
//	Sanitize("Sigur Rós: ( )")   // Returns "Sigur Ros ( )"
//	Sanitize("lpt1")             // Returns "_lpt1_"
//	Sanitize("???")              // Returns "Unknown"
func Sanitize(name string) string {
	if name == "" {
		return UnknownName
	}

	name = stripDiacritics(name)
	name = forbiddenChars.ReplaceAllString(name, " ")
	name = strings.TrimSpace(whitespaceRun.ReplaceAllString(name, " "))

	if utf8.RuneCountInString(name) > MaxNameLength {
		name = strings.TrimRightFunc(string([]rune(name)[:MaxNameLength]), unicode.IsSpace)
	}

	if reservedNames[strings.ToUpper(name)] {
		name = "_" + name + "_"
	}

	if name == "" {
		return UnknownName
	}
	return name
}

// SanitizeTrackName replaces the characters \ / : * ? " < > | with
// underscores and leaves everything else untouched.
func SanitizeTrackName(name string) string {
	return forbiddenChars.ReplaceAllString(name, "_")
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ListByExt returns the names of regular files in dir whose extension
// matches one of exts, case-insensitively. Names are sorted.
//
// Example:
//
//	names, err := ListByExt("/music/A-B", ".m3u", ".m3u8")
func ListByExt(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range exts {
			if ext == strings.ToLower(want) {
				names = append(names, entry.Name())
				break
			}
		}
	}
	return names, nil
}

// Backoff describes a bounded retry schedule.
//
// The wait before retry n (0-based) is Cooldown * Exponent^n.
type Backoff struct {
	Attempts int
	Cooldown time.Duration
	Exponent float64
}

// Delay returns the wait before the given retry.
func (b Backoff) Delay(try int) time.Duration {
	exp := b.Exponent
	if exp <= 0 {
		exp = 1
	}
	return time.Duration(float64(b.Cooldown) * math.Pow(exp, float64(try)))
}

// WaitForFile polls until path exists as a regular file, sleeping according
// to b between checks. It returns an error wrapping os.ErrNotExist when the
// attempts run out, or the context error if ctx is cancelled first.
func WaitForFile(ctx context.Context, path string, b Backoff) error {
	attempts := b.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for try := 0; try < attempts; try++ {
		if FileExists(path) {
			return nil
		}
		if try == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Delay(try)):
		}
	}
	return fmt.Errorf("%s not written after %d checks: %w", path, attempts, os.ErrNotExist)
}
