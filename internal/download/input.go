package download

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/discdl/discdl/internal/model"
)

// ReadURLs reads a URL list file.
//
// A missing file returns an error wrapping model.ErrMissingInputFile.
func ReadURLs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", model.ErrMissingInputFile, path)
		}
		return nil, err
	}
	return ParseURLs(string(data)), nil
}

// ParseURLs returns one URL per line. Blank lines and lines starting with
// "#" are ignored.
func ParseURLs(input string) []string {
	var urls []string
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls
}
