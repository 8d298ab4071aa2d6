package model

import "errors"

var (
	// ErrMissingInputFile means the URL list could not be found. It is the
	// only error that aborts a whole run.
	ErrMissingInputFile = errors.New("missing input file")

	// ErrExtraction means metadata for a URL could not be resolved.
	ErrExtraction = errors.New("metadata extraction failed")

	// ErrExternalTool means a download tool exited with a non-zero status.
	ErrExternalTool = errors.New("external tool failed")

	// ErrFileSystem covers directory creation and rename failures.
	ErrFileSystem = errors.New("file system operation failed")

	// ErrMalformedPlaylistEntry marks a playlist line that could not be paired.
	ErrMalformedPlaylistEntry = errors.New("malformed playlist entry")
)
