package model

// Level is the severity of a progress message.
type Level int

const (
	// LevelInfo is a normal progress message.
	LevelInfo Level = iota

	// LevelVerbose is detail shown only in verbose mode (tool output,
	// skipped optional steps).
	LevelVerbose

	// LevelWarning is a recoverable problem; the current disc continues
	// or is skipped.
	LevelWarning

	// LevelError is a failed disc or operation.
	LevelError

	// LevelSuccess marks a completed disc.
	LevelSuccess
)

// String returns a short lowercase label for logs.
func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// Notifier receives leveled messages from components that do not print.
type Notifier func(level Level, message string)
