package console

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/discdl/discdl/internal/download"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const barTemplate = `{{ string . "prefix" }} {{ bar . }} {{ percent . }} | {{ speed . "%s/s" }} | ETA {{ rtime . "%s" }}`

// prefixWidth is the file name column width in front of a bar.
const prefixWidth = 40

var (
	colorInfo    = color.New(color.FgCyan)
	colorVerbose = color.New(color.FgHiBlack)
	colorSuccess = color.New(color.FgGreen)
	colorWarning = color.New(color.FgYellow)
	colorError   = color.New(color.FgRed)
)

// Options configures a Console.
type Options struct {
	// Out receives rendered output. Defaults to os.Stdout.
	Out io.Writer

	// Verbose shows LevelVerbose messages.
	Verbose bool

	// LogFile, when set, receives every message with a timestamp.
	LogFile string
}

// Console prints progress events.
type Console struct {
	out     io.Writer
	verbose bool
	bars    bool
	logFile *os.File
	now     func() time.Time

	mu      sync.Mutex
	bar     *pb.ProgressBar
	barFile string
}

// New creates a Console. Progress bars are enabled only when Out is a
// terminal.
func New(opts Options) (*Console, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	c := &Console{
		out:     out,
		verbose: opts.Verbose,
		bars:    IsTerminal(out),
		now:     time.Now,
	}

	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		c.logFile = f
	}
	return c, nil
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Handle renders one event. It is safe for concurrent use.
func (c *Console) Handle(event download.ProgressEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if event.Transfer != nil && c.bars {
		c.updateBar(event.Transfer)
	}

	if event.Message == "" {
		return
	}
	c.writeLog(event)

	if event.Level == download.LevelVerbose && !c.verbose {
		return
	}
	if event.Transfer == nil {
		c.finishBar()
	}
	c.print(event)
}

// Close finishes any active bar and closes the log file.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.finishBar()
	if c.logFile != nil {
		err := c.logFile.Close()
		c.logFile = nil
		return err
	}
	return nil
}

func (c *Console) print(event download.ProgressEvent) {
	switch event.Level {
	case download.LevelSuccess:
		colorSuccess.Fprintf(c.out, "✅ %s\n", event.Message)
	case download.LevelWarning:
		colorWarning.Fprintf(c.out, "⚠️  %s\n", event.Message)
	case download.LevelError:
		colorError.Fprintf(c.out, "❌ %s\n", event.Message)
	case download.LevelVerbose:
		colorVerbose.Fprintf(c.out, "   %s\n", event.Message)
	default:
		colorInfo.Fprintf(c.out, "%s\n", event.Message)
	}
}

func (c *Console) writeLog(event download.ProgressEvent) {
	if c.logFile == nil {
		return
	}
	line := fmt.Sprintf("%s [%s] %s", c.now().Format("2006-01-02 15:04:05"), event.Level, event.Message)
	if event.URL != "" {
		line += " (" + event.URL + ")"
	}
	fmt.Fprintln(c.logFile, line)
}

func (c *Console) updateBar(t *download.Transfer) {
	if c.bar == nil || c.barFile != t.File {
		c.finishBar()
		c.bar = pb.New64(t.Total)
		c.bar.SetTemplateString(barTemplate)
		c.bar.SetWriter(c.out)
		c.bar.Set(pb.Bytes, true)
		c.bar.Set("prefix", fmt.Sprintf("%-*s", prefixWidth, truncate(t.File, prefixWidth)))
		c.bar.Start()
		c.barFile = t.File
	}

	if t.Total > 0 {
		c.bar.SetTotal(t.Total)
	}
	c.bar.SetCurrent(t.Downloaded)

	if t.Finished {
		c.finishBar()
	}
}

func (c *Console) finishBar() {
	if c.bar == nil {
		return
	}
	c.bar.Finish()
	c.bar = nil
	c.barFile = ""
}

// truncate shortens s to at most n runes, marking the cut with "…".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
