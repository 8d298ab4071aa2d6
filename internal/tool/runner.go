package tool

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/discdl/discdl/internal/model"
	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds a single streamed output line.
const maxLineSize = 16 << 20

// stderrTail is how many trailing stderr lines an ExitError keeps.
const stderrTail = 20

// Command describes one external tool invocation.
type Command struct {
	// Path is the executable name or path.
	Path string

	// Args are the arguments, without the executable.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// OnStdout receives each stdout line. When nil, stdout is buffered
	// into Result.Stdout instead.
	OnStdout func(line string)

	// OnStderr receives each stderr line. Stderr is always kept for
	// ExitError regardless.
	OnStderr func(line string)
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Result holds the captured output of a finished process.
type Result struct {
	Stdout []byte
	Stderr string
}

// ExitError reports a tool that ran and exited with a non-zero status.
//
// ExitError matches model.ErrExternalTool with errors.Is.
type ExitError struct {
	Tool   string
	Code   int
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Tool, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Is makes ExitError match model.ErrExternalTool.
func (e *ExitError) Is(target error) bool {
	return target == model.ErrExternalTool
}

// Run starts the command, pumps its output until both pipes close and waits
// for the process to exit.
//
// Returns *ExitError for a non-zero exit status. Any other error means the
// process could not be started or its output could not be read.
func Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", c.Path, err)
	}

	var (
		outBuf bytes.Buffer
		errBuf tailBuffer
	)

	var g errgroup.Group
	g.Go(func() error {
		if c.OnStdout == nil {
			_, err := io.Copy(&outBuf, stdout)
			return err
		}
		return scanLines(stdout, c.OnStdout)
	})
	g.Go(func() error {
		return scanLines(stderr, func(line string) {
			errBuf.add(line)
			if c.OnStderr != nil {
				c.OnStderr(line)
			}
		})
	})

	readErr := g.Wait()
	waitErr := cmd.Wait()

	res := &Result{Stdout: outBuf.Bytes(), Stderr: errBuf.String()}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return res, &ExitError{
				Tool:   filepath.Base(c.Path),
				Code:   exitErr.ExitCode(),
				Stderr: res.Stderr,
				Err:    waitErr,
			}
		}
		return res, waitErr
	}
	if readErr != nil {
		return res, fmt.Errorf("read %s output: %w", c.Path, readErr)
	}
	return res, nil
}

func scanLines(r io.Reader, fn func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	return scanner.Err()
}

// tailBuffer keeps the last stderrTail lines.
type tailBuffer struct {
	lines []string
}

func (t *tailBuffer) add(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > stderrTail {
		t.lines = t.lines[len(t.lines)-stderrTail:]
	}
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(strings.Join(t.lines, "\n"))
}
