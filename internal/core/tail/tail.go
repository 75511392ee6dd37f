// Package tail provides log tailing for entity log files.
package tail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
)

// Options configures the tail behavior
type Options struct {
	// PollInterval is how often to check for new output
	PollInterval time.Duration
	// Writer is where to write the output
	Writer io.Writer
	// MaxLines limits the number of initial lines to display
	MaxLines int
}

// DefaultOptions returns default tail options
func DefaultOptions() Options {
	return Options{
		PollInterval: 500 * time.Millisecond,
		MaxLines:     0, // 0 means auto-detect based on terminal size
	}
}

// RunningFunc reports whether the writer of a log may still append to it
type RunningFunc func(ctx context.Context) bool

// Tailer streams a log file
type Tailer struct {
	path    string
	running RunningFunc
	opts    Options
}

// New creates a new Tailer for a log file
func New(path string, running RunningFunc, opts Options) *Tailer {
	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultOptions().PollInterval
	}
	if running == nil {
		running = func(context.Context) bool { return false }
	}
	return &Tailer{
		path:    path,
		running: running,
		opts:    opts,
	}
}

// Print writes the last lines of the log
func (t *Tailer) Print() (int64, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read log: %w", err)
	}

	if t.opts.Writer != nil && len(data) > 0 {
		if _, err := t.opts.Writer.Write(t.processOutput(data)); err != nil {
			return 0, fmt.Errorf("failed to write output: %w", err)
		}
	}
	return int64(len(data)), nil
}

// Follow prints the last lines of the log, then streams appended output
// until the context is cancelled or the writer stops running
func (t *Tailer) Follow(ctx context.Context) error {
	offset, err := t.Print()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(t.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Check before reading so the final output is not lost
			running := t.running(ctx)

			offset, err = t.copyFrom(offset)
			if err != nil {
				return err
			}
			if !running {
				return nil
			}
		}
	}
}

// copyFrom writes everything past offset and returns the new offset. A
// file shorter than offset was truncated and is read from the start.
func (t *Tailer) copyFrom(offset int64) (int64, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return offset, nil
		}
		return offset, fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return offset, err
	}
	if info.Size() < offset {
		offset = 0
	}
	if info.Size() == offset {
		return offset, nil
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, err
	}
	w := t.opts.Writer
	if w == nil {
		w = io.Discard
	}
	n, err := io.Copy(w, f)
	if err != nil {
		return offset + n, fmt.Errorf("failed to write output: %w", err)
	}
	return offset + n, nil
}

// processOutput limits the output to the terminal height
func (t *Tailer) processOutput(output []byte) []byte {
	maxLines := t.opts.MaxLines
	if maxLines == 0 {
		_, height, err := term.GetSize(os.Stdout.Fd())
		if err != nil || height < 10 {
			maxLines = 30
		} else {
			// Reserve 2 lines for status info
			maxLines = height - 2
		}
	}

	lines := bytes.Split(bytes.TrimSuffix(output, []byte("\n")), []byte("\n"))
	if len(lines) <= maxLines {
		return output
	}

	start := len(lines) - maxLines
	limited := append(bytes.Join(lines[start:], []byte("\n")), '\n')

	header := fmt.Sprintf("... (showing last %d lines) ...\n", maxLines)
	return append([]byte(header), limited...)
}

// FollowFunc is a convenience function that follows a log with default options
func FollowFunc(ctx context.Context, path string, running RunningFunc, w io.Writer) error {
	opts := DefaultOptions()
	opts.Writer = w
	return New(path, running, opts).Follow(ctx)
}
