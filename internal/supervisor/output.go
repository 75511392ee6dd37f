package supervisor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"

	"github.com/aki/armlaunch/internal/launch"
)

// prefixWriter writes complete lines to out, each prefixed with the entity
// name. Writers sharing mu never interleave within a line.
type prefixWriter struct {
	mu     *sync.Mutex
	out    io.Writer
	prefix string
	buf    []byte
}

func newPrefixWriter(mu *sync.Mutex, out io.Writer, name string) *prefixWriter {
	return &prefixWriter{mu: mu, out: out, prefix: fmt.Sprintf("[%s] ", name)}
}

func (w *prefixWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		if err := w.emit(w.buf[:i+1]); err != nil {
			return len(p), err
		}
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *prefixWriter) emit(line []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintf(w.out, "%s%s", w.prefix, line)
	return err
}

// Close flushes a trailing partial line
func (w *prefixWriter) Close() error {
	if len(w.buf) == 0 {
		return nil
	}
	line := append(w.buf, '\n')
	w.buf = nil
	return w.emit(line)
}

// outputs holds the writers of one entity for the whole run
type outputs struct {
	stdout  io.Writer
	stderr  io.Writer
	logFile string
	closers []io.Closer
}

func (o *outputs) Close() error {
	var err error
	for _, c := range o.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// openOutputs builds the stdout and stderr destinations of an entity from
// its output policy. Log output goes to <logDir>/<name>.log, shared by both
// streams.
func (s *Supervisor) openOutputs(e *launch.Entity, logDir string) (*outputs, error) {
	o := &outputs{}

	var logWriter io.Writer
	if e.Output.Stdout.Log() || e.Output.Stderr.Log() {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		o.logFile = filepath.Join(logDir, e.Name+".log")
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		o.closers = append(o.closers, f)
		logWriter = &syncWriter{w: f}
	}

	build := func(target launch.OutputTarget, screen io.Writer) io.Writer {
		var ws []io.Writer
		if target.Screen() {
			pw := newPrefixWriter(&s.screenMu, screen, e.Name)
			o.closers = append([]io.Closer{pw}, o.closers...)
			ws = append(ws, pw)
		}
		if target.Log() && logWriter != nil {
			ws = append(ws, logWriter)
		}
		switch len(ws) {
		case 0:
			return nil
		case 1:
			return ws[0]
		default:
			return io.MultiWriter(ws...)
		}
	}

	o.stdout = build(e.Output.Stdout, s.stdout)
	o.stderr = build(e.Output.Stderr, s.stderr)
	return o, nil
}

// syncWriter serializes writes from the stdout and stderr copiers
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
