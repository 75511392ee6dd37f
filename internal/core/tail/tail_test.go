package tail_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/armlaunch/internal/core/tail"
)

// syncBuffer is a bytes.Buffer safe for a writer and a reader goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func appendLog(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestTailer_Print(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot_state_publisher.log")

	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	appendLog(t, path, strings.Join(lines, "\n")+"\n")

	tests := []struct {
		name     string
		maxLines int
		want     string
	}{
		{
			name:     "fits",
			maxLines: 20,
			want:     strings.Join(lines, "\n") + "\n",
		},
		{
			name:     "truncated",
			maxLines: 3,
			want:     "... (showing last 3 lines) ...\nline 8\nline 9\nline 10\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			n, err := tail.New(path, nil, tail.Options{Writer: &out, MaxLines: tt.maxLines}).Print()
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
			assert.Positive(t, n)
		})
	}
}

func TestTailer_PrintMissingFile(t *testing.T) {
	var out bytes.Buffer
	n, err := tail.New(filepath.Join(t.TempDir(), "missing.log"), nil, tail.Options{Writer: &out, MaxLines: 5}).Print()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, out.String())
}

func TestTailer_Follow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ros2_control_node.log")
	appendLog(t, path, "first\n")

	var running atomic.Bool
	running.Store(true)

	out := &syncBuffer{}
	tailer := tail.New(path, func(context.Context) bool { return running.Load() }, tail.Options{
		Writer:       out,
		PollInterval: 10 * time.Millisecond,
		MaxLines:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- tailer.Follow(ctx) }()

	require.Eventually(t, func() bool { return out.String() == "first\n" }, time.Second, 5*time.Millisecond)

	appendLog(t, path, "second\n")
	require.Eventually(t, func() bool { return out.String() == "first\nsecond\n" }, time.Second, 5*time.Millisecond)

	appendLog(t, path, "last\n")
	running.Store(false)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("Follow did not return after the writer stopped")
	}
	assert.Equal(t, "first\nsecond\nlast\n", out.String())
}

func TestTailer_FollowCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spawner.log")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- tail.FollowFunc(ctx, path, func(context.Context) bool { return true }, &syncBuffer{})
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}
