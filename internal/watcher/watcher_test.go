package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestWatchReportsWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	var calls atomic.Int32
	w := New(path, func() { calls.Add(1) }, zaptest.NewLogger(t)).WithDebounce(30 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Keep writing until the watcher is running, then let it settle
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(`{"nodes":[]}`), 0o644)
		return calls.Load() > 0
	}, 2*time.Second, 50*time.Millisecond)

	// Let the warm-up writes settle
	time.Sleep(150 * time.Millisecond)

	// A burst of writes is reported once
	before := calls.Load()
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	}
	require.Eventually(t, func() bool { return calls.Load() > before }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	settled := calls.Load()
	assert.Equal(t, before+1, settled)

	// Other files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, settled, calls.Load())

	cancel()
	assert.NoError(t, <-done)
}

func TestWatchMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "gone", "pipeline.json"), func() {}, nil)
	assert.Error(t, w.Watch(context.Background()))
}
