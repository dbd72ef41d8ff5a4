package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForSignal(t *testing.T, changes <-chan struct{}, timeout time.Duration) {
	t.Helper()
	select {
	case _, ok := <-changes:
		require.True(t, ok, "channel closed before signal")
	case <-time.After(timeout):
		t.Fatal("timeout waiting for change signal")
	}
}

func TestWatcherWatch(t *testing.T) {
	t.Run("signals after file creation", func(t *testing.T) {
		dir := t.TempDir()

		w := New(WithDebounce(50 * time.Millisecond))
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := w.Watch(ctx, dir)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "note.txt"), []byte("content"), 0644))

		waitForSignal(t, changes, 2*time.Second)
	})

	t.Run("coalesces a burst into one signal", func(t *testing.T) {
		dir := t.TempDir()

		w := New(WithDebounce(100 * time.Millisecond))
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := w.Watch(ctx, dir)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			name := filepath.Join(dir, "file"+string(rune('a'+i))+".txt")
			require.NoError(t, os.WriteFile(name, []byte("x"), 0644))
		}

		waitForSignal(t, changes, 2*time.Second)

		// The burst already settled, no second signal pending
		select {
		case <-changes:
			t.Fatal("expected a single coalesced signal")
		case <-time.After(300 * time.Millisecond):
		}
	})

	t.Run("signals after file modification", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "doc.md")
		require.NoError(t, os.WriteFile(target, []byte("initial"), 0644))

		w := New(WithDebounce(50 * time.Millisecond))
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := w.Watch(ctx, dir)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(target, []byte("modified"), 0644))

		waitForSignal(t, changes, 2*time.Second)
	})

	t.Run("signals after file deletion", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "gone.txt")
		require.NoError(t, os.WriteFile(target, []byte("delete me"), 0644))

		w := New(WithDebounce(50 * time.Millisecond))
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := w.Watch(ctx, dir)
		require.NoError(t, err)

		require.NoError(t, os.Remove(target))

		waitForSignal(t, changes, 2*time.Second)
	})

	t.Run("picks up files in new subdirectories", func(t *testing.T) {
		dir := t.TempDir()

		w := New(WithDebounce(50 * time.Millisecond))
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := w.Watch(ctx, dir)
		require.NoError(t, err)

		sub := filepath.Join(dir, "sub")
		require.NoError(t, os.Mkdir(sub, 0755))

		waitForSignal(t, changes, 2*time.Second)

		require.NoError(t, os.WriteFile(filepath.Join(sub, "nested.txt"), []byte("x"), 0644))

		waitForSignal(t, changes, 2*time.Second)
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		w := New()
		defer w.Close()

		changes, err := w.Watch(context.Background(), "/non/existent/path")

		assert.Error(t, err)
		assert.Nil(t, changes)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("returns error for a file path", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "file.txt")
		require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

		w := New()
		defer w.Close()

		_, err := w.Watch(context.Background(), target)
		assert.Error(t, err)
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		dir := t.TempDir()

		w := New()
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())

		changes, err := w.Watch(ctx, dir)
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("returns error when watcher is closed", func(t *testing.T) {
		w := New()
		require.NoError(t, w.Close())

		changes, err := w.Watch(context.Background(), t.TempDir())

		assert.Error(t, err)
		assert.Nil(t, changes)
		assert.Contains(t, err.Error(), "closed")
	})
}

func TestWatcherClose(t *testing.T) {
	t.Run("close is idempotent", func(t *testing.T) {
		w := New()

		assert.NoError(t, w.Close())
		assert.NoError(t, w.Close())
	})

	t.Run("close stops an active watch", func(t *testing.T) {
		dir := t.TempDir()

		w := New()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := w.Watch(ctx, dir)
		require.NoError(t, err)

		require.NoError(t, w.Close())

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after watcher close")
		}
	})
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden(".git"))
	assert.True(t, isHidden(".hidden.txt"))
	assert.False(t, isHidden("notes.txt"))
	assert.False(t, isHidden("."))
	assert.False(t, isHidden(".."))
}
