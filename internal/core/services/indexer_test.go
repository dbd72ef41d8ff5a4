package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/search/bm25"
	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/storage/memory"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
)

// stubExtractor reads plaintext files and fails on paths listed in broken.
type stubExtractor struct {
	broken map[string]bool
}

func (e *stubExtractor) Supports(path string) bool {
	return filepath.Ext(path) == ".txt"
}

func (e *stubExtractor) Extract(_ context.Context, path string) (string, error) {
	if e.broken[path] {
		return "", fmt.Errorf("%w: unreadable encoding", domain.ErrConversion)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrConversion, err)
	}
	return string(data), nil
}

// memorySnapshots is an in-memory driven.SnapshotStore for tests.
type memorySnapshots struct {
	mu   sync.Mutex
	snap *driven.IndexSnapshot
}

func (s *memorySnapshots) Save(_ context.Context, snap *driven.IndexSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	return nil
}

func (s *memorySnapshots) Load(_ context.Context) (*driven.IndexSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, domain.ErrNotFound
	}
	if s.snap.Version != driven.SnapshotVersion {
		return nil, domain.ErrSnapshotVersion
	}
	return s.snap, nil
}

func (s *memorySnapshots) Close() error { return nil }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestManager(t *testing.T, dir string, extractor driven.TextExtractor, snapshots driven.SnapshotStore) *IndexManager {
	t.Helper()
	s := domain.DefaultSettings()
	s.WatchFolder = dir
	s.Chunking.ChunkTokens = 50
	s.Chunking.OverlapTokens = 10
	if extractor == nil {
		extractor = &stubExtractor{}
	}
	return NewIndexManager(s, memory.NewDocumentStore(), bm25.New(), extractor, snapshots, nil)
}

func TestIndexManagerScan(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes supported files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "notes.txt", "Paris is the capital of France.")
		writeFile(t, dir, "image.png", "binary noise")

		mgr := newTestManager(t, dir, nil, nil)
		report, err := mgr.Scan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.FilesSeen)
		assert.Equal(t, 1, report.Indexed)
		assert.Zero(t, report.Skipped)
		assert.Positive(t, report.ChunkCount)
	})

	t.Run("skips hidden directories", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "visible.txt", "indexed content")
		writeFile(t, dir, ".git/hidden.txt", "never indexed")

		mgr := newTestManager(t, dir, nil, nil)
		report, err := mgr.Scan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.FilesSeen)
	})

	t.Run("unchanged file is not re-indexed", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "stable.txt", "content that does not change")

		mgr := newTestManager(t, dir, nil, nil)
		first, err := mgr.Scan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Indexed)

		second, err := mgr.Scan(ctx)
		require.NoError(t, err)
		assert.Zero(t, second.Indexed)
		assert.Equal(t, first.ChunkCount, second.ChunkCount)
	})

	t.Run("changed file is re-chunked without ghosts", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "doc.txt", "the walrus lives in the arctic ocean")

		mgr := newTestManager(t, dir, nil, nil)
		_, err := mgr.Scan(ctx)
		require.NoError(t, err)

		hits, err := mgr.Query(ctx, "walrus", 5)
		require.NoError(t, err)
		require.NotEmpty(t, hits)

		require.NoError(t, os.WriteFile(path, []byte("the penguin lives in antarctica"), 0o644))
		report, err := mgr.Scan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Indexed)

		hits, err = mgr.Query(ctx, "walrus", 5)
		require.NoError(t, err)
		assert.Empty(t, hits, "stale terms must not match after re-index")

		hits, err = mgr.Query(ctx, "penguin", 5)
		require.NoError(t, err)
		assert.NotEmpty(t, hits)
	})

	t.Run("vanished file is dropped", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "fleeting.txt", "temporary knowledge about quasars")

		mgr := newTestManager(t, dir, nil, nil)
		_, err := mgr.Scan(ctx)
		require.NoError(t, err)

		require.NoError(t, os.Remove(path))
		report, err := mgr.Scan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Removed)
		assert.Zero(t, report.ChunkCount)

		hits, err := mgr.Query(ctx, "quasars", 5)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("conversion failure skips file and continues", func(t *testing.T) {
		dir := t.TempDir()
		broken := writeFile(t, dir, "broken.txt", "ignored")
		writeFile(t, dir, "fine.txt", "healthy document about gardens")

		mgr := newTestManager(t, dir, &stubExtractor{broken: map[string]bool{broken: true}}, nil)
		report, err := mgr.Scan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, report.FilesSeen)
		assert.Equal(t, 1, report.Indexed)
		assert.Equal(t, 1, report.Skipped)

		hits, err := mgr.Query(ctx, "gardens", 5)
		require.NoError(t, err)
		assert.NotEmpty(t, hits)
	})

	t.Run("concurrent scan is rejected", func(t *testing.T) {
		dir := t.TempDir()
		mgr := newTestManager(t, dir, nil, nil)

		mgr.mu.Lock()
		mgr.scanning = true
		mgr.mu.Unlock()

		_, err := mgr.Scan(ctx)
		assert.ErrorIs(t, err, domain.ErrScanInProgress)
	})
}

func TestIndexManagerQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("empty index returns empty slice", func(t *testing.T) {
		mgr := newTestManager(t, t.TempDir(), nil, nil)
		hits, err := mgr.Query(ctx, "anything", 5)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("hydrates chunks with content and path", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "notes.txt", "Paris is the capital of France.")

		mgr := newTestManager(t, dir, nil, nil)
		_, err := mgr.Scan(ctx)
		require.NoError(t, err)

		hits, err := mgr.Query(ctx, "What is the capital of France?", 5)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Contains(t, hits[0].Chunk.Content, "Paris is the capital of France.")
		assert.Equal(t, path, hits[0].Path)
		assert.Positive(t, hits[0].Score)
	})

	t.Run("most relevant document ranks first", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "capitals.txt", "Paris is the capital of France. Berlin is the capital of Germany.")
		writeFile(t, dir, "cooking.txt", "Slice the onions finely and fry them until golden.")

		mgr := newTestManager(t, dir, nil, nil)
		_, err := mgr.Scan(ctx)
		require.NoError(t, err)

		hits, err := mgr.Query(ctx, "capital of France", 2)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.True(t, strings.HasSuffix(hits[0].Path, "capitals.txt"))
	})
}

func TestIndexManagerSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("scan persists and restore rebuilds", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "facts.txt", "The Nile is the longest river in Africa.")

		snapshots := &memorySnapshots{}
		mgr := newTestManager(t, dir, nil, snapshots)
		_, err := mgr.Scan(ctx)
		require.NoError(t, err)
		require.NotNil(t, snapshots.snap)

		// A fresh manager sharing only the snapshot store.
		restored := newTestManager(t, dir, nil, snapshots)
		require.NoError(t, restored.Restore(ctx))

		hits, err := restored.Query(ctx, "longest river", 5)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Contains(t, hits[0].Chunk.Content, "Nile")
	})

	t.Run("emptied file leaves no trace after restore", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "draft.txt", "zanzibar spice markets at dawn")

		snapshots := &memorySnapshots{}
		mgr := newTestManager(t, dir, nil, snapshots)
		_, err := mgr.Scan(ctx)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, nil, 0o644))
		_, err = mgr.Scan(ctx)
		require.NoError(t, err)

		hits, err := mgr.Query(ctx, "zanzibar", 5)
		require.NoError(t, err)
		require.Empty(t, hits)

		restored := newTestManager(t, dir, nil, snapshots)
		require.NoError(t, restored.Restore(ctx))

		hits, err = restored.Query(ctx, "zanzibar", 5)
		require.NoError(t, err)
		assert.Empty(t, hits, "truncated file must not resurface from the snapshot")
	})

	t.Run("incompatible snapshot version is discarded", func(t *testing.T) {
		snapshots := &memorySnapshots{snap: &driven.IndexSnapshot{Version: driven.SnapshotVersion + 1}}
		mgr := newTestManager(t, t.TempDir(), nil, snapshots)
		assert.NoError(t, mgr.Restore(ctx))
	})

	t.Run("missing snapshot is not an error", func(t *testing.T) {
		mgr := newTestManager(t, t.TempDir(), nil, &memorySnapshots{})
		assert.NoError(t, mgr.Restore(ctx))
	})
}
