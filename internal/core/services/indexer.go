package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clipbrd-labs/clipbrd-cli/internal/chunker"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driving"
	"github.com/clipbrd-labs/clipbrd-cli/internal/logger"
)

// Ensure IndexManager implements the interface.
var _ driving.IndexManager = (*IndexManager)(nil)

// IndexManager keeps the lexical index synchronized with the watched
// folder. Scans run as a background task; queries may run concurrently with
// a scan (the index guarantees per-chunk atomicity).
type IndexManager struct {
	settings  domain.Settings
	docStore  driven.DocumentStore
	index     driven.SearchIndex
	extractor driven.TextExtractor
	splitter  *chunker.Chunker

	// Optional collaborators.
	snapshots driven.SnapshotStore
	watcher   driven.FolderWatcher

	mu       sync.Mutex
	scanning bool
}

// NewIndexManager creates an index manager. The snapshots and watcher
// collaborators are optional (can be nil).
func NewIndexManager(
	settings domain.Settings,
	docStore driven.DocumentStore,
	index driven.SearchIndex,
	extractor driven.TextExtractor,
	snapshots driven.SnapshotStore,
	watcher driven.FolderWatcher,
) *IndexManager {
	return &IndexManager{
		settings:  settings,
		docStore:  docStore,
		index:     index,
		extractor: extractor,
		splitter: chunker.New(
			chunker.WithChunkTokens(settings.Chunking.ChunkTokens),
			chunker.WithOverlapTokens(settings.Chunking.OverlapTokens),
		),
		snapshots: snapshots,
		watcher:   watcher,
	}
}

// Restore loads a persisted snapshot into the store and the index.
// A missing or version-incompatible snapshot is not an error: the next scan
// rebuilds from the filesystem.
func (m *IndexManager) Restore(ctx context.Context) error {
	if m.snapshots == nil {
		return nil
	}

	snap, err := m.snapshots.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("No index snapshot to restore")
			return nil
		}
		if errors.Is(err, domain.ErrSnapshotVersion) {
			logger.Warn("Discarding incompatible index snapshot: %v", err)
			return nil
		}
		return fmt.Errorf("load snapshot: %w", err)
	}

	for i := range snap.Documents {
		if err := m.docStore.SaveDocument(ctx, &snap.Documents[i]); err != nil {
			return fmt.Errorf("restore document: %w", err)
		}
	}

	byDoc := make(map[string][]domain.Chunk)
	for _, chunk := range snap.Chunks {
		byDoc[chunk.DocumentID] = append(byDoc[chunk.DocumentID], chunk)
		if err := m.index.Add(ctx, chunk); err != nil {
			return fmt.Errorf("restore chunk: %w", err)
		}
	}
	for docID, chunks := range byDoc {
		if err := m.docStore.SaveChunks(ctx, docID, chunks); err != nil {
			return fmt.Errorf("restore chunks: %w", err)
		}
	}

	logger.Info("Restored snapshot: %d documents, %d chunks", len(snap.Documents), len(snap.Chunks))
	return nil
}

// Scan enumerates the watched folder once and reconciles the index with it.
// Per-file conversion failures are skipped and counted; they never abort the
// scan. Returns domain.ErrScanInProgress if a scan is already running.
func (m *IndexManager) Scan(ctx context.Context) (*driving.ScanReport, error) {
	m.mu.Lock()
	if m.scanning {
		m.mu.Unlock()
		return nil, domain.ErrScanInProgress
	}
	m.scanning = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.scanning = false
		m.mu.Unlock()
	}()

	logger.Section("Index Scan")
	report := &driving.ScanReport{}
	seen := make(map[string]bool)

	err := filepath.WalkDir(m.settings.WatchFolder, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("Scan: cannot access %s: %v", path, walkErr)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if entry.IsDir() {
			// Hidden directories are not part of the corpus.
			if name := entry.Name(); strings.HasPrefix(name, ".") && path != m.settings.WatchFolder {
				return fs.SkipDir
			}
			return nil
		}

		if !m.extractor.Supports(path) {
			return nil
		}

		report.FilesSeen++
		seen[path] = true

		if err := m.syncFile(ctx, path, report); err != nil {
			logger.Warn("Scan: skipping %s: %v", path, err)
			report.Skipped++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", m.settings.WatchFolder, err)
	}

	if err := m.removeVanished(ctx, seen, report); err != nil {
		return nil, err
	}

	report.ChunkCount = m.index.Len()
	logger.Info("Scan complete: %d seen, %d indexed, %d removed, %d skipped, %d chunks",
		report.FilesSeen, report.Indexed, report.Removed, report.Skipped, report.ChunkCount)

	m.persistSnapshot(ctx)
	return report, nil
}

// syncFile re-indexes one file if its content hash changed.
func (m *IndexManager) syncFile(ctx context.Context, path string, report *driving.ScanReport) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	hash, err := hashFile(path)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	existing, err := m.docStore.GetDocumentByPath(ctx, path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup: %w", err)
	}
	if existing != nil && existing.ContentHash == hash {
		return nil // Unchanged
	}

	text, err := m.extractor.Extract(ctx, path)
	if err != nil {
		return err
	}

	doc := domain.Document{
		ID:          uuid.New().String(),
		Path:        path,
		ContentHash: hash,
		ModifiedAt:  info.ModTime(),
		IndexedAt:   time.Now(),
	}
	if existing != nil {
		doc.ID = existing.ID
	}

	chunks := m.splitter.Split(text, doc.ID)
	doc.ChunkIDs = make([]string, len(chunks))
	for i, chunk := range chunks {
		doc.ChunkIDs[i] = chunk.ID
	}

	// Drop the old chunks first so a query never sees both generations.
	if existing != nil {
		for _, chunkID := range existing.ChunkIDs {
			if err := m.index.Remove(ctx, chunkID); err != nil {
				return fmt.Errorf("remove chunk: %w", err)
			}
		}
	}

	if err := m.docStore.SaveDocument(ctx, &doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if err := m.docStore.SaveChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	for _, chunk := range chunks {
		if err := m.index.Add(ctx, chunk); err != nil {
			return fmt.Errorf("index chunk: %w", err)
		}
	}

	logger.Debug("Indexed %s: %d chunks", path, len(chunks))
	report.Indexed++
	return nil
}

// removeVanished drops documents whose files no longer exist.
func (m *IndexManager) removeVanished(ctx context.Context, seen map[string]bool, report *driving.ScanReport) error {
	docs, err := m.docStore.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	for i := range docs {
		if seen[docs[i].Path] {
			continue
		}
		logger.Debug("Removing vanished document: %s", docs[i].Path)
		for _, chunkID := range docs[i].ChunkIDs {
			if err := m.index.Remove(ctx, chunkID); err != nil {
				return fmt.Errorf("remove chunk: %w", err)
			}
		}
		if err := m.docStore.DeleteDocument(ctx, docs[i].ID); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		report.Removed++
	}
	return nil
}

// persistSnapshot saves the current state for fast restart. Best effort.
func (m *IndexManager) persistSnapshot(ctx context.Context) {
	if m.snapshots == nil {
		return
	}

	docs, err := m.docStore.ListDocuments(ctx)
	if err != nil {
		logger.Warn("Snapshot: list documents: %v", err)
		return
	}

	snap := &driven.IndexSnapshot{
		Version:   driven.SnapshotVersion,
		Documents: docs,
	}
	for i := range docs {
		chunks, err := m.docStore.GetChunks(ctx, docs[i].ID)
		if err != nil {
			logger.Warn("Snapshot: chunks for %s: %v", docs[i].Path, err)
			return
		}
		snap.Chunks = append(snap.Chunks, chunks...)
	}

	if err := m.snapshots.Save(ctx, snap); err != nil {
		logger.Warn("Snapshot save failed: %v", err)
		return
	}
	logger.Debug("Snapshot saved: %d documents, %d chunks", len(snap.Documents), len(snap.Chunks))
}

// Query returns the top-k context chunks for text, bounded by the retrieval
// timeout. A timeout wraps domain.ErrRetrievalTimeout; callers treat it as
// empty context.
func (m *IndexManager) Query(ctx context.Context, text string, k int) ([]driving.ContextChunk, error) {
	if m.settings.Retrieval.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.settings.Retrieval.Timeout)
		defer cancel()
	}

	hits, err := m.index.Query(ctx, text, k)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalTimeout, err)
		}
		return nil, fmt.Errorf("query index: %w", err)
	}

	results := make([]driving.ContextChunk, 0, len(hits))
	for _, hit := range hits {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalTimeout, ctx.Err())
		}

		chunk, err := m.docStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue // Chunk dropped between query and hydration
			}
			return nil, fmt.Errorf("get chunk %s: %w", hit.ChunkID, err)
		}

		path := ""
		if doc, err := m.docStore.GetDocument(ctx, chunk.DocumentID); err == nil {
			path = doc.Path
		}

		results = append(results, driving.ContextChunk{
			Chunk: *chunk,
			Score: hit.Score,
			Path:  path,
		})
	}

	return results, nil
}

// Start restores the snapshot, runs an initial scan, then keeps the index
// fresh from filesystem notifications and a periodic timer until the
// context is cancelled.
func (m *IndexManager) Start(ctx context.Context) error {
	if err := m.Restore(ctx); err != nil {
		logger.Warn("Snapshot restore failed, rebuilding from scratch: %v", err)
	}

	if _, err := m.Scan(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Initial scan failed: %v", err)
	}

	var changes <-chan struct{}
	if m.watcher != nil {
		ch, err := m.watcher.Watch(ctx, m.settings.WatchFolder)
		if err != nil {
			logger.Warn("Folder watcher unavailable, relying on periodic rescans: %v", err)
		} else {
			changes = ch
		}
	}

	interval := m.settings.ScanInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			m.rescan(ctx, "filesystem change")
		case <-ticker.C:
			m.rescan(ctx, "timer")
		}
	}
}

// rescan runs one scan, tolerating overlap with a scan already in flight.
func (m *IndexManager) rescan(ctx context.Context, reason string) {
	logger.Debug("Rescan triggered by %s", reason)
	if _, err := m.Scan(ctx); err != nil {
		if errors.Is(err, domain.ErrScanInProgress) || errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("Rescan failed: %v", err)
	}
}

// hashFile computes the SHA-256 hex digest of a file's content.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
