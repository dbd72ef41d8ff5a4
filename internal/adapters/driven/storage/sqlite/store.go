// Package sqlite provides persistent storage backed by a local SQLite
// database. It implements both the document store and the index snapshot
// store over the same schema, so a restart can rebuild the index without
// rescanning the corpus.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
)

// snapshotVersionKey is the snapshot_meta key holding the schema version.
const snapshotVersionKey = "snapshot_version"

// Store is a SQLite-based storage that provides access to the document and
// snapshot store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.clipbrd/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".clipbrd", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// SnapshotStore returns a SnapshotStore interface backed by this store.
func (s *Store) SnapshotStore() driven.SnapshotStore {
	return &snapshotStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// A path can only belong to one document.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM documents WHERE path = ? AND id != ?", doc.Path, doc.ID); err != nil {
		return fmt.Errorf("clearing stale path owner: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, path, content_hash, modified_at, indexed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			content_hash = excluded.content_hash,
			modified_at = excluded.modified_at,
			indexed_at = excluded.indexed_at
	`, doc.ID, doc.Path, doc.ContentHash, doc.ModifiedAt, doc.IndexedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SaveChunks stores chunks for a document, replacing any previous set.
// An empty set clears the document's chunks.
func (s *documentStore) SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, tokens, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		tokensJSON, err := json.Marshal(chunk.Tokens)
		if err != nil {
			return fmt.Errorf("marshalling chunk tokens: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID,
			chunk.Content, string(tokensJSON), chunk.Position); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, path, content_hash, modified_at, indexed_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	doc.ChunkIDs, err = s.chunkIDs(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocumentByPath retrieves a document by its filesystem path.
func (s *documentStore) GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, path, content_hash, modified_at, indexed_at
		FROM documents WHERE path = ?
	`, path)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	doc.ChunkIDs, err = s.chunkIDs(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns all tracked documents.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, path, content_hash, modified_at, indexed_at
		FROM documents
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Path, &doc.ContentHash,
			&doc.ModifiedAt, &doc.IndexedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	for i := range docs {
		docs[i].ChunkIDs, err = s.chunkIDs(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// DeleteDocument removes a document and its chunks.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, content, tokens, position
		FROM chunks WHERE id = ?
	`, id)

	return scanChunkRow(row)
}

// GetChunks retrieves all chunks for a document.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, content, tokens, position
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// chunkIDs returns the ordered chunk IDs for a document.
func (s *documentStore) chunkIDs(ctx context.Context, documentID string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id FROM chunks WHERE document_id = ? ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunk ids: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk ids: %w", err)
	}
	return ids, nil
}

// ==================== Snapshot Store ====================

// snapshotStore implements driven.SnapshotStore over the same tables as the
// document store. Save replaces the whole persisted state atomically.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// Save persists a snapshot, replacing any previous one.
func (s *snapshotStore) Save(ctx context.Context, snap *driven.IndexSnapshot) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}

	for i := range snap.Documents {
		doc := &snap.Documents[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, path, content_hash, modified_at, indexed_at)
			VALUES (?, ?, ?, ?, ?)
		`, doc.ID, doc.Path, doc.ContentHash, doc.ModifiedAt, doc.IndexedAt); err != nil {
			return fmt.Errorf("saving document: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, tokens, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range snap.Chunks {
		tokensJSON, err := json.Marshal(chunk.Tokens)
		if err != nil {
			return fmt.Errorf("marshalling chunk tokens: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID,
			chunk.Content, string(tokensJSON), chunk.Position); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, snapshotVersionKey, strconv.Itoa(snap.Version)); err != nil {
		return fmt.Errorf("saving snapshot version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load returns the persisted snapshot. Returns domain.ErrNotFound when no
// snapshot exists and domain.ErrSnapshotVersion on a version mismatch.
func (s *snapshotStore) Load(ctx context.Context) (*driven.IndexSnapshot, error) {
	var versionStr string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT value FROM snapshot_meta WHERE key = ?", snapshotVersionKey).Scan(&versionStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading snapshot version: %w", err)
	}

	version, err := strconv.Atoi(versionStr)
	if err != nil {
		return nil, fmt.Errorf("%w: unparsable version %q", domain.ErrSnapshotVersion, versionStr)
	}
	if version != driven.SnapshotVersion {
		return nil, fmt.Errorf("%w: stored %d, want %d",
			domain.ErrSnapshotVersion, version, driven.SnapshotVersion)
	}

	snap := &driven.IndexSnapshot{Version: version}

	docRows, err := s.store.db.QueryContext(ctx, `
		SELECT id, path, content_hash, modified_at, indexed_at FROM documents
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer docRows.Close()

	for docRows.Next() {
		var doc domain.Document
		if err := docRows.Scan(&doc.ID, &doc.Path, &doc.ContentHash,
			&doc.ModifiedAt, &doc.IndexedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		snap.Documents = append(snap.Documents, doc)
	}
	if err := docRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	chunkRows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, content, tokens, position
		FROM chunks ORDER BY document_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer chunkRows.Close()

	chunkIDs := make(map[string][]string)
	for chunkRows.Next() {
		chunk, err := scanChunk(chunkRows)
		if err != nil {
			return nil, err
		}
		snap.Chunks = append(snap.Chunks, *chunk)
		chunkIDs[chunk.DocumentID] = append(chunkIDs[chunk.DocumentID], chunk.ID)
	}
	if err := chunkRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	for i := range snap.Documents {
		snap.Documents[i].ChunkIDs = chunkIDs[snap.Documents[i].ID]
	}

	return snap, nil
}

// Close is a no-op; the owning Store manages the connection.
func (s *snapshotStore) Close() error {
	return nil
}

// ==================== Helper Functions ====================

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.Path, &doc.ContentHash,
		&doc.ModifiedAt, &doc.IndexedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return &doc, nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var tokensJSON string
	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
		&tokensJSON, &chunk.Position); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	if err := json.Unmarshal([]byte(tokensJSON), &chunk.Tokens); err != nil {
		return nil, fmt.Errorf("unmarshaling chunk tokens: %w", err)
	}
	return &chunk, nil
}

// scanChunkRow scans a chunk from *sql.Row.
func scanChunkRow(row *sql.Row) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var tokensJSON string
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
		&tokensJSON, &chunk.Position); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	if err := json.Unmarshal([]byte(tokensJSON), &chunk.Tokens); err != nil {
		return nil, fmt.Errorf("unmarshaling chunk tokens: %w", err)
	}
	return &chunk, nil
}
