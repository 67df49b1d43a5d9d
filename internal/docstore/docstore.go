// Package docstore implements the asynchronous document store. Document
// payloads are large (file contents), so they live in SQLite rather than in
// the key-value store's one-JSON-file-per-key model.
package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/kvstore"
	"github.com/hpungsan/profreach/internal/notify"
	"github.com/hpungsan/profreach/internal/outreach"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Store provides CRUD over the documents collection. The underlying
// connection opens lazily on first use; concurrent first calls share one
// connection. On first access, legacy documents still sitting in the
// key-value store are moved in (once per process).
type Store struct {
	path      string
	kv        *kvstore.Store
	bus       *notify.Bus
	legacyKey string

	openOnce sync.Once
	db       *sql.DB
	openErr  error

	migrateOnce   sync.Once
	migrateErr    error
	legacyPending atomic.Bool
}

// New creates a store backed by the SQLite database at path. legacyKey is
// the key-value key documents were stored under before this store existed.
// Nothing is opened until the first operation.
func New(path string, kv *kvstore.Store, bus *notify.Bus, legacyKey string) *Store {
	return &Store{path: path, kv: kv, bus: bus, legacyKey: legacyKey}
}

// conn returns the shared connection, opening and migrating on first call.
func (s *Store) conn(ctx context.Context) (*sql.DB, error) {
	s.openOnce.Do(func() {
		dsn := s.path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			s.openErr = fmt.Errorf("failed to open document store: %w", err)
			return
		}
		if err := migrateSchema(db); err != nil {
			db.Close()
			s.openErr = err
			return
		}
		s.db = db
	})
	if s.openErr != nil {
		return nil, errors.NewInternal(s.openErr)
	}

	// Legacy key-value documents move in exactly once per process. Every
	// early caller blocks on the same migration; its error is memoized so a
	// failed move is not silently retried with interleaved writes.
	s.migrateOnce.Do(func() {
		s.migrateErr = s.migrateLegacy(ctx)
	})
	if s.migrateErr != nil {
		return nil, s.migrateErr
	}

	// The legacy key's removal publishes on the bus, so it runs outside the
	// once: a subscriber that re-reads documents synchronously must not
	// re-enter an in-flight migration.
	if s.legacyPending.CompareAndSwap(true, false) {
		if err := kvstore.Delete(s.kv, s.legacyKey); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	return s.db, nil
}

// migrateLegacy copies documents from the key-value store into SQLite and
// marks the legacy key for removal. A no-op when the key is absent.
func (s *Store) migrateLegacy(ctx context.Context) error {
	if s.kv == nil || !kvstore.Has(s.kv, s.legacyKey) {
		return nil
	}

	var legacy []outreach.Document
	kvstore.Get(s.kv, s.legacyKey, &legacy)

	if len(legacy) > 0 {
		if err := s.replaceAll(ctx, legacy); err != nil {
			return err
		}
	}
	s.legacyPending.Store(true)
	return nil
}

// GetAll returns every stored document in id order.
func (s *Store) GetAll(ctx context.Context) ([]outreach.Document, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, category, content, mime_type, size, created_at
		FROM documents
		ORDER BY id
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	docs := make([]outreach.Document, 0)
	for rows.Next() {
		var d outreach.Document
		if err := rows.Scan(&d.ID, &d.Name, &d.Category, &d.Content, &d.MimeType, &d.Size, &d.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return docs, nil
}

// SaveAll replaces the whole collection in one transaction: clear, then bulk
// insert. The commit is awaited; an abort propagates as a failure.
func (s *Store) SaveAll(ctx context.Context, docs []outreach.Document) error {
	if _, err := s.conn(ctx); err != nil {
		return err
	}
	if err := s.replaceAll(ctx, docs); err != nil {
		return err
	}
	s.bus.Publish(s.legacyKey)
	return nil
}

// replaceAll is SaveAll without the notification, shared with migration.
func (s *Store) replaceAll(ctx context.Context, docs []outreach.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return errors.NewTransactionAborted(err)
	}
	for _, d := range docs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, name, category, content, mime_type, size, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, d.ID, d.Name, d.Category, d.Content, d.MimeType, d.Size, d.CreatedAt); err != nil {
			return errors.NewTransactionAborted(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewTransactionAborted(err)
	}
	return nil
}

// Add upserts one document by id.
func (s *Store) Add(ctx context.Context, d outreach.Document) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO documents (id, name, category, content, mime_type, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			content = excluded.content,
			mime_type = excluded.mime_type,
			size = excluded.size,
			created_at = excluded.created_at
	`, d.ID, d.Name, d.Category, d.Content, d.MimeType, d.Size, d.CreatedAt)
	if err != nil {
		return errors.NewTransactionAborted(err)
	}

	s.bus.Publish(s.legacyKey)
	return nil
}

// Delete removes one document by id. Deleting a missing id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return errors.NewTransactionAborted(err)
	}

	s.bus.Publish(s.legacyKey)
	return nil
}

// Close closes the underlying connection if one was opened.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// migrateSchema applies schema migrations based on user_version.
func migrateSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("failed to get user_version: %w", err)
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS documents (
		  id         TEXT PRIMARY KEY,
		  name       TEXT NOT NULL,
		  category   TEXT NOT NULL,
		  content    TEXT NOT NULL,
		  mime_type  TEXT NOT NULL,
		  size       INTEGER NOT NULL,
		  created_at TEXT NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", CurrentSchemaVersion)); err != nil {
			return fmt.Errorf("failed to set user_version: %w", err)
		}
	}

	return nil
}
