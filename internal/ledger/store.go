// Package ledger persists the upload index: one row per protocol message that
// carried media, keyed by event id. The ledger is the sole source of truth for
// eviction candidate selection; rows are created once at ingest, never
// mutated, and hard-deleted when the underlying message is redacted.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/catcord/sweeper/internal/media"
)

// Upload is a single tracked upload.
type Upload struct {
	EventID     string
	RoomID      string
	Sender      string
	Media       media.Ref
	Mimetype    string
	SizeBytes   int64
	TimestampMS int64
}

// IsImage reports whether the upload is classified as an image.
func (u Upload) IsImage() bool {
	return strings.HasPrefix(u.Mimetype, "image/")
}

// Store is a SQLite-backed upload ledger. It is made for a single process
// with a single writer; concurrent invocations of the job are serialized by
// the deployment, not by the store.
type Store struct {
	db   *sql.DB
	path string

	upsertStmt *sql.Stmt
	removeStmt *sql.Stmt
}

const schema = `
CREATE TABLE IF NOT EXISTS uploads (
	event_id     TEXT PRIMARY KEY,
	room_id      TEXT NOT NULL,
	sender       TEXT NOT NULL,
	authority    TEXT NOT NULL,
	media_id     TEXT NOT NULL,
	mimetype     TEXT NOT NULL DEFAULT '',
	size_bytes   INTEGER NOT NULL DEFAULT 0,
	timestamp_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_uploads_timestamp ON uploads (timestamp_ms);
`

const selectColumns = "event_id, room_id, sender, authority, media_id, mimetype, size_bytes, timestamp_ms"

// Open opens (creating if absent) the ledger database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) prepareStatements() error {
	var err error

	s.upsertStmt, err = s.db.Prepare(`
		INSERT OR IGNORE INTO uploads (event_id, room_id, sender, authority, media_id, mimetype, size_bytes, timestamp_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert statement: %w", err)
	}

	s.removeStmt, err = s.db.Prepare(`DELETE FROM uploads WHERE event_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare remove statement: %w", err)
	}

	return nil
}

// Upsert inserts the upload unless a row with the same event id already
// exists. Re-ingesting the same event across runs is a no-op; an existing row
// is never overwritten.
func (s *Store) Upsert(ctx context.Context, u Upload) error {
	if u.SizeBytes < 0 {
		u.SizeBytes = 0
	}
	_, err := s.upsertStmt.ExecContext(ctx,
		u.EventID, u.RoomID, u.Sender, u.Media.Authority, u.Media.MediaID, u.Mimetype, u.SizeBytes, u.TimestampMS)
	if err != nil {
		return fmt.Errorf("failed to upsert upload %s: %w", u.EventID, err)
	}
	return nil
}

// SelectForRetention returns every upload past its class cutoff, ordered for
// the retention sweep: non-image uploads before images, oldest first within
// each class, largest first among equal timestamps.
func (s *Store) SelectForRetention(ctx context.Context, cutoffImageMS, cutoffNonImageMS int64) ([]Upload, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM uploads
		WHERE (mimetype LIKE 'image/%' AND timestamp_ms < ?)
		   OR (mimetype NOT LIKE 'image/%' AND timestamp_ms < ?)
		ORDER BY (mimetype LIKE 'image/%') ASC, timestamp_ms ASC, size_bytes DESC`,
		cutoffImageMS, cutoffNonImageMS)
	if err != nil {
		return nil, fmt.Errorf("failed to select retention candidates: %w", err)
	}
	return scanUploads(rows)
}

// SelectForPressure returns every upload, ordered to maximize bytes freed per
// deletion: non-image uploads before images, largest first within each class,
// oldest first among equal sizes.
func (s *Store) SelectForPressure(ctx context.Context) ([]Upload, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM uploads
		ORDER BY (mimetype LIKE 'image/%') ASC, size_bytes DESC, timestamp_ms ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select pressure candidates: %w", err)
	}
	return scanUploads(rows)
}

// Remove hard-deletes the row for event id. Removing an absent row is a
// no-op; callers only remove after a successful redaction, so an orphan row
// left by a crash is simply retried on the next run.
func (s *Store) Remove(ctx context.Context, eventID string) error {
	if _, err := s.removeStmt.ExecContext(ctx, eventID); err != nil {
		return fmt.Errorf("failed to remove upload %s: %w", eventID, err)
	}
	return nil
}

// Count returns the number of tracked uploads.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM uploads`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count uploads: %w", err)
	}
	return n, nil
}

// Close releases prepared statements and the database handle.
func (s *Store) Close() error {
	if s.upsertStmt != nil {
		s.upsertStmt.Close()
	}
	if s.removeStmt != nil {
		s.removeStmt.Close()
	}
	return s.db.Close()
}

func scanUploads(rows *sql.Rows) ([]Upload, error) {
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.EventID, &u.RoomID, &u.Sender, &u.Media.Authority, &u.Media.MediaID,
			&u.Mimetype, &u.SizeBytes, &u.TimestampMS); err != nil {
			return nil, fmt.Errorf("failed to scan upload row: %w", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate upload rows: %w", err)
	}
	return uploads, nil
}
