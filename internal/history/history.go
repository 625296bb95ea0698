// package history persists a record per upload session to SQLite.
//
// Live progress is never persisted; the table only records what was
// uploaded, when, and how the transfer ended.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Transfer outcome states recorded for an upload.
const (
	StatusStarted = "started"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS uploads (
	id          TEXT PRIMARY KEY,
	filename    TEXT NOT NULL,
	size_bytes  INTEGER NOT NULL DEFAULT 0,
	dest_object TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'started',
	file_id     TEXT NOT NULL DEFAULT '',
	view_link   TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at);
`

// Upload is one recorded upload session.
type Upload struct {
	ID         string     `json:"id"`
	Filename   string     `json:"filename"`
	SizeBytes  int64      `json:"size_bytes"`
	DestObject string     `json:"dest_object"`
	Status     string     `json:"status"`
	FileID     string     `json:"file_id,omitempty"`
	ViewLink   string     `json:"view_link,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Store provides persistence for upload records.
type Store struct {
	db *sql.DB
}

// NewStore creates a history store over an open database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the uploads table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate uploads table: %w", err)
	}
	return nil
}

// Record inserts a new upload in the started state.
func (s *Store) Record(ctx context.Context, id, filename, destObject string, sizeBytes int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (id, filename, size_bytes, dest_object, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, filename, sizeBytes, destObject, StatusStarted, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

// Finish marks an upload's terminal state and stores the lookup results.
func (s *Store) Finish(ctx context.Context, id, status, fileID, viewLink string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE uploads SET status = ?, file_id = ?, view_link = ?, finished_at = ? WHERE id = ?`,
		status, fileID, viewLink, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish upload record: %w", err)
	}
	return nil
}

// List returns the most recent uploads, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Upload, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, size_bytes, dest_object, status, file_id, view_link, created_at, finished_at
		 FROM uploads ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	uploads := []Upload{}
	for rows.Next() {
		var u Upload
		var finished sql.NullTime
		if err := rows.Scan(&u.ID, &u.Filename, &u.SizeBytes, &u.DestObject, &u.Status, &u.FileID, &u.ViewLink, &u.CreatedAt, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan upload row: %w", err)
		}
		if finished.Valid {
			u.FinishedAt = &finished.Time
		}
		uploads = append(uploads, u)
	}

	return uploads, rows.Err()
}
