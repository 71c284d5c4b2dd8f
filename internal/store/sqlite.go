package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a Store in a local database file.
type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens (or creates) the database file at path.
func NewSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time
	conn.SetMaxOpenConns(1)

	s := &SQLite{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			version INTEGER NOT NULL,
			data BLOB NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (document_id, version)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_document ON snapshots(document_id, version)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) CreateDocument(ctx context.Context, id, name string) (*Document, error) {
	now := time.Now().UTC()
	d := &Document{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO documents (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		d.ID, d.Name, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return d, nil
}

func (s *SQLite) GetDocument(ctx context.Context, id string) (*Document, error) {
	var d Document
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

func (s *SQLite) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM documents ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *SQLite) RenameDocument(ctx context.Context, id, name string) (*Document, error) {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE documents SET name = ?, updated_at = ? WHERE id = ?`, name, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("rename document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetDocument(ctx, id)
}

func (s *SQLite) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLite) SaveSnapshot(ctx context.Context, id, documentID string, data []byte) (*Snapshot, error) {
	snap := &Snapshot{ID: id, DocumentID: documentID, Data: data, CreatedAt: time.Now().UTC()}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE documents SET updated_at = ? WHERE id = ?`, snap.CreatedAt, documentID)
	if err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE document_id = ?`, documentID,
	).Scan(&snap.Version)
	if err != nil {
		return nil, fmt.Errorf("next version: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, document_id, version, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.DocumentID, snap.Version, snap.Data, snap.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}

func (s *SQLite) LatestSnapshot(ctx context.Context, documentID string) (*Snapshot, error) {
	return s.snapshot(ctx,
		`SELECT id, document_id, version, data, created_at FROM snapshots
		 WHERE document_id = ? ORDER BY version DESC LIMIT 1`, documentID)
}

func (s *SQLite) GetSnapshot(ctx context.Context, documentID string, version int) (*Snapshot, error) {
	return s.snapshot(ctx,
		`SELECT id, document_id, version, data, created_at FROM snapshots
		 WHERE document_id = ? AND version = ?`, documentID, version)
}

func (s *SQLite) snapshot(ctx context.Context, query string, args ...any) (*Snapshot, error) {
	var snap Snapshot
	err := s.conn.QueryRowContext(ctx, query, args...).
		Scan(&snap.ID, &snap.DocumentID, &snap.Version, &snap.Data, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SQLite) ListSnapshots(ctx context.Context, documentID string) ([]Snapshot, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, document_id, version, created_at FROM snapshots
		 WHERE document_id = ? ORDER BY version DESC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.DocumentID, &snap.Version, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
