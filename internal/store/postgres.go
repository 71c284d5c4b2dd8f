package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p := &Postgres{pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			version INTEGER NOT NULL,
			data BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (document_id, version)
		)`,
	}
	for _, m := range migrations {
		if _, err := p.pool.Exec(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) CreateDocument(ctx context.Context, id, name string) (*Document, error) {
	now := time.Now().UTC()
	d := &Document{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO documents (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		d.ID, d.Name, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return d, nil
}

func (p *Postgres) GetDocument(ctx context.Context, id string) (*Document, error) {
	var d Document
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

func (p *Postgres) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM documents ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Document, error) {
		var d Document
		err := row.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (p *Postgres) RenameDocument(ctx context.Context, id, name string) (*Document, error) {
	var d Document
	err := p.pool.QueryRow(ctx,
		`UPDATE documents SET name = $2, updated_at = $3 WHERE id = $1
		 RETURNING id, name, created_at, updated_at`,
		id, name, time.Now().UTC(),
	).Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rename document: %w", err)
	}
	return &d, nil
}

func (p *Postgres) DeleteDocument(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveSnapshot(ctx context.Context, id, documentID string, data []byte) (*Snapshot, error) {
	snap := &Snapshot{ID: id, DocumentID: documentID, Data: data, CreatedAt: time.Now().UTC()}
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE documents SET updated_at = $2 WHERE id = $1`, documentID, snap.CreatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE document_id = $1`, documentID,
		).Scan(&snap.Version)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO snapshots (id, document_id, version, data, created_at) VALUES ($1, $2, $3, $4, $5)`,
			snap.ID, snap.DocumentID, snap.Version, snap.Data, snap.CreatedAt)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}

func (p *Postgres) LatestSnapshot(ctx context.Context, documentID string) (*Snapshot, error) {
	return p.snapshot(ctx,
		`SELECT id, document_id, version, data, created_at FROM snapshots
		 WHERE document_id = $1 ORDER BY version DESC LIMIT 1`, documentID)
}

func (p *Postgres) GetSnapshot(ctx context.Context, documentID string, version int) (*Snapshot, error) {
	return p.snapshot(ctx,
		`SELECT id, document_id, version, data, created_at FROM snapshots
		 WHERE document_id = $1 AND version = $2`, documentID, version)
}

func (p *Postgres) snapshot(ctx context.Context, query string, args ...any) (*Snapshot, error) {
	var s Snapshot
	err := p.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.DocumentID, &s.Version, &s.Data, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &s, nil
}

func (p *Postgres) ListSnapshots(ctx context.Context, documentID string) ([]Snapshot, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, document_id, version, created_at FROM snapshots
		 WHERE document_id = $1 ORDER BY version DESC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	snaps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Snapshot, error) {
		var s Snapshot
		err := row.Scan(&s.ID, &s.DocumentID, &s.Version, &s.CreatedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}
