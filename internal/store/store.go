// Package store persists drawing documents and their saved revisions.
package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

type Document struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot is one saved revision of a document's scene bytes. Versions
// start at 1 and increase by one per save.
type Snapshot struct {
	ID         string
	DocumentID string
	Version    int
	Data       []byte
	CreatedAt  time.Time
}

type Store interface {
	CreateDocument(ctx context.Context, id, name string) (*Document, error)
	GetDocument(ctx context.Context, id string) (*Document, error)
	ListDocuments(ctx context.Context) ([]Document, error)
	RenameDocument(ctx context.Context, id, name string) (*Document, error)
	// DeleteDocument removes the document and all of its snapshots.
	DeleteDocument(ctx context.Context, id string) error

	// SaveSnapshot stores data as the next version of the document.
	SaveSnapshot(ctx context.Context, id, documentID string, data []byte) (*Snapshot, error)
	LatestSnapshot(ctx context.Context, documentID string) (*Snapshot, error)
	GetSnapshot(ctx context.Context, documentID string, version int) (*Snapshot, error)
	// ListSnapshots returns the revisions newest first, without their data.
	ListSnapshots(ctx context.Context, documentID string) ([]Snapshot, error)

	Close() error
}

// Open picks PostgreSQL when databaseURL is set and SQLite otherwise.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgres(ctx, databaseURL)
	}
	return NewSQLite(sqlitePath)
}
