package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/annotate/internal/typeid"
)

func TestSQLite(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "annotate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	runSuite(t, s)
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := NewPostgres(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	runSuite(t, s)
}

func TestOpenDefaultsToSQLite(t *testing.T) {
	s, err := Open(context.Background(), "", filepath.Join(t.TempDir(), "a.db"))
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &SQLite{}, s)
}

func runSuite(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("documents", func(t *testing.T) {
		id := typeid.NewDocumentID()
		created, err := s.CreateDocument(ctx, id, "Screenshot")
		require.NoError(t, err)
		assert.Equal(t, "Screenshot", created.Name)

		got, err := s.GetDocument(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "Screenshot", got.Name)

		renamed, err := s.RenameDocument(ctx, id, "Annotated")
		require.NoError(t, err)
		assert.Equal(t, "Annotated", renamed.Name)

		docs, err := s.ListDocuments(ctx)
		require.NoError(t, err)
		var ids []string
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		assert.Contains(t, ids, id)

		require.NoError(t, s.DeleteDocument(ctx, id))
		_, err = s.GetDocument(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeleteDocument(ctx, id), ErrNotFound)
		_, err = s.RenameDocument(ctx, id, "x")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("snapshots are versioned", func(t *testing.T) {
		id := typeid.NewDocumentID()
		_, err := s.CreateDocument(ctx, id, "Versions")
		require.NoError(t, err)

		_, err = s.LatestSnapshot(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)

		first, err := s.SaveSnapshot(ctx, typeid.NewRevisionID(), id, []byte("DRW1 one"))
		require.NoError(t, err)
		assert.Equal(t, 1, first.Version)
		second, err := s.SaveSnapshot(ctx, typeid.NewRevisionID(), id, []byte("DRW1 two"))
		require.NoError(t, err)
		assert.Equal(t, 2, second.Version)

		latest, err := s.LatestSnapshot(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, latest.Version)
		assert.Equal(t, []byte("DRW1 two"), latest.Data)

		old, err := s.GetSnapshot(ctx, id, 1)
		require.NoError(t, err)
		assert.Equal(t, []byte("DRW1 one"), old.Data)
		_, err = s.GetSnapshot(ctx, id, 3)
		assert.ErrorIs(t, err, ErrNotFound)

		list, err := s.ListSnapshots(ctx, id)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, 2, list[0].Version)
		assert.Equal(t, 1, list[1].Version)
		assert.Nil(t, list[0].Data)

		require.NoError(t, s.DeleteDocument(ctx, id))
		_, err = s.LatestSnapshot(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("snapshot of missing document", func(t *testing.T) {
		_, err := s.SaveSnapshot(ctx, typeid.NewRevisionID(), typeid.NewDocumentID(), []byte("DRW1"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
