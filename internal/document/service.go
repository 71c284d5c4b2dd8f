package document

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/inamate/annotate/internal/graphic"
	"github.com/inamate/annotate/internal/imageio"
	"github.com/inamate/annotate/internal/scene"
	"github.com/inamate/annotate/internal/store"
	"github.com/inamate/annotate/internal/typeid"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidScene = errors.New("invalid scene")
	ErrInvalidDPI   = errors.New("invalid dpi")
)

// MaxRenderDPI bounds the scale of rendered previews.
const MaxRenderDPI = 8.0

type Service struct {
	store store.Store

	mu         sync.RWMutex
	background scene.Background
}

func NewService(st store.Store) *Service {
	return &Service{store: st, background: scene.Background{Checkered: true}}
}

// SetBackground changes what Render paints beneath the graphics.
func (s *Service) SetBackground(bg scene.Background) {
	s.mu.Lock()
	s.background = bg
	s.mu.Unlock()
}

func (s *Service) Background() scene.Background {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

// Create stores a new document with seed as its first revision. A nil seed
// starts from an empty drawing.
func (s *Service) Create(ctx context.Context, name string, seed []byte) (*Document, error) {
	if seed == nil {
		seed = NewEmptyScene()
	}
	n, err := validate(seed)
	if err != nil {
		return nil, err
	}

	id := typeid.NewDocumentID()
	d, err := s.store.CreateDocument(ctx, id, name)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	snap, err := s.store.SaveSnapshot(ctx, typeid.NewRevisionID(), id, seed)
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	doc := storeDocumentToDocument(*d)
	doc.Version = snap.Version
	doc.Graphics = n
	return doc, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	d, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, mapStoreError("get document", err)
	}
	doc := storeDocumentToDocument(*d)
	snap, err := s.store.LatestSnapshot(ctx, id)
	switch {
	case err == nil:
		doc.Version = snap.Version
		doc.Graphics, _ = validate(snap.Data)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context) ([]Document, error) {
	stored, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs := make([]Document, len(stored))
	for i, d := range stored {
		docs[i] = *storeDocumentToDocument(d)
	}
	return docs, nil
}

func (s *Service) Rename(ctx context.Context, id, name string) (*Document, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	d, err := s.store.RenameDocument(ctx, id, name)
	if err != nil {
		return nil, mapStoreError("rename document", err)
	}
	return storeDocumentToDocument(*d), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return mapStoreError("delete document", s.store.DeleteDocument(ctx, id))
}

// Save stores data as the next revision after checking that it parses.
func (s *Service) Save(ctx context.Context, id string, data []byte) (*Revision, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if _, err := validate(data); err != nil {
		return nil, err
	}
	snap, err := s.store.SaveSnapshot(ctx, typeid.NewRevisionID(), id, data)
	if err != nil {
		return nil, mapStoreError("save snapshot", err)
	}
	rev := storeSnapshotToRevision(*snap)
	return &rev, nil
}

// Scene returns the scene bytes of a revision; version 0 means the latest.
func (s *Service) Scene(ctx context.Context, id string, version int) ([]byte, int, error) {
	if err := checkID(id); err != nil {
		return nil, 0, err
	}
	var (
		snap *store.Snapshot
		err  error
	)
	if version > 0 {
		snap, err = s.store.GetSnapshot(ctx, id, version)
	} else {
		snap, err = s.store.LatestSnapshot(ctx, id)
	}
	if err != nil {
		return nil, 0, mapStoreError("get snapshot", err)
	}
	return snap.Data, snap.Version, nil
}

func (s *Service) Revisions(ctx context.Context, id string) ([]Revision, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	snaps, err := s.store.ListSnapshots(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	revs := make([]Revision, len(snaps))
	for i, snap := range snaps {
		revs[i] = storeSnapshotToRevision(snap)
	}
	return revs, nil
}

// Render rasterizes a revision to PNG, cropped to its content.
func (s *Service) Render(ctx context.Context, id string, version int, dpi float64) ([]byte, error) {
	data, _, err := s.Scene(ctx, id, version)
	if err != nil {
		return nil, err
	}
	return RenderPNG(data, s.Background(), dpi)
}

// RenderPNG rasterizes serialized scene bytes over bg.
func RenderPNG(data []byte, bg scene.Background, dpi float64) ([]byte, error) {
	if !(dpi > 0) || dpi > MaxRenderDPI {
		return nil, fmt.Errorf("%w: %g", ErrInvalidDPI, dpi)
	}
	sc, err := scene.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	img := sc.RenderImage(bg, dpi, graphic.UI{Scale: 1})
	out, err := imageio.PNGBytes(img)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out, nil
}

func validate(data []byte) (int, error) {
	gs, err := scene.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	return len(gs), nil
}

func checkID(id string) error {
	if err := typeid.Validate(id, typeid.PrefixDocument); err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return nil
}

func mapStoreError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
