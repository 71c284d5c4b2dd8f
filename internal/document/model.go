package document

import (
	"time"

	"github.com/inamate/annotate/internal/scene"
	"github.com/inamate/annotate/internal/store"
)

// ContentType is the media type of serialized scene bytes.
const ContentType = "application/x-annotate-drawing"

const timeFormat = "2006-01-02T15:04:05Z"

// Document is a saved drawing. Version is the latest saved revision, zero
// in listings.
type Document struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   int    `json:"version,omitempty"`
	Graphics  int    `json:"graphics,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Revision is one saved version of a document's scene.
type Revision struct {
	ID        string `json:"id"`
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
}

// NewEmptyScene returns the serialized form of a drawing with no graphics.
func NewEmptyScene() []byte {
	return scene.New().Serialize(scene.SerializeOptions{})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func storeDocumentToDocument(d store.Document) *Document {
	return &Document{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: formatTime(d.CreatedAt),
		UpdatedAt: formatTime(d.UpdatedAt),
	}
}

func storeSnapshotToRevision(s store.Snapshot) Revision {
	return Revision{ID: s.ID, Version: s.Version, CreatedAt: formatTime(s.CreatedAt)}
}
