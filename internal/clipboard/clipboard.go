// Package clipboard moves drawings and raster images in and out of the
// canvas.
package clipboard

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Formats the canvas reads and writes.
const (
	FormatDrawing = "application/x-annotate-drawing"
	FormatPNG     = "image/png"
)

// ErrUnavailable is returned when the clipboard holds nothing in the
// requested format.
var ErrUnavailable = errors.New("clipboard format unavailable")

// Item is one representation of the clipboard contents.
type Item struct {
	Format string
	Data   []byte
}

// Clipboard is the capability the canvas copies to and pastes from.
type Clipboard interface {
	// Write replaces the contents with items.
	Write(items ...Item) error
	// Read returns the data stored under format.
	Read(format string) ([]byte, error)
}

// Memory is a process-local clipboard.
type Memory struct {
	mu    sync.Mutex
	items []Item
}

func (m *Memory) Write(items ...Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = m.items[:0]
	for _, it := range items {
		m.items = append(m.items, Item{Format: it.Format, Data: slices.Clone(it.Data)})
	}
	return nil
}

func (m *Memory) Read(format string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.Format == format {
			return slices.Clone(it.Data), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", format, ErrUnavailable)
}

// header marks system clipboard text written by encode.
const header = "x-annotate-clipboard/1"

// encode packs items as tagged base64 text, one line per format.
func encode(items []Item) string {
	var b strings.Builder
	b.WriteString(header)
	for _, it := range items {
		b.WriteByte('\n')
		b.WriteString(it.Format)
		b.WriteByte(' ')
		b.WriteString(base64.StdEncoding.EncodeToString(it.Data))
	}
	return b.String()
}

func decode(text, format string) ([]byte, error) {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(nil, len(text)+1)
	if !sc.Scan() || sc.Text() != header {
		return nil, fmt.Errorf("%s: %w", format, ErrUnavailable)
	}
	for sc.Scan() {
		name, data, ok := strings.Cut(sc.Text(), " ")
		if !ok || name != format {
			continue
		}
		out, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", format, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s: %w", format, ErrUnavailable)
}
