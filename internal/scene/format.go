package scene

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/inamate/annotate/internal/graphic"
	"github.com/inamate/annotate/internal/logging"
)

// Magic opens every serialized scene.
const Magic = "DRW1"

const recordHeaderSize = 2 + 4 + 4

// SerializeOptions filters what Serialize writes.
type SerializeOptions struct {
	// SelectedOnly writes only selected graphics.
	SelectedOnly bool
	// OmitSelection leaves the selected flag out of every payload.
	OmitSelection bool
}

// Serialize encodes the collection. The rubber band is never written.
//
//	"DRW1" | count u32 | count × (kind u16 | id u32 | len u32 | payload)
//
// All integers are little-endian.
func (c *Collection) Serialize(opts SerializeOptions) []byte {
	var body bytes.Buffer
	var n uint32
	for _, g := range c.items {
		if g.Kind() == graphic.KindSelection {
			continue
		}
		if opts.SelectedOnly && !g.Attrs().Selected {
			continue
		}
		payload := graphic.EncodePayloadWith(g, graphic.EncodeOptions{OmitSelection: opts.OmitSelection})
		body.Write(binary.LittleEndian.AppendUint16(nil, uint16(g.Kind())))
		body.Write(binary.LittleEndian.AppendUint32(nil, uint32(g.Attrs().ID)))
		body.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(payload))))
		body.Write(payload)
		n++
	}
	out := make([]byte, 0, len(Magic)+4+body.Len())
	out = append(out, Magic...)
	out = binary.LittleEndian.AppendUint32(out, n)
	return append(out, body.Bytes()...)
}

// Decode parses a serialized scene. Records of unknown kinds are skipped.
// Ids are kept as written and the id allocator is advanced past them.
func Decode(data []byte) ([]graphic.Graphic, error) {
	if len(data) < len(Magic)+4 || string(data[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("missing %s header: %w", Magic, ErrFormat)
	}
	count := binary.LittleEndian.Uint32(data[len(Magic):])
	data = data[len(Magic)+4:]

	var out []graphic.Graphic
	for i := uint32(0); i < count; i++ {
		if len(data) < recordHeaderSize {
			return nil, fmt.Errorf("record %d: truncated header: %w", i, ErrFormat)
		}
		kind := graphic.Kind(binary.LittleEndian.Uint16(data))
		id := graphic.ID(binary.LittleEndian.Uint32(data[2:]))
		size := binary.LittleEndian.Uint32(data[6:])
		data = data[recordHeaderSize:]
		if uint64(size) > uint64(len(data)) {
			return nil, fmt.Errorf("record %d: payload of %d bytes exceeds input: %w", i, size, ErrFormat)
		}
		payload := data[:size]
		data = data[size:]

		g, err := graphic.DecodePayload(kind, id, payload)
		if errors.Is(err, graphic.ErrUnknownKind) {
			logging.Logger().Warn("skipping unknown graphic kind", "kind", uint16(kind), "id", uint32(id))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		graphic.ObserveID(id)
		out = append(out, g)
	}
	return out, nil
}

// FromBytes builds a new collection from a serialized scene, keeping ids.
func FromBytes(data []byte) (*Collection, error) {
	gs, err := Decode(data)
	if err != nil {
		return nil, err
	}
	c := New()
	for _, g := range gs {
		c.Add(g)
	}
	return c, nil
}

// Deserialize appends a serialized scene to c and returns the added
// graphics. When c already holds graphics every incoming one gets a fresh
// id; into an empty collection ids are preserved.
func (c *Collection) Deserialize(data []byte) ([]graphic.Graphic, error) {
	gs, err := Decode(data)
	if err != nil {
		return nil, err
	}
	remap := c.Len() > 0
	for _, g := range gs {
		if remap {
			g.Attrs().ID = graphic.NextID()
		}
		c.Add(g)
	}
	return gs, nil
}
