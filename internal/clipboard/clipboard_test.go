package clipboard

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	var m Memory
	_, err := m.Read(FormatPNG)
	assert.ErrorIs(t, err, ErrUnavailable)

	data := []byte{1, 2, 3}
	require.NoError(t, m.Write(Item{Format: FormatDrawing, Data: data}, Item{Format: FormatPNG, Data: []byte{9}}))
	data[0] = 7

	got, err := m.Read(FormatDrawing)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	require.NoError(t, m.Write(Item{Format: FormatPNG, Data: []byte{4}}))
	_, err = m.Read(FormatDrawing)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDecodeSystemText(t *testing.T) {
	text := header + "\n" +
		FormatPNG + " " + base64.StdEncoding.EncodeToString([]byte("png")) + "\n" +
		FormatDrawing + " " + base64.StdEncoding.EncodeToString([]byte("DRW1"))

	got, err := decode(text, FormatDrawing)
	require.NoError(t, err)
	assert.Equal(t, "DRW1", string(got))

	_, err = decode("plain text from another app", FormatDrawing)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = decode(header, FormatPNG)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEncodeRoundTrip(t *testing.T) {
	text := encode([]Item{{Format: FormatDrawing, Data: []byte("DRW1")}, {Format: FormatPNG, Data: []byte{0x89, 'P'}}})

	got, err := decode(text, FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P'}, got)
	got, err = decode(text, FormatDrawing)
	require.NoError(t, err)
	assert.Equal(t, "DRW1", string(got))
}
