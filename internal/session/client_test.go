package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlowClientKeepsNewestFrame(t *testing.T) {
	c := NewClient(nil, nil, "doc_a", "a")
	for _, n := range []string{"1", "2", "3"} {
		c.SendFrame(&Message{Type: TypeFrame, Payload: json.RawMessage(`[` + n + `]`)})
	}
	c.Send(&Message{Type: TypeSaved})

	require.Len(t, c.frames, 1)
	var msg Message
	require.NoError(t, json.Unmarshal(<-c.frames, &msg))
	assert.JSONEq(t, `[3]`, string(msg.Payload))
	assert.Len(t, c.send, 1, "messages are not replaced")
}

func TestClosedClientDropsOutput(t *testing.T) {
	c := NewClient(nil, nil, "doc_a", "a")
	c.close()
	c.close()
	c.SendFrame(&Message{Type: TypeFrame})
	c.Send(&Message{Type: TypeSaved})
	assert.Empty(t, c.frames)
	_, ok := <-c.send
	assert.False(t, ok)
}
