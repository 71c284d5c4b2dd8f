package session

import (
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/annotate/internal/canvas"
	"github.com/inamate/annotate/internal/clipboard"
	"github.com/inamate/annotate/internal/scene"
	"github.com/inamate/annotate/internal/typeid"
)

type memoryDocs struct {
	mu       sync.Mutex
	data     map[string][]byte
	versions map[string]int
}

func newMemoryDocs(ids ...string) *memoryDocs {
	m := &memoryDocs{data: map[string][]byte{}, versions: map[string]int{}}
	for _, id := range ids {
		m.data[id] = scene.New().Serialize(scene.SerializeOptions{})
	}
	return m
}

func (m *memoryDocs) load(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[id]
	if !ok {
		return nil, errors.New("no such document")
	}
	return data, nil
}

func (m *memoryDocs) save(_ context.Context, id string, data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = data
	m.versions[id]++
	return m.versions[id], nil
}

func (m *memoryDocs) graphics(t *testing.T, id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	gs, err := scene.Decode(m.data[id])
	require.NoError(t, err)
	return len(gs)
}

func startHub(t *testing.T, docs *memoryDocs, opts ...func(*Options)) *Hub {
	t.Helper()
	o := Options{
		Load:     docs.load,
		Save:     docs.save,
		Settings: canvas.DefaultSettings(),
		Autosave: -1,
		Width:    800,
		Height:   600,
		TempDir:  t.TempDir(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	h := NewHub(o)
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func join(t *testing.T, h *Hub, docID, clientID string) (*Client, WelcomePayload) {
	t.Helper()
	c := NewClient(h, nil, docID, clientID)
	h.Register(c)
	var w WelcomePayload
	require.NoError(t, json.Unmarshal(recv(t, c, TypeWelcome).Payload, &w))
	return c, w
}

// recv reads messages from c until one of type typ arrives.
func recv(t *testing.T, c *Client, typ string) *Message {
	t.Helper()
	return recvWhere(t, c, typ, func(*Message) bool { return true })
}

func recvWhere(t *testing.T, c *Client, typ string, match func(*Message) bool) *Message {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		var data []byte
		select {
		case d, ok := <-c.send:
			require.True(t, ok, "client closed while waiting for %s", typ)
			data = d
		case data = <-c.frames:
		case <-timeout:
			t.Fatalf("no %s message", typ)
			return nil
		}
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == typ && match(&msg) {
			return &msg
		}
	}
}

func send(h *Hub, c *Client, typ string, payload any) {
	data, _ := json.Marshal(payload)
	h.Dispatch(c, &Message{Type: typ, Payload: data})
}

func countIs(n int) func(*Message) bool {
	return func(m *Message) bool {
		var e canvas.Event
		if json.Unmarshal(m.Payload, &e) != nil || e.Kind != canvas.StateChanged {
			return false
		}
		return e.State.Count == n
	}
}

func drawRect(h *Hub, c *Client, x, y float64) {
	send(h, c, TypeToolSet, ToolPayload{Tool: "rectangle"})
	send(h, c, TypeMouse, MousePayload{Action: "down", X: x, Y: y})
	send(h, c, TypeMouse, MousePayload{Action: "move", X: x + 100, Y: y + 50})
	send(h, c, TypeMouse, MousePayload{Action: "up", X: x + 100, Y: y + 50})
}

func TestEditorDrawsAndSaves(t *testing.T) {
	docs := newMemoryDocs("doc_a")
	h := startHub(t, docs)

	editor, welcome := join(t, h, "doc_a", "a")
	assert.Equal(t, RoleEditor, welcome.Role)
	assert.Equal(t, "doc_a", welcome.DocumentID)
	assert.NoError(t, typeid.Validate(welcome.SessionID, typeid.PrefixSession))
	assert.Zero(t, welcome.State.Count)
	assert.NotEmpty(t, welcome.Commands)
	recv(t, editor, TypeFrame)

	drawRect(h, editor, 100, 100)
	recvWhere(t, editor, TypeEvent, countIs(1))
	recv(t, editor, TypeFrame)

	send(h, editor, TypeSave, struct{}{})
	var saved SavedPayload
	require.NoError(t, json.Unmarshal(recv(t, editor, TypeSaved).Payload, &saved))
	assert.Equal(t, 1, saved.Version)
	assert.Equal(t, 1, docs.graphics(t, "doc_a"))

	send(h, editor, TypeCommand, CommandPayload{Name: "undo"})
	recvWhere(t, editor, TypeEvent, countIs(0))
}

func TestViewersAreReadOnly(t *testing.T) {
	h := startHub(t, newMemoryDocs("doc_a"))

	editor, _ := join(t, h, "doc_a", "a")
	viewer, welcome := join(t, h, "doc_a", "b")
	assert.Equal(t, RoleViewer, welcome.Role)

	var roster PresenceStatePayload
	require.NoError(t, json.Unmarshal(recv(t, viewer, TypePresenceState).Payload, &roster))
	assert.Equal(t, []Participant{{ClientID: "a", Role: RoleEditor}, {ClientID: "b", Role: RoleViewer}}, roster.Participants)

	var joined PresenceJoinPayload
	require.NoError(t, json.Unmarshal(recv(t, editor, TypePresenceJoin).Payload, &joined))
	assert.Equal(t, "b", joined.ClientID)

	send(h, viewer, TypeToolSet, ToolPayload{Tool: "ellipse"})
	var e ErrorPayload
	require.NoError(t, json.Unmarshal(recv(t, viewer, TypeError).Payload, &e))
	assert.Equal(t, TypeToolSet, e.Request)
	assert.Contains(t, e.Message, "read-only")

	send(h, editor, TypeMouse, MousePayload{Action: "move", X: 10, Y: 20})
	var p Participant
	require.NoError(t, json.Unmarshal(recv(t, viewer, TypePresenceUpdate).Payload, &p))
	assert.Equal(t, "a", p.ClientID)
	assert.Equal(t, RoleEditor, p.Role)
	require.NotNil(t, p.Cursor)
	assert.Equal(t, CursorPos{X: 10, Y: 20}, *p.Cursor)

	send(h, viewer, TypePresenceUpdate, PresencePayload{Cursor: &CursorPos{X: 5, Y: 6}})
	require.NoError(t, json.Unmarshal(recv(t, editor, TypePresenceUpdate).Payload, &p))
	assert.Equal(t, Participant{ClientID: "b", Role: RoleViewer, Cursor: &CursorPos{X: 5, Y: 6}}, p)

	drawRect(h, editor, 50, 50)
	recvWhere(t, viewer, TypeEvent, countIs(1))
	recv(t, viewer, TypeFrame)

	h.Unregister(editor)
	var role RolePayload
	require.NoError(t, json.Unmarshal(recv(t, viewer, TypeRole).Payload, &role))
	assert.Equal(t, RoleEditor, role.Role)

	send(h, viewer, TypeCommand, CommandPayload{Name: "select-all"})
	send(h, viewer, TypeCommand, CommandPayload{Name: "delete"})
	recvWhere(t, viewer, TypeEvent, countIs(0))
}

func TestLastClientLeavingSaves(t *testing.T) {
	docs := newMemoryDocs("doc_a")
	h := startHub(t, docs)

	editor, first := join(t, h, "doc_a", "a")
	drawRect(h, editor, 0, 0)
	recvWhere(t, editor, TypeEvent, countIs(1))
	h.Unregister(editor)

	require.Eventually(t, func() bool {
		docs.mu.Lock()
		defer docs.mu.Unlock()
		return docs.versions["doc_a"] == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, docs.graphics(t, "doc_a"))

	_, again := join(t, h, "doc_a", "a")
	assert.NotEqual(t, first.SessionID, again.SessionID, "reopened room gets a new session")
	assert.Equal(t, 1, again.State.Count)
}

func TestStopSavesChangedDocuments(t *testing.T) {
	docs := newMemoryDocs("doc_a", "doc_b")
	h := startHub(t, docs)

	a, _ := join(t, h, "doc_a", "a")
	join(t, h, "doc_b", "b")
	drawRect(h, a, 0, 0)
	recvWhere(t, a, TypeEvent, countIs(1))

	h.Stop()
	assert.Equal(t, 1, docs.versions["doc_a"])
	assert.Zero(t, docs.versions["doc_b"], "unchanged documents are not saved")
	_, ok := <-a.send
	for ok {
		_, ok = <-a.send
	}
}

func TestSharedClipboard(t *testing.T) {
	h := startHub(t, newMemoryDocs("doc_a", "doc_b"), func(o *Options) {
		o.Clipboard = &clipboard.Memory{}
	})
	a, _ := join(t, h, "doc_a", "a")
	b, _ := join(t, h, "doc_b", "b")

	drawRect(h, a, 10, 10)
	recvWhere(t, a, TypeEvent, countIs(1))
	send(h, a, TypeCommand, CommandPayload{Name: "copy"})

	send(h, b, TypeCommand, CommandPayload{Name: "paste"})
	recvWhere(t, b, TypeEvent, countIs(1))
}

func TestUnknownDocument(t *testing.T) {
	h := startHub(t, newMemoryDocs())
	c := NewClient(h, nil, "doc_missing", "a")
	h.Register(c)
	recv(t, c, TypeError)
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-c.send:
			return !ok
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestBadMessages(t *testing.T) {
	h := startHub(t, newMemoryDocs("doc_a"))
	c, _ := join(t, h, "doc_a", "a")

	for _, m := range []*Message{
		{Type: "nope"},
		{Type: TypeMouse},
		{Type: TypeMouse, Payload: json.RawMessage(`{"action":"down","button":"fourth"}`)},
		{Type: TypeToolSet, Payload: json.RawMessage(`{"tool":"lasso"}`)},
		{Type: TypeCommand, Payload: json.RawMessage(`{"name":"explode"}`)},
		{Type: TypePropertySet, Payload: json.RawMessage(`{"name":"color","value":"purple"}`)},
		{Type: TypePropertySet, Payload: json.RawMessage(`{"name":"lineWidth","value":"wide"}`)},
		{Type: TypeResize, Payload: json.RawMessage(`{"width":0,"height":10}`)},
		{Type: TypeImageAdd, Payload: json.RawMessage(`{"assetId":"asset_x"}`)},
	} {
		h.Dispatch(c, m)
		msg := recv(t, c, TypeError)
		var e ErrorPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &e))
		assert.Equal(t, m.Type, e.Request)
	}
}

func TestPropertiesAndSettings(t *testing.T) {
	h := startHub(t, newMemoryDocs("doc_a"))
	c, _ := join(t, h, "doc_a", "a")

	stateWhere := func(ok func(canvas.State) bool) {
		t.Helper()
		recvWhere(t, c, TypeEvent, func(m *Message) bool {
			var e canvas.Event
			return json.Unmarshal(m.Payload, &e) == nil && e.Kind == canvas.StateChanged && ok(*e.State)
		})
	}

	send(h, c, TypePropertySet, PropertyPayload{Name: "color", Value: json.RawMessage(`"#00FF00"`)})
	stateWhere(func(s canvas.State) bool { return s.Color == "#00FF00FF" })

	send(h, c, TypePropertySet, PropertyPayload{Name: "lineWidth", Value: json.RawMessage(`7`)})
	stateWhere(func(s canvas.State) bool { return s.LineWidth == 7 })

	s := canvas.DefaultSettings()
	s.Defaults.Color = color.NRGBA{B: 0xFF, A: 0xFF}
	h.ApplySettings(s)
	stateWhere(func(s canvas.State) bool { return s.Color == "#0000FFFF" })

	send(h, c, TypeResize, ResizePayload{Width: 400, Height: 300})
	recvWhere(t, c, TypeEvent, func(m *Message) bool {
		var e canvas.Event
		return json.Unmarshal(m.Payload, &e) == nil && e.Kind == canvas.ZoomChanged
	})
}

func TestServeWS(t *testing.T) {
	docID := typeid.NewDocumentID()
	h := startHub(t, newMemoryDocs(docID))

	r := mux.NewRouter()
	r.HandleFunc("/ws/documents/{documentId}", h.ServeWS(nil))
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/documents/" + docID
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypeWelcome, msg.Type)

	resp, err := srv.Client().Get(srv.URL + "/ws/documents/not-an-id")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}
