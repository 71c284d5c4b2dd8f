package session

import (
	"encoding/json"

	"github.com/inamate/annotate/internal/canvas"
	"github.com/inamate/annotate/internal/graphic"
)

type Message struct {
	Type       string          `json:"type"`
	DocumentID string          `json:"documentId,omitempty"`
	ClientID   string          `json:"clientId,omitempty"`
	Seq        int64           `json:"seq,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client to server
	TypeMouse          = "input.mouse"
	TypeKey            = "input.key"
	TypeWheel          = "input.wheel"
	TypeLostCapture    = "input.lost-capture"
	TypeToolSet        = "tool.set"
	TypeCommand        = "command.execute"
	TypeTextEnd        = "text.end"
	TypePropertySet    = "property.set"
	TypeImageAdd       = "image.add"
	TypeResize         = "resize"
	TypeSave           = "save"
	TypePresenceUpdate = "presence.update"

	// Server to client
	TypeWelcome       = "welcome"
	TypeEvent         = "event"
	TypeFrame         = "frame"
	TypeCommands      = "commands"
	TypeSaved         = "saved"
	TypeRole          = "role"
	TypePresenceState = "presence.state"
	TypePresenceJoin  = "presence.join"
	TypePresenceLeave = "presence.leave"
	TypeError         = "error"
)

// Role is what a client may do in a session.
type Role string

const (
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

type MousePayload struct {
	Action string  `json:"action"` // down, move, up
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button,omitempty"` // left, right, middle
	Shift  bool    `json:"shift,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
	Alt    bool    `json:"alt,omitempty"`
	Clicks int     `json:"clicks,omitempty"`
}

type KeyPayload struct {
	Action string `json:"action"` // down, up
	Key    string `json:"key"`
	Shift  bool   `json:"shift,omitempty"`
	Ctrl   bool   `json:"ctrl,omitempty"`
	Alt    bool   `json:"alt,omitempty"`
}

type WheelPayload struct {
	Delta float64 `json:"delta"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type ToolPayload struct {
	Tool string `json:"tool"`
}

type CommandPayload struct {
	Name string `json:"name"`
}

type TextEndPayload struct {
	ID   graphic.ID `json:"id"`
	Text string     `json:"text"`
	OK   bool       `json:"ok"`
}

// PropertyPayload sets one canvas property. Value is a string for colors,
// family, style and background, a number otherwise.
type PropertyPayload struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type ImagePayload struct {
	AssetID string `json:"assetId"`
}

type ResizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPI    float64 `json:"dpi,omitempty"`
}

type WelcomePayload struct {
	ClientID   string           `json:"clientId"`
	DocumentID string           `json:"documentId"`
	SessionID  string           `json:"sessionId"`
	Role       Role             `json:"role"`
	State      canvas.State     `json:"state"`
	Commands   []canvas.Command `json:"commands"`
}

type RolePayload struct {
	Role Role `json:"role"`
}

type SavedPayload struct {
	Version int `json:"version"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Request string `json:"request,omitempty"`
}

// PresencePayload reports a viewer's pointer. A missing cursor hides it.
type PresencePayload struct {
	Cursor *CursorPos `json:"cursor,omitempty"`
}

// CursorPos is a pointer position in drawing coordinates.
type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Participant is one client as the rest of its room sees it. It is also the
// payload of presence.update.
type Participant struct {
	ClientID string     `json:"clientId"`
	Role     Role       `json:"role"`
	Cursor   *CursorPos `json:"cursor,omitempty"`
}

type PresenceStatePayload struct {
	Participants []Participant `json:"participants"`
}

type PresenceJoinPayload struct {
	ClientID string `json:"clientId"`
	Role     Role   `json:"role"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}
