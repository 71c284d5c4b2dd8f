package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/inamate/annotate/internal/canvas"
	"github.com/inamate/annotate/internal/config"
	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/scene"
	"github.com/inamate/annotate/internal/tool"
)

var (
	ErrReadOnly       = errors.New("read-only session")
	ErrUnknownMessage = errors.New("unknown message type")
)

// applyMessage maps one client message onto the room's canvas. Only the
// editor may change the drawing; viewers may only report their pointer.
func (h *Hub) applyMessage(room *Room, sender *Client, msg *Message) error {
	if msg.Type == TypePresenceUpdate {
		return h.applyPresence(room, sender, msg.Payload)
	}
	if sender.ClientID != room.roster.Editor() {
		return ErrReadOnly
	}

	c := room.canvas
	switch msg.Type {
	case TypeMouse:
		var p MousePayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		return h.applyMouse(room, sender, p)

	case TypeKey:
		var p KeyPayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		key := canvas.ParseKey(p.Key)
		mods := modifiers(p.Shift, p.Ctrl, p.Alt)
		switch p.Action {
		case "down":
			c.KeyDown(key, mods)
		case "up":
			c.KeyUp(key, mods)
		default:
			return fmt.Errorf("key action %q: %w", p.Action, canvas.ErrInvalidArgument)
		}
		return nil

	case TypeWheel:
		var p WheelPayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		c.MouseWheel(p.Delta, geom.Pt(p.X, p.Y))
		return nil

	case TypeLostCapture:
		c.LostMouseCapture()
		return nil

	case TypeToolSet:
		var p ToolPayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		id, err := tool.ParseID(p.Tool)
		if err != nil {
			return err
		}
		return c.SetTool(id)

	case TypeCommand:
		var p CommandPayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		return c.Execute(p.Name)

	case TypeTextEnd:
		var p TextEndPayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		return c.EndTextEdit(p.ID, p.Text, p.OK)

	case TypePropertySet:
		var p PropertyPayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		return setProperty(c, p)

	case TypeImageAdd:
		var p ImagePayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		if h.opts.AssetPath == nil {
			return fmt.Errorf("images: %w", canvas.ErrInvalidArgument)
		}
		path, err := h.opts.AssetPath(p.AssetID)
		if err != nil {
			return err
		}
		return c.AddImage(path)

	case TypeResize:
		var p ResizePayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		if !(p.Width > 0) || !(p.Height > 0) {
			return fmt.Errorf("viewport %gx%g: %w", p.Width, p.Height, canvas.ErrInvalidArgument)
		}
		if p.DPI > 0 && p.DPI != c.View().DPI() {
			c.SetDPI(p.DPI)
		}
		c.Resize(p.Width, p.Height)
		return nil

	case TypeSave:
		if !h.save(room) {
			return errors.New("save failed")
		}
		h.broadcastToRoom(room, newMessage(TypeSaved, SavedPayload{Version: room.version}), "")
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnknownMessage, msg.Type)
	}
}

func (h *Hub) applyMouse(room *Room, sender *Client, p MousePayload) error {
	c := room.canvas
	v := geom.Pt(p.X, p.Y)
	mods := modifiers(p.Shift, p.Ctrl, p.Alt)
	switch p.Action {
	case "down", "up":
		b, err := parseButton(p.Button)
		if err != nil {
			return err
		}
		if p.Action == "down" {
			c.MouseDown(v, b, mods, max(1, p.Clicks))
		} else {
			c.MouseUp(v, b, mods)
		}
	case "move":
		c.MouseMove(v, mods)
	default:
		return fmt.Errorf("mouse action %q: %w", p.Action, canvas.ErrInvalidArgument)
	}

	// The editor's cursor follows its mouse input.
	w := c.View().ViewToWorld(v)
	h.moveCursor(room, sender, &CursorPos{X: w.X, Y: w.Y})
	return nil
}

func (h *Hub) applyPresence(room *Room, sender *Client, raw json.RawMessage) error {
	var p PresencePayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	h.moveCursor(room, sender, p.Cursor)
	return nil
}

// moveCursor shows sender's cursor at pos, or hides it when pos is nil, and
// tells the rest of the room when that changed anything.
func (h *Hub) moveCursor(room *Room, sender *Client, pos *CursorPos) {
	var changed bool
	if pos == nil {
		changed = room.roster.Hide(sender.ClientID)
	} else {
		changed = room.roster.Move(sender.ClientID, *pos)
	}
	if !changed {
		return
	}
	h.broadcastToRoom(room, newMessage(TypePresenceUpdate, Participant{
		ClientID: sender.ClientID,
		Role:     sender.Role,
		Cursor:   pos,
	}), sender.ClientID)
}

func setProperty(c *canvas.Canvas, p PropertyPayload) error {
	switch p.Name {
	case "color":
		s, err := stringValue(p)
		if err != nil {
			return err
		}
		col, err := config.ParseColor(s)
		if err != nil {
			return err
		}
		c.SetObjectColor(col)
		return nil
	case "background":
		s, err := stringValue(p)
		if err != nil {
			return err
		}
		if strings.EqualFold(s, config.Transparent) {
			c.SetBackground(scene.Background{Checkered: true})
			return nil
		}
		col, err := config.ParseColor(s)
		if err != nil {
			return err
		}
		c.SetBackground(scene.Background{Color: col})
		return nil
	case "fontFamily":
		s, err := stringValue(p)
		if err != nil {
			return err
		}
		return c.SetFontFamily(s)
	case "fontStyle":
		s, err := stringValue(p)
		if err != nil {
			return err
		}
		style, err := parseFontStyle(s)
		if err != nil {
			return err
		}
		c.SetFontStyle(style)
		return nil
	}

	v, err := numberValue(p)
	if err != nil {
		return err
	}
	switch p.Name {
	case "lineWidth":
		return c.SetLineWidth(v)
	case "angle":
		return c.SetAngle(v)
	case "fontSize":
		return c.SetFontSize(v)
	case "fontWeight":
		return c.SetFontWeight(int(v))
	case "fontStretch":
		return c.SetFontStretch(int(v))
	case "zoom":
		return c.SetZoom(v)
	default:
		return fmt.Errorf("property %q: %w", p.Name, canvas.ErrInvalidArgument)
	}
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload: %w", canvas.ErrInvalidArgument)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	return nil
}

func stringValue(p PropertyPayload) (string, error) {
	var s string
	if err := json.Unmarshal(p.Value, &s); err != nil {
		return "", fmt.Errorf("property %q wants a string: %w", p.Name, canvas.ErrInvalidArgument)
	}
	return s, nil
}

func numberValue(p PropertyPayload) (float64, error) {
	var v float64
	if err := json.Unmarshal(p.Value, &v); err != nil {
		return 0, fmt.Errorf("property %q wants a number: %w", p.Name, canvas.ErrInvalidArgument)
	}
	return v, nil
}

func modifiers(shift, ctrl, alt bool) canvas.Modifiers {
	var m canvas.Modifiers
	if shift {
		m |= canvas.ModShift
	}
	if ctrl {
		m |= canvas.ModCtrl
	}
	if alt {
		m |= canvas.ModAlt
	}
	return m
}

func parseButton(s string) (canvas.Button, error) {
	switch s {
	case "", "left":
		return canvas.ButtonLeft, nil
	case "right":
		return canvas.ButtonRight, nil
	case "middle":
		return canvas.ButtonMiddle, nil
	}
	return 0, fmt.Errorf("button %q: %w", s, canvas.ErrInvalidArgument)
}

func parseFontStyle(s string) (draw.FontStyle, error) {
	switch s {
	case "normal":
		return draw.FontStyleNormal, nil
	case "italic":
		return draw.FontStyleItalic, nil
	case "oblique":
		return draw.FontStyleOblique, nil
	}
	return 0, fmt.Errorf("font style %q: %w", s, canvas.ErrInvalidArgument)
}
