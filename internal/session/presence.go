package session

import "slices"

// Roster is the participant list of one room: join order, who holds the
// editor seat and the last drawing-space cursor each participant showed.
// It is owned by the hub goroutine.
type Roster struct {
	order   []string
	editor  string
	cursors map[string]CursorPos
}

func NewRoster() *Roster {
	return &Roster{cursors: make(map[string]CursorPos)}
}

// Join appends clientID and returns its role. The first participant to
// find the editor seat empty takes it.
func (r *Roster) Join(clientID string) Role {
	r.order = append(r.order, clientID)
	if r.editor == "" {
		r.editor = clientID
	}
	return r.Role(clientID)
}

// Leave removes clientID. When it held the editor seat, the participant
// that joined earliest is promoted and returned.
func (r *Roster) Leave(clientID string) (promoted string) {
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == clientID })
	delete(r.cursors, clientID)
	if r.editor != clientID {
		return ""
	}
	r.editor = ""
	if len(r.order) > 0 {
		r.editor = r.order[0]
	}
	return r.editor
}

// Editor returns the client holding the editor seat, or "".
func (r *Roster) Editor() string { return r.editor }

func (r *Roster) Role(clientID string) Role {
	if clientID != "" && clientID == r.editor {
		return RoleEditor
	}
	return RoleViewer
}

// Move records where clientID points and reports whether that changed.
func (r *Roster) Move(clientID string, p CursorPos) bool {
	if old, ok := r.cursors[clientID]; ok && old == p {
		return false
	}
	r.cursors[clientID] = p
	return true
}

// Hide forgets the cursor of clientID and reports whether it was shown.
func (r *Roster) Hide(clientID string) bool {
	if _, ok := r.cursors[clientID]; !ok {
		return false
	}
	delete(r.cursors, clientID)
	return true
}

// State lists every participant in join order.
func (r *Roster) State() PresenceStatePayload {
	out := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		p := Participant{ClientID: id, Role: r.Role(id)}
		if c, ok := r.cursors[id]; ok {
			p.Cursor = &c
		}
		out = append(out, p)
	}
	return PresenceStatePayload{Participants: out}
}
