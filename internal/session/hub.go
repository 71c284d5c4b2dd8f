// Package session runs headless editing sessions. A hub goroutine owns every
// live canvas and is the only goroutine that touches them; websocket clients
// stream input in and receive state notifications and draw frames back.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/annotate/internal/canvas"
	"github.com/inamate/annotate/internal/clipboard"
	"github.com/inamate/annotate/internal/typeid"
)

// Loader returns the scene bytes a session starts from.
type Loader func(ctx context.Context, documentID string) ([]byte, error)

// Saver stores scene bytes and returns the new revision number.
type Saver func(ctx context.Context, documentID string, data []byte) (int, error)

const (
	DefaultAutosave = 30 * time.Second
	saveTimeout     = 10 * time.Second
)

type Options struct {
	Load     Loader
	Save     Saver
	Settings canvas.Settings
	// AssetPath resolves an uploaded asset id to a raster file.
	AssetPath func(assetID string) (string, error)
	// TempDir receives bitmaps pasted into a session.
	TempDir string
	// Clipboard is shared by every room. When nil each room gets its own.
	Clipboard clipboard.Clipboard
	// Autosave is the interval between saves of changed documents. Zero
	// means DefaultAutosave; negative disables it.
	Autosave time.Duration
	// Width and Height size a canvas until its editor reports a viewport.
	Width, Height float64
}

// Room is one open document. A new session id is issued each time the
// document is opened, so clients can tell a reopened room from the one
// they left.
type Room struct {
	documentID  string
	sessionID   string
	canvas      *canvas.Canvas
	clients     map[string]*Client // clientID -> client
	roster      *Roster
	unsubscribe func()

	saved   []byte
	version int
	frame   bool
}

func NewRoom(documentID string, c *canvas.Canvas, saved []byte) *Room {
	return &Room{
		documentID: documentID,
		sessionID:  typeid.NewSessionID(),
		canvas:     c,
		clients:    make(map[string]*Client),
		roster:     NewRoster(),
		saved:      saved,
	}
}

type inbound struct {
	client *Client
	msg    *Message
}

type Hub struct {
	opts     Options
	settings canvas.Settings
	rooms    map[string]*Room // documentID -> room

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	post       chan func()
	apply      chan canvas.Settings
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub(opts Options) *Hub {
	if opts.Autosave == 0 {
		opts.Autosave = DefaultAutosave
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	return &Hub{
		opts:       opts,
		settings:   opts.Settings,
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound, 64),
		post:       make(chan func(), 64),
		apply:      make(chan canvas.Settings),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	var autosave <-chan time.Time
	if h.opts.Autosave > 0 {
		ticker := time.NewTicker(h.opts.Autosave)
		defer ticker.Stop()
		autosave = ticker.C
	}

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.inbound:
			h.handleMessage(in.client, in.msg)
		case fn := <-h.post:
			fn()
		case s := <-h.apply:
			h.applySettings(s)
		case <-autosave:
			for _, room := range h.rooms {
				h.save(room)
			}
		case <-h.stop:
			h.shutdown()
			return
		}
		h.flush()
	}
}

// Stop saves every changed document, disconnects all clients and waits for
// Run to return.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Dispatch queues a message from client for the hub goroutine.
func (h *Hub) Dispatch(client *Client, msg *Message) {
	select {
	case h.inbound <- inbound{client: client, msg: msg}:
	case <-h.done:
	}
}

// Post runs fn on the hub goroutine. Canvases use it to deliver the
// results of background image decoding.
func (h *Hub) Post(fn func()) {
	select {
	case h.post <- fn:
	case <-h.done:
	}
}

// ApplySettings hands new preferences to every live canvas and to canvases
// opened later.
func (h *Hub) ApplySettings(s canvas.Settings) {
	select {
	case h.apply <- s:
	case <-h.done:
	}
}

func (h *Hub) applySettings(s canvas.Settings) {
	h.settings = s
	for _, room := range h.rooms {
		room.canvas.ApplySettings(s)
	}
	slog.Info("settings applied", "rooms", len(h.rooms))
}

func (h *Hub) openRoom(documentID string) (*Room, error) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	data, err := h.opts.Load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	clip := h.opts.Clipboard
	if clip == nil {
		clip = &clipboard.Memory{}
	}
	c := canvas.New(canvas.Options{
		Settings:  h.settings,
		Width:     h.opts.Width,
		Height:    h.opts.Height,
		Clipboard: clip,
		Post:      h.Post,
		TempDir:   h.opts.TempDir,
	})
	if err := c.LoadBytes(data); err != nil {
		return nil, err
	}
	room := NewRoom(documentID, c, c.Bytes())
	room.unsubscribe = c.Subscribe(func(e canvas.Event) { h.onCanvasEvent(room, e) })
	h.rooms[documentID] = room
	slog.Info("session opened", "document", documentID, "session", room.sessionID)
	return room, nil
}

func (h *Hub) addClient(client *Client) {
	room, ok := h.rooms[client.DocumentID]
	if !ok {
		var err error
		room, err = h.openRoom(client.DocumentID)
		if err != nil {
			slog.Warn("open session failed", "document", client.DocumentID, "error", err)
			client.Send(errorMessage("", "cannot open document"))
			client.close()
			return
		}
	}
	room.clients[client.ClientID] = client
	client.Role = room.roster.Join(client.ClientID)

	client.Send(newMessage(TypeWelcome, WelcomePayload{
		ClientID:   client.ClientID,
		DocumentID: room.documentID,
		SessionID:  room.sessionID,
		Role:       client.Role,
		State:      room.canvas.State(),
		Commands:   room.canvas.Commands(),
	}))
	client.Send(newMessage(TypePresenceState, room.roster.State()))
	h.sendFrame(room, client)

	h.broadcastToRoom(room, newMessage(TypePresenceJoin, PresenceJoinPayload{
		ClientID: client.ClientID,
		Role:     client.Role,
	}), client.ClientID)

	slog.Info("client joined", "client", client.ClientID, "document", room.documentID, "role", client.Role)
}

func (h *Hub) removeClient(client *Client) {
	room, ok := h.rooms[client.DocumentID]
	if !ok || room.clients[client.ClientID] != client {
		client.close()
		return
	}

	delete(room.clients, client.ClientID)
	wasEditor := room.roster.Editor() == client.ClientID
	promoted := room.roster.Leave(client.ClientID)
	client.close()

	h.broadcastToRoom(room, newMessage(TypePresenceLeave, PresenceLeavePayload{
		ClientID: client.ClientID,
	}), "")

	if wasEditor {
		room.canvas.LostMouseCapture()
	}
	if next, ok := room.clients[promoted]; ok {
		next.Role = RoleEditor
		next.Send(newMessage(TypeRole, RolePayload{Role: RoleEditor}))
	}

	if len(room.clients) == 0 {
		h.closeRoom(room)
	}

	slog.Info("client left", "client", client.ClientID, "document", client.DocumentID)
}

func (h *Hub) closeRoom(room *Room) {
	h.save(room)
	room.unsubscribe()
	delete(h.rooms, room.documentID)
	slog.Info("session closed", "document", room.documentID)
}

func (h *Hub) shutdown() {
	for _, room := range h.rooms {
		h.save(room)
		for _, c := range room.clients {
			c.close()
		}
		room.unsubscribe()
	}
	h.rooms = make(map[string]*Room)
	slog.Info("sessions stopped")
}

// save stores the drawing when it differs from what was last loaded or
// saved.
func (h *Hub) save(room *Room) bool {
	data := room.canvas.Bytes()
	if bytes.Equal(data, room.saved) {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	version, err := h.opts.Save(ctx, room.documentID, data)
	if err != nil {
		slog.Error("save document failed", "document", room.documentID, "error", err)
		return false
	}
	room.saved = data
	room.version = version
	slog.Info("document saved", "document", room.documentID, "version", version)
	return true
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	room, ok := h.rooms[sender.DocumentID]
	if !ok || room.clients[sender.ClientID] != sender {
		return
	}
	if err := h.applyMessage(room, sender, msg); err != nil {
		slog.Debug("message rejected", "type", msg.Type, "client", sender.ClientID, "error", err)
		sender.Send(errorMessage(msg.Type, err.Error()))
	}
}

func (h *Hub) onCanvasEvent(room *Room, e canvas.Event) {
	switch e.Kind {
	case canvas.Invalidated:
		room.frame = true
		return
	case canvas.TextEditRequested:
		if editor, ok := room.clients[room.roster.Editor()]; ok {
			editor.Send(newMessage(TypeEvent, e))
		}
		return
	case canvas.StateChanged:
		h.broadcastToRoom(room, newMessage(TypeCommands, room.canvas.Commands()), "")
	case canvas.ZoomChanged:
		room.frame = true
	}
	h.broadcastToRoom(room, newMessage(TypeEvent, e), "")
}

// flush sends one frame to every room that was invalidated since the last
// flush.
func (h *Hub) flush() {
	for _, room := range h.rooms {
		if !room.frame {
			continue
		}
		room.frame = false
		h.sendFrame(room, nil)
	}
}

func (h *Hub) sendFrame(room *Room, to *Client) {
	frame, err := room.canvas.RenderJSON()
	if err != nil {
		slog.Error("render frame failed", "document", room.documentID, "error", err)
		return
	}
	msg := &Message{Type: TypeFrame, DocumentID: room.documentID, Payload: json.RawMessage(frame)}
	if to != nil {
		to.SendFrame(msg)
		return
	}
	for _, c := range room.clients {
		c.SendFrame(msg)
	}
}

func (h *Hub) broadcastToRoom(room *Room, msg *Message, excludeClientID string) {
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}

func newMessage(typ string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "type", typ, "error", err)
		return &Message{Type: TypeError}
	}
	return &Message{Type: typ, Payload: data}
}

func errorMessage(request, message string) *Message {
	return newMessage(TypeError, ErrorPayload{Message: message, Request: request})
}
