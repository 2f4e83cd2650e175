package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"log/slog"

	"github.com/deepankarpant15/BanterBox/internal/store"
	"github.com/deepankarpant15/BanterBox/pkg/metrics"
)

// MessageStore is the external append-only message store the relay persists
// chat messages to and replays room history from.
type MessageStore interface {
	SaveMessage(ctx context.Context, username, text, room string) (store.Message, error)
	RoomHistory(ctx context.Context, room string, limit int) ([]store.Message, error)
}

// Bus fans chat messages out to other instances. Optional; a nil bus means
// single-instance operation.
type Bus interface {
	Publish(ctx context.Context, room string, payload []byte) error
	Subscribe(ctx context.Context, fn func(room string, payload []byte))
}

type handlerFunc func(ctx context.Context, c *Conn, data json.RawMessage)

// Hub is the event dispatcher: it owns the connection registry and typing
// tracker, wires inbound named events to their mutations, and issues the
// room-scoped broadcasts. Each connection's events are handled serially on
// its own read loop; different connections interleave freely.
type Hub struct {
	log    *slog.Logger
	db     MessageStore
	bus    Bus
	reg    *Registry
	typing *TypingTracker

	historyLimit int
	routes       map[string]handlerFunc
}

// NewHub sets up the hub with the message store, optional fanout bus + logger.
func NewHub(logger *slog.Logger, bus Bus, db MessageStore, historyLimit int) *Hub {
	h := &Hub{
		log:          logger,
		db:           db,
		bus:          bus,
		reg:          NewRegistry(),
		typing:       NewTypingTracker(),
		historyLimit: historyLimit,
	}
	h.routes = map[string]handlerFunc{
		EvSetUsername: h.handleSetUsername,
		EvJoinRoom:    h.handleJoinRoom,
		EvTyping:      h.handleTyping,
		EvStopTyping:  h.handleStopTyping,
		EvChatMessage: h.handleChatMessage,
	}
	return h
}

// UsersIn exposes the live roster for a room (normalized).
func (h *Hub) UsersIn(room string) []string {
	return h.reg.UsersIn(normalize(room))
}

// Run forwards bus messages from other instances into local rooms until ctx
// is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.bus != nil {
		go h.bus.Subscribe(ctx, func(room string, payload []byte) {
			h.toRoom(room, payload)
		})
	}
	<-ctx.Done()
}

// ServeWS handles a new /ws connection for its whole lifetime.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sock, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	c := NewConn(sock)
	h.handleConnect(c)
	go c.WriteLoop(ctx)

	for {
		payload, ok := c.Read(ctx)
		if !ok {
			break
		}
		h.dispatch(ctx, c, payload)
	}

	h.handleDisconnect(c)
	_ = c.Close()
}

// dispatch decodes the envelope and routes it by event name. Unknown or
// malformed frames are dropped.
func (h *Hub) dispatch(ctx context.Context, c *Conn, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.log.Debug("ws.frame.bad", "conn", c.id, "err", err)
		return
	}
	handler, ok := h.routes[env.Event]
	if !ok {
		h.log.Debug("ws.event.unknown", "conn", c.id, "event", env.Event)
		return
	}
	metrics.EventsTotal.WithLabelValues(env.Event).Inc()
	handler(ctx, c, env.Data)
}

// handleConnect registers the connection and sends the one-time welcome.
// The client has not declared a room yet, so no group is joined.
func (h *Hub) handleConnect(c *Conn) {
	h.reg.Add(c)
	metrics.ConnectionsActive.Inc()
	c.send(encode(EvWelcome, "Welcome to the chat!"))
	h.log.Info("ws.connect", "conn", c.id)
}

func (h *Hub) handleSetUsername(_ context.Context, c *Conn, data json.RawMessage) {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return
	}
	c.setUsername(normalize(name))
	h.log.Debug("ws.username", "conn", c.id, "username", c.Username())
}

// handleJoinRoom runs the room-switch sequence: announce + roster on the
// side being left, then group add + identity update, join announcement,
// history replay to the joiner, fresh roster. Rejoining the current room
// still announces.
func (h *Hub) handleJoinRoom(ctx context.Context, c *Conn, data json.RawMessage) {
	var p JoinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	username := normalize(p.Username)
	room := normalize(p.Room)

	previous := c.Room()
	if previous != "" && previous != room {
		c.leave()
		h.toRoom(previous, systemMessage(username+" has left room #"+previous+"."))
		h.toRoom(previous, encode(EvUpdateUserList, h.reg.UsersIn(previous)))
	}

	c.join(username, room)
	h.toRoom(room, systemMessage(username+" has joined room #"+room+"."))

	// History replay goes to the joiner only. A fetch failure degrades to an
	// empty batch rather than surfacing an error.
	history := []ChatMessage{}
	msgs, err := h.db.RoomHistory(ctx, room, h.historyLimit)
	if err != nil {
		h.log.Error("room.history", "room", room, "err", err)
	}
	for _, m := range msgs {
		history = append(history, ChatMessage{Username: m.Username, Text: m.Text, Room: m.Room})
	}
	c.send(encode(EvRoomHistory, history))

	h.toRoom(room, encode(EvUpdateUserList, h.reg.UsersIn(room)))
	h.log.Info("ws.join", "conn", c.id, "username", username, "room", room)
}

func (h *Hub) handleTyping(_ context.Context, c *Conn, data json.RawMessage) {
	var p TypingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	username := normalize(p.Username)
	room := normalize(p.Room)

	if first := h.typing.Start(room, username); first {
		h.log.Debug("typing.first", "room", room, "username", username)
	}
	// The latest typer's name is re-emitted even with several people typing;
	// the wire contract only expresses a single name.
	h.toRoomExcept(room, c, encode(EvTyping, TypingNotice{Username: username}))
}

func (h *Hub) handleStopTyping(_ context.Context, c *Conn, data json.RawMessage) {
	var p TypingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	h.stopTyping(c, normalize(p.Room), normalize(p.Username))
}

// stopTyping applies the removal broadcast policy, excluding the sender.
func (h *Hub) stopTyping(c *Conn, room, username string) {
	remaining, tracked := h.typing.Stop(room, username)
	if !tracked {
		return
	}
	if len(remaining) == 0 {
		h.toRoomExcept(room, c, encode(EvStopTyping, nil))
		return
	}
	h.toRoomExcept(room, c, encode(EvTyping, TypingNotice{Username: remaining[0]}))
}

// handleChatMessage persists and broadcasts a message. Identity and room
// come from connection state; the payload only carries the text.
func (h *Hub) handleChatMessage(ctx context.Context, c *Conn, data json.RawMessage) {
	var p ChatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.log.Debug("chat.payload.bad", "conn", c.id)
		return
	}
	text := strings.TrimSpace(p.Text)
	if text == "" {
		h.log.Debug("chat.empty", "conn", c.id)
		return
	}

	username := c.Username()
	room := c.Room()

	if _, err := h.db.SaveMessage(ctx, username, text, room); err != nil {
		// Store logs the classified cause; the message is dropped, the
		// connection lives on.
		return
	}
	metrics.MessagesSaved.Inc()

	payload := encode(EvChatMessage, ChatMessage{Username: username, Text: text, Room: room})
	h.toRoom(room, payload)
	if h.bus != nil {
		_ = h.bus.Publish(ctx, room, payload)
	}

	// Sending a message implies the sender stopped typing.
	h.stopTyping(c, room, username)
}

// handleDisconnect announces the departure to the last-known room, clears
// typing state with full-room broadcasts (the sender is gone), refreshes the
// roster and drops the registry entry.
func (h *Hub) handleDisconnect(c *Conn) {
	username := c.Username()
	room := c.Room()

	c.leave()
	h.toRoom(room, systemMessage(username+" has left room #"+room+"."))

	if remaining, tracked := h.typing.ClearOnDisconnect(room, username); tracked {
		if len(remaining) == 0 {
			h.toRoom(room, encode(EvStopTyping, nil))
		} else {
			h.toRoom(room, encode(EvTyping, TypingNotice{Username: remaining[0]}))
		}
	}

	h.toRoom(room, encode(EvUpdateUserList, h.reg.UsersIn(room)))
	h.reg.Remove(c.id)
	metrics.ConnectionsActive.Dec()
	h.log.Info("ws.disconnect", "conn", c.id, "username", username, "room", room)
}

// toRoom enqueues a frame for every member of room.
func (h *Hub) toRoom(room string, payload []byte) {
	for _, c := range h.reg.InRoom(room) {
		c.send(payload)
	}
}

// toRoomExcept enqueues a frame for every member of room but the sender.
func (h *Hub) toRoomExcept(room string, sender *Conn, payload []byte) {
	for _, c := range h.reg.InRoom(room) {
		if c != sender {
			c.send(payload)
		}
	}
}
