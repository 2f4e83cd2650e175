package ws

import (
	"encoding/json"
	"strings"
)

// Inbound event names (client -> server).
const (
	EvSetUsername = "set username"
	EvJoinRoom    = "join room"
	EvTyping      = "typing"
	EvStopTyping  = "stop typing"
	EvChatMessage = "chat message"
)

// Outbound event names (server -> client). Typing, stop typing and chat
// message share their names with the inbound side.
const (
	EvWelcome        = "welcome"
	EvRoomHistory    = "room history"
	EvUpdateUserList = "update user list"
)

// Envelope is the wire frame: a named event plus its JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRoomPayload is the inbound "join room" payload.
type JoinRoomPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// TypingPayload is the inbound "typing" / "stop typing" payload.
type TypingPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// ChatPayload is the inbound "chat message" payload. Room and username are
// taken from connection state, never from the payload.
type ChatPayload struct {
	Text string `json:"text"`
}

// ChatMessage is the outbound chat message shape, also used for history
// entries. System notices carry no room.
type ChatMessage struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Room     string `json:"room,omitempty"`
}

// TypingNotice is the outbound "typing" payload.
type TypingNotice struct {
	Username string `json:"username"`
}

// normalize lowercases usernames and room names before they are used as
// identity or grouping keys. Idempotent.
func normalize(s string) string { return strings.ToLower(s) }

// encode marshals an outbound envelope. A nil payload yields a bare event.
func encode(event string, data any) []byte {
	env := Envelope{Event: event}
	if data != nil {
		raw, _ := json.Marshal(data)
		env.Data = raw
	}
	b, _ := json.Marshal(env)
	return b
}

// systemMessage builds a System-authored chat notice.
func systemMessage(text string) []byte {
	return encode(EvChatMessage, ChatMessage{Username: "System", Text: text})
}
