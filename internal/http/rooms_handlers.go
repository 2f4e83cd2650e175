package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/deepankarpant15/BanterBox/internal/store"
)

// HistoryStore is the slice of the message store the REST layer reads from.
type HistoryStore interface {
	RoomHistory(ctx context.Context, room string, limit int) ([]store.Message, error)
}

// Roster answers live membership queries for a room.
type Roster interface {
	UsersIn(room string) []string
}

type RoomsAPI struct {
	DB    HistoryStore
	Rooms Roster
	Limit int
}

type messageDTO struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Room     string `json:"room"`
}

// History returns a room's persisted messages, oldest first.
func (a *RoomsAPI) History(w http.ResponseWriter, r *http.Request) {
	room := strings.ToLower(r.PathValue("room"))
	if room == "" {
		http.Error(w, "room required", http.StatusBadRequest)
		return
	}

	msgs, err := a.DB.RoomHistory(r.Context(), room, a.Limit)
	if err != nil {
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	out := make([]messageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageDTO{Username: m.Username, Text: m.Text, Room: m.Room})
	}
	writeJSON(w, out)
}

// Users returns the live roster for a room.
func (a *RoomsAPI) Users(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	if room == "" {
		http.Error(w, "room required", http.StatusBadRequest)
		return
	}
	writeJSON(w, a.Rooms.UsersIn(room))
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
