package ws

import (
	"sort"
	"sync"
)

// TypingTracker keeps the per-room sets of usernames currently typing.
// The dispatcher owns all mutation; broadcasts are the caller's job.
type TypingTracker struct {
	mu    sync.Mutex
	rooms map[string]map[string]struct{}
}

func NewTypingTracker() *TypingTracker {
	return &TypingTracker{rooms: map[string]map[string]struct{}{}}
}

// Start marks user as typing in room and reports whether the room's set was
// empty beforehand (the first-typer transition).
func (t *TypingTracker) Start(room, user string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := t.rooms[room]
	if set == nil {
		set = map[string]struct{}{}
		t.rooms[room] = set
	}
	wasEmpty := len(set) == 0
	set[user] = struct{}{}
	return wasEmpty
}

// Stop removes user from room's typing set. The second return is false when
// the room was never tracked, in which case no broadcast is owed. Otherwise
// the sorted remaining typers are returned (possibly none).
func (t *TypingTracker) Stop(room, user string) ([]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.rooms[room]
	if !ok {
		return nil, false
	}
	delete(set, user)
	if len(set) == 0 {
		delete(t.rooms, room)
		return nil, true
	}
	remaining := make([]string, 0, len(set))
	for u := range set {
		remaining = append(remaining, u)
	}
	sort.Strings(remaining)
	return remaining, true
}

// ClearOnDisconnect removes user on the disconnect path. Same semantics as
// Stop; kept separate because the caller broadcasts to the full room (the
// sender's connection is already gone).
func (t *TypingTracker) ClearOnDisconnect(room, user string) ([]string, bool) {
	return t.Stop(room, user)
}

// Typing returns the sorted typers for room.
func (t *TypingTracker) Typing(room string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := t.rooms[room]
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
