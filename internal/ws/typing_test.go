package ws

import "testing"

func TestTypingTracker_FirstTyper(t *testing.T) {
	tr := NewTypingTracker()

	if first := tr.Start("general", "alice"); !first {
		t.Error("Start() on empty set = false, want true")
	}
	if first := tr.Start("general", "bob"); first {
		t.Error("Start() with existing typer = true, want false")
	}
}

func TestTypingTracker_StopRemaining(t *testing.T) {
	tr := NewTypingTracker()
	tr.Start("general", "bob")
	tr.Start("general", "alice")

	remaining, tracked := tr.Stop("general", "bob")
	if !tracked {
		t.Fatal("Stop() tracked = false, want true")
	}
	if len(remaining) != 1 || remaining[0] != "alice" {
		t.Errorf("Stop() remaining = %v, want [alice]", remaining)
	}

	remaining, tracked = tr.Stop("general", "alice")
	if !tracked {
		t.Fatal("Stop() tracked = false, want true")
	}
	if len(remaining) != 0 {
		t.Errorf("Stop() remaining = %v, want empty", remaining)
	}
}

func TestTypingTracker_StopUntrackedRoom(t *testing.T) {
	tr := NewTypingTracker()

	if _, tracked := tr.Stop("nowhere", "alice"); tracked {
		t.Error("Stop() on untracked room = tracked, want untracked")
	}
}

func TestTypingTracker_StopAbsentUser(t *testing.T) {
	tr := NewTypingTracker()
	tr.Start("general", "alice")

	remaining, tracked := tr.Stop("general", "ghost")
	if !tracked {
		t.Fatal("Stop() tracked = false, want true")
	}
	if len(remaining) != 1 || remaining[0] != "alice" {
		t.Errorf("Stop() remaining = %v, want [alice]", remaining)
	}
}

func TestTypingTracker_ClearOnDisconnect(t *testing.T) {
	tr := NewTypingTracker()
	tr.Start("general", "alice")

	remaining, tracked := tr.ClearOnDisconnect("general", "alice")
	if !tracked {
		t.Fatal("ClearOnDisconnect() tracked = false, want true")
	}
	if len(remaining) != 0 {
		t.Errorf("ClearOnDisconnect() remaining = %v, want empty", remaining)
	}
	if got := tr.Typing("general"); len(got) != 0 {
		t.Errorf("Typing() after clear = %v, want empty", got)
	}
}
