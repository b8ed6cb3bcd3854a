package session

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Bacoazul/Argos-Core/internal/llm"
)

func newTestStore() *Store {
	return NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetOrCreateIdempotent(t *testing.T) {
	s := newTestStore()

	s.GetOrCreate("a")
	s.Append("a", llm.Message{Role: llm.RoleUser, Content: "hello"})
	s.GetOrCreate("a")

	if got := s.Len("a"); got != 1 {
		t.Errorf("Len after repeated GetOrCreate = %d, want 1", got)
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	s := newTestStore()

	s.Append("a",
		llm.Message{Role: llm.RoleSystem, Content: "persona"},
		llm.Message{Role: llm.RoleUser, Content: "one"},
	)
	s.Append("a", llm.Message{Role: llm.RoleAssistant, Content: "two"})

	snap := s.Snapshot("a")
	want := []string{"persona", "one", "two"}
	if len(snap) != len(want) {
		t.Fatalf("Snapshot length = %d, want %d", len(snap), len(want))
	}
	for i, content := range want {
		if snap[i].Content != content {
			t.Errorf("message %d content = %q, want %q", i, snap[i].Content, content)
		}
	}
}

func TestSessionIsolation(t *testing.T) {
	s := newTestStore()

	s.Append("a", llm.Message{Role: llm.RoleUser, Content: "for a"})
	s.Append("b", llm.Message{Role: llm.RoleUser, Content: "for b"})

	if got := s.Len("a"); got != 1 {
		t.Errorf("session a Len = %d, want 1", got)
	}
	if got := s.Len("b"); got != 1 {
		t.Errorf("session b Len = %d, want 1", got)
	}
	if s.Snapshot("a")[0].Content == s.Snapshot("b")[0].Content {
		t.Error("sessions share message content")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := newTestStore()
	s.Append("a", llm.Message{Role: llm.RoleUser, Content: "original"})

	snap := s.Snapshot("a")
	snap[0].Content = "mutated"
	snap = append(snap, llm.Message{Role: llm.RoleUser, Content: "extra"})
	_ = snap

	if got := s.Snapshot("a")[0].Content; got != "original" {
		t.Errorf("log content = %q after mutating snapshot, want %q", got, "original")
	}
	if got := s.Len("a"); got != 1 {
		t.Errorf("Len = %d after appending to snapshot, want 1", got)
	}
}

func TestBeginTurnConflict(t *testing.T) {
	s := newTestStore()

	if err := s.BeginTurn("a"); err != nil {
		t.Fatalf("first BeginTurn: %v", err)
	}
	if err := s.BeginTurn("a"); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("second BeginTurn error = %v, want ErrTurnInFlight", err)
	}

	// A different session is unaffected.
	if err := s.BeginTurn("b"); err != nil {
		t.Errorf("BeginTurn on other session: %v", err)
	}

	s.EndTurn("a")
	if err := s.BeginTurn("a"); err != nil {
		t.Errorf("BeginTurn after EndTurn: %v", err)
	}
}

func TestReset(t *testing.T) {
	s := newTestStore()
	s.Append("old", llm.Message{Role: llm.RoleUser, Content: "history"})

	newID := s.Reset("old")
	if newID == "" || newID == "old" {
		t.Fatalf("Reset returned %q, want a fresh id", newID)
	}
	if got := s.Len(newID); got != 0 {
		t.Errorf("new session Len = %d, want 0", got)
	}
	// The old id starts over from nothing.
	if got := s.Len("old"); got != 0 {
		t.Errorf("old session Len = %d after reset, want 0", got)
	}
}
