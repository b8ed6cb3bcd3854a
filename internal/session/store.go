// Package session keeps per-session conversation logs in memory.
//
// Each session owns an append-only message log. Logs are created
// lazily on first touch and are never shared between session ids.
// A turn guard serializes turns within a session: a second turn
// against a session whose turn is still in flight fails fast with
// ErrTurnInFlight instead of interleaving messages.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Bacoazul/Argos-Core/internal/llm"
)

// ErrTurnInFlight is returned by BeginTurn when the session is
// already processing a turn. Callers may retry after the active
// turn completes.
var ErrTurnInFlight = errors.New("session turn already in flight")

type log struct {
	messages []llm.Message
	inFlight bool
}

// Store holds all session logs. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	logs   map[string]*log
	logger *slog.Logger
}

// NewStore creates an empty store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logs:   make(map[string]*log),
		logger: logger.With("component", "session"),
	}
}

// getOrCreate must be called with s.mu held.
func (s *Store) getOrCreate(id string) *log {
	l, ok := s.logs[id]
	if !ok {
		l = &log{}
		s.logs[id] = l
		s.logger.Debug("session created", "session_id", id)
	}
	return l
}

// GetOrCreate ensures a log exists for id, creating an empty one if
// needed. Calling it repeatedly with the same id touches the same log.
func (s *Store) GetOrCreate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(id)
}

// Append adds messages to the session's log in order. The log is
// created if absent. Appended messages are never reordered or
// removed afterward.
func (s *Store) Append(id string, msgs ...llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.getOrCreate(id)
	l.messages = append(l.messages, msgs...)
}

// Snapshot returns a copy of the session's messages. The caller may
// extend the returned slice freely without affecting the log.
func (s *Store) Snapshot(id string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.getOrCreate(id)
	out := make([]llm.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages in the session's log without
// creating the session.
func (s *Store) Len(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.logs[id]; ok {
		return len(l.messages)
	}
	return 0
}

// BeginTurn claims the session for a turn, creating the session if
// absent. Returns ErrTurnInFlight if another turn holds the claim.
func (s *Store) BeginTurn(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.getOrCreate(id)
	if l.inFlight {
		return fmt.Errorf("session %s: %w", id, ErrTurnInFlight)
	}
	l.inFlight = true
	return nil
}

// EndTurn releases the turn claim. Safe to call for unknown sessions.
func (s *Store) EndTurn(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.logs[id]; ok {
		l.inFlight = false
	}
}

// Reset abandons the session's log and returns a fresh session id
// with an empty log. The old id is forgotten entirely, so a turn
// against it would start from an empty log rather than resurrect
// history.
func (s *Store) Reset(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, id)
	newID := uuid.NewString()
	s.logs[newID] = &log{}
	s.logger.Info("session reset", "old_session_id", id, "new_session_id", newID)
	return newID
}

// NewID mints a fresh session id.
func NewID() string {
	return uuid.NewString()
}
