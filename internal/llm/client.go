package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable marks a model backend failure: transport errors,
// non-2xx responses, undecodable payloads. Callers test for it with
// errors.Is; the orchestration loop treats it as fatal for the turn
// and does not retry.
var ErrUnavailable = errors.New("model backend unavailable")

// unavailable wraps err in ErrUnavailable with context.
func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}

// Client is the interface every model backend implements.
type Client interface {
	// Chat sends one chat completion request and returns the full
	// response. Any backend failure wraps ErrUnavailable.
	Chat(ctx context.Context, model string, messages []Message, tools []map[string]any) (*ChatResponse, error)

	// Ping checks whether the backend is reachable.
	Ping(ctx context.Context) error
}
