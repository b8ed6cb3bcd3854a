// Package agent runs the tool-calling orchestration loop.
//
// A turn moves through Thinking (one model call) and Acting (dispatch
// of every tool call the model emitted, in order) until the model
// answers without tool calls. Tool failures flow back to the model as
// error observations; only backend unavailability, session conflicts,
// and the round cap abort a turn.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Bacoazul/Argos-Core/internal/llm"
	"github.com/Bacoazul/Argos-Core/internal/session"
	"github.com/Bacoazul/Argos-Core/internal/tools"
)

// ErrLoopExceeded is returned when a turn hits the model-call cap
// without producing a final answer.
var ErrLoopExceeded = errors.New("tool loop exceeded round limit")

// DefaultMaxToolRounds bounds model calls per turn.
const DefaultMaxToolRounds = 8

// Options tune a Loop.
type Options struct {
	// Model is the model name passed to the backend.
	Model string

	// MaxToolRounds bounds model calls per turn. Zero selects
	// DefaultMaxToolRounds.
	MaxToolRounds int

	// SystemPrompt produces the persona message injected once, when a
	// session's log is empty. Nil disables persona injection.
	SystemPrompt func() string
}

// Loop orchestrates turns against injected collaborators.
type Loop struct {
	logger       *slog.Logger
	client       llm.Client
	sessions     *session.Store
	registry     *tools.Registry
	model        string
	maxRounds    int
	systemPrompt func() string
}

// NewLoop creates an orchestration loop.
func NewLoop(logger *slog.Logger, client llm.Client, sessions *session.Store, registry *tools.Registry, opts Options) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	maxRounds := opts.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}
	return &Loop{
		logger:       logger.With("component", "agent"),
		client:       client,
		sessions:     sessions,
		registry:     registry,
		model:        opts.Model,
		maxRounds:    maxRounds,
		systemPrompt: opts.SystemPrompt,
	}
}

// RunTurn processes one user turn against a session and returns the
// model's final text answer.
//
// Messages are staged and committed to the session log only at step
// boundaries: the persona (first turn only), the user message, and
// each assistant message commit together after a successful model
// call; each tool result commits right after its dispatch. A backend
// failure on the first model call therefore leaves the log exactly as
// it was before the turn.
func (l *Loop) RunTurn(ctx context.Context, sessionID, userText string) (string, error) {
	if err := l.sessions.BeginTurn(sessionID); err != nil {
		return "", err
	}
	defer l.sessions.EndTurn(sessionID)

	l.logger.Info("turn started", "session_id", sessionID)

	var staged []llm.Message
	if l.systemPrompt != nil && l.sessions.Len(sessionID) == 0 {
		staged = append(staged, llm.Message{Role: llm.RoleSystem, Content: l.systemPrompt()})
	}
	staged = append(staged, llm.Message{Role: llm.RoleUser, Content: userText})

	// working is the model's view: committed log plus staged messages.
	working := append(l.sessions.Snapshot(sessionID), staged...)
	defs := l.registry.Definitions()

	for round := 1; ; round++ {
		if round > l.maxRounds {
			l.logger.Warn("turn aborted at round cap", "session_id", sessionID, "rounds", l.maxRounds)
			return "", fmt.Errorf("%w (%d rounds)", ErrLoopExceeded, l.maxRounds)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err := l.client.Chat(ctx, l.model, working, defs)
		if err != nil {
			return "", fmt.Errorf("model call (round %d): %w", round, err)
		}

		assistant := resp.Message
		assistant.Role = llm.RoleAssistant
		for i := range assistant.ToolCalls {
			if assistant.ToolCalls[i].ID == "" {
				assistant.ToolCalls[i].ID = uuid.NewString()
			}
		}

		// working already holds the staged prefix; only the assistant
		// message is new to it.
		staged = append(staged, assistant)
		l.sessions.Append(sessionID, staged...)
		working = append(working, assistant)
		staged = staged[:0]

		if len(assistant.ToolCalls) == 0 {
			l.logger.Info("turn complete",
				"session_id", sessionID,
				"rounds", round,
				"answer_len", len(assistant.Content),
			)
			return assistant.Content, nil
		}

		l.logger.Debug("executing tool batch",
			"session_id", sessionID,
			"round", round,
			"calls", len(assistant.ToolCalls),
		)

		for _, tc := range assistant.ToolCalls {
			if err := ctx.Err(); err != nil {
				return "", err
			}

			result := l.registry.Dispatch(ctx, tools.Call{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})

			content := result.Content
			if result.IsError {
				content = "ERROR: " + content
			}

			msg := llm.Message{
				Role:       llm.RoleTool,
				Content:    content,
				ToolCallID: result.ToolCallID,
			}
			l.sessions.Append(sessionID, msg)
			working = append(working, msg)
		}
	}
}

// Reset abandons the session's history and returns the replacement
// session id.
func (l *Loop) Reset(sessionID string) string {
	return l.sessions.Reset(sessionID)
}
