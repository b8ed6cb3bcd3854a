// Package tools defines the tools available to the agent.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"unicode/utf8"
)

// EffectClass declares a tool's side-effect surface. The dispatcher
// logs it and callers can use it to gate registration.
type EffectClass string

const (
	EffectReadLocal  EffectClass = "read_local"
	EffectWriteLocal EffectClass = "write_local"
	EffectNetRead    EffectClass = "net_read"
	EffectNetWrite   EffectClass = "net_write"
)

// Param declares one tool parameter. The declared schema is the
// single source of truth: dispatch validates arguments against it and
// Definitions derives the JSON schema sent to the model from it.
type Param struct {
	Name        string
	Type        string // "string", "integer", "number", "boolean", "object", "array"
	Description string
	Required    bool
}

// Tool represents a callable tool.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Effect      EffectClass
	Handler     func(ctx context.Context, args map[string]any) (string, error)
}

// Schema returns the tool's parameters as a JSON-schema map.
func (t *Tool) Schema() map[string]any {
	properties := make(map[string]any, len(t.Params))
	var required []string
	for _, p := range t.Params {
		properties[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Call is one tool invocation requested by the model.
type Call struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Result is the observation produced for a Call. Every Call yields
// exactly one Result; failures set IsError and describe the failure
// in Content.
type Result struct {
	ToolCallID string
	Content    string
	IsError    bool
}

// TruncationMarker is appended to oversize results in place of the
// removed bytes.
const TruncationMarker = "\n[result truncated]"

// DefaultMaxResultBytes caps a single tool result's content.
const DefaultMaxResultBytes = 8192

// Registry holds available tools and dispatches calls against them.
type Registry struct {
	mu             sync.RWMutex
	tools          map[string]*Tool
	order          []string
	maxResultBytes int
	logger         *slog.Logger
}

// NewRegistry creates an empty registry. maxResultBytes <= 0 selects
// DefaultMaxResultBytes.
func NewRegistry(logger *slog.Logger, maxResultBytes int) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if maxResultBytes <= 0 {
		maxResultBytes = DefaultMaxResultBytes
	}
	return &Registry{
		tools:          make(map[string]*Tool),
		maxResultBytes: maxResultBytes,
		logger:         logger.With("component", "tools"),
	}
}

// Register adds a tool, replacing any existing tool of the same name.
func (r *Registry) Register(t *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t
	r.logger.Debug("tool registered", "tool", t.Name, "effect", t.Effect)
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions returns all tools in the function-call format passed to
// model backends, in registration order.
func (r *Registry) Definitions() []map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]map[string]any, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Schema(),
			},
		})
	}
	return defs
}

// Dispatch executes one call and always produces a Result carrying
// the call's ID. Unknown tools, argument validation failures, handler
// errors, and handler panics all come back as error observations;
// Dispatch itself never fails. Result content is capped at the
// registry's byte limit.
func (r *Registry) Dispatch(ctx context.Context, call Call) Result {
	res := r.dispatch(ctx, call)
	res.Content = Truncate(res.Content, r.maxResultBytes)
	return res
}

func (r *Registry) dispatch(ctx context.Context, call Call) (res Result) {
	res = Result{ToolCallID: call.ID}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("tool panic recovered", "tool", call.Name, "panic", p)
			res.Content = fmt.Sprintf("tool %s failed: internal error: %v", call.Name, p)
			res.IsError = true
		}
	}()

	tool, ok := r.Get(call.Name)
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", call.Name)
		res.Content = fmt.Sprintf("unknown tool %q (available: %v)", call.Name, r.Names())
		res.IsError = true
		return res
	}

	if err := validateArgs(tool, call.Arguments); err != nil {
		r.logger.Warn("tool argument validation failed", "tool", call.Name, "error", err)
		res.Content = fmt.Sprintf("invalid arguments for %s: %v", call.Name, err)
		res.IsError = true
		return res
	}

	out, err := tool.Handler(ctx, call.Arguments)
	if err != nil {
		r.logger.Warn("tool failed", "tool", call.Name, "error", err)
		res.Content = fmt.Sprintf("tool %s failed: %v", call.Name, err)
		res.IsError = true
		return res
	}

	r.logger.Debug("tool dispatched", "tool", call.Name, "result_len", len(out))
	res.Content = out
	return res
}

// validateArgs checks arguments against the tool's declared schema:
// required parameters must be present and all provided values must
// match their declared type. Undeclared extras are tolerated.
func validateArgs(tool *Tool, args map[string]any) error {
	var missing []string
	for _, p := range tool.Params {
		v, ok := args[p.Name]
		if !ok {
			if p.Required {
				missing = append(missing, p.Name)
			}
			continue
		}
		if !typeMatches(p.Type, v) {
			return fmt.Errorf("parameter %q: expected %s, got %T", p.Name, p.Type, v)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required parameters: %v", missing)
	}
	return nil
}

// typeMatches reports whether a decoded JSON value satisfies the
// declared parameter type. JSON numbers arrive as float64; "integer"
// accepts any whole-valued number.
func typeMatches(declared string, v any) bool {
	switch declared {
	case "string":
		_, ok := v.(string)
		return ok
	case "integer":
		f, ok := v.(float64)
		if ok {
			return f == float64(int64(f))
		}
		_, ok = v.(int)
		return ok
	case "number":
		switch v.(type) {
		case float64, int:
			return true
		}
		return false
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	default:
		return true
	}
}

// Truncate caps s at max bytes, appending TruncationMarker when
// anything was removed. The cut lands on a rune boundary so the
// marker never splits a multi-byte character. Deterministic for a
// given input and limit.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + TruncationMarker
}
