package forge

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/Bacoazul/Argos-Core/internal/tools"
)

// Limits for the repo tool.
const (
	// MaxListEntries caps directory listings.
	MaxListEntries = 100

	// MaxReadBytes caps file reads before registry-level truncation.
	MaxReadBytes = 48 * 1024

	// MaxIssueTitleLen and MaxIssueBodyLen cap issue fields. Over-long
	// input is truncated and flagged, not rejected.
	MaxIssueTitleLen = 250
	MaxIssueBodyLen  = 16 * 1024
)

// Tools wraps a Provider as the agent's multiplexed repo tool.
type Tools struct {
	provider     Provider
	defaultOwner string
	logger       *slog.Logger
}

// NewTools creates the repo tool wrapper. provider may be nil when no
// credentials are configured; every call then returns a credential
// error observation instead of crashing.
func NewTools(provider Provider, defaultOwner string, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{
		provider:     provider,
		defaultOwner: defaultOwner,
		logger:       logger.With("component", "forge_tools"),
	}
}

// Tool returns the multiplexed repo tool definition.
func (t *Tools) Tool() *tools.Tool {
	return &tools.Tool{
		Name:        "repo",
		Description: "Interact with a hosted source repository. Actions: list (directory contents), read (file contents), create_issue (open an issue).",
		Params: []tools.Param{
			{Name: "action", Type: "string", Description: "One of: list, read, create_issue", Required: true},
			{Name: "repo", Type: "string", Description: "Repository as owner/name, or a bare name to use the default owner", Required: true},
			{Name: "path", Type: "string", Description: "Path inside the repository (list, read)"},
			{Name: "title", Type: "string", Description: "Issue title (create_issue)"},
			{Name: "body", Type: "string", Description: "Issue body (create_issue)"},
			{Name: "labels", Type: "array", Description: "Issue label names (create_issue)"},
		},
		Effect:  tools.EffectNetWrite,
		Handler: t.handle,
	}
}

func (t *Tools) handle(ctx context.Context, args map[string]any) (string, error) {
	if t.provider == nil {
		return "", tools.Unauthorized("forge token not configured")
	}

	repo, err := t.qualifyRepo(stringArg(args, "repo"))
	if err != nil {
		return "", err
	}

	action := stringArg(args, "action")
	switch action {
	case "list":
		return t.handleList(ctx, repo, args)
	case "read":
		return t.handleRead(ctx, repo, args)
	case "create_issue":
		return t.handleCreateIssue(ctx, repo, args)
	default:
		return "", tools.Invalid("unknown action %q (valid: list, read, create_issue)", action)
	}
}

func (t *Tools) handleList(ctx context.Context, repo string, args map[string]any) (string, error) {
	dir, err := cleanRepoPath(stringArg(args, "path"))
	if err != nil {
		return "", err
	}

	entries, err := t.provider.ListContents(ctx, repo, dir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return fmt.Sprintf("%s: no entries at %q", repo, dir), nil
	}

	truncated := false
	if len(entries) > MaxListEntries {
		entries = entries[:MaxListEntries]
		truncated = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s contents of %q:\n", repo, dir)
	for _, e := range entries {
		if e.Type == "dir" {
			fmt.Fprintf(&b, "  %s/\n", e.Path)
		} else {
			fmt.Fprintf(&b, "  %s (%d bytes)\n", e.Path, e.Size)
		}
	}
	if truncated {
		fmt.Fprintf(&b, "  (listing truncated at %d entries)\n", MaxListEntries)
	}
	return b.String(), nil
}

func (t *Tools) handleRead(ctx context.Context, repo string, args map[string]any) (string, error) {
	p, err := cleanRepoPath(stringArg(args, "path"))
	if err != nil {
		return "", err
	}
	if p == "" {
		return "", tools.Invalid("read requires a file path")
	}

	file, err := t.provider.ReadFile(ctx, repo, p)
	if err != nil {
		return "", err
	}

	content := file.Content
	if len(content) > MaxReadBytes {
		content = tools.Truncate(content, MaxReadBytes)
	}
	return content, nil
}

func (t *Tools) handleCreateIssue(ctx context.Context, repo string, args map[string]any) (string, error) {
	title := strings.TrimSpace(stringArg(args, "title"))
	if title == "" {
		return "", tools.Invalid("create_issue requires a title")
	}
	body := stringArg(args, "body")

	var flags []string
	if len(title) > MaxIssueTitleLen {
		title = title[:MaxIssueTitleLen]
		flags = append(flags, "title truncated")
	}
	if len(body) > MaxIssueBodyLen {
		body = tools.Truncate(body, MaxIssueBodyLen)
		flags = append(flags, "body truncated")
	}

	issue, err := t.provider.CreateIssue(ctx, repo, &NewIssue{
		Title:  title,
		Body:   body,
		Labels: stringSliceArg(args, "labels"),
	})
	if err != nil {
		return "", err
	}

	t.logger.Info("issue created", "repo", repo, "number", issue.Number)

	out := fmt.Sprintf("created issue #%d in %s: %s", issue.Number, repo, issue.URL)
	if len(flags) > 0 {
		out += fmt.Sprintf(" (%s)", strings.Join(flags, ", "))
	}
	return out, nil
}

// qualifyRepo expands a bare repository name with the default owner.
func (t *Tools) qualifyRepo(repo string) (string, error) {
	if repo == "" {
		return "", tools.Invalid("repo is required")
	}
	if strings.Contains(repo, "/") {
		return repo, nil
	}
	if t.defaultOwner == "" {
		return "", tools.Invalid("repo %q needs owner/name format (no default owner configured)", repo)
	}
	return t.defaultOwner + "/" + repo, nil
}

// cleanRepoPath normalizes a repository path and rejects anything
// that would reach outside the repository root. The check happens
// before any network call.
func cleanRepoPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if strings.HasPrefix(p, "/") {
		return "", tools.PermissionDenied("absolute paths are not allowed: %s", p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", tools.PermissionDenied("path escapes repository root: %s", p)
	}
	if clean == "." {
		return "", nil
	}
	return clean, nil
}

// stringArg extracts a string argument, tolerating absence.
func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// stringSliceArg extracts a []string from a decoded JSON array.
func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
