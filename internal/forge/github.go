package forge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gogithub "github.com/google/go-github/v69/github"

	"github.com/Bacoazul/Argos-Core/internal/tools"
)

// GitHub implements Provider using the go-github SDK.
type GitHub struct {
	client *gogithub.Client
	logger *slog.Logger
}

// NewGitHub creates a GitHub provider. httpClient may be nil for the
// default client. baseURL overrides the API endpoint (GitHub
// Enterprise, tests); empty selects api.github.com.
func NewGitHub(httpClient *http.Client, token, baseURL string, logger *slog.Logger) (*GitHub, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := gogithub.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("forge: bad base URL %q: %w", baseURL, err)
		}
	}

	return &GitHub{
		client: client,
		logger: logger.With("component", "forge"),
	}, nil
}

// splitRepo splits an "owner/repo" string into its two parts.
func splitRepo(repo string) (string, string, error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", tools.Invalid("invalid repo %q: expected owner/repo", repo)
	}
	return parts[0], parts[1], nil
}

// checkRateLimit logs a warning when remaining API calls run low.
func (g *GitHub) checkRateLimit(resp *gogithub.Response) {
	if resp == nil {
		return
	}
	if resp.Rate.Remaining < 100 {
		g.logger.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset", resp.Rate.Reset.Time,
		)
	}
}

// normalizeError maps go-github failures onto the normalized tool
// error kinds so the model sees stable observation text.
func normalizeError(op string, err error) error {
	var rateErr *gogithub.RateLimitError
	if errors.As(err, &rateErr) {
		return tools.RateLimited("%s: rate limit exceeded, resets %s", op, rateErr.Rate.Reset.Time)
	}
	var abuseErr *gogithub.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return tools.RateLimited("%s: secondary rate limit hit", op)
	}
	var respErr *gogithub.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized:
			return tools.Unauthorized("%s: credentials rejected", op)
		case http.StatusForbidden:
			return tools.PermissionDenied("%s: access forbidden", op)
		case http.StatusNotFound:
			return tools.NotFound("%s: not found", op)
		case http.StatusUnprocessableEntity:
			return tools.Invalid("%s: request rejected: %s", op, respErr.Message)
		}
	}
	return fmt.Errorf("forge: %s: %w", op, err)
}

// ListContents lists the entries at a directory path.
func (g *GitHub) ListContents(ctx context.Context, repo, path string) ([]Entry, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	fileContent, dirContent, resp, err := g.client.Repositories.GetContents(ctx, owner, name, path, nil)
	if err != nil {
		return nil, normalizeError(fmt.Sprintf("list %s in %s", path, repo), err)
	}
	g.checkRateLimit(resp)

	if fileContent != nil {
		// Path named a file, not a directory; report it as a
		// one-entry listing.
		return []Entry{{
			Name: fileContent.GetName(),
			Path: fileContent.GetPath(),
			Type: fileContent.GetType(),
			Size: fileContent.GetSize(),
		}}, nil
	}

	entries := make([]Entry, 0, len(dirContent))
	for _, e := range dirContent {
		entries = append(entries, Entry{
			Name: e.GetName(),
			Path: e.GetPath(),
			Type: e.GetType(),
			Size: e.GetSize(),
		})
	}
	return entries, nil
}

// ReadFile fetches and decodes a single file.
func (g *GitHub) ReadFile(ctx context.Context, repo, path string) (*File, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	fileContent, _, resp, err := g.client.Repositories.GetContents(ctx, owner, name, path, nil)
	if err != nil {
		return nil, normalizeError(fmt.Sprintf("read %s in %s", path, repo), err)
	}
	g.checkRateLimit(resp)

	if fileContent == nil {
		return nil, tools.Invalid("%s is a directory, not a file", path)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("forge: decode %s: %w", path, err)
	}

	return &File{
		Path:    fileContent.GetPath(),
		Content: content,
		Size:    fileContent.GetSize(),
	}, nil
}

// CreateIssue opens a new issue in the repository.
func (g *GitHub) CreateIssue(ctx context.Context, repo string, issue *NewIssue) (*Issue, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	req := &gogithub.IssueRequest{
		Title: &issue.Title,
		Body:  &issue.Body,
	}
	if len(issue.Labels) > 0 {
		req.Labels = &issue.Labels
	}

	result, resp, err := g.client.Issues.Create(ctx, owner, name, req)
	if err != nil {
		return nil, normalizeError(fmt.Sprintf("create issue in %s", repo), err)
	}
	g.checkRateLimit(resp)

	return &Issue{
		Number:    result.GetNumber(),
		Title:     result.GetTitle(),
		State:     result.GetState(),
		URL:       result.GetHTMLURL(),
		CreatedAt: result.GetCreatedAt().Time,
	}, nil
}
