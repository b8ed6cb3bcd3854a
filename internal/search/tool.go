package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/Bacoazul/Argos-Core/internal/tools"
)

// DefaultMaxResults is how many results the web_search tool reports
// when the model does not ask for fewer.
const DefaultMaxResults = 3

// NewTool wraps the manager as a web_search tool. maxResults is a
// hard cap on results per query; values the model requests above it
// are clamped, not honored.
func NewTool(mgr *Manager, maxResults int) *tools.Tool {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &tools.Tool{
		Name:        "web_search",
		Description: fmt.Sprintf("Search the web. Returns up to %d results, each with a title, link, and snippet.", maxResults),
		Params: []tools.Param{
			{Name: "query", Type: "string", Description: "The search query string", Required: true},
			{Name: "count", Type: "integer", Description: fmt.Sprintf("Number of results to return (1-%d)", maxResults)},
		},
		Effect: tools.EffectNetRead,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			if strings.TrimSpace(query) == "" {
				return "", tools.Invalid("query must not be empty")
			}

			count := maxResults
			if c, ok := args["count"].(float64); ok && int(c) > 0 && int(c) < count {
				count = int(c)
			}

			results, err := mgr.Search(ctx, query, Options{Count: count})
			if err != nil {
				return "", err
			}
			if len(results) > count {
				results = results[:count]
			}

			return FormatResults(query, results), nil
		},
	}
}

// FormatResults renders results as numbered Title/Link/Snippet
// records, the only result shape the model ever sees.
func FormatResults(query string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("no results for %q", query)
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. Title: %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   Link: %s\n", r.Link)
		fmt.Fprintf(&b, "   Snippet: %s\n", r.Snippet)
	}
	return b.String()
}
