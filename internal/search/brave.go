package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Bacoazul/Argos-Core/internal/httpkit"
	"github.com/Bacoazul/Argos-Core/internal/tools"
)

const braveAPIURL = "https://api.search.brave.com/res/v1/web/search"

// Brave implements the Provider interface for the Brave Search API.
type Brave struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewBrave creates a Brave Search provider. baseURL overrides the
// API endpoint; empty selects the production API.
func NewBrave(apiKey, baseURL string) *Brave {
	if baseURL == "" {
		baseURL = braveAPIURL
	}
	return &Brave{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: httpkit.NewClient(
			httpkit.WithTimeout(15 * time.Second),
		),
	}
}

func (b *Brave) Name() string { return "brave" }

// braveResponse is the JSON response from Brave's web search API.
type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (b *Brave) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	count := opts.Count
	if count <= 0 {
		count = 3
	}

	params := url.Values{
		"q":     {query},
		"count": {strconv.Itoa(count)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("brave: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, braveStatusError(resp)
	}

	var br braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("brave: decode response: %w", err)
	}

	results := make([]Result, 0, len(br.Web.Results))
	for _, r := range br.Web.Results {
		results = append(results, Result{
			Title:   r.Title,
			Link:    r.URL,
			Snippet: r.Description,
		})
	}

	return results, nil
}

// braveStatusError maps Brave HTTP failures onto the normalized tool
// error kinds.
func braveStatusError(resp *http.Response) error {
	body := httpkit.ReadErrorBody(resp, 512)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return tools.Unauthorized("brave: rejected credentials (HTTP %d)", resp.StatusCode)
	case http.StatusTooManyRequests:
		return tools.RateLimited("brave: rate limited (HTTP %d)", resp.StatusCode)
	case http.StatusUnprocessableEntity:
		return tools.Invalid("brave: rejected query (HTTP %d): %s", resp.StatusCode, body)
	default:
		return fmt.Errorf("brave: HTTP %d: %s", resp.StatusCode, body)
	}
}
