// Package search implements the web search tool used by the research graph.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/zaynkorai/research-agents-gograph/metrics"
)

const DefaultEndpoint = "https://google.serper.dev/search"

// ErrNoOrganicResults is returned when the response carries no organic section.
var ErrNoOrganicResults = errors.New("no organic results found")

// Result is a single organic search hit. Missing fields are left empty.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type Config struct {
	APIKey         string
	Endpoint       string
	RequestsPerSec float64
	Timeout        time.Duration
}

// Serper queries the serper.dev Google search API. Requests are paced by a
// token bucket shared by all callers of one Serper value.
type Serper struct {
	apiKey   string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func NewSerper(cfg Config, logger *zap.Logger) *Serper {
	if logger == nil {
		logger = zap.NewNop()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	return &Serper{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

// Results returns the organic results for query.
func (s *Serper) Results(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(s.apiKey) == "" {
		return nil, errors.New("serper: API key is missing")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("serper: %w", err)
	}

	body, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return nil, fmt.Errorf("serper: failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("serper: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("serper http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload struct {
		Organic []Result `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("serper: failed to decode response: %w", err)
	}
	if payload.Organic == nil {
		return nil, ErrNoOrganicResults
	}
	return payload.Organic, nil
}

// Search returns formatted results for query. Failures are reported in the
// returned text, never as an error.
func (s *Serper) Search(ctx context.Context, query string) string {
	results, err := s.Results(ctx, query)
	switch {
	case errors.Is(err, ErrNoOrganicResults):
		metrics.SearchRequests.WithLabelValues("empty").Inc()
		return "No organic results found."
	case err != nil:
		metrics.SearchRequests.WithLabelValues("error").Inc()
		s.logger.Warn("Search failed", zap.String("query", query), zap.Error(err))
		return fmt.Sprintf("Error occurred: %v", err)
	}
	metrics.SearchRequests.WithLabelValues("success").Inc()
	return FormatResults(results)
}

// FormatResults renders results as Title/Link/Snippet blocks separated by "---".
func FormatResults(results []Result) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		title := orDefault(r.Title, "No Title")
		link := orDefault(r.Link, "#")
		snippet := orDefault(r.Snippet, "No snippet available.")
		blocks = append(blocks, fmt.Sprintf("Title: %s\nLink: %s\nSnippet: %s\n---", title, link, snippet))
	}
	return strings.Join(blocks, "\n")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
