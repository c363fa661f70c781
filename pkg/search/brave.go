package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// SearchCacheTTL is the default cache duration for search responses (30 days).
// Profile search results drift slowly, so long caching is appropriate.
const SearchCacheTTL = 30 * 24 * time.Hour

// BraveSearcher implements Searcher using the Brave Search API.
// Free tier: 2,000 queries/month, 1 query/second.
// Get an API key at https://api.search.brave.com/
type BraveSearcher struct {
	httpClient *http.Client
	cache      Cacher
	quota      *QuotaLimiter
	logger     *slog.Logger
	apiKey     string
}

// braveResponse represents the Brave Search API response.
type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// BraveOption configures a BraveSearcher.
type BraveOption func(*BraveSearcher)

// WithBraveCache sets a cache for storing search responses.
func WithBraveCache(cache Cacher) BraveOption {
	return func(b *BraveSearcher) { b.cache = cache }
}

// WithBraveLogger sets a logger for the searcher.
func WithBraveLogger(logger *slog.Logger) BraveOption {
	return func(b *BraveSearcher) { b.logger = logger }
}

// WithBraveQuota sets a quota limiter that paces outbound API calls.
// Cache hits do not consume quota.
func WithBraveQuota(quota *QuotaLimiter) BraveOption {
	return func(b *BraveSearcher) { b.quota = quota }
}

// NewBraveSearcher creates a new Brave Search API client.
// apiKey is your Brave Search API subscription token.
func NewBraveSearcher(apiKey string, opts ...BraveOption) *BraveSearcher {
	b := &BraveSearcher{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// LoadBraveAPIKey loads the Brave API key from multiple sources (in priority order):
// 1. BRAVE_API_KEY environment variable
// 2. ~/.brave file (first line, trimmed)
//
// Returns empty string if no key is found.
func LoadBraveAPIKey() string {
	if key := os.Getenv("BRAVE_API_KEY"); key != "" {
		return key
	}

	if home, err := os.UserHomeDir(); err == nil {
		braveFile := filepath.Join(home, ".brave")
		if data, err := os.ReadFile(braveFile); err == nil {
			if key := strings.TrimSpace(string(data)); key != "" {
				return key
			}
		}
	}

	return ""
}

// HTTPError represents an HTTP error response from the search API.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Search performs a web search using the Brave Search API.
func (b *BraveSearcher) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if count <= 0 {
		count = 10
	}

	if b.cache != nil {
		cacheKey := "brave:" + QueryToKey(query+"|"+strconv.Itoa(count))
		data, err := b.cache.GetSet(ctx, cacheKey, func(ctx context.Context) ([]byte, error) {
			return b.doSearch(ctx, query, count)
		}, SearchCacheTTL)
		if err != nil {
			return nil, err
		}
		return b.parseResults(data)
	}

	data, err := b.doSearch(ctx, query, count)
	if err != nil {
		return nil, err
	}
	return b.parseResults(data)
}

// doSearch performs the actual API call with quota pacing and retry.
func (b *BraveSearcher) doSearch(ctx context.Context, query string, count int) ([]byte, error) {
	endpoint := "https://api.search.brave.com/res/v1/web/search"

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	q := u.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(count))
	u.RawQuery = q.Encode()

	if b.logger != nil {
		b.logger.DebugContext(ctx, "brave search", "query", query, "count", count)
	}

	return retry.DoWithData(
		func() ([]byte, error) {
			if b.quota != nil {
				if err := b.quota.Wait(ctx); err != nil {
					return nil, err
				}
			}
			return b.fetch(ctx, u.String())
		},
		retry.Context(ctx),
		retry.Attempts(2),                     // single retry
		retry.Delay(200*time.Millisecond),     // delay before retry
		retry.MaxJitter(100*time.Millisecond), // small jitter
		retry.RetryIf(isRetryableError),       // only retry transient errors
		retry.OnRetry(func(n uint, err error) {
			if b.logger != nil {
				b.logger.Debug("retrying search request", "attempt", n+1, "query", query, "error", err)
			}
		}),
	)
}

func (b *BraveSearcher) fetch(ctx context.Context, urlStr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best effort cleanup

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if err != nil || len(body) == 0 {
			return nil, &HTTPError{StatusCode: resp.StatusCode, URL: urlStr}
		}
		return nil, fmt.Errorf("%w: %s", &HTTPError{StatusCode: resp.StatusCode, URL: urlStr}, string(body))
	}

	return io.ReadAll(resp.Body)
}

// isRetryableError returns true for transient errors that should be retried.
// Quota exhaustion and context cancellation will not improve on retry.
func isRetryableError(err error) bool {
	if errors.Is(err, ErrQuotaExhausted) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false // 4xx errors (except 429) are permanent
		}
	}
	// Network errors, timeouts, etc. are retryable
	return true
}

// parseResults converts the raw JSON response to a Result slice.
func (*BraveSearcher) parseResults(data []byte) ([]Result, error) {
	var br braveResponse
	if err := json.Unmarshal(data, &br); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]Result, 0, len(br.Web.Results))
	for _, r := range br.Web.Results {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
	}

	return results, nil
}
