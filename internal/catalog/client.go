// Package catalog implements the outbound query against the Google Books
// volumes API that supplies candidate books for a genre.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/edgard/bookrec/internal/config"
	apperrors "github.com/edgard/bookrec/internal/errors"
)

const maxErrorBody = 512

// Fetcher is the contract the recommendation pipeline depends on.
type Fetcher interface {
	Fetch(ctx context.Context, genre string, maxResults int) ([]Entry, error)
}

// StatusError carries the detail of a non-success catalog response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("catalog responded with status %s", e.Status)
	}
	return fmt.Sprintf("catalog responded with status %s: %s", e.Status, e.Body)
}

// Client queries the catalog over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]Entry]
	log        *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport used for catalog calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a catalog client from configuration.
func NewClient(cfg config.CatalogConfig, log *slog.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("catalog base URL is required")
	}
	if log == nil {
		log = slog.Default()
	}
	logger := log.With("component", "catalog_client")

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.Breaker.Enabled {
		threshold := cfg.Breaker.FailureThreshold
		c.breaker = gobreaker.NewCircuitBreaker[[]Entry](gobreaker.Settings{
			Name:        "catalog",
			MaxRequests: 1,
			Timeout:     cfg.Breaker.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Catalog circuit breaker changed state", "breaker", name, "from", from.String(), "to", to.String())
			},
		})
	}

	if c.apiKey == "" {
		logger.Warn("No catalog API key configured, requests will be anonymous")
	}
	logger.Info("Catalog client initialized", "base_url", c.baseURL, "breaker", cfg.Breaker.Enabled)
	return c, nil
}

// Fetch runs one subject search for genre, capped at maxResults entries.
// A success without items yields an empty slice. Any failure is reported as
// an upstream-unavailable error; there is no retry.
func (c *Client) Fetch(ctx context.Context, genre string, maxResults int) ([]Entry, error) {
	var (
		entries []Entry
		err     error
	)
	if c.breaker != nil {
		entries, err = c.breaker.Execute(func() ([]Entry, error) {
			return c.fetch(ctx, genre, maxResults)
		})
	} else {
		entries, err = c.fetch(ctx, genre, maxResults)
	}

	if err != nil {
		return nil, apperrors.NewUpstreamUnavailableError("error fetching books from API", err)
	}
	return entries, nil
}

func (c *Client) fetch(ctx context.Context, genre string, maxResults int) ([]Entry, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(genre, maxResults), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "Catalog request failed", "genre", genre, "error", err)
		return nil, fmt.Errorf("failed to send catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.WarnContext(ctx, "Catalog returned non-success status", "genre", genre, "status", resp.StatusCode)
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var payload volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	entries := make([]Entry, 0, len(payload.Items))
	for _, item := range payload.Items {
		entries = append(entries, item.toEntry())
	}

	c.log.DebugContext(ctx, "Catalog search finished",
		"genre", genre,
		"total_items", payload.TotalItems,
		"returned", len(entries),
		"duration", time.Since(startTime))
	return entries, nil
}

func (c *Client) searchURL(genre string, maxResults int) string {
	q := url.Values{}
	q.Set("q", "subject:"+genre)
	q.Set("maxResults", strconv.Itoa(maxResults))
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	return c.baseURL + "/volumes?" + q.Encode()
}
