// Package search implements the client side of the search adapter RPC: one
// POST per task page, circuit-broken so a flapping adapter degrades to
// skipped tasks instead of a stalled cycle.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/loupelabs/loupe/internal/metrics"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// PageSize is the maximum number of listings one adapter page carries. A
// short page tells the cursor the result set is exhausted.
const PageSize = 200

// ErrBreakerOpen is returned while the circuit breaker holds the adapter
// offline. Callers treat it as "skip this task for the cycle", not a failure.
var ErrBreakerOpen = errors.New("search adapter breaker open")

// Request is the adapter RPC payload. TypeSpecificFilters carries the task's
// filter bag verbatim; the adapter owns its interpretation.
type Request struct {
	Keywords            string     `json:"keywords"`
	MinPrice            *float64   `json:"minPrice,omitempty"`
	MaxPrice            *float64   `json:"maxPrice,omitempty"`
	ListingType         []string   `json:"listingType"`
	MinFeedback         int        `json:"minFeedback"`
	ItemLocation        string     `json:"itemLocation,omitempty"`
	DateFrom            *time.Time `json:"dateFrom,omitempty"`
	DateTo              *time.Time `json:"dateTo,omitempty"`
	ItemType            string     `json:"itemType"`
	TypeSpecificFilters any        `json:"typeSpecificFilters"`
	Condition           []string   `json:"condition"`
	CategoryIDs         []string   `json:"categoryIds,omitempty"`
	Offset              int        `json:"offset"`
}

type response struct {
	Items []domain.ListingSummary `json:"items"`
}

// Client calls the search adapter. Safe for concurrent use.
type Client struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Client) {
		s.client = c
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Client) {
		s.log = l
	}
}

// New creates a search adapter client. maxFailures consecutive transport or
// server errors open the breaker for openTimeout.
func New(url string, maxFailures uint32, openTimeout time.Duration, opts ...Option) *Client {
	c := &Client{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "search-adapter",
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				metrics.SearchBreakerOpen.Set(1)
			} else {
				metrics.SearchBreakerOpen.Set(0)
			}
			c.log.Warn("search breaker state change", "from", from.String(), "to", to.String())
		},
	})

	return c
}

// Search fetches one page of listing summaries. Returns ErrBreakerOpen while
// the breaker is open; any other error counts toward tripping it.
func (c *Client) Search(ctx context.Context, req Request) ([]domain.ListingSummary, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.post(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.SearchRequestsTotal.WithLabelValues("breaker_open").Inc()
			return nil, fmt.Errorf("%w: %w", ErrBreakerOpen, err)
		}
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	items := result.([]domain.ListingSummary)
	if len(items) > PageSize {
		items = items[:PageSize]
	}
	return items, nil
}

func (c *Client) post(ctx context.Context, req Request) ([]domain.ListingSummary, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing search request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	return parsed.Items, nil
}

// BuildRequest maps a task and cursor offset onto the adapter payload.
// keywords is the effective search string for this call (jewelry tasks issue
// one call per expanded metal keyword).
func BuildRequest(task *domain.Task, keywords string, offset int) Request {
	req := Request{
		Keywords:     keywords,
		MinPrice:     task.MinPrice,
		MaxPrice:     task.MaxPrice,
		ListingType:  task.ListingFormats,
		MinFeedback:  task.MinSellerFeedback,
		ItemLocation: task.ItemLocation,
		ItemType:     string(task.Type),
		Condition:    task.Conditions,
		Offset:       offset,
	}

	switch task.Type {
	case domain.ItemJewelry:
		req.TypeSpecificFilters = task.JewelryFilters
		if task.JewelryFilters != nil {
			for _, sub := range task.JewelryFilters.SelectedSubcategories {
				req.CategoryIDs = append(req.CategoryIDs, fmt.Sprint(sub))
			}
		}
	case domain.ItemGemstone:
		req.TypeSpecificFilters = task.GemstoneFilters
	case domain.ItemWatch:
		req.TypeSpecificFilters = task.WatchFilters
	}

	return req
}
