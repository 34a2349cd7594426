package ebay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/loupelabs/loupe/internal/metrics"
	domain "github.com/loupelabs/loupe/pkg/types"
)

const (
	defaultBrowseURL   = "https://api.ebay.com/buy/browse/v1"
	defaultMarketplace = "EBAY_US"
	defaultDetailTTL   = 24 * time.Hour
)

// DetailFetcher retrieves full listing detail from the Browse API item
// endpoint, consulting the datastore detail cache first. A 429 triggers one
// credential rotation and a single retry. Any other failure yields
// (nil, nil): a listing without detail is a pipeline outcome, not an error.
type DetailFetcher struct {
	tokens      TokenSource
	cache       DetailCacheStore
	browseURL   string
	marketplace string
	client      *http.Client
	pacer       *Pacer
	cacheTTL    time.Duration
	log         *slog.Logger
	nowFunc     func() time.Time
}

// FetcherOption configures the DetailFetcher.
type FetcherOption func(*DetailFetcher)

// WithBrowseURL overrides the default Browse API base URL.
func WithBrowseURL(u string) FetcherOption {
	return func(f *DetailFetcher) {
		f.browseURL = u
	}
}

// WithMarketplace overrides the default marketplace header.
func WithMarketplace(m string) FetcherOption {
	return func(f *DetailFetcher) {
		f.marketplace = m
	}
}

// WithFetcherHTTPClient overrides the default HTTP client.
func WithFetcherHTTPClient(c *http.Client) FetcherOption {
	return func(f *DetailFetcher) {
		f.client = c
	}
}

// WithPacer injects the outbound pacer; every live fetch waits on it first.
func WithPacer(p *Pacer) FetcherOption {
	return func(f *DetailFetcher) {
		f.pacer = p
	}
}

// WithDetailTTL overrides the detail cache lifetime.
func WithDetailTTL(ttl time.Duration) FetcherOption {
	return func(f *DetailFetcher) {
		f.cacheTTL = ttl
	}
}

// WithFetcherLogger sets a custom logger.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *DetailFetcher) {
		f.log = l
	}
}

// WithFetcherNowFunc overrides the time function for testing.
func WithFetcherNowFunc(fn func() time.Time) FetcherOption {
	return func(f *DetailFetcher) {
		f.nowFunc = fn
	}
}

// NewDetailFetcher creates a detail fetcher backed by the given token source
// and detail cache.
func NewDetailFetcher(tokens TokenSource, cache DetailCacheStore, opts ...FetcherOption) *DetailFetcher {
	f := &DetailFetcher{
		tokens:      tokens,
		cache:       cache,
		browseURL:   defaultBrowseURL,
		marketplace: defaultMarketplace,
		client:      &http.Client{Timeout: 30 * time.Second},
		cacheTTL:    defaultDetailTTL,
		log:         slog.Default(),
		nowFunc:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements DetailSource. includeShipping bypasses the cache because
// shipping options are live data and never cached.
func (f *DetailFetcher) Fetch(
	ctx context.Context,
	itemID string,
	includeShipping bool,
) (*domain.ListingDetail, error) {
	if !includeShipping {
		if detail := f.fromCache(ctx, itemID); detail != nil {
			metrics.DetailCacheHitsTotal.WithLabelValues("hit").Inc()
			return detail, nil
		}
		metrics.DetailCacheHitsTotal.WithLabelValues("miss").Inc()
	}

	if f.pacer != nil {
		if err := f.pacer.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				return nil, err
			}
			return nil, fmt.Errorf("pacing detail fetch: %w", err)
		}
	}

	raw, err := f.get(ctx, itemID, true)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.log.Warn("detail fetch failed", "item", itemID, "error", err)
		return nil, nil
	}
	if raw == nil {
		return nil, nil
	}

	detail := toListingDetail(raw)
	f.storeCache(ctx, detail)
	return detail, nil
}

// get performs the item GET. retry guards the single 429 retry: the first
// attempt rotates credentials and recurses once with retry=false.
func (f *DetailFetcher) get(ctx context.Context, itemID string, retry bool) (*itemResponse, error) {
	token, label, err := f.tokens.AcquireToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring token: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		f.browseURL+"/item/"+itemID,
		http.NoBody,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", f.marketplace)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.EbayAPICallsTotal.WithLabelValues("item", "error").Inc()
		return nil, fmt.Errorf("executing item request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading item response: %w", err)
	}

	metrics.EbayAPICallsTotal.WithLabelValues("item", fmt.Sprint(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusTooManyRequests {
		if markErr := f.tokens.MarkRateLimited(ctx, label); markErr != nil {
			f.log.Error("marking credential rate limited failed", "label", label, "error", markErr)
		}
		if retry {
			return f.get(ctx, itemID, false)
		}
		return nil, fmt.Errorf("item request rate limited after retry")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("item request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var raw itemResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing item response: %w", err)
	}
	if raw.ItemID == "" {
		raw.ItemID = itemID
	}

	return &raw, nil
}

// fromCache returns a still-fresh cached detail, or nil. Cached rows carry no
// shipping; callers needing it bypass the cache.
func (f *DetailFetcher) fromCache(ctx context.Context, itemID string) *domain.ListingDetail {
	item, err := f.cache.GetCachedItem(ctx, itemID)
	if err != nil || item == nil {
		return nil
	}
	if f.nowFunc().After(item.ExpiresAt) {
		return nil
	}

	return &domain.ListingDetail{
		ItemID:       item.EbayItemID,
		Title:        item.Title,
		Description:  item.Description,
		CategoryID:   item.CategoryID,
		Aspects:      item.Aspects,
		ShippingType: domain.ShippingUnknown,
	}
}

// storeCache persists aspects, title, description, and category for the
// detail TTL. Shipping is deliberately dropped.
func (f *DetailFetcher) storeCache(ctx context.Context, detail *domain.ListingDetail) {
	now := f.nowFunc()
	item := &domain.CachedItem{
		EbayItemID:  detail.ItemID,
		Aspects:     detail.Aspects,
		Title:       detail.Title,
		Description: detail.Description,
		CategoryID:  detail.CategoryID,
		FetchedAt:   now,
		ExpiresAt:   now.Add(f.cacheTTL),
	}
	if err := f.cache.UpsertCachedItem(ctx, item); err != nil {
		f.log.Error("caching item detail failed", "item", detail.ItemID, "error", err)
	}
}
