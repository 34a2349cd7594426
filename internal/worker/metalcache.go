package worker

import (
	"context"
	"strings"
	"time"

	"github.com/loupelabs/loupe/internal/store"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// metalCache holds the spot price table so jewelry tasks within a cycle do
// not re-query the datastore for every listing.
type metalCache struct {
	ttl       time.Duration
	fetchedAt time.Time
	prices    map[string]domain.MetalPrice
}

func newMetalCache(ttl time.Duration) *metalCache {
	return &metalCache{ttl: ttl}
}

// get returns the price table keyed by lowercased metal name, refreshing it
// from the store once the TTL lapses. A stale table is served when the
// refresh fails and a previous fetch succeeded.
func (c *metalCache) get(ctx context.Context, st store.Store, now time.Time) (map[string]domain.MetalPrice, error) {
	if c.prices != nil && now.Sub(c.fetchedAt) < c.ttl {
		return c.prices, nil
	}

	rows, err := st.ListMetalPrices(ctx)
	if err != nil {
		if c.prices != nil {
			return c.prices, nil
		}
		return nil, err
	}

	prices := make(map[string]domain.MetalPrice, len(rows))
	for _, p := range rows {
		prices[strings.ToLower(p.Metal)] = p
	}
	c.prices = prices
	c.fetchedAt = now
	return prices, nil
}
