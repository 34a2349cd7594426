// Package ebay provides the marketplace API clients: the OAuth credential
// pool with rotation and rate-limit cooldown, and the item detail fetcher.
// Everything callers depend on is abstracted behind interfaces for
// testability.
package ebay

import (
	"context"

	domain "github.com/loupelabs/loupe/pkg/types"
)

// TokenSource supplies bearer tokens and records rate-limit events against
// the credential that produced them.
type TokenSource interface {
	// AcquireToken returns a valid bearer token and the label of the
	// credential it belongs to.
	AcquireToken(ctx context.Context) (token string, label string, err error)
	// MarkRateLimited flags a credential after a 429 and invalidates any
	// cached token bound to it.
	MarkRateLimited(ctx context.Context, label string) error
}

// SettingsStore persists the credential set between process restarts.
type SettingsStore interface {
	GetCredentialSettings(ctx context.Context) (*domain.CredentialSettings, error)
	SaveCredentialSettings(ctx context.Context, s *domain.CredentialSettings) error
}

// DetailCacheStore is the detail-cache slice of the datastore.
type DetailCacheStore interface {
	GetCachedItem(ctx context.Context, itemID string) (*domain.CachedItem, error)
	UpsertCachedItem(ctx context.Context, item *domain.CachedItem) error
}

// DetailSource retrieves normalized listing detail.
type DetailSource interface {
	// Fetch returns the normalized detail for an item, or (nil, nil) when
	// the marketplace cannot supply it. includeShipping bypasses the cache
	// so live shipping options are read.
	Fetch(ctx context.Context, itemID string, includeShipping bool) (*domain.ListingDetail, error)
}
