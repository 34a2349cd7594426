// Package store defines the datastore abstraction for loupe. All business
// logic depends on the Store interface, never on concrete implementations.
// This enables mock-based testing without a running database.
package store

import (
	"context"
	"time"

	domain "github.com/loupelabs/loupe/pkg/types"
)

// Store defines all data access operations for loupe.
type Store interface {
	// Tasks
	ListActiveTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, limit, offset int) ([]domain.Task, error)
	UpdateTaskChannel(ctx context.Context, id, channel, channelID string) error
	TouchTaskLastRun(ctx context.Context, id string, t time.Time) error

	// Jewelry matches
	JewelryMatchExists(ctx context.Context, taskID, listingID string) (bool, error)
	InsertJewelryMatch(ctx context.Context, m *domain.JewelryMatch) (bool, error)
	ListUnsentJewelryMatches(ctx context.Context, limit int) ([]domain.JewelryMatch, error)
	ListJewelryMatches(ctx context.Context, q *MatchQuery) ([]domain.JewelryMatch, error)

	// Gemstone matches
	GemstoneMatchExists(ctx context.Context, taskID, listingID string) (bool, error)
	InsertGemstoneMatch(ctx context.Context, m *domain.GemstoneMatch) (bool, error)
	ListUnsentGemstoneMatches(ctx context.Context, limit int) ([]domain.GemstoneMatch, error)
	ListGemstoneMatches(ctx context.Context, q *MatchQuery) ([]domain.GemstoneMatch, error)

	// Watch matches
	WatchMatchExists(ctx context.Context, taskID, listingID string) (bool, error)
	InsertWatchMatch(ctx context.Context, m *domain.WatchMatch) (bool, error)
	ListWatchMatches(ctx context.Context, q *MatchQuery) ([]domain.WatchMatch, error)

	// Notification tracking, shared across the match tables.
	UpdateMatchNotification(ctx context.Context, itemType domain.ItemType, id int64, sent bool, ts, channelID *string) error
	UpdateMatchStatusByMessage(ctx context.Context, itemType domain.ItemType, channelID, ts string, status domain.MatchStatus) (bool, error)

	// Reject cache
	IsRejected(ctx context.Context, taskID, listingID string) (bool, error)
	UpsertRejection(ctx context.Context, r *domain.RejectedItem) error
	ListRejectedIDs(ctx context.Context, taskID string) (map[string]struct{}, error)
	DeleteExpiredRejections(ctx context.Context) (int64, error)

	// Detail cache
	GetCachedItem(ctx context.Context, itemID string) (*domain.CachedItem, error)
	UpsertCachedItem(ctx context.Context, item *domain.CachedItem) error
	DeleteExpiredCachedItems(ctx context.Context) (int64, error)

	// Metal prices
	ListMetalPrices(ctx context.Context) ([]domain.MetalPrice, error)

	// Credential settings (settings table, key "ebay_keys")
	GetCredentialSettings(ctx context.Context) (*domain.CredentialSettings, error)
	SaveCredentialSettings(ctx context.Context, s *domain.CredentialSettings) error

	// Worker health
	InsertHealthMetric(ctx context.Context, m *domain.HealthMetric) error
	ListHealthMetrics(ctx context.Context, limit int) ([]domain.HealthMetric, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
	Close()
}
