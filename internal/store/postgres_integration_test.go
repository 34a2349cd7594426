//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/loupelabs/loupe/internal/store"
	domain "github.com/loupelabs/loupe/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("loupe_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func createTestTask(t *testing.T, s *store.PostgresStore, itemType domain.ItemType) *domain.Task {
	t.Helper()
	ctx := context.Background()

	// Tasks are owned by the web UI; the worker only reads them. Insert
	// directly for test setup.
	var filters string
	switch itemType {
	case domain.ItemJewelry:
		filters = `jewelry_filters`
	case domain.ItemGemstone:
		filters = `gemstone_filters`
	case domain.ItemWatch:
		filters = `watch_filters`
	}

	var id string
	err := s.Pool().QueryRow(ctx, `
		INSERT INTO tasks (user_id, name, item_type, status, poll_interval, `+filters+`)
		VALUES (gen_random_uuid(), 'integration task', $1, 'active', 300, '{}')
		RETURNING id`, string(itemType),
	).Scan(&id)
	require.NoError(t, err)

	task, err := s.GetTask(ctx, id)
	require.NoError(t, err)
	return task
}

func testJewelryMatch(taskID, userID, listingID string) *domain.JewelryMatch {
	karat := 14
	weight := 5.2
	melt := 220.0
	return &domain.JewelryMatch{
		Match: domain.Match{
			TaskID:         taskID,
			UserID:         userID,
			EbayListingID:  listingID,
			EbayTitle:      "14K Yellow Gold Estate Ring",
			EbayURL:        "https://www.ebay.com/itm/" + listingID,
			ListedPrice:    150.0,
			Currency:       "USD",
			BuyFormat:      "FIXED_PRICE",
			SellerFeedback: 5200,
			Status:         domain.MatchNew,
		},
		Karat:       &karat,
		WeightGrams: &weight,
		MetalType:   "gold",
		MeltValue:   &melt,
	}
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_Tasks(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	task := createTestTask(t, s, domain.ItemJewelry)

	t.Run("active task is listed", func(t *testing.T) {
		tasks, err := s.ListActiveTasks(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, task.ID, tasks[0].ID)
		assert.NotNil(t, tasks[0].JewelryFilters)
	})

	t.Run("channel provisioning round-trips", func(t *testing.T) {
		require.NoError(t, s.UpdateTaskChannel(ctx, task.ID, "deals-integration-task", "C0123"))

		got, err := s.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "deals-integration-task", got.SlackChannel)
		assert.Equal(t, "C0123", got.SlackChannelID)
	})

	t.Run("last_run advances", func(t *testing.T) {
		now := time.Now().Truncate(time.Microsecond)
		require.NoError(t, s.TouchTaskLastRun(ctx, task.ID, now))

		got, err := s.GetTask(ctx, task.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastRun)
		assert.WithinDuration(t, now, *got.LastRun, time.Second)
	})
}

func TestPostgresStore_JewelryMatchLifecycle(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	task := createTestTask(t, s, domain.ItemJewelry)

	m := testJewelryMatch(task.ID, task.UserID, "v1|100|0")
	inserted, err := s.InsertJewelryMatch(ctx, m)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, m.ID)
	assert.False(t, m.FoundAt.IsZero())

	t.Run("duplicate insert is a silent no-op", func(t *testing.T) {
		dup := testJewelryMatch(task.ID, task.UserID, "v1|100|0")
		inserted, err := s.InsertJewelryMatch(ctx, dup)
		require.NoError(t, err)
		assert.False(t, inserted)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := s.JewelryMatchExists(ctx, task.ID, "v1|100|0")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.JewelryMatchExists(ctx, task.ID, "v1|999|0")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unsent scan joins the task channel", func(t *testing.T) {
		require.NoError(t, s.UpdateTaskChannel(ctx, task.ID, "deals-jewelry", "C0456"))

		unsent, err := s.ListUnsentJewelryMatches(ctx, 10)
		require.NoError(t, err)
		require.Len(t, unsent, 1)
		assert.Equal(t, "deals-jewelry", unsent[0].TaskChannel)
	})

	t.Run("notification update clears it from the unsent scan", func(t *testing.T) {
		ts := "1724680000.000100"
		channel := "C0456"
		err := s.UpdateMatchNotification(ctx, domain.ItemJewelry, m.ID, true, &ts, &channel)
		require.NoError(t, err)

		unsent, err := s.ListUnsentJewelryMatches(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, unsent)
	})

	t.Run("reaction resolves the row by channel and ts", func(t *testing.T) {
		updated, err := s.UpdateMatchStatusByMessage(
			ctx, domain.ItemJewelry, "C0456", "1724680000.000100", domain.MatchPurchased,
		)
		require.NoError(t, err)
		assert.True(t, updated)

		matches, err := s.ListJewelryMatches(ctx, &store.MatchQuery{})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, domain.MatchPurchased, matches[0].Status)
	})

	t.Run("no row for unknown message", func(t *testing.T) {
		updated, err := s.UpdateMatchStatusByMessage(
			ctx, domain.ItemJewelry, "C0456", "9999999999.000000", domain.MatchRejected,
		)
		require.NoError(t, err)
		assert.False(t, updated)
	})
}

func TestPostgresStore_GemstoneMatches(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	task := createTestTask(t, s, domain.ItemGemstone)

	carat := 2.05
	m := &domain.GemstoneMatch{
		Match: domain.Match{
			TaskID:         task.ID,
			UserID:         task.UserID,
			EbayListingID:  "v1|200|0",
			EbayTitle:      "2.05ct Natural Blue Sapphire",
			EbayURL:        "https://www.ebay.com/itm/200",
			ListedPrice:    450.0,
			Currency:       "USD",
			BuyFormat:      "BEST_OFFER",
			SellerFeedback: 8100,
			Status:         domain.MatchNew,
		},
		StoneType: "Sapphire",
		Shape:     "Oval",
		Carat:     &carat,
		Colour:    "Blue",
		CertLab:   "GIA",
		Treatment: "Heat Only",
		IsNatural: true,
		DealScore: 90,
		RiskScore: 0,
	}

	inserted, err := s.InsertGemstoneMatch(ctx, m)
	require.NoError(t, err)
	assert.True(t, inserted)

	t.Run("score filters apply", func(t *testing.T) {
		minDeal := 80
		matches, err := s.ListGemstoneMatches(ctx, &store.MatchQuery{MinDealScore: &minDeal})
		require.NoError(t, err)
		assert.Len(t, matches, 1)

		minDeal = 95
		matches, err = s.ListGemstoneMatches(ctx, &store.MatchQuery{MinDealScore: &minDeal})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("unsent scan", func(t *testing.T) {
		unsent, err := s.ListUnsentGemstoneMatches(ctx, 10)
		require.NoError(t, err)
		require.Len(t, unsent, 1)
		assert.Equal(t, "Sapphire", unsent[0].StoneType)
	})
}

func TestPostgresStore_RejectCache(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	task := createTestTask(t, s, domain.ItemJewelry)
	now := time.Now()

	r := &domain.RejectedItem{
		TaskID:          task.ID,
		EbayListingID:   "v1|300|0",
		RejectionReason: "Plated/filled/vermeil",
		RejectedAt:      now,
		ExpiresAt:       now.Add(48 * time.Hour),
	}
	require.NoError(t, s.UpsertRejection(ctx, r))

	t.Run("live rejection is visible", func(t *testing.T) {
		ok, err := s.IsRejected(ctx, task.ID, "v1|300|0")
		require.NoError(t, err)
		assert.True(t, ok)

		ids, err := s.ListRejectedIDs(ctx, task.ID)
		require.NoError(t, err)
		assert.Contains(t, ids, "v1|300|0")
	})

	t.Run("expired rejection is invisible and swept", func(t *testing.T) {
		expired := &domain.RejectedItem{
			TaskID:          task.ID,
			EbayListingID:   "v1|301|0",
			RejectionReason: "Base metal \"brass\"",
			RejectedAt:      now.Add(-49 * time.Hour),
			ExpiresAt:       now.Add(-time.Hour),
		}
		require.NoError(t, s.UpsertRejection(ctx, expired))

		ok, err := s.IsRejected(ctx, task.ID, "v1|301|0")
		require.NoError(t, err)
		assert.False(t, ok)

		deleted, err := s.DeleteExpiredRejections(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, deleted)
	})
}

func TestPostgresStore_DetailCache(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond)
	item := &domain.CachedItem{
		EbayItemID:  "v1|400|0",
		Aspects:     map[string]string{"metal purity": "14k", "metal": "Yellow Gold"},
		Title:       "14K Ring",
		Description: "Estate ring",
		FetchedAt:   now,
		ExpiresAt:   now.Add(24 * time.Hour),
	}
	require.NoError(t, s.UpsertCachedItem(ctx, item))

	got, err := s.GetCachedItem(ctx, "v1|400|0")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "14k", got.Aspects["metal purity"])

	missing, err := s.GetCachedItem(ctx, "v1|404|0")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgresStore_CredentialSettings(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	t.Run("missing row yields empty settings", func(t *testing.T) {
		settings, err := s.GetCredentialSettings(ctx)
		require.NoError(t, err)
		assert.Empty(t, settings.Keys)
	})

	t.Run("round trip", func(t *testing.T) {
		in := &domain.CredentialSettings{
			Keys: []domain.Credential{
				{Label: "K1", AppID: "app1", CertID: "cert1", Status: domain.CredentialActive},
			},
			RotationStrategy: domain.RotateLeastUsed,
		}
		require.NoError(t, s.SaveCredentialSettings(ctx, in))

		out, err := s.GetCredentialSettings(ctx)
		require.NoError(t, err)
		require.Len(t, out.Keys, 1)
		assert.Equal(t, "K1", out.Keys[0].Label)
		assert.Equal(t, domain.RotateLeastUsed, out.RotationStrategy)
	})
}

func TestPostgresStore_HealthMetrics(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	m := &domain.HealthMetric{
		CycleTimestamp:  time.Now(),
		CycleDurationMS: 4200,
		TasksProcessed:  3,
		TasksFailed:     1,
		TotalItemsFound: 412,
		TotalMatches:    5,
		TotalExcluded:   380,
		MemoryUsageMB:   96.5,
	}
	require.NoError(t, s.InsertHealthMetric(ctx, m))

	metrics, err := s.ListHealthMetrics(ctx, 10)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, 3, metrics[0].TasksProcessed)
	assert.InDelta(t, 96.5, metrics[0].MemoryUsageMB, 0.01)
}
