package ebay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loupelabs/loupe/internal/ebay"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// fakeSettingsStore is an in-memory SettingsStore double.
type fakeSettingsStore struct {
	mu       sync.Mutex
	settings domain.CredentialSettings
	saves    int
}

func (f *fakeSettingsStore) GetCredentialSettings(_ context.Context) (*domain.CredentialSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.settings
	return &s, nil
}

func (f *fakeSettingsStore) SaveCredentialSettings(_ context.Context, s *domain.CredentialSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = *s
	f.saves++
	return nil
}

func newTokenServer(t *testing.T, lifetime int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NotEmpty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-" + r.Header.Get("Authorization")[len(r.Header.Get("Authorization"))-8:],
			"expires_in":   lifetime,
			"token_type":   "Application Access Token",
		})
	}))
}

func poolWithCreds(t *testing.T, srv *httptest.Server, now *time.Time, creds ...domain.Credential) (*ebay.CredentialPool, *fakeSettingsStore) {
	t.Helper()

	store := &fakeSettingsStore{settings: domain.CredentialSettings{
		Keys:             creds,
		RotationStrategy: domain.RotateRoundRobin,
	}}

	pool := ebay.NewCredentialPool(store,
		ebay.WithTokenURL(srv.URL),
		ebay.WithPoolNowFunc(func() time.Time { return *now }),
	)
	require.NoError(t, pool.Load(context.Background()))
	return pool, store
}

func TestCredentialPool_AcquireCachesToken(t *testing.T) {
	t.Parallel()

	srv := newTokenServer(t, 7200)
	defer srv.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool, _ := poolWithCreds(t, srv, &now,
		domain.Credential{Label: "K1", AppID: "app1", CertID: "cert1", Status: domain.CredentialActive},
	)

	tok1, label1, err := pool.AcquireToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "K1", label1)

	// Second acquire within the token lifetime reuses the cached token.
	tok2, label2, err := pool.AcquireToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tok1, tok2)
	assert.Equal(t, label1, label2)

	creds := pool.Credentials()
	require.Len(t, creds, 1)
	assert.Equal(t, 1, creds[0].CallsToday)
}

func TestCredentialPool_RemintsNearExpiry(t *testing.T) {
	t.Parallel()

	srv := newTokenServer(t, 120) // cached lifetime = 120s - 60s buffer = 60s
	defer srv.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool, _ := poolWithCreds(t, srv, &now,
		domain.Credential{Label: "K1", AppID: "app1", CertID: "cert1", Status: domain.CredentialActive},
	)

	_, _, err := pool.AcquireToken(context.Background())
	require.NoError(t, err)

	now = now.Add(90 * time.Second)
	_, _, err = pool.AcquireToken(context.Background())
	require.NoError(t, err)

	creds := pool.Credentials()
	assert.Equal(t, 2, creds[0].CallsToday, "expiring token should force a remint")
}

func TestCredentialPool_RotationAndReinstatement(t *testing.T) {
	t.Parallel()

	srv := newTokenServer(t, 7200)
	defer srv.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool, _ := poolWithCreds(t, srv, &now,
		domain.Credential{Label: "K1", AppID: "app1", CertID: "cert1", Status: domain.CredentialActive},
		domain.Credential{Label: "K2", AppID: "app2", CertID: "cert2", Status: domain.CredentialActive},
	)

	ctx := context.Background()

	_, label, err := pool.AcquireToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "K1", label, "never-used credentials rotate in declaration order")

	// K1 gets rate limited; the next acquire must switch to K2.
	require.NoError(t, pool.MarkRateLimited(ctx, "K1"))
	_, label, err = pool.AcquireToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "K2", label)

	for _, c := range pool.Credentials() {
		if c.Label == "K1" {
			assert.Equal(t, domain.CredentialRateLimited, c.Status)
			require.NotNil(t, c.RateLimitedAt)
		}
	}

	// Inside the cooldown K1 stays benched.
	now = now.Add(4 * time.Minute)
	_, label, err = pool.AcquireToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "K2", label)

	// Past the 5-minute cooldown K1 is reinstated on the next acquire.
	now = now.Add(2 * time.Minute)
	_, _, err = pool.AcquireToken(ctx)
	require.NoError(t, err)

	for _, c := range pool.Credentials() {
		if c.Label == "K1" {
			assert.Equal(t, domain.CredentialActive, c.Status)
			assert.Nil(t, c.RateLimitedAt)
		}
	}
}

func TestCredentialPool_AllRateLimitedPicksOldest(t *testing.T) {
	t.Parallel()

	srv := newTokenServer(t, 7200)
	defer srv.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-3 * time.Minute)
	later := now.Add(-1 * time.Minute)
	pool, _ := poolWithCreds(t, srv, &now,
		domain.Credential{Label: "K1", AppID: "a", CertID: "c", Status: domain.CredentialRateLimited, RateLimitedAt: &later},
		domain.Credential{Label: "K2", AppID: "a", CertID: "c", Status: domain.CredentialRateLimited, RateLimitedAt: &earlier},
	)

	// Both benched: the one limited earliest (cools soonest) is still used.
	_, label, err := pool.AcquireToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "K2", label)
}

func TestCredentialPool_LeastUsedStrategy(t *testing.T) {
	t.Parallel()

	srv := newTokenServer(t, 7200)
	defer srv.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	used := now.Add(-time.Hour)
	store := &fakeSettingsStore{settings: domain.CredentialSettings{
		Keys: []domain.Credential{
			{Label: "K1", AppID: "a", CertID: "c", Status: domain.CredentialActive, CallsToday: 40, LastUsed: &used},
			{Label: "K2", AppID: "a", CertID: "c", Status: domain.CredentialActive, CallsToday: 2, LastUsed: &used},
		},
		RotationStrategy: domain.RotateLeastUsed,
	}}

	pool := ebay.NewCredentialPool(store,
		ebay.WithTokenURL(srv.URL),
		ebay.WithPoolNowFunc(func() time.Time { return now }),
	)
	require.NoError(t, pool.Load(context.Background()))

	_, label, err := pool.AcquireToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "K2", label)
}

func TestCredentialPool_NoCredentials(t *testing.T) {
	t.Parallel()

	srv := newTokenServer(t, 7200)
	defer srv.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool, _ := poolWithCreds(t, srv, &now)

	_, _, err := pool.AcquireToken(context.Background())
	assert.ErrorIs(t, err, ebay.ErrNoCredentials)
}

func TestCredentialPool_MintFailureLeavesCredentialUntouched(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"client authentication failed"}`))
	}))
	defer srv.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool, _ := poolWithCreds(t, srv, &now,
		domain.Credential{Label: "K1", AppID: "bad", CertID: "bad", Status: domain.CredentialActive},
	)

	_, _, err := pool.AcquireToken(context.Background())
	require.ErrorIs(t, err, ebay.ErrTokenMint)

	creds := pool.Credentials()
	assert.Equal(t, domain.CredentialActive, creds[0].Status)
	assert.Equal(t, 0, creds[0].CallsToday)
}

func TestCredentialPool_PersistsStateChanges(t *testing.T) {
	t.Parallel()

	srv := newTokenServer(t, 7200)
	defer srv.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool, store := poolWithCreds(t, srv, &now,
		domain.Credential{Label: "K1", AppID: "a", CertID: "c", Status: domain.CredentialActive},
	)

	ctx := context.Background()
	_, _, err := pool.AcquireToken(ctx)
	require.NoError(t, err)
	require.NoError(t, pool.MarkRateLimited(ctx, "K1"))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.GreaterOrEqual(t, store.saves, 2)
	assert.Equal(t, domain.CredentialRateLimited, store.settings.Keys[0].Status)
}
