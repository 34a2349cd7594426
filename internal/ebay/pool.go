package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/loupelabs/loupe/internal/metrics"
	domain "github.com/loupelabs/loupe/pkg/types"
)

const (
	defaultTokenURL = "https://api.ebay.com/identity/v1/oauth2/token" //nolint:gosec // not a credential
	defaultScope    = "https://api.ebay.com/oauth/api_scope"

	// refreshBuffer is subtracted from the minted token lifetime so a token
	// is never handed out within a minute of expiry.
	refreshBuffer = 60 * time.Second

	// rateLimitCooldown is how long a 429'd credential sits out before it is
	// automatically reinstated.
	rateLimitCooldown = 5 * time.Minute
)

// Sentinel errors for token acquisition.
var (
	ErrNoCredentials = errors.New("no credentials configured")
	ErrTokenMint     = errors.New("token mint failed")
)

// cachedToken is the pool's in-memory bearer. It is dropped the moment its
// credential is marked rate-limited.
type cachedToken struct {
	token     string
	expiresAt time.Time
	label     string
}

// CredentialPool manages the marketplace credential set: it mints and caches
// OAuth client-credentials tokens, rotates credentials per the configured
// strategy, and holds 429'd credentials in a cooldown. State transitions are
// persisted through the SettingsStore so they survive restarts. Thread-safe
// via mutex; the ops API reads the pool while the worker uses it.
type CredentialPool struct {
	store    SettingsStore
	tokenURL string
	scope    string
	client   *http.Client
	log      *slog.Logger

	mu       sync.Mutex
	creds    []domain.Credential
	strategy domain.RotationStrategy
	cached   *cachedToken
	usageDay string // YYYY-MM-DD of the calls_today counters
	nowFunc  func() time.Time
}

// PoolOption configures the CredentialPool.
type PoolOption func(*CredentialPool)

// WithTokenURL overrides the default OAuth token endpoint.
func WithTokenURL(u string) PoolOption {
	return func(p *CredentialPool) {
		p.tokenURL = u
	}
}

// WithScope overrides the default OAuth scope.
func WithScope(s string) PoolOption {
	return func(p *CredentialPool) {
		p.scope = s
	}
}

// WithPoolHTTPClient overrides the default HTTP client.
func WithPoolHTTPClient(c *http.Client) PoolOption {
	return func(p *CredentialPool) {
		p.client = c
	}
}

// WithPoolLogger sets a custom logger.
func WithPoolLogger(l *slog.Logger) PoolOption {
	return func(p *CredentialPool) {
		p.log = l
	}
}

// WithPoolNowFunc overrides the time function for testing.
func WithPoolNowFunc(f func() time.Time) PoolOption {
	return func(p *CredentialPool) {
		p.nowFunc = f
	}
}

// NewCredentialPool creates a pool backed by the given settings store. Call
// Load before first use.
func NewCredentialPool(store SettingsStore, opts ...PoolOption) *CredentialPool {
	p := &CredentialPool{
		store:    store,
		tokenURL: defaultTokenURL,
		scope:    defaultScope,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      slog.Default(),
		strategy: domain.RotateRoundRobin,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load reads the credential set from the settings store.
func (p *CredentialPool) Load(ctx context.Context) error {
	settings, err := p.store.GetCredentialSettings(ctx)
	if err != nil {
		return fmt.Errorf("loading credential settings: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.creds = settings.Keys
	if settings.RotationStrategy != "" {
		p.strategy = settings.RotationStrategy
	}
	p.usageDay = p.nowFunc().UTC().Format(time.DateOnly)
	p.updateAvailableGaugeLocked()

	return nil
}

// Credentials returns a snapshot of the credential set with secrets intact;
// callers presenting it externally must redact cert_id themselves.
func (p *CredentialPool) Credentials() []domain.Credential {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.Credential, len(p.creds))
	copy(out, p.creds)
	return out
}

// AcquireToken returns a valid bearer token, minting a new one only when the
// cached token is stale or its credential is no longer active. Cooled-down
// credentials are reinstated first, so a credential whose 5-minute penalty
// elapsed between calls comes back on the next acquisition.
func (p *CredentialPool) AcquireToken(ctx context.Context) (string, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.nowFunc()
	p.reinstateCooledLocked(now)
	p.resetDailyCountsLocked(now)

	if p.cached != nil && now.Before(p.cached.expiresAt) {
		if c := p.findLocked(p.cached.label); c != nil && c.Status == domain.CredentialActive {
			return p.cached.token, p.cached.label, nil
		}
		p.cached = nil
	}

	cred := p.selectLocked()
	if cred == nil {
		return "", "", ErrNoCredentials
	}

	token, expiresIn, err := p.mint(ctx, cred)
	if err != nil {
		// The credential is left untouched: a mint failure says nothing
		// about the key itself.
		return "", "", fmt.Errorf("%w: credential %q: %w", ErrTokenMint, cred.Label, err)
	}

	cred.LastUsed = &now
	cred.CallsToday++
	p.cached = &cachedToken{
		token:     token,
		expiresAt: now.Add(time.Duration(expiresIn)*time.Second - refreshBuffer),
		label:     cred.Label,
	}

	p.persistLocked(ctx)
	return token, cred.Label, nil
}

// MarkRateLimited flags a credential after a downstream 429: its cached token
// is dropped and it enters the cooldown. Persisted immediately.
func (p *CredentialPool) MarkRateLimited(ctx context.Context, label string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cred := p.findLocked(label)
	if cred == nil {
		return fmt.Errorf("unknown credential %q", label)
	}

	now := p.nowFunc()
	cred.Status = domain.CredentialRateLimited
	cred.RateLimitedAt = &now

	if p.cached != nil && p.cached.label == label {
		p.cached = nil
	}

	metrics.CredentialRotationsTotal.Inc()
	p.updateAvailableGaugeLocked()
	p.persistLocked(ctx)

	p.log.Warn("credential rate limited", "label", label, "cooldown", rateLimitCooldown)
	return nil
}

// reinstateCooledLocked returns any credential past its cooldown to active.
func (p *CredentialPool) reinstateCooledLocked(now time.Time) {
	changed := false
	for i := range p.creds {
		c := &p.creds[i]
		if c.Status != domain.CredentialRateLimited || c.RateLimitedAt == nil {
			continue
		}
		if now.Sub(*c.RateLimitedAt) > rateLimitCooldown {
			c.Status = domain.CredentialActive
			c.RateLimitedAt = nil
			changed = true
			p.log.Info("credential reinstated after cooldown", "label", c.Label)
		}
	}
	if changed {
		p.updateAvailableGaugeLocked()
	}
}

// resetDailyCountsLocked zeroes the calls_today counters on a UTC date change.
func (p *CredentialPool) resetDailyCountsLocked(now time.Time) {
	day := now.UTC().Format(time.DateOnly)
	if day == p.usageDay {
		return
	}
	for i := range p.creds {
		p.creds[i].CallsToday = 0
	}
	p.usageDay = day
}

// selectLocked picks the next credential by the configured strategy. When
// every credential is rate-limited the one limited earliest is returned
// anyway: it cools soonest, and a doomed request beats no request.
func (p *CredentialPool) selectLocked() *domain.Credential {
	if len(p.creds) == 0 {
		return nil
	}

	var active []*domain.Credential
	for i := range p.creds {
		if p.creds[i].Status == domain.CredentialActive {
			active = append(active, &p.creds[i])
		}
	}

	if len(active) == 0 {
		var oldest *domain.Credential
		for i := range p.creds {
			c := &p.creds[i]
			if c.Status != domain.CredentialRateLimited || c.RateLimitedAt == nil {
				continue
			}
			if oldest == nil || c.RateLimitedAt.Before(*oldest.RateLimitedAt) {
				oldest = c
			}
		}
		return oldest
	}

	switch p.strategy {
	case domain.RotateLeastUsed:
		sort.SliceStable(active, func(i, j int) bool {
			return active[i].CallsToday < active[j].CallsToday
		})
	default: // round_robin: least recently used first
		sort.SliceStable(active, func(i, j int) bool {
			ti, tj := time.Time{}, time.Time{}
			if active[i].LastUsed != nil {
				ti = *active[i].LastUsed
			}
			if active[j].LastUsed != nil {
				tj = *active[j].LastUsed
			}
			return ti.Before(tj)
		})
	}
	return active[0]
}

func (p *CredentialPool) findLocked(label string) *domain.Credential {
	for i := range p.creds {
		if p.creds[i].Label == label {
			return &p.creds[i]
		}
	}
	return nil
}

// persistLocked writes the credential set back to the settings store.
// Best-effort: a persistence failure is logged, the in-memory state stays
// authoritative for this process.
func (p *CredentialPool) persistLocked(ctx context.Context) {
	settings := &domain.CredentialSettings{
		Keys:             append([]domain.Credential(nil), p.creds...),
		RotationStrategy: p.strategy,
	}
	if err := p.store.SaveCredentialSettings(ctx, settings); err != nil {
		p.log.Error("persisting credential settings failed", "error", err)
	}
}

func (p *CredentialPool) updateAvailableGaugeLocked() {
	available := 0
	for i := range p.creds {
		if p.creds[i].Status == domain.CredentialActive {
			available++
		}
	}
	metrics.CredentialsAvailable.Set(float64(available))
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// mint POSTs the client-credentials grant for one credential.
func (p *CredentialPool) mint(ctx context.Context, cred *domain.Credential) (string, int, error) {
	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {p.scope},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", 0, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	basic := base64.StdEncoding.EncodeToString(
		[]byte(cred.AppID + ":" + cred.CertID),
	)
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("executing token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp tokenErrorResponse
		_ = json.Unmarshal(body, &errResp) //nolint:errcheck // best-effort error parsing
		return "", 0, fmt.Errorf(
			"token request failed (status %d): %s - %s",
			resp.StatusCode,
			errResp.Error,
			errResp.ErrorDescription,
		)
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", 0, fmt.Errorf("parsing token response: %w", err)
	}

	return tokenResp.AccessToken, tokenResp.ExpiresIn, nil
}
