package ebay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/loupelabs/loupe/internal/metrics"
)

// ErrDailyLimitReached is returned when the daily API call budget is spent.
var ErrDailyLimitReached = errors.New("daily API limit reached")

// Pacer spaces outbound marketplace calls with a token bucket and tracks
// usage against a rolling 24-hour budget. The budget is advisory — it keeps
// the worker from burning a whole day's quota in one bad cycle; hard limits
// are the marketplace's 429s, handled by the credential pool.
type Pacer struct {
	limiter  *rate.Limiter
	daily    atomic.Int64
	maxDaily int64

	mu      sync.Mutex
	resetAt time.Time
	nowFunc func() time.Time
}

// PacerOption configures the Pacer.
type PacerOption func(*Pacer)

// WithPacerNowFunc overrides the time function for testing.
func WithPacerNowFunc(f func() time.Time) PacerOption {
	return func(p *Pacer) {
		p.nowFunc = f
	}
}

// NewPacer creates a pacer with the given per-second rate, burst size, and
// daily budget. The 24-hour window starts at construction and rolls forward
// whenever it expires.
func NewPacer(perSecond float64, burst int, maxDaily int64, opts ...PacerOption) *Pacer {
	p := &Pacer{
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		maxDaily: maxDaily,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.resetAt = p.nowFunc().Add(24 * time.Hour)
	return p
}

// Wait blocks until the next call is allowed or the context is canceled.
// Returns ErrDailyLimitReached when the daily budget is spent.
func (p *Pacer) Wait(ctx context.Context) error {
	p.rollWindow()

	if p.daily.Load() >= p.maxDaily {
		metrics.EbayDailyLimitHits.Inc()
		return fmt.Errorf("%w (%d/%d)", ErrDailyLimitReached, p.daily.Load(), p.maxDaily)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacer wait: %w", err)
	}

	metrics.EbayDailyUsage.Set(float64(p.daily.Add(1)))
	return nil
}

// DailyCount returns the calls made in the current 24-hour window.
func (p *Pacer) DailyCount() int64 {
	return p.daily.Load()
}

// Remaining returns the calls left in the current 24-hour window.
func (p *Pacer) Remaining() int64 {
	remaining := p.maxDaily - p.daily.Load()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResetAt returns when the current 24-hour window expires.
func (p *Pacer) ResetAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resetAt
}

func (p *Pacer) rollWindow() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.nowFunc()
	if now.After(p.resetAt) {
		p.daily.Store(0)
		p.resetAt = now.Add(24 * time.Hour)
	}
}
