// Package worker runs the polling loop: one cycle searches every active task,
// classifies the returned listings, persists matches, and delivers
// notifications. A single Worker instance owns all per-process state.
package worker

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/loupelabs/loupe/internal/notify"
	"github.com/loupelabs/loupe/internal/pipeline"
	"github.com/loupelabs/loupe/internal/search"
	"github.com/loupelabs/loupe/internal/store"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// Searcher is the search adapter surface the worker uses.
type Searcher interface {
	Search(ctx context.Context, req search.Request) ([]domain.ListingSummary, error)
}

// Classifier evaluates one listing against its task.
type Classifier interface {
	Classify(ctx context.Context, in pipeline.Input) (*pipeline.Outcome, error)
}

// ChannelEnsurer provisions a task's notification channel on first use.
type ChannelEnsurer interface {
	Ensure(ctx context.Context, task *domain.Task) error
}

// Config holds the polling loop settings.
type Config struct {
	InterTaskDelay     time.Duration
	InterMetalDelay    time.Duration
	TaskDeadline       time.Duration
	RetryLimit         int
	RejectTTL          time.Duration
	MetalPriceTTL      time.Duration
	CleanupProbability float64
}

func (c *Config) applyDefaults() {
	if c.InterTaskDelay == 0 {
		c.InterTaskDelay = 3 * time.Second
	}
	if c.InterMetalDelay == 0 {
		c.InterMetalDelay = 5 * time.Second
	}
	if c.TaskDeadline == 0 {
		c.TaskDeadline = 5 * time.Minute
	}
	if c.RetryLimit == 0 {
		c.RetryLimit = 10
	}
	if c.RejectTTL == 0 {
		c.RejectTTL = 48 * time.Hour
	}
	if c.MetalPriceTTL == 0 {
		c.MetalPriceTTL = 10 * time.Minute
	}
}

// Worker executes poll cycles. Safe to trigger from multiple goroutines:
// overlapping cycles are skipped, not queued.
type Worker struct {
	store       store.Store
	search      Searcher
	pipeline    Classifier
	notifier    notify.Notifier
	provisioner ChannelEnsurer
	cfg         Config

	cycleMu       sync.Mutex
	cursor        *cursor
	prices        *metalCache
	notifiedTests map[string]struct{}

	log      *slog.Logger
	nowFunc  func() time.Time
	sleep    func(ctx context.Context, d time.Duration)
	randFunc func() float64
}

// Option configures the Worker.
type Option func(*Worker)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Worker) {
		w.log = l
	}
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(fn func() time.Time) Option {
	return func(w *Worker) {
		w.nowFunc = fn
	}
}

// WithSleepFunc overrides the inter-task and inter-metal pauses, for tests.
func WithSleepFunc(fn func(ctx context.Context, d time.Duration)) Option {
	return func(w *Worker) {
		w.sleep = fn
	}
}

// WithRandFunc overrides the cleanup dice roll, for tests.
func WithRandFunc(fn func() float64) Option {
	return func(w *Worker) {
		w.randFunc = fn
	}
}

// New creates a Worker with injected dependencies.
func New(
	st store.Store,
	searcher Searcher,
	classifier Classifier,
	notifier notify.Notifier,
	provisioner ChannelEnsurer,
	cfg Config,
	opts ...Option,
) *Worker {
	cfg.applyDefaults()

	w := &Worker{
		store:         st,
		search:        searcher,
		pipeline:      classifier,
		notifier:      notifier,
		provisioner:   provisioner,
		cfg:           cfg,
		cursor:        newCursor(),
		notifiedTests: make(map[string]struct{}),
		log:           slog.Default(),
		nowFunc:       time.Now,
		sleep:         ctxSleep,
		randFunc:      rand.Float64,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.prices = newMetalCache(cfg.MetalPriceTTL)
	return w
}

// ctxSleep pauses for d or until the context is cancelled.
func ctxSleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
