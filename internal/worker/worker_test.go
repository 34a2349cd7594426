package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/loupelabs/loupe/internal/notify"
	"github.com/loupelabs/loupe/internal/pipeline"
	"github.com/loupelabs/loupe/internal/search"
	"github.com/loupelabs/loupe/internal/store"
	domain "github.com/loupelabs/loupe/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

type notifUpdate struct {
	itemType domain.ItemType
	id       int64
	sent     bool
	ts       *string
}

// fakeStore implements store.Store in memory for worker tests.
type fakeStore struct {
	mu sync.Mutex

	tasks    []domain.Task
	tasksErr error

	rejectedIDs map[string]struct{}
	rejections  []domain.RejectedItem

	prices          []domain.MetalPrice
	pricesErr       error
	listPricesCalls int

	insertJewelryDup bool
	insertedJewelry  []*domain.JewelryMatch
	insertedGemstone []*domain.GemstoneMatch
	insertedWatch    []*domain.WatchMatch
	nextID           int64

	unsentJewelry  []domain.JewelryMatch
	unsentGemstone []domain.GemstoneMatch

	touched      []string
	notifUpdates []notifUpdate
	health       []domain.HealthMetric

	expiredRejections int64
	expiredCached     int64
	sweepCalls        int
}

var _ store.Store = (*fakeStore)(nil)

func (f *fakeStore) ListActiveTasks(context.Context) ([]domain.Task, error) {
	return f.tasks, f.tasksErr
}

func (f *fakeStore) GetTask(context.Context, string) (*domain.Task, error) { return nil, nil }

func (f *fakeStore) ListTasks(context.Context, int, int) ([]domain.Task, error) { return nil, nil }

func (f *fakeStore) UpdateTaskChannel(context.Context, string, string, string) error { return nil }

func (f *fakeStore) TouchTaskLastRun(_ context.Context, id string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeStore) JewelryMatchExists(context.Context, string, string) (bool, error) {
	return false, nil
}

func (f *fakeStore) InsertJewelryMatch(_ context.Context, m *domain.JewelryMatch) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertJewelryDup {
		return false, nil
	}
	f.nextID++
	m.ID = f.nextID
	f.insertedJewelry = append(f.insertedJewelry, m)
	return true, nil
}

func (f *fakeStore) ListUnsentJewelryMatches(context.Context, int) ([]domain.JewelryMatch, error) {
	return f.unsentJewelry, nil
}

func (f *fakeStore) ListJewelryMatches(context.Context, *store.MatchQuery) ([]domain.JewelryMatch, error) {
	return nil, nil
}

func (f *fakeStore) GemstoneMatchExists(context.Context, string, string) (bool, error) {
	return false, nil
}

func (f *fakeStore) InsertGemstoneMatch(_ context.Context, m *domain.GemstoneMatch) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	f.insertedGemstone = append(f.insertedGemstone, m)
	return true, nil
}

func (f *fakeStore) ListUnsentGemstoneMatches(context.Context, int) ([]domain.GemstoneMatch, error) {
	return f.unsentGemstone, nil
}

func (f *fakeStore) ListGemstoneMatches(context.Context, *store.MatchQuery) ([]domain.GemstoneMatch, error) {
	return nil, nil
}

func (f *fakeStore) WatchMatchExists(context.Context, string, string) (bool, error) {
	return false, nil
}

func (f *fakeStore) InsertWatchMatch(_ context.Context, m *domain.WatchMatch) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	f.insertedWatch = append(f.insertedWatch, m)
	return true, nil
}

func (f *fakeStore) ListWatchMatches(context.Context, *store.MatchQuery) ([]domain.WatchMatch, error) {
	return nil, nil
}

func (f *fakeStore) UpdateMatchNotification(
	_ context.Context, itemType domain.ItemType, id int64, sent bool, ts, _ *string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifUpdates = append(f.notifUpdates, notifUpdate{itemType: itemType, id: id, sent: sent, ts: ts})
	return nil
}

func (f *fakeStore) UpdateMatchStatusByMessage(
	context.Context, domain.ItemType, string, string, domain.MatchStatus,
) (bool, error) {
	return false, nil
}

func (f *fakeStore) IsRejected(context.Context, string, string) (bool, error) { return false, nil }

func (f *fakeStore) UpsertRejection(_ context.Context, r *domain.RejectedItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejections = append(f.rejections, *r)
	return nil
}

func (f *fakeStore) ListRejectedIDs(context.Context, string) (map[string]struct{}, error) {
	if f.rejectedIDs == nil {
		return map[string]struct{}{}, nil
	}
	return f.rejectedIDs, nil
}

func (f *fakeStore) DeleteExpiredRejections(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweepCalls++
	return f.expiredRejections, nil
}

func (f *fakeStore) GetCachedItem(context.Context, string) (*domain.CachedItem, error) {
	return nil, nil
}

func (f *fakeStore) UpsertCachedItem(context.Context, *domain.CachedItem) error { return nil }

func (f *fakeStore) DeleteExpiredCachedItems(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expiredCached, nil
}

func (f *fakeStore) ListMetalPrices(context.Context) ([]domain.MetalPrice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listPricesCalls++
	return f.prices, f.pricesErr
}

func (f *fakeStore) GetCredentialSettings(context.Context) (*domain.CredentialSettings, error) {
	return &domain.CredentialSettings{}, nil
}

func (f *fakeStore) SaveCredentialSettings(context.Context, *domain.CredentialSettings) error {
	return nil
}

func (f *fakeStore) InsertHealthMetric(_ context.Context, m *domain.HealthMetric) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.health = append(f.health, *m)
	return nil
}

func (f *fakeStore) ListHealthMetrics(context.Context, int) ([]domain.HealthMetric, error) {
	return f.health, nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) Close() {}

// fakeSearcher replays scripted pages keyed by search keywords, falling back
// to a default page.
type fakeSearcher struct {
	pages    map[string][]domain.ListingSummary
	fallback []domain.ListingSummary
	err      error
	requests []search.Request
}

func (f *fakeSearcher) Search(_ context.Context, req search.Request) ([]domain.ListingSummary, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if page, ok := f.pages[req.Keywords]; ok {
		return page, nil
	}
	return f.fallback, nil
}

// fakeClassifier returns a scripted outcome per listing id.
type fakeClassifier struct {
	outcomes map[string]*pipeline.Outcome
	err      error
	calls    int
}

func (f *fakeClassifier) Classify(_ context.Context, in pipeline.Input) (*pipeline.Outcome, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if out, ok := f.outcomes[in.Listing.ItemID]; ok {
		return out, nil
	}
	return &pipeline.Outcome{Skip: true}, nil
}

// fakeNotifier records payloads and replies with a scripted result.
type fakeNotifier struct {
	result   domain.SendResult
	payloads []notify.Payload
}

func (f *fakeNotifier) Send(_ context.Context, p notify.Payload) domain.SendResult {
	f.payloads = append(f.payloads, p)
	return f.result
}

func (f *fakeNotifier) byKind(kind notify.Kind) []notify.Payload {
	var out []notify.Payload
	for _, p := range f.payloads {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// fakeEnsurer records Ensure calls.
type fakeEnsurer struct {
	err   error
	tasks []string
}

func (f *fakeEnsurer) Ensure(_ context.Context, task *domain.Task) error {
	f.tasks = append(f.tasks, task.ID)
	return f.err
}

func noSleep(context.Context, time.Duration) {}

func jewelryTask() domain.Task {
	return domain.Task{
		ID:     "task-1",
		UserID: "u1",
		Name:   "Gold Chains",
		Type:   domain.ItemJewelry,
		Status: domain.TaskActive,
		JewelryFilters: &domain.JewelryFilters{
			Metal:    []string{"Yellow Gold"},
			Keywords: "chain",
		},
		PollInterval:   60,
		SlackChannel:   "gold-chains",
		SlackChannelID: "C-GOLD",
	}
}

func listing(id string) domain.ListingSummary {
	return domain.ListingSummary{
		ItemID:     id,
		Title:      "14K Yellow Gold Chain 5.50g",
		Price:      150,
		Currency:   "USD",
		ListingURL: "https://www.ebay.com/itm/" + id,
		Seller:     domain.Seller{Username: "estate_seller", FeedbackScore: 600},
	}
}

func acceptedJewelry(task domain.Task, id string) *pipeline.Outcome {
	return &pipeline.Outcome{
		Accepted: true,
		Jewelry: &domain.JewelryMatch{
			Match: domain.Match{
				TaskID:        task.ID,
				EbayListingID: id,
				EbayTitle:     "14K Yellow Gold Chain 5.50g",
				ListedPrice:   150,
				Status:        domain.MatchNew,
			},
			Karat:       ptr(14),
			WeightGrams: ptr(5.5),
			MetalType:   "Gold",
			MeltValue:   ptr(220.0),
		},
	}
}

func newTestWorker(st *fakeStore, s *fakeSearcher, c *fakeClassifier, n *fakeNotifier, opts ...Option) *Worker {
	opts = append([]Option{
		WithLogger(quietLogger()),
		WithSleepFunc(noSleep),
		WithRandFunc(func() float64 { return 1 }), // no cleanup unless a test opts in
	}, opts...)
	return New(st, s, c, n, &fakeEnsurer{}, Config{}, opts...)
}
