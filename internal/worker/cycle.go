package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/loupelabs/loupe/internal/ebay"
	"github.com/loupelabs/loupe/internal/metrics"
	"github.com/loupelabs/loupe/internal/notify"
	"github.com/loupelabs/loupe/internal/pipeline"
	"github.com/loupelabs/loupe/internal/search"
	"github.com/loupelabs/loupe/pkg/extract"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// cycleStats accumulates one cycle's counters for the health metric row.
type cycleStats struct {
	processed int
	failed    int
	items     int
	matches   int
	excluded  int
}

// RunCycle executes one full poll cycle. A cycle already in flight makes the
// call a no-op; overlapping fires are counted, never queued.
func (w *Worker) RunCycle(ctx context.Context) error {
	if !w.cycleMu.TryLock() {
		metrics.CyclesSkippedTotal.Inc()
		w.log.Warn("cycle still running, skipping fire")
		return nil
	}
	defer w.cycleMu.Unlock()

	start := w.nowFunc()
	stats := &cycleStats{}

	tasks, err := w.store.ListActiveTasks(ctx)
	if err != nil {
		return err
	}
	w.log.Info("cycle started", "tasks", len(tasks))

	for i := range tasks {
		task := &tasks[i]

		if err := w.provisioner.Ensure(ctx, task); err != nil {
			w.log.Warn("channel provisioning failed", "task", task.ID, "error", err)
		}

		taskCtx, cancel := context.WithTimeout(ctx, w.cfg.TaskDeadline)
		err := w.processTask(taskCtx, task, stats)
		cancel()

		stats.processed++
		metrics.TasksProcessedTotal.WithLabelValues(string(task.Type)).Inc()
		if err != nil {
			stats.failed++
			metrics.TaskErrorsTotal.WithLabelValues(string(task.Type)).Inc()
			w.log.Error("task failed", "task", task.ID, "error", err)
		}

		// last_run advances even on failure so one broken task cannot
		// make itself look perpetually due.
		if err := w.store.TouchTaskLastRun(ctx, task.ID, w.nowFunc()); err != nil {
			w.log.Warn("touching task last_run failed", "task", task.ID, "error", err)
		}

		if ctx.Err() != nil {
			break
		}
		if i < len(tasks)-1 {
			w.sleep(ctx, w.cfg.InterTaskDelay)
		}
	}

	w.retryPass(ctx)
	w.maybeCleanup(ctx)

	elapsed := w.nowFunc().Sub(start)
	metrics.CycleDuration.Observe(elapsed.Seconds())
	w.recordHealth(ctx, start, elapsed, stats)

	w.log.Info("cycle finished",
		"duration", elapsed,
		"tasks", stats.processed,
		"failed", stats.failed,
		"items", stats.items,
		"matches", stats.matches,
		"excluded", stats.excluded,
	)
	return nil
}

// processTask searches one page for the task and classifies every listing.
func (w *Worker) processTask(ctx context.Context, task *domain.Task, stats *cycleStats) error {
	// A malformed row (bad enum, wrong or missing filter bag) is a data
	// error: this task fails the cycle, the loop moves on.
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	rejected, err := w.store.ListRejectedIDs(ctx, task.ID)
	if err != nil {
		return err
	}

	var prices map[string]domain.MetalPrice
	if task.Type == domain.ItemJewelry {
		prices, err = w.prices.get(ctx, w.store, w.nowFunc())
		if err != nil {
			return err
		}
	}

	listings, err := w.searchTask(ctx, task)
	if err != nil {
		return err
	}

	for i := range listings {
		l := &listings[i]
		stats.items++
		metrics.ItemsScannedTotal.WithLabelValues(string(task.Type)).Inc()

		out, err := w.pipeline.Classify(ctx, pipeline.Input{
			Task:     task,
			Listing:  l,
			Rejected: rejected,
			Prices:   prices,
		})
		if err != nil {
			// The daily budget and the task deadline end the whole task;
			// anything else is isolated to this listing.
			if errors.Is(err, ebay.ErrDailyLimitReached) || ctx.Err() != nil {
				return err
			}
			w.log.Warn("classification failed", "task", task.ID, "listing", l.ItemID, "error", err)
			continue
		}

		switch {
		case out.Skip:
			// Already rejected or already matched; nothing to record.
		case out.Accepted:
			if err := w.handleMatch(ctx, task, l, out, stats); err != nil {
				w.log.Warn("persisting match failed", "task", task.ID, "listing", l.ItemID, "error", err)
			}
		default:
			stats.excluded++
			w.recordRejection(ctx, task, l, out)
		}
	}
	return nil
}

// searchTask fetches this cycle's page for the task. Jewelry tasks with
// configured metals issue one search per expanded metal keyword, spaced
// apart and deduplicated by listing id. An open search breaker skips the
// task for the cycle without error.
func (w *Worker) searchTask(ctx context.Context, task *domain.Task) ([]domain.ListingSummary, error) {
	offset := w.cursor.next(task.ID)
	keywords := searchKeywords(task)

	seen := make(map[string]struct{})
	var page []domain.ListingSummary
	largest := -1

	for i, kw := range keywords {
		items, err := w.search.Search(ctx, search.BuildRequest(task, kw, offset))
		if err != nil {
			if errors.Is(err, search.ErrBreakerOpen) {
				w.log.Warn("search breaker open, skipping task", "task", task.ID)
				break
			}
			return nil, err
		}
		if len(items) > largest {
			largest = len(items)
		}
		for _, item := range items {
			if _, dup := seen[item.ItemID]; dup {
				continue
			}
			seen[item.ItemID] = struct{}{}
			page = append(page, item)
		}
		if i < len(keywords)-1 {
			w.sleep(ctx, w.cfg.InterMetalDelay)
		}
	}

	if largest >= 0 {
		w.cursor.advance(task.ID, largest)
	}
	return page, nil
}

// searchKeywords expands the task into its effective search strings. Jewelry
// tasks search once per metal keyword variant; everything else searches the
// filter keywords as-is.
func searchKeywords(task *domain.Task) []string {
	base := baseKeywords(task)

	if task.Type != domain.ItemJewelry || task.JewelryFilters == nil || len(task.JewelryFilters.Metal) == 0 {
		return []string{base}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, metal := range task.JewelryFilters.Metal {
		for _, variant := range extract.ExpandMetal(metal) {
			kw := joinKeywords(base, variant)
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	if len(out) == 0 {
		return []string{base}
	}
	return out
}

func baseKeywords(task *domain.Task) string {
	switch task.Type {
	case domain.ItemJewelry:
		if task.JewelryFilters != nil {
			return task.JewelryFilters.Keywords
		}
	case domain.ItemGemstone:
		if task.GemstoneFilters != nil {
			return task.GemstoneFilters.Keywords
		}
	case domain.ItemWatch:
		if task.WatchFilters != nil {
			return task.WatchFilters.Keywords
		}
	}
	return ""
}

func joinKeywords(base, extra string) string {
	return strings.TrimSpace(strings.TrimSpace(base) + " " + strings.TrimSpace(extra))
}

// handleMatch persists an accepted listing and walks the notification saga:
// insert, send, record delivery. A failed send leaves the row unsent for the
// retry pass.
func (w *Worker) handleMatch(
	ctx context.Context,
	task *domain.Task,
	l *domain.ListingSummary,
	out *pipeline.Outcome,
	stats *cycleStats,
) error {
	var (
		inserted bool
		err      error
		itemType domain.ItemType
		matchID  int64
		payload  notify.Payload
	)

	now := w.nowFunc()
	switch {
	case out.Jewelry != nil:
		itemType = domain.ItemJewelry
		inserted, err = w.store.InsertJewelryMatch(ctx, out.Jewelry)
		matchID = out.Jewelry.ID
		payload = notify.JewelryPayload(out.Jewelry, l.ShippingType, now)
	case out.Gemstone != nil:
		itemType = domain.ItemGemstone
		inserted, err = w.store.InsertGemstoneMatch(ctx, out.Gemstone)
		matchID = out.Gemstone.ID
		payload = notify.GemstonePayload(out.Gemstone, now)
	case out.Watch != nil:
		itemType = domain.ItemWatch
		inserted, err = w.store.InsertWatchMatch(ctx, out.Watch)
		matchID = out.Watch.ID
		payload = notify.WatchPayload(out.Watch, now)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	// The test note is keyed on the listing, not the insert: a restarted
	// process re-notifies the first test listing even though its match row
	// already exists.
	if out.Bypass {
		w.sendTestNote(ctx, task, l)
	}
	if !inserted {
		return nil
	}

	stats.matches++
	metrics.MatchesFoundTotal.WithLabelValues(string(itemType)).Inc()

	payload.Channel = task.SlackChannel
	payload.ChannelID = task.SlackChannelID

	if res := w.notifier.Send(ctx, payload); res.OK {
		if err := w.store.UpdateMatchNotification(ctx, itemType, matchID, true, &res.MessageTS, &res.ChannelID); err != nil {
			w.log.Warn("recording notification failed", "listing", l.ItemID, "error", err)
		}
	}
	return nil
}

// sendTestNote delivers the extra test-bypass notification, at most once per
// listing for the life of the process.
func (w *Worker) sendTestNote(ctx context.Context, task *domain.Task, l *domain.ListingSummary) {
	if _, done := w.notifiedTests[l.ItemID]; done {
		return
	}
	w.notifiedTests[l.ItemID] = struct{}{}

	p := notify.TestPayload(l.Seller.Username, l.Title, l.ListingURL)
	p.Channel = task.SlackChannel
	p.ChannelID = task.SlackChannelID
	w.notifier.Send(ctx, p)
}

// recordRejection writes the pipeline's verdict to the reject cache so the
// listing is not re-evaluated until the TTL lapses.
func (w *Worker) recordRejection(ctx context.Context, task *domain.Task, l *domain.ListingSummary, out *pipeline.Outcome) {
	now := w.nowFunc()
	err := w.store.UpsertRejection(ctx, &domain.RejectedItem{
		TaskID:          task.ID,
		EbayListingID:   l.ItemID,
		RejectionReason: out.Reason,
		RejectedAt:      now,
		ExpiresAt:       now.Add(w.cfg.RejectTTL),
	})
	if err != nil {
		w.log.Warn("caching rejection failed", "task", task.ID, "listing", l.ItemID, "error", err)
	}
}

// recordHealth writes the per-cycle health row.
func (w *Worker) recordHealth(ctx context.Context, start time.Time, elapsed time.Duration, stats *cycleStats) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	err := w.store.InsertHealthMetric(ctx, &domain.HealthMetric{
		CycleTimestamp:  start,
		CycleDurationMS: elapsed.Milliseconds(),
		TasksProcessed:  stats.processed,
		TasksFailed:     stats.failed,
		TotalItemsFound: stats.items,
		TotalMatches:    stats.matches,
		TotalExcluded:   stats.excluded,
		MemoryUsageMB:   float64(ms.Alloc) / 1024 / 1024,
	})
	if err != nil {
		w.log.Warn("recording health metric failed", "error", err)
	}
}
