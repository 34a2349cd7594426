package worker

import "context"

// maybeCleanup probabilistically sweeps expired reject-cache and detail-cache
// rows. Running it on a fraction of cycles keeps the sweep cheap without a
// second timer.
func (w *Worker) maybeCleanup(ctx context.Context) {
	if w.randFunc() >= w.cfg.CleanupProbability {
		return
	}

	rejections, err := w.store.DeleteExpiredRejections(ctx)
	if err != nil {
		w.log.Warn("sweeping expired rejections failed", "error", err)
	}

	cached, err := w.store.DeleteExpiredCachedItems(ctx)
	if err != nil {
		w.log.Warn("sweeping expired cached items failed", "error", err)
	}

	if rejections > 0 || cached > 0 {
		w.log.Info("cache sweep", "rejections", rejections, "cached_items", cached)
	}
}
