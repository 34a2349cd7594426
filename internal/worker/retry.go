package worker

import (
	"context"

	"github.com/loupelabs/loupe/internal/notify"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// retryPass re-delivers matches whose notification never went out, newest
// first, jewelry before gemstones. Payloads are rebuilt from the stored
// columns; the shipping quote type is not persisted, so retried jewelry
// notifications render the plain total.
func (w *Worker) retryPass(ctx context.Context) {
	jewelry, err := w.store.ListUnsentJewelryMatches(ctx, w.cfg.RetryLimit)
	if err != nil {
		w.log.Warn("listing unsent jewelry matches failed", "error", err)
	}
	for i := range jewelry {
		m := &jewelry[i]
		p := notify.JewelryPayload(m, domain.ShippingUnknown, w.nowFunc())
		w.resend(ctx, domain.ItemJewelry, &m.Match, p)
	}

	gemstones, err := w.store.ListUnsentGemstoneMatches(ctx, w.cfg.RetryLimit)
	if err != nil {
		w.log.Warn("listing unsent gemstone matches failed", "error", err)
	}
	for i := range gemstones {
		m := &gemstones[i]
		p := notify.GemstonePayload(m, w.nowFunc())
		w.resend(ctx, domain.ItemGemstone, &m.Match, p)
	}
}

func (w *Worker) resend(ctx context.Context, itemType domain.ItemType, m *domain.Match, p notify.Payload) {
	p.Channel = m.TaskChannel

	res := w.notifier.Send(ctx, p)
	if !res.OK {
		return
	}
	if err := w.store.UpdateMatchNotification(ctx, itemType, m.ID, true, &res.MessageTS, &res.ChannelID); err != nil {
		w.log.Warn("recording retried notification failed", "match", m.ID, "error", err)
	}
}
