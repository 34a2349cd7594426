package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/slack-go/slack/slackevents"

	"github.com/loupelabs/loupe/internal/store"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// reactionStatus maps Slack reaction names onto match review states.
var reactionStatus = map[string]domain.MatchStatus{
	"+1":               domain.MatchPurchased,
	"thumbsup":         domain.MatchPurchased,
	"white_check_mark": domain.MatchPurchased,
	"heavy_check_mark": domain.MatchPurchased,
	"-1":               domain.MatchRejected,
	"thumbsdown":       domain.MatchRejected,
	"x":                domain.MatchRejected,
	"eyes":             domain.MatchWatching,
	"question":         domain.MatchReviewing,
}

// ReactionReceiver handles the Slack events webhook: reacting to a match
// notification updates the match's review status.
type ReactionReceiver struct {
	store store.Store
	log   *slog.Logger
}

// NewReactionReceiver creates a ReactionReceiver.
func NewReactionReceiver(s store.Store, log *slog.Logger) *ReactionReceiver {
	if log == nil {
		log = slog.Default()
	}
	return &ReactionReceiver{store: s, log: log}
}

// Handle processes POST /slack/events. Slack retries on non-200, so every
// path answers 200; failures are logged and dropped.
func (h *ReactionReceiver) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusOK)
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		h.log.Warn("unparseable slack event", "error", err)
		return c.NoContent(http.StatusOK)
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			return c.NoContent(http.StatusOK)
		}
		return c.String(http.StatusOK, challenge.Challenge)

	case slackevents.CallbackEvent:
		if reaction, ok := event.InnerEvent.Data.(*slackevents.ReactionAddedEvent); ok {
			h.applyReaction(c, reaction)
		}
	}

	return c.NoContent(http.StatusOK)
}

// applyReaction resolves the reacted message in the jewelry then gemstone
// match tables and updates the first hit.
func (h *ReactionReceiver) applyReaction(c echo.Context, ev *slackevents.ReactionAddedEvent) {
	status, known := reactionStatus[ev.Reaction]
	if !known {
		return
	}

	ctx := c.Request().Context()
	channel, ts := ev.Item.Channel, ev.Item.Timestamp

	for _, itemType := range []domain.ItemType{domain.ItemJewelry, domain.ItemGemstone} {
		updated, err := h.store.UpdateMatchStatusByMessage(ctx, itemType, channel, ts, status)
		if err != nil {
			h.log.Warn("updating match status failed",
				"item_type", itemType, "channel", channel, "ts", ts, "error", err)
			return
		}
		if updated {
			h.log.Info("match status updated by reaction",
				"item_type", itemType, "status", status, "reaction", ev.Reaction)
			return
		}
	}
}
