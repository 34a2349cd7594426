package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/slack-go/slack"
	"golang.org/x/time/rate"

	"github.com/loupelabs/loupe/internal/metrics"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// slackAPI is the slack-go surface the notifier uses, narrowed for tests.
type slackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts match notifications through the Slack bot API, falling
// back to an incoming webhook when no bot token is configured. All sends
// share one pacer so consecutive notifications stay a beat apart regardless
// of which code path produced them.
type SlackNotifier struct {
	api            slackAPI
	webhookURL     string
	defaultChannel string
	limiter        *rate.Limiter
	log            *slog.Logger

	postWebhook func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

// SlackOption configures a SlackNotifier.
type SlackOption func(*SlackNotifier)

// WithSlackAPI overrides the bot API client, for tests.
func WithSlackAPI(api slackAPI) SlackOption {
	return func(n *SlackNotifier) {
		n.api = api
	}
}

// WithSlackLogger sets a custom logger.
func WithSlackLogger(l *slog.Logger) SlackOption {
	return func(n *SlackNotifier) {
		n.log = l
	}
}

// WithLimiter overrides the send pacer, for tests.
func WithLimiter(l *rate.Limiter) SlackOption {
	return func(n *SlackNotifier) {
		n.limiter = l
	}
}

// NewSlackNotifier builds a notifier from the configured credentials. Either
// botToken or webhookURL may be empty; with neither, every send reports
// OK=false.
func NewSlackNotifier(botToken, webhookURL, defaultChannel string, opts ...SlackOption) *SlackNotifier {
	n := &SlackNotifier{
		webhookURL:     webhookURL,
		defaultChannel: defaultChannel,
		// Slack tolerates roughly one message per second per channel;
		// 1.1 s keeps a margin.
		limiter:     rate.NewLimiter(rate.Every(1100*time.Millisecond), 1),
		log:         slog.Default(),
		postWebhook: slack.PostWebhookContext,
	}
	if botToken != "" {
		n.api = slack.New(botToken)
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Send delivers one notification. Failures are logged and reported through
// the result, never as an error; the caller leaves the match unsent.
func (n *SlackNotifier) Send(ctx context.Context, p Payload) domain.SendResult {
	if err := n.limiter.Wait(ctx); err != nil {
		return domain.SendResult{}
	}

	if n.api != nil {
		if result := n.sendBot(ctx, p); result.OK {
			return result
		} else if n.webhookURL == "" {
			return result
		}
		// Bot send failed but a webhook is configured; degrade.
	}

	if n.webhookURL != "" {
		return n.sendWebhook(ctx, p)
	}

	n.log.Warn("no notification transport configured", "kind", p.Kind)
	return domain.SendResult{}
}

func (n *SlackNotifier) sendBot(ctx context.Context, p Payload) domain.SendResult {
	channel := p.ChannelID
	if channel == "" {
		channel = p.Channel
	}
	if channel == "" {
		channel = n.defaultChannel
	}
	if channel == "" {
		return domain.SendResult{}
	}

	options := []slack.MsgOption{
		slack.MsgOptionText(p.Fallback, false),
	}
	if len(p.Blocks) > 0 {
		if p.Color != "" {
			options = append(options, slack.MsgOptionAttachments(slack.Attachment{
				Color:  p.Color,
				Blocks: slack.Blocks{BlockSet: p.Blocks},
			}))
		} else {
			options = append(options, slack.MsgOptionBlocks(p.Blocks...))
		}
	}

	channelID, ts, err := n.api.PostMessageContext(ctx, channel, options...)
	if err != nil {
		n.log.Warn("slack post failed", "kind", p.Kind, "channel", channel, "error", err)
		metrics.NotificationFailuresTotal.Inc()
		return domain.SendResult{}
	}

	metrics.NotificationsSentTotal.WithLabelValues(string(p.Kind)).Inc()
	return domain.SendResult{OK: true, MessageTS: ts, ChannelID: channelID}
}

// sendWebhook posts through the incoming webhook. Webhook deliveries carry
// no message timestamp, so reactions cannot be tracked on this path.
func (n *SlackNotifier) sendWebhook(ctx context.Context, p Payload) domain.SendResult {
	msg := &slack.WebhookMessage{Text: p.Fallback}
	if len(p.Blocks) > 0 {
		msg.Blocks = &slack.Blocks{BlockSet: p.Blocks}
	}

	if err := n.postWebhook(ctx, n.webhookURL, msg); err != nil {
		n.log.Warn("slack webhook failed", "kind", p.Kind, "error", err)
		metrics.NotificationFailuresTotal.Inc()
		return domain.SendResult{}
	}

	metrics.NotificationsSentTotal.WithLabelValues(string(p.Kind)).Inc()
	return domain.SendResult{OK: true}
}
