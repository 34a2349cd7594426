// Package notify delivers match notifications to Slack and provisions
// per-task channels.
package notify

import (
	"context"

	"github.com/slack-go/slack"

	domain "github.com/loupelabs/loupe/pkg/types"
)

// Kind labels the notification flavor for metrics and formatting.
type Kind string

// Notification kinds.
const (
	KindJewelry  Kind = "jewelry"
	KindGemstone Kind = "gemstone"
	KindWatch    Kind = "watch"
	KindTest     Kind = "test"
)

// Payload is one ready-to-send notification. Channel routing falls through
// ChannelID, then Channel, then the notifier's default.
type Payload struct {
	Kind      Kind
	Channel   string
	ChannelID string

	// Fallback is the plain-text summary shown in toasts and by clients
	// that cannot render blocks.
	Fallback string
	Blocks   []slack.Block
	Color    string
}

// Notifier sends match notifications. A failed post is an expected outcome,
// not an error: the result simply reports OK=false and the match row stays
// unsent for the retry pass.
type Notifier interface {
	Send(ctx context.Context, p Payload) domain.SendResult
}
