package notify

import (
	"context"
	"sync"

	domain "github.com/loupelabs/loupe/pkg/types"
)

// NoopNotifier records payloads without delivering them. Used when Slack is
// unconfigured and as a capture point in tests.
type NoopNotifier struct {
	mu       sync.Mutex
	payloads []Payload
}

// NewNoopNotifier creates a NoopNotifier.
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// Send records the payload and reports success.
func (n *NoopNotifier) Send(_ context.Context, p Payload) domain.SendResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, p)
	return domain.SendResult{OK: true}
}

// Payloads returns a copy of everything sent so far.
func (n *NoopNotifier) Payloads() []Payload {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Payload, len(n.payloads))
	copy(out, n.payloads)
	return out
}
