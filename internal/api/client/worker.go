package client

import (
	"context"
	"fmt"

	domain "github.com/loupelabs/loupe/pkg/types"
)

// healthEnvelope mirrors the worker-health response body.
type healthEnvelope struct {
	Cycles []domain.HealthMetric `json:"cycles"`
}

// WorkerHealth returns the most recent worker cycle summaries.
func (c *Client) WorkerHealth(ctx context.Context, limit int) ([]domain.HealthMetric, error) {
	var env healthEnvelope
	if err := c.get(ctx, fmt.Sprintf("/api/v1/worker/health?limit=%d", limit), &env); err != nil {
		return nil, err
	}
	return env.Cycles, nil
}

// triggerEnvelope mirrors the trigger-cycle response body.
type triggerEnvelope struct {
	Queued bool `json:"queued"`
}

// TriggerCycle asks the worker to run a poll cycle as soon as possible.
// Returns false when a trigger was already pending.
func (c *Client) TriggerCycle(ctx context.Context) (bool, error) {
	var env triggerEnvelope
	if err := c.post(ctx, "/api/v1/worker/trigger", nil, &env); err != nil {
		return false, err
	}
	return env.Queued, nil
}
