package client

import (
	"context"
	"time"

	domain "github.com/loupelabs/loupe/pkg/types"
)

// Credential is one pool entry as exposed by the API, secrets already masked
// server-side.
type Credential struct {
	Label         string                  `json:"label"`
	AppID         string                  `json:"app_id"`
	Status        domain.CredentialStatus `json:"status"`
	RateLimitedAt *time.Time              `json:"rate_limited_at,omitempty"`
	CallsToday    int                     `json:"calls_today"`
	LastUsed      *time.Time              `json:"last_used,omitempty"`
}

// CredentialPool is the redacted credential listing.
type CredentialPool struct {
	Keys             []Credential            `json:"keys"`
	RotationStrategy domain.RotationStrategy `json:"rotation_strategy,omitempty"`
}

// ListCredentials returns the redacted marketplace credential pool.
func (c *Client) ListCredentials(ctx context.Context) (*CredentialPool, error) {
	var pool CredentialPool
	if err := c.get(ctx, "/api/v1/credentials", &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}
