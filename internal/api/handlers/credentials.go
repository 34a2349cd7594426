package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/loupelabs/loupe/pkg/types"
)

// RedactedCredential is one pool entry with its secrets masked. Only enough
// of the app id survives to tell entries apart.
type RedactedCredential struct {
	Label         string                  `json:"label"`
	AppID         string                  `json:"app_id"`
	Status        domain.CredentialStatus `json:"status"`
	RateLimitedAt *time.Time              `json:"rate_limited_at,omitempty"`
	CallsToday    int                     `json:"calls_today"`
	LastUsed      *time.Time              `json:"last_used,omitempty"`
}

// CredentialsBody wraps the redacted pool.
type CredentialsBody struct {
	Keys             []RedactedCredential    `json:"keys"`
	RotationStrategy domain.RotationStrategy `json:"rotation_strategy,omitempty"`
}

// ListCredentialsOutput is the list-credentials response.
type ListCredentialsOutput struct {
	Body CredentialsBody
}

func (h *OpsHandler) listCredentials(ctx context.Context, _ *struct{}) (*ListCredentialsOutput, error) {
	settings, err := h.store.GetCredentialSettings(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("loading credentials", err)
	}

	body := CredentialsBody{Keys: []RedactedCredential{}}
	if settings != nil {
		body.RotationStrategy = settings.RotationStrategy
		for _, c := range settings.Keys {
			body.Keys = append(body.Keys, RedactedCredential{
				Label:         c.Label,
				AppID:         maskAppID(c.AppID),
				Status:        c.Status,
				RateLimitedAt: c.RateLimitedAt,
				CallsToday:    c.CallsToday,
				LastUsed:      c.LastUsed,
			})
		}
	}
	return &ListCredentialsOutput{Body: body}, nil
}

// maskAppID keeps the first four characters and hides the rest. Cert ids are
// never exposed at all.
func maskAppID(id string) string {
	if len(id) <= 4 {
		return strings.Repeat("*", len(id))
	}
	return id[:4] + strings.Repeat("*", len(id)-4)
}
