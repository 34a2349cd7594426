package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	domain "github.com/loupelabs/loupe/pkg/types"
)

// MatchFilter narrows a match listing. Zero values are omitted from the query.
type MatchFilter struct {
	TaskID       string
	Status       domain.MatchStatus
	MinDealScore *int
	MaxRiskScore *int
	Limit        int
	Offset       int
	OrderBy      string
}

func (f *MatchFilter) encode() string {
	q := url.Values{}
	if f == nil {
		return ""
	}
	if f.TaskID != "" {
		q.Set("task_id", f.TaskID)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.MinDealScore != nil {
		q.Set("min_deal_score", strconv.Itoa(*f.MinDealScore))
	}
	if f.MaxRiskScore != nil {
		q.Set("max_risk_score", strconv.Itoa(*f.MaxRiskScore))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	if f.OrderBy != "" {
		q.Set("order_by", f.OrderBy)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// matchesEnvelope mirrors the list-matches response body.
type matchesEnvelope struct {
	ItemType string                 `json:"item_type"`
	Jewelry  []domain.JewelryMatch  `json:"jewelry,omitempty"`
	Gemstone []domain.GemstoneMatch `json:"gemstone,omitempty"`
	Watch    []domain.WatchMatch    `json:"watch,omitempty"`
}

func (c *Client) listMatches(ctx context.Context, itemType domain.ItemType, f *MatchFilter) (*matchesEnvelope, error) {
	var env matchesEnvelope
	path := fmt.Sprintf("/api/v1/matches/%s%s", itemType, f.encode())
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// ListJewelryMatches returns jewelry matches satisfying the filter.
func (c *Client) ListJewelryMatches(ctx context.Context, f *MatchFilter) ([]domain.JewelryMatch, error) {
	env, err := c.listMatches(ctx, domain.ItemJewelry, f)
	if err != nil {
		return nil, err
	}
	return env.Jewelry, nil
}

// ListGemstoneMatches returns gemstone matches satisfying the filter.
func (c *Client) ListGemstoneMatches(ctx context.Context, f *MatchFilter) ([]domain.GemstoneMatch, error) {
	env, err := c.listMatches(ctx, domain.ItemGemstone, f)
	if err != nil {
		return nil, err
	}
	return env.Gemstone, nil
}

// ListWatchMatches returns watch matches satisfying the filter.
func (c *Client) ListWatchMatches(ctx context.Context, f *MatchFilter) ([]domain.WatchMatch, error) {
	env, err := c.listMatches(ctx, domain.ItemWatch, f)
	if err != nil {
		return nil, err
	}
	return env.Watch, nil
}
