package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/loupelabs/loupe/internal/store"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// ListMatchesInput maps the match listing filters onto store.MatchQuery.
type ListMatchesInput struct {
	ItemType     string `path:"itemType" enum:"jewelry,gemstone,watch"`
	TaskID       string `query:"task_id"`
	Status       string `query:"status" enum:",new,purchased,rejected,watching,reviewing"`
	MinDealScore *int   `query:"min_deal_score" minimum:"0" maximum:"100"`
	MaxRiskScore *int   `query:"max_risk_score" minimum:"0" maximum:"100"`
	Limit        int    `query:"limit"  default:"50" minimum:"1" maximum:"500"`
	Offset       int    `query:"offset" default:"0"  minimum:"0"`
	OrderBy      string `query:"order_by" enum:",found_at,price,deal_score"`
}

func (in *ListMatchesInput) query() *store.MatchQuery {
	q := &store.MatchQuery{
		MinDealScore: in.MinDealScore,
		MaxRiskScore: in.MaxRiskScore,
		Limit:        in.Limit,
		Offset:       in.Offset,
		OrderBy:      in.OrderBy,
	}
	if in.TaskID != "" {
		q.TaskID = &in.TaskID
	}
	if in.Status != "" {
		status := domain.MatchStatus(in.Status)
		q.Status = &status
	}
	return q
}

// MatchesBody carries the slice matching the requested item type.
type MatchesBody struct {
	ItemType string                 `json:"item_type"`
	Jewelry  []domain.JewelryMatch  `json:"jewelry,omitempty"`
	Gemstone []domain.GemstoneMatch `json:"gemstone,omitempty"`
	Watch    []domain.WatchMatch    `json:"watch,omitempty"`
}

// ListMatchesOutput is the list-matches response.
type ListMatchesOutput struct {
	Body MatchesBody
}

func (h *OpsHandler) listMatches(ctx context.Context, in *ListMatchesInput) (*ListMatchesOutput, error) {
	out := &ListMatchesOutput{Body: MatchesBody{ItemType: in.ItemType}}
	q := in.query()

	switch domain.ItemType(in.ItemType) {
	case domain.ItemJewelry:
		matches, err := h.store.ListJewelryMatches(ctx, q)
		if err != nil {
			return nil, huma.Error500InternalServerError("listing jewelry matches", err)
		}
		out.Body.Jewelry = matches
	case domain.ItemGemstone:
		matches, err := h.store.ListGemstoneMatches(ctx, q)
		if err != nil {
			return nil, huma.Error500InternalServerError("listing gemstone matches", err)
		}
		out.Body.Gemstone = matches
	case domain.ItemWatch:
		matches, err := h.store.ListWatchMatches(ctx, q)
		if err != nil {
			return nil, huma.Error500InternalServerError("listing watch matches", err)
		}
		out.Body.Watch = matches
	default:
		return nil, huma.Error422UnprocessableEntity("unknown item type")
	}

	return out, nil
}
