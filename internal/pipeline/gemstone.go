package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/loupelabs/loupe/internal/metrics"
	"github.com/loupelabs/loupe/pkg/extract"
	score "github.com/loupelabs/loupe/pkg/scorer"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// classifyGemstone runs the gemstone rule chain: category gate, simulant and
// lab-created denylists, stone extraction, carat gate, then deal and risk
// scoring with the task's score gates.
func (p *Pipeline) classifyGemstone(ctx context.Context, in Input) (*Outcome, error) {
	t, l := in.Task, in.Listing
	filters := t.GemstoneFilters
	bypass := p.isBypass(l)

	if out := p.commonPrefix(in, bypass); out != nil {
		return out, nil
	}

	exists, err := p.matches.GemstoneMatchExists(ctx, t.ID, l.ItemID)
	if err != nil {
		return nil, fmt.Errorf("checking existing gemstone match: %w", err)
	}
	if exists && !bypass {
		return &Outcome{Skip: true}, nil
	}

	detail, err := p.details.Fetch(ctx, l.ItemID, false)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		if !bypass {
			return p.reject(t.Type, "detail", "No item details"), nil
		}
		detail = &domain.ListingDetail{ItemID: l.ItemID, Title: l.Title}
	}

	title := strings.ToLower(l.Title)

	if !bypass {
		// Loose stones and stone-set jewelry both qualify; anything else
		// is a mislisted search hit.
		if detail.CategoryID != "" {
			_, gem := gemstoneCategoryIDs[detail.CategoryID]
			_, jewelry := jewelryCategoryIDs[detail.CategoryID]
			if !gem && !jewelry {
				return p.reject(t.Type, "category", fmt.Sprintf("Non-gemstone category %s", detail.CategoryID)), nil
			}
		}

		if out := p.gemstoneDenylists(t, detail, title, filters); out != nil {
			return out, nil
		}
	}

	stone := extractStone(l, detail)

	if !bypass && stone.Carat != nil {
		if filters.CaratMin != nil && *stone.Carat < *filters.CaratMin {
			return p.reject(t.Type, "carat",
				fmt.Sprintf("Carat %.2f below %.2f", *stone.Carat, *filters.CaratMin)), nil
		}
		if filters.CaratMax != nil && *stone.Carat > *filters.CaratMax {
			return p.reject(t.Type, "carat",
				fmt.Sprintf("Carat %.2f above %.2f", *stone.Carat, *filters.CaratMax)), nil
		}
	}

	deal, _ := score.DealScore(stone, filters)
	risk := score.RiskScore(stone)
	metrics.DealScoreDistribution.Observe(float64(deal))
	metrics.RiskScoreDistribution.Observe(float64(risk))

	if !bypass {
		if filters.MinDealScore != nil && deal < *filters.MinDealScore {
			return p.reject(t.Type, "score",
				fmt.Sprintf("Deal score %d below %d", deal, *filters.MinDealScore)), nil
		}
		if filters.MaxRiskScore != nil && risk > *filters.MaxRiskScore {
			return p.reject(t.Type, "score",
				fmt.Sprintf("Risk score %d above %d", risk, *filters.MaxRiskScore)), nil
		}
	}

	m := &domain.GemstoneMatch{
		Match:     baseMatch(t, l),
		StoneType: stone.StoneType,
		Shape:     stone.Shape,
		Carat:     stone.Carat,
		Colour:    stone.Color,
		Clarity:   stone.Clarity,
		CertLab:   stone.CertLab,
		Treatment: stone.Treatment,
		IsNatural: stone.IsNatural,
		DealScore: deal,
		RiskScore: risk,
	}
	return &Outcome{Accepted: true, Bypass: bypass, Gemstone: m}, nil
}

// gemstoneDenylists applies the simulant blacklist to the title and every
// aspect value, then the lab-created gate unless the task allows lab stones.
func (p *Pipeline) gemstoneDenylists(
	t *domain.Task,
	detail *domain.ListingDetail,
	title string,
	filters *domain.GemstoneFilters,
) *Outcome {
	sources := []string{title}
	for _, v := range detail.Aspects {
		sources = append(sources, strings.ToLower(v))
	}

	for _, src := range sources {
		if term, ok := extract.FirstTerm(src, gemstoneBlacklist); ok {
			return p.reject(t.Type, "simulant", fmt.Sprintf("Simulant (%s)", term))
		}
	}

	if !filters.AllowLabCreated {
		for _, src := range sources {
			if term, ok := extract.FirstTerm(src, extract.LabCreatedTerms); ok {
				return p.reject(t.Type, "lab_created", fmt.Sprintf("Lab-created (%s)", term))
			}
		}
	}

	return nil
}

// extractStone runs the gemstone extractors and assembles the scoring input.
func extractStone(l *domain.ListingSummary, detail *domain.ListingDetail) *score.Stone {
	stone := &score.Stone{
		Title:             l.Title,
		Price:             l.Price,
		BuyFormat:         dominantFormat(l),
		SellerFeedback:    l.Seller.FeedbackScore,
		SellerFeedbackPct: l.Seller.FeedbackPercentage,
		ReturnsAccepted:   detail.ReturnsAccepted,
		IsNatural:         extract.IsNatural(l.Title, detail.Aspects),
	}

	stone.StoneType, _ = extract.StoneType(l.Title, detail.Aspects)
	stone.Shape, _ = extract.StoneShape(l.Title, detail.Aspects)
	if carat, ok := extract.CaratWeight(l.Title, detail.Aspects); ok {
		stone.Carat = &carat
	}
	stone.Color, _ = extract.StoneColor(l.Title, detail.Aspects, stone.StoneType)
	stone.Clarity, _ = extract.StoneClarity(l.Title, detail.Aspects)
	stone.CertLab, stone.CertTier, _ = extract.Certification(l.Title, detail.Aspects)
	stone.Treatment, _ = extract.Treatment(l.Title, detail.Aspects)

	return stone
}
