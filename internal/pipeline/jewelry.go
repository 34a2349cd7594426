package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/loupelabs/loupe/pkg/extract"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// classifyJewelry runs the jewelry rule chain: title denylists, silver guard,
// seller and duplicate gates, then the detail-backed category, description,
// and aspect rules, and finally the scrap economics gate.
func (p *Pipeline) classifyJewelry(ctx context.Context, in Input) (*Outcome, error) {
	t, l := in.Task, in.Listing
	filters := t.JewelryFilters
	bypass := p.isBypass(l)

	if out := p.commonPrefix(in, bypass); out != nil {
		return out, nil
	}

	title := strings.ToLower(l.Title)

	if !bypass {
		if term, ok := extract.FirstTerm(title, platedTitleTerms); ok {
			return p.reject(t.Type, "title_plated", fmt.Sprintf("Plated/filled/vermeil (%s)", term)), nil
		}
		if term, ok := extract.FirstTerm(title, titleBaseMetals); ok {
			return p.reject(t.Type, "title_base_metal", fmt.Sprintf("Base metal %q", term)), nil
		}
		if !filters.WantsSilver() && silverOnly(title) {
			return p.reject(t.Type, "silver", "Silver (not selected)"), nil
		}
		if l.Seller.FeedbackScore < t.MinSellerFeedback {
			return p.reject(t.Type, "seller",
				fmt.Sprintf("Seller feedback %d below %d", l.Seller.FeedbackScore, t.MinSellerFeedback)), nil
		}
	}

	exists, err := p.matches.JewelryMatchExists(ctx, t.ID, l.ItemID)
	if err != nil {
		return nil, fmt.Errorf("checking existing jewelry match: %w", err)
	}
	if exists && !bypass {
		return &Outcome{Skip: true}, nil
	}

	// Shipping is part of the cost math, so pull it live when the search
	// result didn't carry it.
	detail, err := p.details.Fetch(ctx, l.ItemID, l.ShippingCost == nil)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		if !bypass {
			return p.reject(t.Type, "detail", "No item details"), nil
		}
		detail = &domain.ListingDetail{ItemID: l.ItemID, Title: l.Title}
	}

	if !bypass {
		if out := p.jewelryDetailRules(t, l, detail, title, filters); out != nil {
			return out, nil
		}
	}

	m := &domain.JewelryMatch{Match: baseMatch(t, l)}
	if m.ShippingCost == nil && detail.ShippingCost != nil {
		m.ShippingCost = detail.ShippingCost
	}

	karat, karatOK := extract.Karat(l.Title, detail.Aspects, detail.Description)
	weight, weightOK := extract.WeightGrams(l.Title, detail.Aspects, detail.Description)
	metal, purity := extract.MetalType(l.Title, detail.Aspects, karat)

	if karatOK {
		m.Karat = &karat
	}
	if weightOK {
		m.WeightGrams = &weight
	}
	m.MetalType = metal

	if !bypass && weightOK {
		if filters.WeightMin != nil && weight < *filters.WeightMin {
			return p.reject(t.Type, "weight",
				fmt.Sprintf("Weight %.2fg below %.2fg", weight, *filters.WeightMin)), nil
		}
		if filters.WeightMax != nil && weight > *filters.WeightMax {
			return p.reject(t.Type, "weight",
				fmt.Sprintf("Weight %.2fg above %.2fg", weight, *filters.WeightMax)), nil
		}
	}

	if weightOK {
		if eco, ok := computeEconomics(metal, karat, purity, weight, m.TotalCost(), in.Prices); ok {
			m.MeltValue = &eco.MeltValue
			m.BreakEven = &eco.BreakEven
			m.ProfitScrap = &eco.ProfitScrap
			m.SuggestedOffer = &eco.SuggestedOffer

			if !bypass && eco.MarginPct < t.EffectiveMinMargin() {
				return p.reject(t.Type, "margin",
					fmt.Sprintf("Margin %.1f%% below %.1f%%", eco.MarginPct, t.EffectiveMinMargin())), nil
			}
		}
	}

	return &Outcome{Accepted: true, Bypass: bypass, Jewelry: m}, nil
}

// jewelryDetailRules runs the rules that need the fetched detail: category
// gate, description denylists, tools denylist, and the aspect-sheet rules.
func (p *Pipeline) jewelryDetailRules(
	t *domain.Task,
	l *domain.ListingSummary,
	detail *domain.ListingDetail,
	title string,
	filters *domain.JewelryFilters,
) *Outcome {
	// Rows cached before the category column existed carry an empty id;
	// the gate only applies when the category is known.
	if detail.CategoryID != "" {
		if _, bad := jewelryBlacklistCategories[detail.CategoryID]; bad {
			return p.reject(t.Type, "category", fmt.Sprintf("Blacklisted category %s", detail.CategoryID))
		}
		if _, ok := jewelryCategoryIDs[detail.CategoryID]; !ok {
			return p.reject(t.Type, "category", fmt.Sprintf("Non-jewelry category %s", detail.CategoryID))
		}
	}

	if detail.Description != "" {
		desc := strings.ToLower(extract.StripHTML(detail.Description))
		if term, ok := extract.FirstTerm(desc, descriptionPlatedPhrases); ok {
			return p.reject(t.Type, "description", fmt.Sprintf("Plated in description (%s)", term))
		}
		if term, ok := extract.FirstTerm(desc, descriptionBaseMetalPhrases); ok {
			return p.reject(t.Type, "description", fmt.Sprintf("Base metal in description (%s)", term))
		}
	}

	if term, ok := extract.FirstTerm(title, toolsExclusions); ok {
		return p.reject(t.Type, "tools", fmt.Sprintf("Tools/supplies (%s)", term))
	}

	for _, name := range metalAspectNames {
		v, ok := lowerAspect(detail, name)
		if !ok || v == "" {
			continue
		}
		if term, ok := extract.FirstTerm(v, badMetalAspects); ok {
			return p.reject(t.Type, "aspect_metal", fmt.Sprintf("Bad metal aspect %s=%q (%s)", name, v, term))
		}
		if term, ok := extract.FirstTerm(v, baseMetalsToReject); ok {
			return p.reject(t.Type, "aspect_metal", fmt.Sprintf("Base metal aspect %s=%q (%s)", name, v, term))
		}
		if strings.Contains(v, "tone") && !containsAny(v, realToneTerms) {
			return p.reject(t.Type, "aspect_metal", fmt.Sprintf("Tone metal aspect %s=%q", name, v))
		}
	}

	if term, ok := extract.FirstTerm(title, costumeJewelryTerms); ok {
		return p.reject(t.Type, "costume", fmt.Sprintf("Costume jewelry (%s)", term))
	}

	if filters.NoStoneEnabled() {
		for _, name := range stoneAspectNames {
			v, ok := lowerAspect(detail, name)
			if !ok || v == "" {
				continue
			}
			if _, placeholder := noStoneValues[v]; !placeholder {
				return p.reject(t.Type, "stone", fmt.Sprintf("Stone present (%s=%q)", name, v))
			}
		}
		if term, ok := extract.FirstTerm(title, stoneKeywords); ok {
			return p.reject(t.Type, "stone", fmt.Sprintf("Stone keyword (%s)", term))
		}
	}

	return nil
}

// silverOnly reports whether the title describes a silver piece: an explicit
// sterling/925 marker, or "silver" with no gold mention.
func silverOnly(title string) bool {
	if strings.Contains(title, "sterling silver") ||
		strings.Contains(title, "925 silver") ||
		strings.Contains(title, ".925") {
		return true
	}
	return strings.Contains(title, "silver") && !strings.Contains(title, "gold")
}

func containsAny(hay string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(hay, term) {
			return true
		}
	}
	return false
}
