package ebay

import (
	"strconv"
	"strings"

	domain "github.com/loupelabs/loupe/pkg/types"
)

// toListingDetail normalizes a raw item payload into the domain shape:
// aspects keyed by lowercased name, shipping read from the first shipping
// option, returns flag carried through for risk scoring.
func toListingDetail(raw *itemResponse) *domain.ListingDetail {
	detail := &domain.ListingDetail{
		ItemID:       raw.ItemID,
		Title:        raw.Title,
		Description:  raw.Description,
		CategoryID:   raw.CategoryID,
		Aspects:      make(map[string]string, len(raw.LocalizedAspects)),
		ShippingType: domain.ShippingUnknown,
	}

	for _, a := range raw.LocalizedAspects {
		name := strings.ToLower(strings.TrimSpace(a.Name))
		if name == "" {
			continue
		}
		detail.Aspects[name] = a.Value
	}

	if raw.ReturnTerms != nil {
		detail.ReturnsAccepted = raw.ReturnTerms.ReturnsAccepted
	}

	if len(raw.ShippingOptions) > 0 {
		cost, typ := normalizeShipping(raw.ShippingOptions[0])
		detail.ShippingCost = cost
		detail.ShippingType = typ
	}

	return detail
}

// normalizeShipping maps the first shipping option to (cost, type). Free
// ships as explicit zero; calculated shipping without an estimate also
// reports zero so price gates can use price + 0, but the type lets the
// notifier say "+ shipping".
func normalizeShipping(opt shippingOption) (*float64, domain.ShippingType) {
	zero := 0.0

	switch strings.ToUpper(opt.ShippingCostType) {
	case "FREE":
		return &zero, domain.ShippingFree
	case "CALCULATED":
		if v, ok := parseMoney(opt.ShippingCost); ok {
			return &v, domain.ShippingCalculated
		}
		return &zero, domain.ShippingCalculated
	case "FIXED":
		if v, ok := parseMoney(opt.ShippingCost); ok {
			if v == 0 {
				return &zero, domain.ShippingFree
			}
			return &v, domain.ShippingFixed
		}
		return nil, domain.ShippingUnknown
	default:
		if v, ok := parseMoney(opt.ShippingCost); ok {
			if v == 0 {
				return &zero, domain.ShippingFree
			}
			return &v, domain.ShippingFixed
		}
		return nil, domain.ShippingUnknown
	}
}

func parseMoney(m *moneyValue) (float64, bool) {
	if m == nil || m.Value == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m.Value, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
