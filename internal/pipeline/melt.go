package pipeline

import (
	"math"
	"strings"

	domain "github.com/loupelabs/loupe/pkg/types"
)

const (
	refiningFactor = 0.97 // refiners pay ~97% of melt
	offerFactor    = 0.85 // suggested offer against break-even
)

// economics holds the scrap math for one jewelry listing.
type economics struct {
	MeltValue      float64
	BreakEven      float64
	TotalCost      float64
	ProfitScrap    float64
	MarginPct      float64
	SuggestedOffer float64
}

// computeEconomics returns the scrap economics for a listing, or false when
// melt value cannot be determined (unknown metal, missing weight, or no spot
// price on file). Gold is priced by karat; other metals by purity in parts
// per thousand. totalCost is price plus shipping when known.
func computeEconomics(
	metal string,
	karat int,
	purity int,
	weightGrams float64,
	totalCost float64,
	prices map[string]domain.MetalPrice,
) (economics, bool) {
	melt, ok := meltValue(metal, karat, purity, weightGrams, prices)
	if !ok {
		return economics{}, false
	}

	e := economics{
		MeltValue:   melt,
		BreakEven:   melt * refiningFactor,
		TotalCost:   totalCost,
		ProfitScrap: melt - totalCost,
	}
	if totalCost > 0 {
		e.MarginPct = (e.BreakEven - totalCost) / totalCost * 100
	}
	e.SuggestedOffer = math.Floor(e.BreakEven * offerFactor)
	return e, true
}

// meltValue prices the metal content. Gold uses the per-karat price columns;
// karats without a column are interpolated from the nearest one. Other
// precious metals use the pure per-gram price scaled by fineness.
func meltValue(metal string, karat, purity int, weightGrams float64, prices map[string]domain.MetalPrice) (float64, bool) {
	if weightGrams <= 0 {
		return 0, false
	}

	price, ok := prices[strings.ToLower(metal)]
	if !ok {
		return 0, false
	}

	switch strings.ToLower(metal) {
	case "gold":
		perGram, ok := goldPerGram(price, karat)
		if !ok {
			return 0, false
		}
		return weightGrams * perGram, true
	case "silver", "platinum", "palladium":
		if price.PriceGram24K <= 0 || purity <= 0 {
			return 0, false
		}
		return weightGrams * price.PriceGram24K * float64(purity) / 1000, true
	default:
		return 0, false
	}
}

func goldPerGram(price domain.MetalPrice, karat int) (float64, bool) {
	var perGram float64
	switch karat {
	case 10:
		perGram = price.PriceGram10K
	case 14:
		perGram = price.PriceGram14K
	case 18:
		perGram = price.PriceGram18K
	case 24:
		perGram = price.PriceGram24K
	case 9:
		perGram = price.PriceGram10K * 0.97
	case 22:
		perGram = price.PriceGram18K * 22.0 / 18.0
	case 8:
		perGram = price.PriceGram24K * 8.0 / 24.0
	default:
		return 0, false
	}
	if perGram <= 0 {
		return 0, false
	}
	return perGram, true
}
