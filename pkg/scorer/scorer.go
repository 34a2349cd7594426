// Package score computes deal and risk scores for gemstone listings.
//
// The deal score rewards attribute completeness, seller reputation, listing
// format, and certification; the risk score accumulates red flags such as
// lab-origin terms, missing attributes, and too-good-to-be-true pricing. Both
// land in [0,100].
package score

import (
	"math"
	"strings"

	"github.com/loupelabs/loupe/pkg/extract"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// Stone carries everything the scorers need about one listing. Callers fill
// it from the extracted attributes plus the search summary; fields left zero
// simply score as absent.
type Stone struct {
	Title string
	Price float64

	StoneType string
	Shape     string
	Carat     *float64
	Color     string
	Clarity   string
	CertLab   string
	CertTier  string
	Treatment string
	IsNatural bool

	// BuyFormat is the dominant buying option, e.g. "BEST_OFFER".
	BuyFormat string

	SellerFeedback    int
	SellerFeedbackPct float64

	// ReturnsAccepted is nil when the listing did not say; unknown is
	// treated as accepted.
	ReturnsAccepted *bool
}

// Breakdown itemizes the deal-score factors before rescaling.
type Breakdown struct {
	MatchQuality   int `json:"match_quality"`
	SellerQuality  int `json:"seller_quality"`
	Format         int `json:"format"`
	CertBonus      int `json:"cert_bonus"`
	DetailBonus    int `json:"detail_bonus"`
	NaturalBonus   int `json:"natural_bonus"`
	TreatmentBonus int `json:"treatment_bonus"`
}

// Sum returns the raw factor total before rescaling.
func (b Breakdown) Sum() int {
	return b.MatchQuality + b.SellerQuality + b.Format +
		b.CertBonus + b.DetailBonus + b.NaturalBonus + b.TreatmentBonus
}

// rawMax is the highest reachable raw sum: 25 match + 15 seller + 10 format
// + 15 cert + 10 detail + 5 natural + 5 treatment.
const rawMax = 85

// DealScore rates how attractive a gemstone listing is for the given task
// filters. The raw factor sum is rescaled to [0,100].
func DealScore(s *Stone, filters *domain.GemstoneFilters) (int, Breakdown) {
	b := Breakdown{
		MatchQuality:  matchQuality(s, filters),
		SellerQuality: feedbackLadder(s.SellerFeedback) + percentageLadder(s.SellerFeedbackPct),
		Format:        formatScore(s.BuyFormat),
		CertBonus:     certBonus(s.CertTier),
		DetailBonus:   detailBonus(s),
	}
	if s.IsNatural {
		b.NaturalBonus = 5
	}
	if s.Treatment == extract.TreatmentNotEnhanced && !isDiamond(s.StoneType) {
		b.TreatmentBonus = 5
	}

	score := int(math.Round(float64(b.Sum()) / rawMax * 100))
	return clamp(score), b
}

// matchQuality scores 0-25. When the task constrains stone types, shapes, or
// carat range, each constrained group contributes 5 points on a match and the
// total is normalized to 25. Unconstrained tasks fall back to attribute
// presence instead.
func matchQuality(s *Stone, filters *domain.GemstoneFilters) int {
	groups, hits := 0, 0
	if filters != nil {
		if len(filters.StoneTypes) > 0 {
			groups++
			if containsFold(filters.StoneTypes, s.StoneType) {
				hits++
			}
		}
		if len(filters.Shapes) > 0 {
			groups++
			if containsFold(filters.Shapes, s.Shape) {
				hits++
			}
		}
		if filters.CaratMin != nil || filters.CaratMax != nil {
			groups++
			if caratInRange(s.Carat, filters.CaratMin, filters.CaratMax) {
				hits++
			}
		}
	}
	if groups > 0 {
		return int(math.Round(float64(hits*5) * 25 / float64(groups*5)))
	}

	present := 0
	if s.StoneType != "" {
		present++
	}
	if s.Shape != "" {
		present++
	}
	if s.Carat != nil {
		present++
	}
	if s.Color != "" {
		present++
	}
	if s.Clarity != "" {
		present++
	}
	return present * 5
}

func feedbackLadder(score int) int {
	switch {
	case score >= 5000:
		return 8
	case score >= 2000:
		return 7
	case score >= 1000:
		return 6
	case score >= 500:
		return 5
	case score >= 250:
		return 4
	case score >= 100:
		return 3
	case score >= 50:
		return 2
	default:
		return 1
	}
}

func percentageLadder(pct float64) int {
	switch {
	case pct >= 99.5:
		return 7
	case pct >= 99:
		return 6
	case pct >= 98.5:
		return 5
	case pct >= 98:
		return 4
	case pct >= 97:
		return 3
	case pct >= 95:
		return 2
	default:
		return 1
	}
}

func formatScore(buyFormat string) int {
	switch buyFormat {
	case "BEST_OFFER":
		return 10
	case "FIXED_PRICE":
		return 7
	case "AUCTION":
		return 5
	default:
		return 3
	}
}

func certBonus(tier string) int {
	switch tier {
	case extract.CertTierPremium:
		return 15
	case extract.CertTierStandard:
		return 10
	case extract.CertTierBudget:
		return 5
	case extract.CertTierGeneric:
		return 3
	default:
		return 0
	}
}

func detailBonus(s *Stone) int {
	bonus := 0
	if s.Carat != nil {
		bonus += 2
	}
	if s.Color != "" {
		bonus += 2
	}
	if s.Clarity != "" {
		bonus += 2
	}
	if s.Shape != "" {
		bonus += 2
	}
	if s.Treatment != "" {
		bonus += 2
	}
	if bonus > 10 {
		bonus = 10
	}
	return bonus
}

// RiskScore accumulates red flags for a gemstone listing. Missing color and
// clarity only count against diamonds, where grading is the norm; colored
// stones routinely omit both.
func RiskScore(s *Stone) int {
	risk := 0
	title := strings.ToLower(s.Title)

	if extract.ContainsAnyTerm(title, extract.LabRiskTerms) {
		risk += 30
	}
	if s.ReturnsAccepted != nil && !*s.ReturnsAccepted {
		risk += 20
	}

	if s.Carat == nil {
		risk += 5
	}
	if s.StoneType == "" {
		risk += 5
	}
	if isDiamond(s.StoneType) {
		if s.Color == "" {
			risk += 5
		}
		if s.Clarity == "" {
			risk += 5
		}
	}

	if extract.ContainsAnyTerm(title, extract.HeavyTreatmentTerms) {
		risk += 15
	}

	switch {
	case s.SellerFeedback < 50:
		risk += 10
	case s.SellerFeedback < 100:
		risk += 5
	}
	if s.SellerFeedbackPct < 98 {
		risk += 5
	}

	if extract.ContainsAnyTerm(title, extract.VagueTerms) {
		risk += 10
	}

	// A "natural" stone over a carat selling under $50/ct is almost
	// certainly misdescribed.
	if s.IsNatural && s.Carat != nil && *s.Carat >= 1 && s.Price / *s.Carat < 50 {
		risk += 10
	}

	if risk > 100 {
		risk = 100
	}
	return risk
}

func isDiamond(stoneType string) bool {
	return strings.Contains(strings.ToLower(stoneType), "diamond")
}

func caratInRange(carat, min, max *float64) bool {
	if carat == nil {
		return false
	}
	if min != nil && *carat < *min {
		return false
	}
	if max != nil && *carat > *max {
		return false
	}
	return true
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
