package score_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	score "github.com/loupelabs/loupe/pkg/scorer"
	domain "github.com/loupelabs/loupe/pkg/types"
)

func ptr[T any](v T) *T { return &v }

// certifiedSapphire is a strong listing: premium cert, top seller, natural,
// heat-only treatment.
func certifiedSapphire() *score.Stone {
	return &score.Stone{
		Title:             "1.25ct Natural Blue Sapphire Oval GIA Certified",
		Price:             900,
		StoneType:         "Sapphire",
		Shape:             "Oval",
		Carat:             ptr(1.25),
		Color:             "Blue",
		CertLab:           "GIA",
		CertTier:          "premium",
		Treatment:         "Heat Only",
		IsNatural:         true,
		BuyFormat:         "FIXED_PRICE",
		SellerFeedback:    5000,
		SellerFeedbackPct: 99.8,
		ReturnsAccepted:   ptr(true),
	}
}

func TestDealScore_CertifiedSapphire(t *testing.T) {
	t.Parallel()

	filters := &domain.GemstoneFilters{
		StoneTypes: []string{"Sapphire"},
		CaratMin:   ptr(1.0),
	}

	got, b := score.DealScore(certifiedSapphire(), filters)

	// Both constrained groups match: 25. Seller 8+7, fixed price 7,
	// premium cert 15, four attributes present 8, natural 5. Raw 75.
	assert.Equal(t, 25, b.MatchQuality)
	assert.Equal(t, 15, b.SellerQuality)
	assert.Equal(t, 7, b.Format)
	assert.Equal(t, 15, b.CertBonus)
	assert.Equal(t, 8, b.DetailBonus)
	assert.Equal(t, 5, b.NaturalBonus)
	assert.Equal(t, 0, b.TreatmentBonus)
	assert.Equal(t, 75, b.Sum())
	assert.Equal(t, 88, got)
}

func TestDealScore_PartialFilterMatch(t *testing.T) {
	t.Parallel()

	filters := &domain.GemstoneFilters{
		StoneTypes: []string{"Ruby"},
		Shapes:     []string{"Round"},
		CaratMin:   ptr(1.0),
	}

	s := certifiedSapphire()
	_, b := score.DealScore(s, filters)

	// One of three constrained groups matches: round(5*25/15) = 8.
	assert.Equal(t, 8, b.MatchQuality)
}

func TestDealScore_PresenceFallback(t *testing.T) {
	t.Parallel()

	s := &score.Stone{
		StoneType:         "Diamond",
		Shape:             "Round",
		Carat:             ptr(1.0),
		Color:             "G",
		Clarity:           "VS1",
		BuyFormat:         "BEST_OFFER",
		SellerFeedback:    120,
		SellerFeedbackPct: 97.5,
	}

	_, b := score.DealScore(s, nil)

	// No filter constraints: all five attributes present maps to 25, and
	// the detail bonus caps at 10.
	assert.Equal(t, 25, b.MatchQuality)
	assert.Equal(t, 10, b.DetailBonus)
	assert.Equal(t, 10, b.Format)
	assert.Equal(t, 6, b.SellerQuality) // 3 + 3
}

func TestDealScore_NotEnhancedBonusSkipsDiamonds(t *testing.T) {
	t.Parallel()

	diamond := &score.Stone{StoneType: "Diamond", Treatment: "Not Enhanced"}
	_, b := score.DealScore(diamond, nil)
	assert.Equal(t, 0, b.TreatmentBonus)

	emerald := &score.Stone{StoneType: "Emerald", Treatment: "Not Enhanced"}
	_, b = score.DealScore(emerald, nil)
	assert.Equal(t, 5, b.TreatmentBonus)
}

func TestDealScore_FullHouseClampsAt100(t *testing.T) {
	t.Parallel()

	s := certifiedSapphire()
	s.Clarity = "VVS"
	s.BuyFormat = "BEST_OFFER"
	s.Treatment = "Not Enhanced"

	filters := &domain.GemstoneFilters{StoneTypes: []string{"Sapphire"}}
	got, b := score.DealScore(s, filters)

	// 25+15+10+15+10+5+5 = 85, the raw ceiling.
	assert.Equal(t, 85, b.Sum())
	assert.Equal(t, 100, got)
}

func TestDealScore_UnknownFormatAndNoCert(t *testing.T) {
	t.Parallel()

	s := &score.Stone{BuyFormat: "CLASSIFIED_AD"}
	_, b := score.DealScore(s, nil)
	assert.Equal(t, 3, b.Format)
	assert.Equal(t, 0, b.CertBonus)
}

func TestRiskScore_CleanListing(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, score.RiskScore(certifiedSapphire()))
}

func TestRiskScore_LabTermInTitle(t *testing.T) {
	t.Parallel()

	s := certifiedSapphire()
	s.Title = "1.25ct Lab Created Blue Sapphire Oval"
	s.IsNatural = false

	assert.Equal(t, 30, score.RiskScore(s))
}

func TestRiskScore_LabTermNeedsWordBoundary(t *testing.T) {
	t.Parallel()

	s := certifiedSapphire()
	s.Title = "Sapphire ring, a collaboration piece"

	// "collaboration" must not count as "lab".
	assert.Equal(t, 0, score.RiskScore(s))
}

func TestRiskScore_NoReturns(t *testing.T) {
	t.Parallel()

	s := certifiedSapphire()
	s.ReturnsAccepted = ptr(false)
	assert.Equal(t, 20, score.RiskScore(s))

	// Unknown returns policy is treated as accepted.
	s.ReturnsAccepted = nil
	assert.Equal(t, 0, score.RiskScore(s))
}

func TestRiskScore_MissingAttributes(t *testing.T) {
	t.Parallel()

	s := certifiedSapphire()
	s.Carat = nil
	s.StoneType = ""
	s.Color = ""

	// Missing color only penalizes diamonds.
	assert.Equal(t, 10, score.RiskScore(s))
}

func TestRiskScore_DiamondMissingGrades(t *testing.T) {
	t.Parallel()

	s := certifiedSapphire()
	s.Title = "1.25ct Natural Diamond Oval GIA Certified"
	s.StoneType = "Diamond"
	s.Color = ""
	s.Clarity = ""

	assert.Equal(t, 10, score.RiskScore(s))
}

func TestRiskScore_HeavyTreatmentInTitle(t *testing.T) {
	t.Parallel()

	s := certifiedSapphire()
	s.Title = "2ct Glass Filled Ruby"
	s.StoneType = "Ruby"
	s.Carat = ptr(2.0)

	assert.Equal(t, 15, score.RiskScore(s))
}

func TestRiskScore_SellerLadders(t *testing.T) {
	t.Parallel()

	s := certifiedSapphire()
	s.SellerFeedback = 30
	assert.Equal(t, 10, score.RiskScore(s))

	s.SellerFeedback = 75
	assert.Equal(t, 5, score.RiskScore(s))

	s.SellerFeedback = 75
	s.SellerFeedbackPct = 97.2
	assert.Equal(t, 10, score.RiskScore(s))
}

func TestRiskScore_VagueTerm(t *testing.T) {
	t.Parallel()

	s := certifiedSapphire()
	s.Title = "Estate sapphire ring from grandma's attic"

	// Multiple vague terms still count once.
	assert.Equal(t, 10, score.RiskScore(s))
}

func TestRiskScore_SuspiciouslyCheapNatural(t *testing.T) {
	t.Parallel()

	s := certifiedSapphire()
	s.Price = 45
	s.Carat = ptr(1.5)

	assert.Equal(t, 10, score.RiskScore(s))

	// Under a carat the per-carat floor does not apply.
	s.Carat = ptr(0.9)
	assert.Equal(t, 0, score.RiskScore(s))
}

func TestRiskScore_ClampsAt100(t *testing.T) {
	t.Parallel()

	s := &score.Stone{
		Title:             "Mystery natural dyed stone, untested, as-is, lab grown look",
		Price:             10,
		Carat:             ptr(1.0),
		IsNatural:         true,
		SellerFeedback:    2,
		SellerFeedbackPct: 80,
		ReturnsAccepted:   ptr(false),
	}

	// 30 + 20 + 5 missing type + 15 + 10 + 5 + 10 + 10 cheap = 105.
	assert.Equal(t, 100, score.RiskScore(s))
}
