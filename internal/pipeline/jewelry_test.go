package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loupelabs/loupe/internal/pipeline"
	domain "github.com/loupelabs/loupe/pkg/types"
)

func ptr[T any](v T) *T { return &v }

type fakeDetailer struct {
	details map[string]*domain.ListingDetail
	err     error

	calls            int
	lastItemID       string
	lastWithShipping bool
}

func (f *fakeDetailer) Fetch(_ context.Context, itemID string, includeShipping bool) (*domain.ListingDetail, error) {
	f.calls++
	f.lastItemID = itemID
	f.lastWithShipping = includeShipping
	if f.err != nil {
		return nil, f.err
	}
	return f.details[itemID], nil
}

type fakeMatches struct {
	existing map[string]bool
}

func (f *fakeMatches) JewelryMatchExists(_ context.Context, _, listingID string) (bool, error) {
	return f.existing[listingID], nil
}

func (f *fakeMatches) GemstoneMatchExists(_ context.Context, _, listingID string) (bool, error) {
	return f.existing[listingID], nil
}

func (f *fakeMatches) WatchMatchExists(_ context.Context, _, listingID string) (bool, error) {
	return f.existing[listingID], nil
}

func jewelryTask() *domain.Task {
	return &domain.Task{
		ID:              "9d2f0b4e-0000-0000-0000-000000000001",
		UserID:          "9d2f0b4e-0000-0000-0000-0000000000aa",
		Name:            "gold chains",
		Type:            domain.ItemJewelry,
		Status:          domain.TaskActive,
		MaxPrice:        ptr(500.0),
		MinProfitMargin: ptr(-20.0),
		JewelryFilters: &domain.JewelryFilters{
			Metal: []string{"Yellow Gold"},
		},
	}
}

func goldChainListing() *domain.ListingSummary {
	return &domain.ListingSummary{
		ItemID:       "A",
		Title:        "14K Yellow Gold Chain 5.50g",
		Price:        150,
		Currency:     "USD",
		ShippingCost: ptr(9.0),
		ShippingType: domain.ShippingFixed,
		Condition:    "Pre-owned",
		ListingURL:   "https://www.ebay.com/itm/A",
		ListingType:  "FIXED_PRICE",
		Seller:       domain.Seller{Username: "goldseller", FeedbackScore: 600},
	}
}

func goldChainDetail() *domain.ListingDetail {
	return &domain.ListingDetail{
		ItemID:     "A",
		Title:      "14K Yellow Gold Chain 5.50g",
		CategoryID: "261995",
		Aspects: map[string]string{
			"metal":        "Yellow Gold",
			"metal purity": "14k",
			"main stone":   "None",
			"weight":       "5.5 g",
		},
	}
}

func metalPrices() map[string]domain.MetalPrice {
	return map[string]domain.MetalPrice{
		"gold": {Metal: "Gold", PriceGram10K: 30, PriceGram14K: 40, PriceGram18K: 54, PriceGram24K: 72},
	}
}

func newJewelryPipeline(details *fakeDetailer, opts ...pipeline.Option) *pipeline.Pipeline {
	return pipeline.New(details, &fakeMatches{}, opts...)
}

func classify(t *testing.T, p *pipeline.Pipeline, task *domain.Task, l *domain.ListingSummary) *pipeline.Outcome {
	t.Helper()
	out, err := p.Classify(context.Background(), pipeline.Input{
		Task:    task,
		Listing: l,
		Prices:  metalPrices(),
	})
	require.NoError(t, err)
	return out
}

func TestClassify_MissingFilterBagIsAnError(t *testing.T) {
	t.Parallel()

	p := newJewelryPipeline(&fakeDetailer{})

	for _, typ := range []domain.ItemType{domain.ItemJewelry, domain.ItemGemstone, domain.ItemWatch} {
		task := jewelryTask()
		task.Type = typ
		task.JewelryFilters = nil

		out, err := p.Classify(context.Background(), pipeline.Input{
			Task:    task,
			Listing: goldChainListing(),
		})
		require.Error(t, err, "item type %s", typ)
		assert.Nil(t, out)
	}
}

func TestJewelry_AcceptWithScrapEconomics(t *testing.T) {
	t.Parallel()

	details := &fakeDetailer{details: map[string]*domain.ListingDetail{"A": goldChainDetail()}}
	p := newJewelryPipeline(details)

	out := classify(t, p, jewelryTask(), goldChainListing())

	require.True(t, out.Accepted)
	require.NotNil(t, out.Jewelry)
	m := out.Jewelry

	require.NotNil(t, m.Karat)
	assert.Equal(t, 14, *m.Karat)
	require.NotNil(t, m.WeightGrams)
	assert.InDelta(t, 5.5, *m.WeightGrams, 0.001)
	assert.Equal(t, "Gold", m.MetalType)

	require.NotNil(t, m.MeltValue)
	assert.InDelta(t, 220.0, *m.MeltValue, 0.001)
	require.NotNil(t, m.BreakEven)
	assert.InDelta(t, 213.4, *m.BreakEven, 0.001)
	assert.InDelta(t, 159.0, m.TotalCost(), 0.001)
	require.NotNil(t, m.SuggestedOffer)
	assert.Equal(t, 181.0, *m.SuggestedOffer)

	// Shipping was on the summary, so the fetch skipped the live path.
	assert.False(t, details.lastWithShipping)
}

func TestJewelry_PlatedTitleRejectsBeforeDetailFetch(t *testing.T) {
	t.Parallel()

	details := &fakeDetailer{}
	p := newJewelryPipeline(details)

	l := goldChainListing()
	l.ItemID = "B"
	l.Title = "Gold-plated chain 5g"
	l.Price = 20

	out := classify(t, p, jewelryTask(), l)

	assert.False(t, out.Accepted)
	assert.False(t, out.Skip)
	assert.Contains(t, out.Reason, "Plated")
	assert.Zero(t, details.calls)
}

func TestJewelry_BaseMetalTitle(t *testing.T) {
	t.Parallel()

	p := newJewelryPipeline(&fakeDetailer{})

	l := goldChainListing()
	l.Title = "Brass chain necklace"

	out := classify(t, p, jewelryTask(), l)
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, `Base metal "brass"`)
}

func TestJewelry_SilverGuard(t *testing.T) {
	t.Parallel()

	p := newJewelryPipeline(&fakeDetailer{})

	l := goldChainListing()
	l.Title = "Sterling Silver Chain 20g"

	out := classify(t, p, jewelryTask(), l)
	assert.False(t, out.Accepted)
	assert.Equal(t, "Silver (not selected)", out.Reason)

	// A task hunting silver keeps the listing.
	task := jewelryTask()
	task.JewelryFilters.Metal = []string{"Sterling Silver"}
	detail := goldChainDetail()
	detail.Aspects["metal"] = "Sterling Silver"
	details := &fakeDetailer{details: map[string]*domain.ListingDetail{"A": detail}}
	p = newJewelryPipeline(details)

	out = classify(t, p, task, l)
	assert.True(t, out.Accepted)
}

func TestJewelry_RejectCacheSkips(t *testing.T) {
	t.Parallel()

	details := &fakeDetailer{}
	p := newJewelryPipeline(details)

	out, err := p.Classify(context.Background(), pipeline.Input{
		Task:     jewelryTask(),
		Listing:  goldChainListing(),
		Rejected: map[string]struct{}{"A": {}},
	})
	require.NoError(t, err)

	assert.True(t, out.Skip)
	assert.Zero(t, details.calls)
}

func TestJewelry_DuplicateMatchSkips(t *testing.T) {
	t.Parallel()

	details := &fakeDetailer{}
	p := pipeline.New(details, &fakeMatches{existing: map[string]bool{"A": true}})

	out := classify(t, p, jewelryTask(), goldChainListing())
	assert.True(t, out.Skip)
	assert.Zero(t, details.calls)
}

func TestJewelry_SellerFeedbackGate(t *testing.T) {
	t.Parallel()

	p := newJewelryPipeline(&fakeDetailer{})

	task := jewelryTask()
	task.MinSellerFeedback = 1000

	out := classify(t, p, task, goldChainListing())
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "Seller feedback 600")
}

func TestJewelry_NoDetailRejects(t *testing.T) {
	t.Parallel()

	p := newJewelryPipeline(&fakeDetailer{})

	out := classify(t, p, jewelryTask(), goldChainListing())
	assert.False(t, out.Accepted)
	assert.Equal(t, "No item details", out.Reason)
}

func TestJewelry_CategoryGate(t *testing.T) {
	t.Parallel()

	detail := goldChainDetail()
	detail.CategoryID = "13837" // blacklisted
	p := newJewelryPipeline(&fakeDetailer{details: map[string]*domain.ListingDetail{"A": detail}})

	out := classify(t, p, jewelryTask(), goldChainListing())
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "Blacklisted category")

	detail = goldChainDetail()
	detail.CategoryID = "99999" // not a jewelry category
	p = newJewelryPipeline(&fakeDetailer{details: map[string]*domain.ListingDetail{"A": detail}})

	out = classify(t, p, jewelryTask(), goldChainListing())
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "Non-jewelry category")

	// An unknown category skips the gate.
	detail = goldChainDetail()
	detail.CategoryID = ""
	p = newJewelryPipeline(&fakeDetailer{details: map[string]*domain.ListingDetail{"A": detail}})

	out = classify(t, p, jewelryTask(), goldChainListing())
	assert.True(t, out.Accepted)
}

func TestJewelry_DescriptionDenylist(t *testing.T) {
	t.Parallel()

	detail := goldChainDetail()
	detail.Description = "<p>Beautiful chain, <b>gold plated</b> over brass.</p>"
	p := newJewelryPipeline(&fakeDetailer{details: map[string]*domain.ListingDetail{"A": detail}})

	out := classify(t, p, jewelryTask(), goldChainListing())
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "Plated in description")
}

func TestJewelry_StoneKeywordWithNoStoneFilter(t *testing.T) {
	t.Parallel()

	l := goldChainListing()
	l.Title = "14K Yellow Gold Diamond Ring 5.50g"
	detail := goldChainDetail()
	detail.Title = l.Title
	p := newJewelryPipeline(&fakeDetailer{details: map[string]*domain.ListingDetail{"A": detail}})

	out := classify(t, p, jewelryTask(), l)
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "Stone keyword")

	// Explicitly allowing stones keeps the listing.
	task := jewelryTask()
	task.JewelryFilters.NoStone = ptr(false)
	out = classify(t, p, task, l)
	assert.True(t, out.Accepted)
}

func TestJewelry_StoneAspectPlaceholderAllowed(t *testing.T) {
	t.Parallel()

	detail := goldChainDetail()
	detail.Aspects["main stone"] = "Sapphire"
	p := newJewelryPipeline(&fakeDetailer{details: map[string]*domain.ListingDetail{"A": detail}})

	out := classify(t, p, jewelryTask(), goldChainListing())
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "Stone present")
}

func TestJewelry_FakeToneAspect(t *testing.T) {
	t.Parallel()

	detail := goldChainDetail()
	detail.Aspects["metal"] = "Gold Tone Metal"
	p := newJewelryPipeline(&fakeDetailer{details: map[string]*domain.ListingDetail{"A": detail}})

	out := classify(t, p, jewelryTask(), goldChainListing())
	assert.False(t, out.Accepted)

	// Legitimate two-tone pieces pass the tone rule.
	detail = goldChainDetail()
	detail.Aspects["metal"] = "Two-Tone Gold"
	p = newJewelryPipeline(&fakeDetailer{details: map[string]*domain.ListingDetail{"A": detail}})

	out = classify(t, p, jewelryTask(), goldChainListing())
	assert.True(t, out.Accepted)
}

func TestJewelry_MarginGate(t *testing.T) {
	t.Parallel()

	l := goldChainListing()
	l.Price = 400 // melt 220, break-even 213.40: deeply negative margin

	p := newJewelryPipeline(&fakeDetailer{details: map[string]*domain.ListingDetail{"A": goldChainDetail()}})

	out := classify(t, p, jewelryTask(), l)
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "Margin")
}

func TestJewelry_WeightRangeGate(t *testing.T) {
	t.Parallel()

	task := jewelryTask()
	task.JewelryFilters.WeightMin = ptr(10.0)

	p := newJewelryPipeline(&fakeDetailer{details: map[string]*domain.ListingDetail{"A": goldChainDetail()}})

	out := classify(t, p, task, goldChainListing())
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "Weight 5.50g below")
}

func TestJewelry_TestSellerBypassesRules(t *testing.T) {
	t.Parallel()

	l := goldChainListing()
	l.Title = "Gold-plated brass costume chain" // would fail several rules
	l.Seller.Username = "TestSeller42"

	p := pipeline.New(&fakeDetailer{}, &fakeMatches{}, pipeline.WithTestSeller("testseller42"))

	out := classify(t, p, jewelryTask(), l)
	require.True(t, out.Accepted)
	assert.True(t, out.Bypass)
	require.NotNil(t, out.Jewelry)
}

func TestJewelry_ExcludedKeyword(t *testing.T) {
	t.Parallel()

	task := jewelryTask()
	task.ExcludeKeywords = []string{"chain"}

	p := newJewelryPipeline(&fakeDetailer{})

	out := classify(t, p, task, goldChainListing())
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "Excluded keyword")
}

func TestJewelry_PriceGateUsesRawPrice(t *testing.T) {
	t.Parallel()

	l := goldChainListing()
	l.Price = 495
	l.ShippingCost = ptr(20.0) // raw price is under the cap; shipping ignored here

	detail := goldChainDetail()
	p := newJewelryPipeline(&fakeDetailer{details: map[string]*domain.ListingDetail{"A": detail}})

	out := classify(t, p, jewelryTask(), l)
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "Margin") // passed the price gate, failed economics

	l.Price = 501
	out = classify(t, p, jewelryTask(), l)
	assert.Contains(t, out.Reason, "above maximum")
}

func TestJewelry_ConditionWhitelist(t *testing.T) {
	t.Parallel()

	task := jewelryTask()
	task.Conditions = []string{"New"}

	l := goldChainListing()
	l.Condition = "Used"

	p := newJewelryPipeline(&fakeDetailer{})

	out := classify(t, p, task, l)
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "Condition")

	// Alias forms normalize to the same canonical condition.
	l.Condition = "Brand New"
	detail := goldChainDetail()
	p = newJewelryPipeline(&fakeDetailer{details: map[string]*domain.ListingDetail{"A": detail}})

	out = classify(t, p, task, l)
	assert.True(t, out.Accepted)
}

func TestJewelry_FetchesShippingWhenUnknown(t *testing.T) {
	t.Parallel()

	l := goldChainListing()
	l.ShippingCost = nil

	detail := goldChainDetail()
	detail.ShippingCost = ptr(4.99)
	detail.ShippingType = domain.ShippingFixed

	details := &fakeDetailer{details: map[string]*domain.ListingDetail{"A": detail}}
	p := newJewelryPipeline(details)

	out := classify(t, p, jewelryTask(), l)
	require.True(t, out.Accepted)
	assert.True(t, details.lastWithShipping)
	require.NotNil(t, out.Jewelry.ShippingCost)
	assert.InDelta(t, 4.99, *out.Jewelry.ShippingCost, 0.001)
}
