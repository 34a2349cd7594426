package notify

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/loupelabs/loupe/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func sectionText(t *testing.T, p Payload) string {
	t.Helper()
	require.GreaterOrEqual(t, len(p.Blocks), 2)
	section, ok := p.Blocks[1].(*slack.SectionBlock)
	require.True(t, ok, "second block should be the body section")
	return section.Text.Text
}

func headerText(t *testing.T, p Payload) string {
	t.Helper()
	require.NotEmpty(t, p.Blocks)
	header, ok := p.Blocks[0].(*slack.HeaderBlock)
	require.True(t, ok, "first block should be the header")
	return header.Text.Text
}

func jewelryMatch() *domain.JewelryMatch {
	return &domain.JewelryMatch{
		Match: domain.Match{
			EbayTitle:    "14K Yellow Gold Chain 5.50g",
			EbayURL:      "https://www.ebay.com/itm/A",
			ListedPrice:  150,
			ShippingCost: ptr(9.0),
		},
		Karat:       ptr(14),
		WeightGrams: ptr(5.5),
		MetalType:   "Gold",
		MeltValue:   ptr(220.0),
		BreakEven:   ptr(213.4),
		ProfitScrap: ptr(61.0),
	}
}

func TestJewelryPayload(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := JewelryPayload(jewelryMatch(), domain.ShippingFixed, now)

	assert.Equal(t, KindJewelry, p.Kind)
	assert.Equal(t, colorGreen, p.Color)
	assert.Contains(t, p.Fallback, "$159.00")

	body := sectionText(t, p)
	assert.Contains(t, body, "*Total:* $159.00 ($150.00 + $9.00 shipping)")
	assert.Contains(t, body, "*Karat:* 14K")
	assert.Contains(t, body, "*Weight:* 5.50g")
	assert.Contains(t, body, "*Melt:* $220.00")
	assert.Contains(t, body, "*Offer:* $191")
	assert.Contains(t, body, "*Margin:* 34%")
}

func TestJewelryPayload_CalculatedShipping(t *testing.T) {
	t.Parallel()

	m := jewelryMatch()
	m.ShippingCost = ptr(0.0)

	p := JewelryPayload(m, domain.ShippingCalculated, time.Now())
	assert.Contains(t, sectionText(t, p), "*Total:* $150.00 + shipping")
}

func TestJewelryPayload_UnprofitableIsRed(t *testing.T) {
	t.Parallel()

	m := jewelryMatch()
	m.ProfitScrap = ptr(-12.0)

	p := JewelryPayload(m, domain.ShippingFixed, time.Now())
	assert.Equal(t, colorRed, p.Color)
}

func TestJewelryPayload_TruncatesTitle(t *testing.T) {
	t.Parallel()

	m := jewelryMatch()
	m.EbayTitle = strings.Repeat("x", 300)

	p := JewelryPayload(m, domain.ShippingFixed, time.Now())
	assert.LessOrEqual(t, len([]byte(headerText(t, p))), maxTitleLen+3)
}

func TestJewelryPayload_TruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// Three-byte runes guarantee the 150-byte cut lands mid-rune.
	m := jewelryMatch()
	m.EbayTitle = strings.Repeat("指", 100)

	p := JewelryPayload(m, domain.ShippingFixed, time.Now())
	header := headerText(t, p)
	assert.True(t, utf8.ValidString(header), "truncated header must stay valid UTF-8")
	assert.True(t, strings.HasSuffix(header, "…"))
}

func TestJewelryPayload_LatencyFooter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created := now.Add(-3 * time.Hour)

	m := jewelryMatch()
	m.ItemCreated = &created

	p := JewelryPayload(m, domain.ShippingFixed, now)

	require.GreaterOrEqual(t, len(p.Blocks), 3)
	ctxBlock, ok := p.Blocks[2].(*slack.ContextBlock)
	require.True(t, ok)
	text, ok := ctxBlock.ContextElements.Elements[0].(*slack.TextBlockObject)
	require.True(t, ok)
	assert.Equal(t, "Listed 3h 0m ago", text.Text)
}

func TestGemstonePayload(t *testing.T) {
	t.Parallel()

	m := &domain.GemstoneMatch{
		Match: domain.Match{
			EbayTitle:   "1.25ct Natural Blue Sapphire Oval GIA Certified",
			EbayURL:     "https://www.ebay.com/itm/C",
			ListedPrice: 900,
		},
		StoneType: "Sapphire",
		Shape:     "Oval",
		Carat:     ptr(1.25),
		Colour:    "Blue",
		CertLab:   "GIA",
		DealScore: 88,
		RiskScore: 0,
	}

	p := GemstonePayload(m, time.Now())

	body := sectionText(t, p)
	assert.Contains(t, body, "🔥 *Deal score:* 88/100")
	assert.Contains(t, body, "*Risk:* Low ✅ (0)")
	assert.Contains(t, body, "*Stone:* 1.25ct Sapphire")
	assert.Contains(t, body, "*Details:* Oval | Blue | — | GIA")
}

func TestDealEmojiAndRiskLabels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "🔥", dealEmoji(80))
	assert.Equal(t, "💎", dealEmoji(65))
	assert.Equal(t, "📁", dealEmoji(59))

	assert.Equal(t, "High 🚨", riskLabel(50))
	assert.Equal(t, "Medium ⚠️", riskLabel(30))
	assert.Equal(t, "Low ✅", riskLabel(29))
}

func TestTestPayload(t *testing.T) {
	t.Parallel()

	p := TestPayload("testseller", "Some listing", "https://www.ebay.com/itm/T")

	assert.Equal(t, KindTest, p.Kind)
	assert.Contains(t, headerText(t, p), "🧪")
	assert.Contains(t, sectionText(t, p), "testseller")
}

func TestFormatAge(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "45s", formatAge(45*time.Second))
	assert.Equal(t, "12m", formatAge(12*time.Minute+10*time.Second))
	assert.Equal(t, "26h 30m", formatAge(26*time.Hour+30*time.Minute))
	assert.Equal(t, "3d", formatAge(75*time.Hour))
}
