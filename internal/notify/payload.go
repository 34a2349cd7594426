package notify

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/slack-go/slack"

	domain "github.com/loupelabs/loupe/pkg/types"
)

const (
	maxTitleLen = 150

	colorGreen = "#2eb886"
	colorRed   = "#e01e5a"
)

// JewelryPayload formats a jewelry match: cost breakdown, scrap economics,
// and a suggested opening offer. Green when the scrap math is profitable.
func JewelryPayload(m *domain.JewelryMatch, shippingType domain.ShippingType, now time.Time) Payload {
	title := truncate(m.EbayTitle, maxTitleLen)
	total := m.TotalCost()

	var lines []string
	if shippingType == domain.ShippingCalculated {
		lines = append(lines, fmt.Sprintf("*Total:* $%.2f + shipping", m.ListedPrice))
	} else if m.ShippingCost != nil && *m.ShippingCost > 0 {
		lines = append(lines, fmt.Sprintf("*Total:* $%.2f ($%.2f + $%.2f shipping)", total, m.ListedPrice, *m.ShippingCost))
	} else {
		lines = append(lines, fmt.Sprintf("*Total:* $%.2f", total))
	}

	if m.Karat != nil {
		lines = append(lines, fmt.Sprintf("*Karat:* %dK", *m.Karat))
	}
	if m.WeightGrams != nil {
		lines = append(lines, fmt.Sprintf("*Weight:* %.2fg", *m.WeightGrams))
	}
	if m.MeltValue != nil {
		lines = append(lines, fmt.Sprintf("*Melt:* $%.2f", *m.MeltValue))
		lines = append(lines, fmt.Sprintf("*Offer:* $%.0f", math.Floor(*m.MeltValue*0.87)))
	}
	if m.BreakEven != nil && total > 0 {
		margin := (*m.BreakEven - total) / total * 100
		lines = append(lines, fmt.Sprintf("*Margin:* %.0f%%", margin))
	}

	color := colorRed
	if m.ProfitScrap != nil && *m.ProfitScrap >= 0 {
		color = colorGreen
	}

	return Payload{
		Kind:     KindJewelry,
		Fallback: fmt.Sprintf("Jewelry match: %s ($%.2f)", title, total),
		Blocks:   matchBlocks(title, strings.Join(lines, "\n"), m.EbayURL, latencyFooter(m.ItemCreated, now)),
		Color:    color,
	}
}

// GemstonePayload formats a gemstone match with its deal and risk scores.
func GemstonePayload(m *domain.GemstoneMatch, now time.Time) Payload {
	title := truncate(m.EbayTitle, maxTitleLen)

	stone := m.StoneType
	if stone == "" {
		stone = "Unknown stone"
	}
	caratLine := stone
	if m.Carat != nil {
		caratLine = fmt.Sprintf("%.2fct %s", *m.Carat, stone)
	}

	lines := []string{
		fmt.Sprintf("%s *Deal score:* %d/100", dealEmoji(m.DealScore), m.DealScore),
		fmt.Sprintf("*Risk:* %s (%d)", riskLabel(m.RiskScore), m.RiskScore),
		fmt.Sprintf("*Stone:* %s", caratLine),
		fmt.Sprintf("*Details:* %s", detailsLine(m)),
		fmt.Sprintf("*Price:* $%.2f", m.ListedPrice),
	}

	return Payload{
		Kind:     KindGemstone,
		Fallback: fmt.Sprintf("Gemstone match: %s (deal %d, risk %d)", title, m.DealScore, m.RiskScore),
		Blocks:   matchBlocks(title, strings.Join(lines, "\n"), m.EbayURL, latencyFooter(m.ItemCreated, now)),
	}
}

// WatchPayload formats a watch match with its captured attributes.
func WatchPayload(m *domain.WatchMatch, now time.Time) Payload {
	title := truncate(m.EbayTitle, maxTitleLen)

	parts := []string{}
	if m.Brand != "" {
		brand := m.Brand
		if m.Model != "" {
			brand += " " + m.Model
		}
		parts = append(parts, fmt.Sprintf("*Watch:* %s", brand))
	}
	if m.Year != nil {
		parts = append(parts, fmt.Sprintf("*Year:* %d", *m.Year))
	}
	if m.Movement != "" {
		parts = append(parts, fmt.Sprintf("*Movement:* %s", m.Movement))
	}
	parts = append(parts, fmt.Sprintf("*Price:* $%.2f", m.ListedPrice))

	return Payload{
		Kind:     KindWatch,
		Fallback: fmt.Sprintf("Watch match: %s ($%.2f)", title, m.ListedPrice),
		Blocks:   matchBlocks(title, strings.Join(parts, "\n"), m.EbayURL, latencyFooter(m.ItemCreated, now)),
	}
}

// TestPayload is the compact notification for test-bypass listings.
func TestPayload(seller, title, url string) Payload {
	header := "🧪 Test listing detected"
	body := fmt.Sprintf("*Seller:* %s\n*Listing:* %s", seller, truncate(title, maxTitleLen))
	return Payload{
		Kind:     KindTest,
		Fallback: fmt.Sprintf("Test listing from %s: %s", seller, truncate(title, maxTitleLen)),
		Blocks:   matchBlocks(header, body, url, ""),
	}
}

// matchBlocks assembles the shared header/body/footer/button block layout.
func matchBlocks(title, body, url, footer string) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, body, false, false), nil, nil),
	}
	if footer != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, footer, false, false)))
	}
	if url != "" {
		button := slack.NewButtonBlockElement("view_listing", url,
			slack.NewTextBlockObject(slack.PlainTextType, "View Listing", false, false))
		button.URL = url
		blocks = append(blocks, slack.NewActionBlock("", button))
	}
	return blocks
}

// detailsLine joins shape, color, clarity, and cert lab, with a dash for
// missing attributes.
func detailsLine(m *domain.GemstoneMatch) string {
	parts := []string{m.Shape, m.Colour, m.Clarity, m.CertLab}
	for i, p := range parts {
		if p == "" {
			parts[i] = "—"
		}
	}
	return strings.Join(parts, " | ")
}

func dealEmoji(score int) string {
	switch {
	case score >= 80:
		return "🔥"
	case score >= 60:
		return "💎"
	default:
		return "📁"
	}
}

func riskLabel(score int) string {
	switch {
	case score >= 50:
		return "High 🚨"
	case score >= 30:
		return "Medium ⚠️"
	default:
		return "Low ✅"
	}
}

// latencyFooter reports how long the listing had been live when we found it.
func latencyFooter(created *time.Time, now time.Time) string {
	if created == nil {
		return ""
	}
	age := now.Sub(*created)
	if age < 0 {
		age = 0
	}
	return fmt.Sprintf("Listed %s ago", formatAge(age))
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// truncate cuts s to at most n bytes plus an ellipsis, stepping back to a
// rune boundary so a multi-byte title never yields invalid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 1
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
