package extract

import (
	"regexp"
	"strings"
)

// Canonical metal names. These match the metal_prices rows, so detection
// output can be used directly for melt pricing.
const (
	MetalGold      = "Gold"
	MetalSilver    = "Silver"
	MetalPlatinum  = "Platinum"
	MetalPalladium = "Palladium"
)

var (
	purity950Regex = regexp.MustCompile(`\b950\b`)
	purity900Regex = regexp.MustCompile(`\b900\b`)
	purity850Regex = regexp.MustCompile(`\b850\b`)
	purity500Regex = regexp.MustCompile(`\b500\b`)
	purity999Regex = regexp.MustCompile(`\b999\b`)
	purity925Regex = regexp.MustCompile(`\b925\b`)
	purity800Regex = regexp.MustCompile(`\b800\b`)
)

// MetalType detects the precious metal class and its purity in parts per
// thousand from the title and the metal/material aspects. Detection order is
// platinum, palladium, silver, then gold as the fallback; gold purity derives
// from the karat (zero when the karat is unknown).
func MetalType(title string, aspects map[string]string, karat int) (string, int) {
	hay := strings.ToLower(title)
	for _, name := range []string{"metal", "material"} {
		if v, ok := aspects[name]; ok {
			hay += " " + strings.ToLower(v)
		}
	}

	switch {
	case strings.Contains(hay, "platinum"):
		return MetalPlatinum, numberedPurity(hay, 950, purity950Regex, purity900Regex, purity850Regex)
	case strings.Contains(hay, "palladium"):
		return MetalPalladium, numberedPurity(hay, 950, purity950Regex, purity500Regex)
	case strings.Contains(hay, "sterling"), strings.Contains(hay, "silver"), purity925Regex.MatchString(hay):
		return MetalSilver, silverPurity(hay)
	default:
		purity := 0
		if karat > 0 {
			purity = karat * 1000 / 24
		}
		return MetalGold, purity
	}
}

// numberedPurity returns the first matching marked purity, else the default.
// Regexes are ordered by the purity value they encode, highest first.
func numberedPurity(hay string, def int, marks ...*regexp.Regexp) int {
	values := map[*regexp.Regexp]int{
		purity950Regex: 950,
		purity900Regex: 900,
		purity850Regex: 850,
		purity500Regex: 500,
	}
	for _, re := range marks {
		if re.MatchString(hay) {
			return values[re]
		}
	}
	return def
}

// silverPurity maps silver markers to parts per thousand. Sterling is the
// 925 default; fine silver 999, European 800, and coin silver 900 are
// recognized explicitly.
func silverPurity(hay string) int {
	switch {
	case purity999Regex.MatchString(hay):
		return 999
	case purity800Regex.MatchString(hay):
		return 800
	case strings.Contains(hay, "coin"):
		return 900
	default:
		return 925
	}
}

// ExpandMetal returns the search keyword variants for a configured metal,
// e.g. "Yellow Gold" also searches its karat-marked spellings. Unrecognized
// metals search as themselves.
func ExpandMetal(metal string) []string {
	if variants, ok := metalKeywords[strings.ToLower(strings.TrimSpace(metal))]; ok {
		out := make([]string, len(variants))
		copy(out, variants)
		return out
	}
	return []string{metal}
}
