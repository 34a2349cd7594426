package extract

import (
	"regexp"
	"strconv"
)

// validKarats is the canonical gold purity domain. Anything else parsed from
// a listing is noise (ring sizes, carat weights, feedback counts).
var validKarats = map[int]bool{
	8:  true,
	9:  true,
	10: true,
	14: true,
	18: true,
	22: true,
	24: true,
}

// karatAspectNames are consulted in priority order before falling back to the
// title. Aspect names containing "carat" or "ct" are never karat sources.
var karatAspectNames = []string{
	"metal purity",
	"purity",
	"karat",
	"gold purity",
	"fineness",
}

// karatRegex matches a number immediately followed by a k marker.
// Examples: "14K", "14 k", "18kt", "10 Karat".
var karatRegex = regexp.MustCompile(`(\d{1,2})\s*[kK]`)

// karatGoldRegex is the stricter description-only pattern, requiring the word
// "gold" so prose like "back in 2010king..." cannot produce a value.
var karatGoldRegex = regexp.MustCompile(`(?i)\b(10|14|18|22|24)k\s*gold\b`)

// Karat extracts gold purity in karats from aspects, title, then description,
// accepting only canonical values. Returns (0, false) when nothing parses.
func Karat(title string, aspects map[string]string, description string) (int, bool) {
	for _, name := range karatAspectNames {
		if v, ok := aspects[name]; ok {
			if k, found := parseKarat(v); found {
				return k, true
			}
		}
	}

	if k, found := parseKarat(title); found {
		return k, true
	}

	if description != "" {
		text := StripHTML(description)
		if k, found := parseKarat(text); found {
			return k, true
		}
		if m := karatGoldRegex.FindStringSubmatch(text); len(m) > 1 {
			if k, err := strconv.Atoi(m[1]); err == nil && validKarats[k] {
				return k, true
			}
		}
	}

	return 0, false
}

// parseKarat scans every "<n>k" occurrence and returns the first whitelisted
// value, so "Lot of 2 14K rings" resolves to 14 rather than failing on 2.
func parseKarat(s string) (int, bool) {
	for _, m := range karatRegex.FindAllStringSubmatch(s, -1) {
		k, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if validKarats[k] {
			return k, true
		}
	}
	return 0, false
}
