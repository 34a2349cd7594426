package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Gram conversion factors for the accepted weight units.
const (
	gramsPerOunce       = 28.3495
	gramsPerPennyweight = 1.555
)

// weightRegex matches a number with a required unit suffix. The suffix
// requirement keeps karat numbers ("14k") and bare ring sizes from parsing
// as weights. Longer unit spellings come first so "grams" is not consumed
// as "g".
var weightRegex = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(grams|gram|gms|gm|gr|g|ounces|ounce|oz|pennyweight|dwt)\b`)

// typoRegex repairs a seller habit of doubling the decimal point:
// ".1.08 grams" reads as 1.08 grams.
var typoRegex = regexp.MustCompile(`\.(\d+\.\d+)`)

// WeightGrams extracts an item's metal weight in grams from the weight aspect
// whitelist, then the title, then the HTML-stripped description. Ounce and
// pennyweight values are converted; results are rounded to two decimals.
// Returns (0, false) when no source yields a positive weight.
func WeightGrams(title string, aspects map[string]string, description string) (float64, bool) {
	for _, name := range weightAspectNames {
		if v, ok := aspects[name]; ok {
			if g, found := parseWeight(v); found {
				return g, true
			}
		}
	}

	if g, found := parseWeight(title); found {
		return g, true
	}

	if description != "" {
		if g, found := parseWeight(StripHTML(description)); found {
			return g, true
		}
	}

	return 0, false
}

// parseWeight finds the first unit-suffixed number in s and converts it to
// grams.
func parseWeight(s string) (float64, bool) {
	s = typoRegex.ReplaceAllString(s, "$1")

	m := weightRegex.FindStringSubmatch(s)
	if len(m) < 3 {
		return 0, false
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return 0, false
	}

	switch normalizeUnit(m[2]) {
	case "oz":
		value *= gramsPerOunce
	case "dwt":
		value *= gramsPerPennyweight
	}

	return math.Round(value*100) / 100, true
}

// normalizeUnit folds unit spellings to one of "g", "oz", "dwt".
func normalizeUnit(unit string) string {
	switch strings.ToLower(unit) {
	case "oz", "ounce", "ounces":
		return "oz"
	case "dwt", "pennyweight":
		return "dwt"
	default:
		return "g"
	}
}
