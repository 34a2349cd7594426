package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Aspect sheet fields consulted for watch attributes.
var (
	caseMaterialAspects = []string{"case material"}
	bandMaterialAspects = []string{"band material", "strap material"}
	movementAspects     = []string{"movement"}
	dialColorAspects    = []string{"dial color", "dial colour"}
	yearAspects         = []string{"year", "year manufactured"}
)

// watchYearRegex matches a plausible four-digit production year in a title.
var watchYearRegex = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)

// WatchBrand identifies the brand from the brand aspect, then title
// containment. The longest matching brand wins so "Grand Seiko" beats
// "Seiko".
func WatchBrand(title string, aspects map[string]string) (string, bool) {
	if v, ok := aspects["brand"]; ok {
		lv := strings.ToLower(v)
		if b, found := longestBrand(lv); found {
			return b, true
		}
	}
	return longestBrand(strings.ToLower(title))
}

func longestBrand(hay string) (string, bool) {
	best := ""
	for _, b := range WatchBrands {
		lb := strings.ToLower(b)
		if containsWord(hay, lb) && len(lb) > len(best) {
			best = b
		}
	}
	return best, best != ""
}

// WatchModel returns the model aspect verbatim when present.
func WatchModel(aspects map[string]string) (string, bool) {
	v, ok := aspects["model"]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// CaseMaterial extracts the case material from the case material aspect,
// else a material word preceding "case" in the title.
func CaseMaterial(title string, aspects map[string]string) (string, bool) {
	for _, name := range caseMaterialAspects {
		if v, ok := aspects[name]; ok {
			if m, found := matchMaterial(strings.ToLower(v)); found {
				return m, true
			}
		}
	}

	lt := strings.ToLower(title)
	for _, m := range WatchMaterials {
		lm := strings.ToLower(m)
		if strings.Contains(lt, lm+" case") {
			return m, true
		}
	}
	return "", false
}

// BandMaterial extracts the band material from the band/strap material
// aspects, else a material word adjacent to a band token in the title.
// The adjacency requirement keeps a steel case from reading as a steel band.
func BandMaterial(title string, aspects map[string]string) (string, bool) {
	for _, name := range bandMaterialAspects {
		if v, ok := aspects[name]; ok {
			if m, found := matchMaterial(strings.ToLower(v)); found {
				return m, true
			}
		}
	}

	lt := strings.ToLower(title)
	for _, m := range WatchMaterials {
		lm := strings.ToLower(m)
		for _, tok := range []string{"band", "strap", "bracelet"} {
			if strings.Contains(lt, lm+" "+tok) {
				return m, true
			}
		}
	}
	return "", false
}

// matchMaterial matches an aspect value against the material list, longest
// entry first so "stainless steel" is preferred over "steel".
func matchMaterial(lv string) (string, bool) {
	best, bestLen := "", 0
	for _, m := range WatchMaterials {
		lm := strings.ToLower(m)
		if strings.Contains(lv, lm) && len(lm) > bestLen {
			best, bestLen = m, len(lm)
		}
	}
	return best, best != ""
}

// Movement classifies the movement from the movement aspect, then the title,
// using the pattern table. Specific families win over the generic
// "Mechanical".
func Movement(title string, aspects map[string]string) (string, bool) {
	sources := make([]string, 0, 2)
	for _, name := range movementAspects {
		if v, ok := aspects[name]; ok {
			sources = append(sources, strings.ToLower(v))
		}
	}
	sources = append(sources, strings.ToLower(title))

	for _, src := range sources {
		for _, p := range MovementPatterns {
			for _, term := range p.Terms {
				if strings.Contains(src, term) {
					return p.Name, true
				}
			}
		}
	}
	return "", false
}

// DialColor extracts the dial color from the dial aspects, else a
// "<color> dial" phrase in the title.
func DialColor(title string, aspects map[string]string) (string, bool) {
	for _, name := range dialColorAspects {
		if v, ok := aspects[name]; ok {
			lv := strings.ToLower(v)
			for _, c := range dialColors {
				if containsWord(lv, c) {
					return capitalize(c), true
				}
			}
		}
	}

	lt := strings.ToLower(title)
	for _, c := range dialColors {
		if strings.Contains(lt, c+" dial") {
			return capitalize(c), true
		}
	}
	return "", false
}

// WatchYear extracts the production year from the year aspects, else the
// first plausible four-digit year in the title. maxYear bounds the future
// side (callers pass current year + 1).
func WatchYear(title string, aspects map[string]string, maxYear int) (int, bool) {
	for _, name := range yearAspects {
		if v, ok := aspects[name]; ok {
			if m := watchYearRegex.FindStringSubmatch(v); len(m) > 1 {
				if y, err := strconv.Atoi(m[1]); err == nil && y >= 1800 && y <= maxYear {
					return y, true
				}
			}
		}
	}

	if m := watchYearRegex.FindStringSubmatch(title); len(m) > 1 {
		if y, err := strconv.Atoi(m[1]); err == nil && y >= 1800 && y <= maxYear {
			return y, true
		}
	}
	return 0, false
}
