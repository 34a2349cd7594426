package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Aspect sheet fields consulted for each stone attribute, in priority order.
var (
	stoneTypeAspects = []string{"stone", "main stone", "gemstone", "type"}
	shapeAspects     = []string{"shape", "cut"}
	caratAspects     = []string{"carat", "carat weight", "total carat weight", "ct", "tcw"}
	colorAspects     = []string{"color", "colour"}
	clarityAspects   = []string{"clarity"}
	certAspects      = []string{"certification", "certificate", "lab", "grading"}
	treatmentAspects = []string{"treatment", "enhancement", "treatments"}
	creationAspects  = []string{"creation method", "natural/lab-created", "stone creation", "creation"}
)

// caratRegex matches a carat weight with its required unit token.
// Examples: "1.25ct", "2 carats", "0.5 tcw".
var caratRegex = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:cts|ct|carats|carat|tcw)\b`)

// leadingNumberRegex parses the numeric head of an aspect value like
// "1.25 ct" or "1.25".
var leadingNumberRegex = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// diamondColorValueRegex matches a diamond color grade at the head of an
// aspect value ("F", "f color", "G-H" → G).
var diamondColorValueRegex = regexp.MustCompile(`(?i)^\s*([d-p])\b`)

// diamondColorTitleRegex matches a diamond color grade in a title, which
// needs the word "color" to disambiguate from initials.
var diamondColorTitleRegex = regexp.MustCompile(`(?i)\b([d-p])\s*(?:color|colour)\b`)

// StoneType identifies the stone species from aspects, then the title.
// In titles a species name directly followed by a cut/shape token is a shape
// mention ("Emerald Cut Aquamarine" is an aquamarine), and the leftmost
// remaining species wins.
func StoneType(title string, aspects map[string]string) (string, bool) {
	for _, name := range stoneTypeAspects {
		v, ok := aspects[name]
		if !ok {
			continue
		}
		lv := strings.ToLower(v)
		for _, t := range GemstoneTypes {
			if containsWord(lv, strings.ToLower(t)) {
				return t, true
			}
		}
	}

	lt := strings.ToLower(title)
	best, bestIdx := "", -1
	for _, t := range GemstoneTypes {
		idx := indexOfWordExcludingShape(lt, strings.ToLower(t))
		if idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			best, bestIdx = t, idx
		}
	}
	if bestIdx >= 0 {
		return best, true
	}
	return "", false
}

// StoneShape identifies the cut shape from the shape/cut aspects, then the
// title. "Emerald" from a title requires an adjacent cut/shape token since
// the bare word names a species.
func StoneShape(title string, aspects map[string]string) (string, bool) {
	for _, name := range shapeAspects {
		v, ok := aspects[name]
		if !ok {
			continue
		}
		lv := strings.ToLower(v)
		for _, s := range StoneShapes {
			if containsWord(lv, strings.ToLower(s)) {
				return s, true
			}
		}
	}

	lt := strings.ToLower(title)
	best, bestIdx := "", -1
	for _, s := range StoneShapes {
		ls := strings.ToLower(s)
		idx := indexOfWord(lt, ls)
		if idx >= 0 && ls == "emerald" && !hasShapeToken(lt, idx+len(ls)) {
			continue
		}
		if idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			best, bestIdx = s, idx
		}
	}
	if bestIdx >= 0 {
		return best, true
	}
	return "", false
}

// CaratWeight extracts the stone weight in carats from aspects, then the
// title. Values outside (0, 10000) are rejected.
func CaratWeight(title string, aspects map[string]string) (float64, bool) {
	for _, name := range caratAspects {
		v, ok := aspects[name]
		if !ok {
			continue
		}
		if m := leadingNumberRegex.FindStringSubmatch(v); len(m) > 1 {
			if ct, err := strconv.ParseFloat(m[1], 64); err == nil && ct > 0 && ct < 10000 {
				return ct, true
			}
		}
	}

	if m := caratRegex.FindStringSubmatch(title); len(m) > 1 {
		if ct, err := strconv.ParseFloat(m[1], 64); err == nil && ct > 0 && ct < 10000 {
			return ct, true
		}
	}

	return 0, false
}

// StoneColor extracts the stone color. Diamonds use the D–P letter grades;
// everything else uses the color word list.
func StoneColor(title string, aspects map[string]string, stoneType string) (string, bool) {
	if strings.EqualFold(stoneType, "Diamond") {
		for _, name := range colorAspects {
			if v, ok := aspects[name]; ok {
				if m := diamondColorValueRegex.FindStringSubmatch(v); len(m) > 1 {
					return strings.ToUpper(m[1]), true
				}
			}
		}
		if m := diamondColorTitleRegex.FindStringSubmatch(title); len(m) > 1 {
			return strings.ToUpper(m[1]), true
		}
		return "", false
	}

	for _, name := range colorAspects {
		v, ok := aspects[name]
		if !ok {
			continue
		}
		lv := strings.ToLower(v)
		for _, c := range StoneColors {
			if containsWord(lv, c) {
				return capitalize(c), true
			}
		}
	}

	lt := strings.ToLower(title)
	best, bestIdx := "", -1
	for _, c := range StoneColors {
		if idx := indexOfWord(lt, c); idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			best, bestIdx = c, idx
		}
	}
	if bestIdx >= 0 {
		return capitalize(best), true
	}
	return "", false
}

// StoneClarity extracts a diamond clarity grade from the clarity aspect, then
// the title, checked down the ladder from FL.
func StoneClarity(title string, aspects map[string]string) (string, bool) {
	for _, name := range clarityAspects {
		v, ok := aspects[name]
		if !ok {
			continue
		}
		lv := strings.ToLower(v)
		for _, grade := range DiamondClarities {
			if containsWord(lv, strings.ToLower(grade)) {
				return grade, true
			}
		}
	}

	lt := strings.ToLower(title)
	for _, grade := range DiamondClarities {
		if containsWord(lt, strings.ToLower(grade)) {
			return grade, true
		}
	}
	return "", false
}

// Certification tiers returned alongside the lab name.
const (
	CertTierPremium  = "premium"
	CertTierStandard = "standard"
	CertTierBudget   = "budget"
	CertTierGeneric  = "generic"
)

// Certification identifies the grading lab from aspects, then the title.
// A bare "certified" claim with no recognizable lab yields the generic tier.
func Certification(title string, aspects map[string]string) (string, string, bool) {
	sources := make([]string, 0, len(certAspects)+1)
	for _, name := range certAspects {
		if v, ok := aspects[name]; ok {
			sources = append(sources, strings.ToLower(v))
		}
	}
	sources = append(sources, strings.ToLower(title))

	tiers := []struct {
		labs []string
		tier string
	}{
		{labs: PremiumCertLabs, tier: CertTierPremium},
		{labs: StandardCertLabs, tier: CertTierStandard},
		{labs: BudgetCertLabs, tier: CertTierBudget},
	}
	for _, src := range sources {
		for _, t := range tiers {
			for _, lab := range t.labs {
				if containsWord(src, strings.ToLower(lab)) {
					return lab, t.tier, true
				}
			}
		}
	}

	for _, src := range sources {
		if containsWord(src, "certified") || containsWord(src, "certificate") || containsWord(src, "cert") {
			return "Certified", CertTierGeneric, true
		}
	}

	return "", "", false
}

// Treatment canonical values.
const (
	TreatmentNotEnhanced = "Not Enhanced"
	TreatmentHeatOnly    = "Heat Only"
	TreatmentHeavy       = "Heavily Treated"
)

// Treatment classifies stone treatment from the treatment aspects, then the
// title. Not-enhanced terms are checked first so "unheated" never reads as
// heat treatment.
func Treatment(title string, aspects map[string]string) (string, bool) {
	sources := make([]string, 0, len(treatmentAspects)+1)
	for _, name := range treatmentAspects {
		if v, ok := aspects[name]; ok {
			sources = append(sources, strings.ToLower(v))
		}
	}
	sources = append(sources, strings.ToLower(title))

	for _, src := range sources {
		if matchesAnyTerm(src, NotEnhancedTerms) {
			return TreatmentNotEnhanced, true
		}
	}
	for _, src := range sources {
		if matchesAnyTerm(src, HeatOnlyTerms) {
			return TreatmentHeatOnly, true
		}
	}
	for _, src := range sources {
		if matchesAnyTerm(src, HeavyTreatmentTerms) {
			return TreatmentHeavy, true
		}
	}

	return "", false
}

// IsNatural reports whether the listing presents the stone as natural. Any
// lab-created term in the creation aspects or title wins over a natural
// claim.
func IsNatural(title string, aspects map[string]string) bool {
	lt := strings.ToLower(title)

	for _, name := range creationAspects {
		v, ok := aspects[name]
		if !ok {
			continue
		}
		lv := strings.ToLower(v)
		if matchesAnyTerm(lv, LabCreatedTerms) {
			return false
		}
		if strings.Contains(lv, "natural") {
			return true
		}
	}

	if matchesAnyTerm(lt, LabCreatedTerms) {
		return false
	}
	return containsWord(lt, "natural")
}

// matchesAnyTerm reports whether any term appears in hay. Single-token terms
// are matched on word boundaries; phrases use plain containment.
func matchesAnyTerm(hay string, terms []string) bool {
	for _, term := range terms {
		if strings.ContainsAny(term, " -") {
			if strings.Contains(hay, term) {
				return true
			}
			continue
		}
		if containsWord(hay, term) {
			return true
		}
	}
	return false
}

// FirstTerm returns the first denylist term found in hay. Terms of three
// characters or fewer are matched on word boundaries so "cz" cannot hit
// inside "czech"; longer terms use plain containment so plural forms still
// match. hay must already be lowercased.
func FirstTerm(hay string, terms []string) (string, bool) {
	for _, term := range terms {
		if len(term) <= 3 {
			if containsWord(hay, term) {
				return term, true
			}
			continue
		}
		if strings.Contains(hay, term) {
			return term, true
		}
	}
	return "", false
}

// ContainsAnyTerm reports whether any denylist term appears in hay, with the
// same boundary rules as FirstTerm.
func ContainsAnyTerm(hay string, terms []string) bool {
	_, found := FirstTerm(hay, terms)
	return found
}

// containsWord reports whether word occurs in hay bounded by non-alphanumerics.
func containsWord(hay, word string) bool {
	return indexOfWord(hay, word) >= 0
}

// indexOfWord returns the index of the first boundary-delimited occurrence of
// word in hay, or -1.
func indexOfWord(hay, word string) int {
	if word == "" {
		return -1
	}
	for start := 0; start <= len(hay)-len(word); {
		i := strings.Index(hay[start:], word)
		if i < 0 {
			return -1
		}
		i += start
		if wordBounded(hay, i, len(word)) {
			return i
		}
		start = i + 1
	}
	return -1
}

// indexOfWordExcludingShape behaves like indexOfWord but skips occurrences
// immediately followed by a cut/shape token.
func indexOfWordExcludingShape(hay, word string) int {
	for start := 0; start <= len(hay)-len(word); {
		i := strings.Index(hay[start:], word)
		if i < 0 {
			return -1
		}
		i += start
		if wordBounded(hay, i, len(word)) && !hasShapeToken(hay, i+len(word)) {
			return i
		}
		start = i + 1
	}
	return -1
}

// hasShapeToken reports whether hay continues with a cut/shape word at pos
// (after optional space or hyphen).
func hasShapeToken(hay string, pos int) bool {
	rest := hay[min(pos, len(hay)):]
	rest = strings.TrimLeft(rest, " -")
	for _, tok := range []string{"cut", "shape", "shaped"} {
		if strings.HasPrefix(rest, tok) && wordBounded(rest, 0, len(tok)) {
			return true
		}
	}
	return false
}

// wordBounded reports whether hay[i:i+n] is not flanked by letters or digits.
func wordBounded(hay string, i, n int) bool {
	if i > 0 && isAlnum(hay[i-1]) {
		return false
	}
	if end := i + n; end < len(hay) && isAlnum(hay[end]) {
		return false
	}
	return true
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// capitalize upper-cases the first letter of an ASCII word.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
