package extract

import "strings"

// Canonical listing conditions as they appear in task condition whitelists.
const (
	ConditionNew      = "New"
	ConditionPreOwned = "Pre-owned"
	ConditionForParts = "For parts or not working"
)

// conditionMap maps normalized marketplace condition strings to canonical
// conditions.
var conditionMap = map[string]string{
	// canonical values (identity mappings)
	"new":                      ConditionNew,
	"pre-owned":                ConditionPreOwned,
	"for parts or not working": ConditionForParts,
	// marketplace variants
	"brand new":        ConditionNew,
	"new with tags":    ConditionNew,
	"new without tags": ConditionNew,
	"new other":        ConditionNew,
	"new (other)":      ConditionNew,
	"open box":         ConditionNew,
	"used":             ConditionPreOwned,
	"pre owned":        ConditionPreOwned,
	"preowned":         ConditionPreOwned,
	"gently used":      ConditionPreOwned,
	"for parts":        ConditionForParts,
	"not working":      ConditionForParts,
	"parts only":       ConditionForParts,
	"as-is":            ConditionForParts,
}

// NormalizeCondition maps a raw marketplace condition string to its canonical
// form. Returns ("", false) if the input doesn't match any known condition.
func NormalizeCondition(raw string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", false
	}

	if c, ok := conditionMap[normalized]; ok {
		return c, true
	}

	return "", false
}
