package models

import "strings"

type HarassmentType string

const (
	HarassmentThreats           HarassmentType = "threats"
	HarassmentDenialOfServices  HarassmentType = "denial-of-services"
	HarassmentRetaliation       HarassmentType = "retaliation"
	HarassmentFrivolousFilings  HarassmentType = "frivolous-filings"
	HarassmentPrivacyViolations HarassmentType = "privacy-violations"
	HarassmentDiscrimination    HarassmentType = "discrimination"
)

// HarassmentCatalog is the fixed set of reportable harassment types.
var HarassmentCatalog = []HarassmentType{
	HarassmentThreats,
	HarassmentDenialOfServices,
	HarassmentRetaliation,
	HarassmentFrivolousFilings,
	HarassmentPrivacyViolations,
	HarassmentDiscrimination,
}

// short identifiers sent by the web form
var harassmentAliases = map[string]HarassmentType{
	"services":  HarassmentDenialOfServices,
	"frivolous": HarassmentFrivolousFilings,
	"privacy":   HarassmentPrivacyViolations,
}

// ParseHarassmentType resolves a tag or one of its aliases to the catalog value.
func ParseHarassmentType(s string) (HarassmentType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if t, ok := harassmentAliases[s]; ok {
		return t, true
	}
	for _, t := range HarassmentCatalog {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// NormalizeHarassmentTypes maps aliases to catalog values and drops duplicates,
// keeping first-seen order. Unknown tags are reported in the second result.
func NormalizeHarassmentTypes(in []HarassmentType) ([]HarassmentType, []string) {
	out := make([]HarassmentType, 0, len(in))
	seen := make(map[HarassmentType]bool, len(in))
	var unknown []string
	for _, raw := range in {
		t, ok := ParseHarassmentType(string(raw))
		if !ok {
			unknown = append(unknown, string(raw))
			continue
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, unknown
}
