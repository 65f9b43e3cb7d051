// internal/matching/allowlist.go
package matching

import "strings"

// allowedCategoryTokens is the fixed set of commodity categories this
// marketplace is licensed to trade. It is intentionally not configurable:
// no request parameter may widen it.
var allowedCategoryTokens = []string{"cannabis", "hemp", "cbd", "thc"}

// ApplyAllowList removes every candidate whose category is outside the
// licensed set. When the caller also supplies a commodity type, the
// candidate's category must contain that token as well: the caller filter
// intersects the allow-list, it never replaces it. An empty or crafted
// commodity type therefore cannot expose disallowed categories.
func ApplyAllowList(cands []Candidate, commodityType string) []Candidate {
	token := toLowerTrim(commodityType)

	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		cat := toLowerTrim(c.Category)
		if !containsAllowedToken(cat) {
			continue
		}
		if token != "" && !strings.Contains(cat, token) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func toLowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAllowedToken(category string) bool {
	if category == "" {
		return false
	}
	for _, t := range allowedCategoryTokens {
		if strings.Contains(category, t) {
			return true
		}
	}
	return false
}
