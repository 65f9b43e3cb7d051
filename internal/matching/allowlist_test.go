// internal/matching/allowlist_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func allowListPool() []Candidate {
	return []Candidate{
		{ID: "c1", Category: "Cannabis Flower"},
		{ID: "c2", Category: "hemp fibre"},
		{ID: "c3", Category: "CBD oil"},
		{ID: "c4", Category: "tobacco"},
		{ID: "c5", Category: "electronics"},
		{ID: "c6", Category: ""},
	}
}

func TestApplyAllowList_FixedSetOnly(t *testing.T) {
	got := ApplyAllowList(allowListPool(), "")

	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids)
}

func TestApplyAllowList_CallerFilterIntersects(t *testing.T) {
	got := ApplyAllowList(allowListPool(), "hemp")

	assert.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ID)
}

func TestApplyAllowList_CannotBeBypassed(t *testing.T) {
	tests := []struct {
		name          string
		commodityType string
	}{
		{"empty string", ""},
		{"wildcard", "*"},
		{"disallowed category", "tobacco"},
		{"whitespace", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyAllowList(allowListPool(), tt.commodityType)
			for _, c := range got {
				assert.True(t, containsAllowedToken(toLowerTrim(c.Category)),
					"candidate %s with category %q escaped the allow-list", c.ID, c.Category)
			}
		})
	}
}

func TestApplyAllowList_Idempotent(t *testing.T) {
	once := ApplyAllowList(allowListPool(), "cannabis")
	twice := ApplyAllowList(once, "cannabis")
	assert.Equal(t, once, twice)
}

func TestApplyAllowList_DoesNotMutateInput(t *testing.T) {
	pool := allowListPool()
	_ = ApplyAllowList(pool, "cannabis")
	assert.Equal(t, allowListPool(), pool)
}
