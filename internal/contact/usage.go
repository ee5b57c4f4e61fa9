package contact

import (
	"sort"
	"strings"
)

// TagCount is one entry of a contact's aggregated tag usage.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TagUsage counts tags across non-deleted interactions, most used first.
// Tags are grouped case-insensitively and keep their first-seen spelling;
// ties are ordered by name.
func TagUsage(interactions []Interaction) []TagCount {
	counts := make(map[string]*TagCount)
	for i := range interactions {
		if interactions[i].IsDeleted() {
			continue
		}
		for _, t := range interactions[i].Tags() {
			norm := strings.ToLower(t)
			if tc, ok := counts[norm]; ok {
				tc.Count++
				continue
			}
			counts[norm] = &TagCount{Name: t, Count: 1}
		}
	}

	out := make([]TagCount, 0, len(counts))
	for _, tc := range counts {
		out = append(out, *tc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// LatestDate returns the max Date among non-deleted interactions, or nil.
func LatestDate(interactions []Interaction) *int64 {
	var latest *int64
	for i := range interactions {
		if interactions[i].IsDeleted() {
			continue
		}
		d := interactions[i].Date
		if latest == nil || d > *latest {
			latest = &d
		}
	}
	return latest
}
