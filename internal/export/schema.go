package export

import (
	"sort"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
)

// Fixed columns framing every row.
const (
	ColID           = "id"
	ColResearchID   = "research_id"
	ColModifiedTime = "modified_time"
	ColCreatedTime  = "created_time"
)

// Schema is the column layout shared by every row of one export.
type Schema struct {
	UserKeys   []string
	DetailKeys []string
}

// BuildSchema computes the union of user and detail keys over all rows.
// User keys are sorted. Detail keys follow the definition's field order
// first, then any remaining keys sorted, so a submission that lacks a key
// still lines up with its neighbours.
//
// Every key names exactly one column: a user key equal to a fixed column,
// or a detail key equal to a fixed column or a user key, is folded into the
// existing column (see Flatten for which value wins).
func BuildSchema(titles Titles, data []models.ResearchData) Schema {
	userSet := map[string]struct{}{}
	detailSet := map[string]struct{}{}
	for _, d := range data {
		for k := range d.User {
			if !isFixed(k) {
				userSet[k] = struct{}{}
			}
		}
		for k := range d.Detail {
			if !isFixed(k) {
				detailSet[k] = struct{}{}
			}
		}
	}
	for k := range userSet {
		delete(detailSet, k)
	}

	var s Schema
	s.UserKeys = sortedKeys(userSet)

	for _, id := range titles.Order {
		if _, ok := detailSet[id]; ok {
			s.DetailKeys = append(s.DetailKeys, id)
			delete(detailSet, id)
		}
	}
	s.DetailKeys = append(s.DetailKeys, sortedKeys(detailSet)...)
	return s
}

func isFixed(key string) bool {
	switch key {
	case ColID, ColResearchID, ColModifiedTime, ColCreatedTime:
		return true
	}
	return false
}

// Keys returns every column key in output order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, s.Width())
	keys = append(keys, ColID)
	keys = append(keys, s.UserKeys...)
	keys = append(keys, s.DetailKeys...)
	return append(keys, ColResearchID, ColModifiedTime, ColCreatedTime)
}

// Width is the number of columns.
func (s Schema) Width() int {
	return 4 + len(s.UserKeys) + len(s.DetailKeys)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
