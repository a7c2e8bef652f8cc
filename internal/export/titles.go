package export

import "github.com/parisxmas/OxiDB/OxiResearch/internal/models"

// Titles maps field ids to display labels. Found is false when the
// research definition could not be resolved; headers then fall back to the
// raw keys.
type Titles struct {
	Labels map[string]string
	Order  []string
	Found  bool
}

// TitlesFrom builds the label mapping from a definition's descriptors,
// keeping descriptor order. A nil definition yields an empty, not-found
// mapping.
func TitlesFrom(r *models.Research) Titles {
	t := Titles{Labels: map[string]string{}}
	if r == nil {
		return t
	}
	t.Found = true
	for _, f := range r.Detail {
		if _, dup := t.Labels[f.FieldID]; !dup {
			t.Order = append(t.Order, f.FieldID)
		}
		t.Labels[f.FieldID] = f.Label
	}
	return t
}

// Label returns the display label for key, or key itself when unmapped.
func (t Titles) Label(key string) string {
	if label, ok := t.Labels[key]; ok {
		return label
	}
	return key
}
