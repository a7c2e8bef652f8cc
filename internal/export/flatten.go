package export

import (
	"encoding/json"
	"time"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
)

// Cell is one column of a flattened row.
type Cell struct {
	Key   string
	Value any
}

// Row is a submission flattened against a Schema.
type Row []Cell

// Flatten lays d out along s. Keys the submission does not carry produce a
// nil value, which is written as an empty cell.
//
// The row behaves like successive merges of id, then user, then detail,
// then the trailing fixed columns: on a shared key the later group's value
// wins while the column keeps its first position.
func Flatten(d models.ResearchData, s Schema) Row {
	row := make(Row, 0, s.Width())
	row = append(row, Cell{Key: ColID, Value: cellValue(merged(d, ColID, d.ID))})
	for _, k := range s.UserKeys {
		row = append(row, Cell{Key: k, Value: cellValue(merged(d, k, nil))})
	}
	for _, k := range s.DetailKeys {
		row = append(row, Cell{Key: k, Value: cellValue(d.Detail[k])})
	}
	return append(row,
		Cell{Key: ColResearchID, Value: d.ResearchID},
		Cell{Key: ColModifiedTime, Value: d.ModifiedTime},
		Cell{Key: ColCreatedTime, Value: d.CreatedTime},
	)
}

// merged resolves key through detail, then user, then fallback.
func merged(d models.ResearchData, key string, fallback any) any {
	if v, ok := d.Detail[key]; ok {
		return v
	}
	if v, ok := d.User[key]; ok {
		return v
	}
	return fallback
}

// Values returns the cell values in column order.
func (r Row) Values() []any {
	vals := make([]any, len(r))
	for i, c := range r {
		vals[i] = c.Value
	}
	return vals
}

// cellValue keeps scalars as they are and JSON-encodes nested values so
// they fit into one cell.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil, string, bool, time.Time,
		float64, float32, int, int32, int64, uint, uint32, uint64:
		return x
	case json.Number:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
