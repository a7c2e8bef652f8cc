package repository

import (
	"context"
	"fmt"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/db"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/oxidb"
)

const DataCollection = "research_data"

type DataRepo struct {
	pool *db.Pool
}

func NewDataRepo(pool *db.Pool) *DataRepo {
	return &DataRepo{pool: pool}
}

func (r *DataRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	if err := c.CreateIndex(ctx, DataCollection, "research_id"); err != nil {
		return err
	}
	if err := c.CreateIndex(ctx, DataCollection, "user.username"); err != nil {
		return err
	}
	return c.CreateCompositeIndex(ctx, DataCollection, []string{"research_id", "created_time"})
}

func (r *DataRepo) Create(ctx context.Context, d *models.ResearchData) (string, error) {
	doc, err := toDoc(d)
	if err != nil {
		return "", err
	}
	result, err := r.pool.Get().Insert(ctx, DataCollection, doc)
	if err != nil {
		return "", err
	}
	return extractID(result), nil
}

// Find returns matching data, oldest first, so exports list submissions
// in the order they arrived.
func (r *DataRepo) Find(ctx context.Context, filter models.DataFilter) ([]models.ResearchData, error) {
	docs, err := r.pool.Get().Find(ctx, DataCollection, filterQuery(filter), &oxidb.FindOptions{
		Sort: map[string]any{"created_time": 1},
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.ResearchData, 0, len(docs))
	for _, doc := range docs {
		var d models.ResearchData
		if err := fromDoc(doc, &d); err != nil {
			return nil, fmt.Errorf("decode %s document %v: %w", DataCollection, doc["_id"], err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *DataRepo) CountByResearch(ctx context.Context, researchID string) (int, error) {
	return r.pool.Get().Count(ctx, DataCollection, map[string]any{"research_id": researchID})
}

func filterQuery(f models.DataFilter) map[string]any {
	q := map[string]any{}
	if f.ResearchID != "" {
		q["research_id"] = f.ResearchID
	}
	if f.Username != "" {
		q["user.username"] = f.Username
	}
	return q
}
