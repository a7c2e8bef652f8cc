package repository

import (
	"context"
	"fmt"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/db"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/oxidb"
)

const ResearchCollection = "research_list"

type ResearchRepo struct {
	pool *db.Pool
}

func NewResearchRepo(pool *db.Pool) *ResearchRepo {
	return &ResearchRepo{pool: pool}
}

func (r *ResearchRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	return c.CreateIndex(ctx, ResearchCollection, "created_time")
}

func (r *ResearchRepo) Create(ctx context.Context, research *models.Research) (string, error) {
	doc, err := toDoc(research)
	if err != nil {
		return "", err
	}
	result, err := r.pool.Get().Insert(ctx, ResearchCollection, doc)
	if err != nil {
		return "", err
	}
	return extractID(result), nil
}

func (r *ResearchRepo) FindAll(ctx context.Context) ([]models.Research, error) {
	docs, err := r.pool.Get().Find(ctx, ResearchCollection, map[string]any{}, &oxidb.FindOptions{
		Sort: map[string]any{"created_time": -1},
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Research, 0, len(docs))
	for _, d := range docs {
		var research models.Research
		if err := fromDoc(d, &research); err != nil {
			return nil, fmt.Errorf("decode %s document %v: %w", ResearchCollection, d["_id"], err)
		}
		out = append(out, research)
	}
	return out, nil
}

func (r *ResearchRepo) FindByID(ctx context.Context, id string) (*models.Research, error) {
	doc, err := r.pool.Get().FindOne(ctx, ResearchCollection, map[string]any{"_id": toNumericID(id)})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	var research models.Research
	if err := fromDoc(doc, &research); err != nil {
		return nil, err
	}
	return &research, nil
}

func (r *ResearchRepo) Update(ctx context.Context, id string, research *models.Research) error {
	doc, err := toDoc(research)
	if err != nil {
		return err
	}
	_, err = r.pool.Get().UpdateOne(ctx, ResearchCollection, map[string]any{"_id": toNumericID(id)}, map[string]any{"$set": doc})
	return err
}

func (r *ResearchRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Get().DeleteOne(ctx, ResearchCollection, map[string]any{"_id": toNumericID(id)})
	return err
}
