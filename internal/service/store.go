package service

import (
	"context"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
)

// ResearchStore persists research definitions. FindByID returns (nil, nil)
// when the id is unknown.
type ResearchStore interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, r *models.Research) (string, error)
	FindAll(ctx context.Context) ([]models.Research, error)
	FindByID(ctx context.Context, id string) (*models.Research, error)
	Update(ctx context.Context, id string, r *models.Research) error
	Delete(ctx context.Context, id string) error
}

// DataStore persists submitted research data.
type DataStore interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, d *models.ResearchData) (string, error)
	Find(ctx context.Context, filter models.DataFilter) ([]models.ResearchData, error)
	CountByResearch(ctx context.Context, researchID string) (int, error)
}

// UserStore persists accounts. Find methods return (nil, nil) when absent.
type UserStore interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, u *models.User) (string, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}
