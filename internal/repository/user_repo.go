package repository

import (
	"context"
	"fmt"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/db"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/oxidb"
)

const UsersCollection = "research_users"

type UserRepo struct {
	pool *db.Pool
}

func NewUserRepo(pool *db.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	return r.pool.Get().CreateUniqueIndex(ctx, UsersCollection, "username")
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) (string, error) {
	doc, err := toDoc(user)
	if err != nil {
		return "", err
	}
	result, err := r.pool.Get().Insert(ctx, UsersCollection, doc)
	if oxidb.IsUniqueViolation(err) {
		return "", fmt.Errorf("user %s: %w", user.Username, ErrDuplicateKey)
	}
	if err != nil {
		return "", err
	}
	return extractID(result), nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, map[string]any{"username": username})
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, map[string]any{"_id": toNumericID(id)})
}

func (r *UserRepo) findOne(ctx context.Context, query map[string]any) (*models.User, error) {
	doc, err := r.pool.Get().FindOne(ctx, UsersCollection, query)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	var u models.User
	if err := fromDoc(doc, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
