package service

import (
	"context"
	"fmt"
	"time"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
)

type ResearchService struct {
	research ResearchStore
}

func NewResearchService(research ResearchStore) *ResearchService {
	return &ResearchService{research: research}
}

func (s *ResearchService) Create(ctx context.Context, title, description, createdBy string, detail []models.FieldDescriptor) (*models.Research, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	r := &models.Research{
		Title:        title,
		Description:  description,
		Detail:       detail,
		CreatedBy:    createdBy,
		CreatedTime:  now,
		ModifiedTime: now,
	}
	if r.Detail == nil {
		r.Detail = []models.FieldDescriptor{}
	}
	id, err := s.research.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	r.ID = id
	return r, nil
}

func (s *ResearchService) List(ctx context.Context) ([]models.Research, error) {
	return s.research.FindAll(ctx)
}

func (s *ResearchService) Get(ctx context.Context, id string) (*models.Research, error) {
	r, err := s.research.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("research %w", ErrNotFound)
	}
	return r, nil
}

// ResearchPatch carries the fields of an update. Nil fields are left as
// they are; an empty title is rejected.
type ResearchPatch struct {
	Title       *string
	Description *string
	Detail      []models.FieldDescriptor
}

func (s *ResearchService) Update(ctx context.Context, id string, patch ResearchPatch) (*models.Research, error) {
	if patch.Title != nil && *patch.Title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		r.Title = *patch.Title
	}
	if patch.Description != nil {
		r.Description = *patch.Description
	}
	if patch.Detail != nil {
		r.Detail = patch.Detail
	}
	r.ModifiedTime = time.Now().UTC().Format(time.RFC3339)

	if err := s.research.Update(ctx, id, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ResearchService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.research.Delete(ctx, id)
}
