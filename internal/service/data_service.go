package service

import (
	"context"
	"fmt"
	"time"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
)

type DataService struct {
	data     DataStore
	research ResearchStore
}

func NewDataService(data DataStore, research ResearchStore) *DataService {
	return &DataService{data: data, research: research}
}

// Create stores one submission. The user snapshot comes from the caller's
// identity, never from the request body.
func (s *DataService) Create(ctx context.Context, researchID string, detail, user map[string]any) (*models.ResearchData, error) {
	if researchID == "" {
		return nil, fmt.Errorf("%w: research_id is required", ErrValidation)
	}
	r, err := s.research.FindByID(ctx, researchID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: research %s does not exist", ErrValidation, researchID)
	}
	if detail == nil {
		detail = map[string]any{}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	d := &models.ResearchData{
		ResearchID:   researchID,
		User:         user,
		Detail:       detail,
		CreatedTime:  now,
		ModifiedTime: now,
	}
	id, err := s.data.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	d.ID = id
	return d, nil
}

func (s *DataService) List(ctx context.Context, filter models.DataFilter) ([]models.ResearchData, error) {
	return s.data.Find(ctx, filter)
}

func (s *DataService) CountByResearch(ctx context.Context, researchID string) (int, error) {
	return s.data.CountByResearch(ctx, researchID)
}
