package service

import (
	"context"

	"github.com/MATHUR-LUV/Aegis/internal/models"
	"github.com/MATHUR-LUV/Aegis/internal/repository"
)

// Service handles business logic for triage outcomes
type Service struct {
	repo repository.Repository
}

// NewService creates a new service instance
func NewService(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// GetOutcome retrieves an outcome by ID
func (s *Service) GetOutcome(ctx context.Context, id string) (*models.TriageOutcome, error) {
	return s.repo.GetOutcomeByID(ctx, id)
}

// ListOutcomes retrieves a paginated list of outcomes
func (s *Service) ListOutcomes(ctx context.Context, req *models.ListOutcomesRequest) (*models.ListOutcomesResponse, error) {
	// Validate and set defaults
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	outcomes, total, err := s.repo.ListOutcomes(ctx, req)
	if err != nil {
		return nil, err
	}

	return &models.ListOutcomesResponse{
		Outcomes: outcomes,
		Total:    total,
		Page:     req.Page,
		Limit:    req.Limit,
	}, nil
}
