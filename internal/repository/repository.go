package repository

import (
	"context"
	"errors"

	"github.com/MATHUR-LUV/Aegis/internal/models"
)

var (
	ErrOutcomeNotFound = errors.New("outcome not found")
)

// Repository defines the interface for triage outcome persistence
type Repository interface {
	RecordOutcome(ctx context.Context, o *models.TriageOutcome) error
	GetOutcomeByID(ctx context.Context, id string) (*models.TriageOutcome, error)
	ListOutcomes(ctx context.Context, req *models.ListOutcomesRequest) ([]*models.TriageOutcome, int, error)

	// Utility
	Close() error
}
