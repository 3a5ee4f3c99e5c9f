package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/MATHUR-LUV/Aegis/internal/models"
)

// MemoryRepository implements Repository with an in-memory store. Used when
// no database is configured and in tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	outcomes map[string]*models.TriageOutcome
	order    []string // insertion order, oldest first
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		outcomes: make(map[string]*models.TriageOutcome),
	}
}

// RecordOutcome stores one triage outcome
func (r *MemoryRepository) RecordOutcome(ctx context.Context, o *models.TriageOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *o
	r.outcomes[o.ID] = &cp
	r.order = append(r.order, o.ID)
	return nil
}

// GetOutcomeByID retrieves an outcome by ID
func (r *MemoryRepository) GetOutcomeByID(ctx context.Context, id string) (*models.TriageOutcome, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.outcomes[id]
	if !ok {
		return nil, ErrOutcomeNotFound
	}
	cp := *o
	return &cp, nil
}

// ListOutcomes retrieves a paginated list of outcomes, newest first
func (r *MemoryRepository) ListOutcomes(ctx context.Context, req *models.ListOutcomesRequest) ([]*models.TriageOutcome, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.TriageOutcome, 0, len(r.order))
	for _, id := range r.order {
		o := r.outcomes[id]
		if req.Status != "" && o.Status != req.Status {
			continue
		}
		if req.EventType != "" && o.EventType != req.EventType {
			continue
		}
		matched = append(matched, o)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (req.Page - 1) * req.Limit
	if start >= total {
		return []*models.TriageOutcome{}, total, nil
	}
	end := start + req.Limit
	if end > total {
		end = total
	}

	page := make([]*models.TriageOutcome, 0, end-start)
	for _, o := range matched[start:end] {
		cp := *o
		page = append(page, &cp)
	}

	return page, total, nil
}

// Close is a no-op
func (r *MemoryRepository) Close() error {
	return nil
}
