package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MATHUR-LUV/Aegis/internal/models"
	"github.com/MATHUR-LUV/Aegis/internal/repository"
)

func seedOutcomes(t *testing.T, repo repository.Repository, n int) {
	t.Helper()
	base := time.Now().UTC()
	for i := 0; i < n; i++ {
		status := "success"
		if i%3 == 0 {
			status = "failed"
		}
		err := repo.RecordOutcome(context.Background(), &models.TriageOutcome{
			ID:        fmt.Sprintf("outcome-%03d", i),
			EventType: "payment_failed",
			Subject:   "events.platform",
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
}

func TestGetOutcome(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewService(repo)
	seedOutcomes(t, repo, 3)

	o, err := svc.GetOutcome(context.Background(), "outcome-001")
	require.NoError(t, err)
	assert.Equal(t, "outcome-001", o.ID)

	_, err = svc.GetOutcome(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrOutcomeNotFound)
}

func TestListOutcomesPagination(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewService(repo)
	seedOutcomes(t, repo, 25)

	resp, err := svc.ListOutcomes(context.Background(), &models.ListOutcomesRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, resp.Total)
	assert.Len(t, resp.Outcomes, 10)

	resp, err = svc.ListOutcomes(context.Background(), &models.ListOutcomesRequest{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, resp.Outcomes, 5)
}

func TestListOutcomesNewestFirst(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewService(repo)
	seedOutcomes(t, repo, 5)

	resp, err := svc.ListOutcomes(context.Background(), &models.ListOutcomesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Outcomes, 5)
	assert.Equal(t, "outcome-004", resp.Outcomes[0].ID)
	assert.Equal(t, "outcome-000", resp.Outcomes[4].ID)
}

func TestListOutcomesDefaults(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewService(repo)
	seedOutcomes(t, repo, 5)

	resp, err := svc.ListOutcomes(context.Background(), &models.ListOutcomesRequest{Page: 0, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)

	resp, err = svc.ListOutcomes(context.Background(), &models.ListOutcomesRequest{Page: 1, Limit: 9999})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Limit, "limit is clamped")
}

func TestListOutcomesStatusFilter(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewService(repo)
	seedOutcomes(t, repo, 9)

	resp, err := svc.ListOutcomes(context.Background(), &models.ListOutcomesRequest{Status: "failed"})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	for _, o := range resp.Outcomes {
		assert.Equal(t, "failed", o.Status)
	}
}
