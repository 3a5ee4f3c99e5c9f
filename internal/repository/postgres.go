package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MATHUR-LUV/Aegis/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// RecordOutcome inserts one triage outcome
func (r *PostgresRepository) RecordOutcome(ctx context.Context, o *models.TriageOutcome) error {
	query := `
		INSERT INTO triage_outcomes (id, event_type, subject, status, agent_status, agent_response, reason, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		o.ID, o.EventType, o.Subject, o.Status,
		o.AgentStatus, o.AgentResponse, o.Reason, o.DurationMs, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}

	return nil
}

// GetOutcomeByID retrieves an outcome by ID
func (r *PostgresRepository) GetOutcomeByID(ctx context.Context, id string) (*models.TriageOutcome, error) {
	query := `
		SELECT id, event_type, subject, status, agent_status, agent_response, reason, duration_ms, created_at
		FROM triage_outcomes
		WHERE id = $1
	`

	o := &models.TriageOutcome{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.EventType, &o.Subject, &o.Status,
		&o.AgentStatus, &o.AgentResponse, &o.Reason, &o.DurationMs, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOutcomeNotFound
		}
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}

	return o, nil
}

// ListOutcomes retrieves a paginated list of outcomes, newest first
func (r *PostgresRepository) ListOutcomes(ctx context.Context, req *models.ListOutcomesRequest) ([]*models.TriageOutcome, int, error) {
	// Build WHERE clause
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if req.Status != "" {
		whereClause += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, req.Status)
		argPos++
	}
	if req.EventType != "" {
		whereClause += fmt.Sprintf(" AND event_type = $%d", argPos)
		args = append(args, req.EventType)
		argPos++
	}

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM triage_outcomes %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count outcomes: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	args = append(args, req.Limit, offset)

	query := fmt.Sprintf(`
		SELECT id, event_type, subject, status, agent_status, agent_response, reason, duration_ms, created_at
		FROM triage_outcomes
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []*models.TriageOutcome{}
	for rows.Next() {
		o := &models.TriageOutcome{}
		if err := rows.Scan(
			&o.ID, &o.EventType, &o.Subject, &o.Status,
			&o.AgentStatus, &o.AgentResponse, &o.Reason, &o.DurationMs, &o.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate outcomes: %w", err)
	}

	return outcomes, total, nil
}

// Close closes the connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
