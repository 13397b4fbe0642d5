package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/graduate-survey/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 10
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 2
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Pool exposes the connection pool for migrations
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// SaveSubmission upserts a submission by id
func (r *PostgresRepository) SaveSubmission(ctx context.Context, s *models.Submission) error {
	responsesJSON, err := json.Marshal(s.Responses)
	if err != nil {
		return fmt.Errorf("failed to marshal responses: %w", err)
	}

	query := `
		INSERT INTO survey_submissions (id, responses, language, status, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET responses = EXCLUDED.responses,
		    language = EXCLUDED.language,
		    status = EXCLUDED.status,
		    submitted_at = NOW(),
		    updated_at = NOW()
		RETURNING submitted_at, updated_at
	`

	err = r.pool.QueryRow(ctx, query,
		s.ID,
		responsesJSON,
		s.Language,
		string(s.Status),
	).Scan(&s.SubmittedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	return nil
}

// GetSubmission retrieves a submission by ID
func (r *PostgresRepository) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	query := `
		SELECT id, responses, language, status, submitted_at, updated_at
		FROM survey_submissions
		WHERE id = $1
	`

	s, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return s, nil
}

// ListSubmissions returns submissions matching filters, newest first
func (r *PostgresRepository) ListSubmissions(ctx context.Context, filters models.ListFilters) ([]*models.Submission, error) {
	where, args := filterClause(filters)
	query := `
		SELECT id, responses, language, status, submitted_at, updated_at
		FROM survey_submissions
	` + where
	argNum := len(args) + 1

	query += " ORDER BY submitted_at DESC, id"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}

	return submissions, rows.Err()
}

// CountSubmissions counts submissions matching filters
func (r *PostgresRepository) CountSubmissions(ctx context.Context, filters models.ListFilters) (int, error) {
	where, args := filterClause(filters)

	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM survey_submissions "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return n, nil
}

func filterClause(filters models.ListFilters) (string, []interface{}) {
	where := "WHERE 1=1"
	args := make([]interface{}, 0, 2)

	if filters.Status != "" {
		args = append(args, string(filters.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.Language != "" {
		args = append(args, filters.Language)
		where += fmt.Sprintf(" AND language = $%d", len(args))
	}
	return where, args
}

// DeletePartialBefore removes stale partial submissions
func (r *PostgresRepository) DeletePartialBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM survey_submissions WHERE status = $1 AND updated_at < $2`,
		string(models.StatusPartial), cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete partial submissions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var s models.Submission
	var statusStr string
	var responsesJSON []byte

	if err := row.Scan(
		&s.ID,
		&responsesJSON,
		&s.Language,
		&statusStr,
		&s.SubmittedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s.Status = models.SubmissionStatus(statusStr)
	if err := json.Unmarshal(responsesJSON, &s.Responses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal responses: %w", err)
	}
	return &s, nil
}
