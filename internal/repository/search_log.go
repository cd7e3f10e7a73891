package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/semantis/zalr-backend/internal/service"
)

// SearchLogRepository stores search logs for evaluation/feedback loops.
type SearchLogRepository struct {
	pool *pgxpool.Pool
}

func NewSearchLogRepository(pool *pgxpool.Pool) *SearchLogRepository {
	return &SearchLogRepository{pool: pool}
}

func (r *SearchLogRepository) CreateSearchLog(ctx context.Context, entry service.SearchLogEntry) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO search_logs (query, result_count, duration_ms)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		entry.Query,
		entry.ResultCount,
		entry.DurationMs,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
