package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/semantis/zalr-backend/internal/service"
)

// SearchRepository implements vector similarity search over judgment
// embeddings.
type SearchRepository struct {
	pool *pgxpool.Pool
}

func NewSearchRepository(pool *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{pool: pool}
}

func (r *SearchRepository) SearchByEmbedding(ctx context.Context, embedding []float32, filter service.JudgmentFilter, limit int) ([]*service.SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	vec := pgvector.NewVector(embedding)

	args := []any{vec}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	query := `
		SELECT id, title, court, year, practice_area, short_summary,
		       1.0 / (1.0 + (embedding <=> $1)) AS score
		FROM judgments
		WHERE embedding IS NOT NULL`

	if filter.PracticeArea != "" {
		query += ` AND practice_area = ` + arg(filter.PracticeArea)
	}
	if filter.Court != "" {
		query += ` AND court = ` + arg(filter.Court)
	}
	if filter.Year != 0 {
		query += ` AND year = ` + arg(filter.Year)
	}
	if filter.MinReportability > 0 {
		query += ` AND reportability_score >= ` + arg(filter.MinReportability)
	}
	query += ` ORDER BY score DESC LIMIT ` + arg(limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*service.SearchResult, 0)
	for rows.Next() {
		var result service.SearchResult
		if err := rows.Scan(&result.ID, &result.Title, &result.Court, &result.Year, &result.PracticeArea, &result.ShortSummary, &result.Score); err != nil {
			return nil, err
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}
