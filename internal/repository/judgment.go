package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/pagination"
	"github.com/semantis/zalr-backend/internal/service"
)

// judgmentColumns excludes the embedding vector; it is written by
// SetEmbedding and only ever read inside SQL distance expressions.
const judgmentColumns = `id, title, court, year, case_number, full_citation, judgment_date, judges,
	 text_markdown, saflii_url, state, short_summary, long_summary, reportability_score,
	 reportability_explanation, practice_area, embedding_model, featured, created_at, updated_at`

type JudgmentRepository struct {
	db dbtx
}

func NewJudgmentRepository(pool *pgxpool.Pool) *JudgmentRepository {
	return &JudgmentRepository{db: pool}
}

func NewJudgmentRepositoryWithTx(tx pgx.Tx) *JudgmentRepository {
	return &JudgmentRepository{db: tx}
}

func (r *JudgmentRepository) Create(ctx context.Context, j *domain.Judgment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO judgments (id, title, court, year, case_number, full_citation, judgment_date, judges,
			text_markdown, saflii_url, state, short_summary, long_summary, reportability_score,
			reportability_explanation, practice_area, embedding_model, featured, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		j.ID, j.Title, j.Court, j.Year, j.CaseNumber, j.FullCitation, j.JudgmentDate, j.Judges,
		j.TextMarkdown, j.SafliiURL, j.State, j.ShortSummary, j.LongSummary, j.Reportability,
		j.ReportabilityExplanation, string(j.PracticeArea), j.EmbeddingModel, j.Featured, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrJudgmentAlreadyExists
		}
		return err
	}
	return nil
}

func (r *JudgmentRepository) GetByID(ctx context.Context, id string) (*domain.Judgment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+judgmentColumns+` FROM judgments WHERE id = $1`,
		id,
	)
	j, err := scanJudgment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJudgmentNotFound
		}
		return nil, err
	}
	return j, nil
}

func (r *JudgmentRepository) GetBySafliiURL(ctx context.Context, url string) (*domain.Judgment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+judgmentColumns+` FROM judgments WHERE saflii_url = $1`,
		url,
	)
	j, err := scanJudgment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJudgmentNotFound
		}
		return nil, err
	}
	return j, nil
}

// ListByState returns judgments sitting in a lifecycle state, optionally
// narrowed to a court and year. Ordered by creation time so pipeline runs
// are deterministic.
func (r *JudgmentRepository) ListByState(ctx context.Context, state domain.LifecycleState, court string, year int) ([]*domain.Judgment, error) {
	query := `SELECT ` + judgmentColumns + ` FROM judgments WHERE state = $1`
	args := []any{state}

	if court != "" {
		args = append(args, court)
		query += ` AND court = $2`
	}
	if year != 0 {
		args = append(args, year)
		if court != "" {
			query += ` AND year = $3`
		} else {
			query += ` AND year = $2`
		}
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJudgmentRows(rows)
}

func (r *JudgmentRepository) ListWithCursor(ctx context.Context, filter service.JudgmentFilter, cursor *pagination.Cursor, limit int) (*service.JudgmentPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + judgmentColumns + ` FROM judgments WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

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
	if cursor != nil {
		query += ` AND (updated_at, id) < (` + arg(cursor.Timestamp) + `, ` + arg(cursor.LastID) + `)`
	}
	query += ` ORDER BY updated_at DESC, id DESC LIMIT ` + arg(limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanJudgmentRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.UpdatedAt)
	}

	return &service.JudgmentPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *JudgmentRepository) ListFeatured(ctx context.Context, limit int) ([]*domain.Judgment, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+judgmentColumns+` FROM judgments
		 WHERE featured = TRUE
		 ORDER BY reportability_score DESC, updated_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJudgmentRows(rows)
}

func (r *JudgmentRepository) SetFeatured(ctx context.Context, id string, featured bool) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE judgments SET featured = $1, updated_at = $2 WHERE id = $3`,
		featured, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJudgmentNotFound
	}
	return nil
}

// UpdateMetadata writes the metadata stage output and advances the state.
func (r *JudgmentRepository) UpdateMetadata(ctx context.Context, j *domain.Judgment) error {
	j.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE judgments
		 SET title = $1, court = $2, year = $3, case_number = $4, full_citation = $5,
		     judgment_date = $6, judges = $7, state = $8, updated_at = $9
		 WHERE id = $10`,
		j.Title, j.Court, j.Year, j.CaseNumber, j.FullCitation,
		j.JudgmentDate, j.Judges, j.State, j.UpdatedAt, j.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJudgmentNotFound
	}
	return nil
}

func (r *JudgmentRepository) SetState(ctx context.Context, id string, state domain.LifecycleState) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE judgments SET state = $1, updated_at = $2 WHERE id = $3`,
		state, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJudgmentNotFound
	}
	return nil
}

func (r *JudgmentRepository) SetEmbedding(ctx context.Context, id string, embedding []float32, model string, state domain.LifecycleState) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE judgments SET embedding = $1, embedding_model = $2, state = $3, updated_at = $4 WHERE id = $5`,
		pgvector.NewVector(embedding), model, state, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJudgmentNotFound
	}
	return nil
}

func (r *JudgmentRepository) SetShortSummary(ctx context.Context, id, summary string, state domain.LifecycleState) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE judgments SET short_summary = $1, state = $2, updated_at = $3 WHERE id = $4`,
		summary, state, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJudgmentNotFound
	}
	return nil
}

func (r *JudgmentRepository) SetReportability(ctx context.Context, id string, score int, explanation string, state domain.LifecycleState) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE judgments SET reportability_score = $1, reportability_explanation = $2, state = $3, updated_at = $4 WHERE id = $5`,
		score, explanation, state, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJudgmentNotFound
	}
	return nil
}

func (r *JudgmentRepository) SetLongSummary(ctx context.Context, id, summary string, state domain.LifecycleState) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE judgments SET long_summary = $1, state = $2, updated_at = $3 WHERE id = $4`,
		summary, state, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJudgmentNotFound
	}
	return nil
}

func (r *JudgmentRepository) SetPracticeArea(ctx context.Context, id string, area domain.PracticeArea, state domain.LifecycleState) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE judgments SET practice_area = $1, state = $2, updated_at = $3 WHERE id = $4`,
		string(area), state, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJudgmentNotFound
	}
	return nil
}

func (r *JudgmentRepository) StateCounts(ctx context.Context) (map[domain.LifecycleState]int, error) {
	rows, err := r.db.Query(ctx, `SELECT state, COUNT(*) FROM judgments GROUP BY state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.LifecycleState]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		counts[domain.LifecycleState(state)] = count
	}
	return counts, rows.Err()
}

func scanJudgment(row pgx.Row) (*domain.Judgment, error) {
	var j domain.Judgment
	var practiceArea string
	if err := row.Scan(
		&j.ID, &j.Title, &j.Court, &j.Year, &j.CaseNumber, &j.FullCitation, &j.JudgmentDate, &j.Judges,
		&j.TextMarkdown, &j.SafliiURL, &j.State, &j.ShortSummary, &j.LongSummary, &j.Reportability,
		&j.ReportabilityExplanation, &practiceArea, &j.EmbeddingModel, &j.Featured, &j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		return nil, err
	}
	j.PracticeArea = domain.PracticeArea(practiceArea)
	return &j, nil
}

func scanJudgmentRows(rows pgx.Rows) ([]*domain.Judgment, error) {
	var results []*domain.Judgment
	for rows.Next() {
		j, err := scanJudgment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, j)
	}
	return results, rows.Err()
}
