package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/semantis/zalr-backend/internal/domain"
)

// CheckpointRepository persists pipeline progress so interrupted runs resume
// where they stopped instead of reprocessing completed judgments.
type CheckpointRepository struct {
	db dbtx
}

func NewCheckpointRepository(pool *pgxpool.Pool) *CheckpointRepository {
	return &CheckpointRepository{db: pool}
}

func (r *CheckpointRepository) Get(ctx context.Context, stage int, court string, year int) (*domain.Checkpoint, error) {
	var cp domain.Checkpoint
	var completedJSON []byte
	err := r.db.QueryRow(ctx,
		`SELECT stage, court, year, completed_ids, updated_at
		 FROM pipeline_checkpoints WHERE stage = $1 AND court = $2 AND year = $3`,
		stage, court, year,
	).Scan(&cp.Stage, &cp.Court, &cp.Year, &completedJSON, &cp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(completedJSON, &cp.Completed); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *CheckpointRepository) Save(ctx context.Context, cp *domain.Checkpoint) error {
	completedJSON, err := json.Marshal(cp.Completed)
	if err != nil {
		return err
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO pipeline_checkpoints (stage, court, year, completed_ids, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (stage, court, year)
		 DO UPDATE SET completed_ids = EXCLUDED.completed_ids, updated_at = EXCLUDED.updated_at`,
		cp.Stage, cp.Court, cp.Year, completedJSON, cp.UpdatedAt,
	)
	return err
}

// Clear removes a checkpoint once its stage has run to completion.
func (r *CheckpointRepository) Clear(ctx context.Context, stage int, court string, year int) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM pipeline_checkpoints WHERE stage = $1 AND court = $2 AND year = $3`,
		stage, court, year,
	)
	return err
}
