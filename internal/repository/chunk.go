package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/semantis/zalr-backend/internal/domain"
)

// ChunkRepository handles persistence of judgment text chunks and their
// embeddings.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx dbtx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// ReplaceChunks deletes existing chunks for a judgment and inserts new ones,
// so re-running the chunk stage never leaves stale rows behind.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, judgmentID string, chunks []domain.Chunk) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chunks WHERE judgment_id = $1`, judgmentID)
	if err != nil {
		return err
	}

	if len(chunks) == 0 {
		return nil
	}

	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		var embedding any
		if len(c.Embedding) > 0 {
			embedding = pgvector.NewVector(c.Embedding)
		}

		_, err := r.db.Exec(ctx,
			`INSERT INTO chunks (id, judgment_id, chunk_index, content, embedding, embedding_model, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.JudgmentID, c.ChunkIndex, c.Content, embedding, c.EmbeddingModel, createdAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// ListByJudgment returns a judgment's chunks in chunk order.
func (r *ChunkRepository) ListByJudgment(ctx context.Context, judgmentID string) ([]*domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, judgment_id, chunk_index, content, embedding_model, created_at
		 FROM chunks WHERE judgment_id = $1 ORDER BY chunk_index ASC`,
		judgmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.JudgmentID, &c.ChunkIndex, &c.Content, &c.EmbeddingModel, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepository) UpdateEmbedding(ctx context.Context, chunkID string, embedding []float32, model string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE chunks SET embedding = $1, embedding_model = $2 WHERE id = $3`,
		pgvector.NewVector(embedding), model, chunkID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}
