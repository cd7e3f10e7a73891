package domain

import (
	"fmt"
	"time"
)

// Chunk is a contiguous span of a judgment's text produced by the chunking
// stage. Chunks are immutable once written; reprocessing replaces the whole
// set for a judgment rather than mutating individual rows.
type Chunk struct {
	ID             string
	JudgmentID     string
	ChunkIndex     int
	Content        string
	Embedding      []float32
	EmbeddingModel string
	CreatedAt      time.Time
}

// ValidateChunk validates a Chunk instance.
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if c.JudgmentID == "" {
		return fmt.Errorf("chunk JudgmentID is required")
	}

	if c.ChunkIndex < 0 {
		return fmt.Errorf("chunk ChunkIndex must not be negative: %d", c.ChunkIndex)
	}

	if c.Content == "" {
		return fmt.Errorf("chunk Content is required")
	}

	return nil
}
