package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChunk(t *testing.T) {
	valid := &Chunk{
		JudgmentID: "j-1",
		ChunkIndex: 0,
		Content:    "The court held that...",
	}
	assert.NoError(t, ValidateChunk(valid))

	assert.Error(t, ValidateChunk(nil))
	assert.Error(t, ValidateChunk(&Chunk{ChunkIndex: 0, Content: "x"}))
	assert.Error(t, ValidateChunk(&Chunk{JudgmentID: "j-1", ChunkIndex: -1, Content: "x"}))
	assert.Error(t, ValidateChunk(&Chunk{JudgmentID: "j-1", ChunkIndex: 2}))
}
