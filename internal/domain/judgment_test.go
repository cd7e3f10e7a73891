package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleState_Ordinal(t *testing.T) {
	assert.Equal(t, 1, StateScraped.Ordinal())
	assert.Equal(t, 4, StateEmbedded.Ordinal())
	assert.Equal(t, 8, StateClassified.Ordinal())
	assert.Equal(t, 0, LifecycleState("bogus").Ordinal())
}

func TestLifecycleState_Next_CoversFullPipeline(t *testing.T) {
	state := StateScraped
	visited := []LifecycleState{state}
	for state != StateClassified {
		next := state.Next()
		assert.Equal(t, state.Ordinal()+1, next.Ordinal())
		state = next
		visited = append(visited, state)
	}
	assert.Len(t, visited, 8)

	// Terminal state stays put.
	assert.Equal(t, StateClassified, StateClassified.Next())
}

func TestIsValidLifecycleState(t *testing.T) {
	assert.True(t, IsValidLifecycleState(StateShortSummarized))
	assert.False(t, IsValidLifecycleState(LifecycleState("")))
	assert.False(t, IsValidLifecycleState(LifecycleState("pending")))
}

func TestValidateJudgment_Valid(t *testing.T) {
	now := time.Now().UTC()
	j := NewJudgment("id-1", "S v Makwanyane", "ZACC", 1995, "judgment text", "https://example.org/1995/3.html", now)

	assert.NoError(t, ValidateJudgment(j))
	assert.Equal(t, StateScraped, j.State)
	assert.Equal(t, now, j.CreatedAt)
}

func TestValidateJudgment_Invalid(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name   string
		mutate func(j *Judgment)
	}{
		{"missing id", func(j *Judgment) { j.ID = "" }},
		{"missing title", func(j *Judgment) { j.Title = "" }},
		{"missing text", func(j *Judgment) { j.TextMarkdown = "" }},
		{"bad state", func(j *Judgment) { j.State = "half-done" }},
		{"score too high", func(j *Judgment) { j.Reportability = 101 }},
		{"score negative", func(j *Judgment) { j.Reportability = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := NewJudgment("id-1", "Title", "ZASCA", 2024, "text", "", now)
			tt.mutate(j)
			assert.Error(t, ValidateJudgment(j))
		})
	}

	assert.Error(t, ValidateJudgment(nil))
}

func TestJudgment_HasMetadata(t *testing.T) {
	now := time.Now().UTC()
	j := NewJudgment("id-1", "Title", "ZACC", 2024, "text", "", now)
	assert.False(t, j.HasMetadata())

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	j.FullCitation = "Case v State [2024] ZACC 7"
	j.CaseNumber = "7"
	j.JudgmentDate = &date
	assert.True(t, j.HasMetadata())
}
