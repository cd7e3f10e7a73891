package domain

import "time"

// Checkpoint records which judgments a stage has already processed for a
// court/year selection, so a rerun can skip completed work. It is a resume
// hint persisted alongside the judgments; lifecycle state on the judgment
// rows stays the source of truth.
type Checkpoint struct {
	Stage     int
	Court     string
	Year      int
	Completed []string
	UpdatedAt time.Time
}

// NewCheckpoint creates an empty checkpoint for a stage selection.
func NewCheckpoint(stage int, court string, year int) *Checkpoint {
	return &Checkpoint{
		Stage: stage,
		Court: court,
		Year:  year,
	}
}

// Contains reports whether the judgment ID is already checkpointed.
func (c *Checkpoint) Contains(id string) bool {
	for _, done := range c.Completed {
		if done == id {
			return true
		}
	}
	return false
}

// Add records a completed judgment ID, ignoring duplicates.
func (c *Checkpoint) Add(id string) {
	if c.Contains(id) {
		return
	}
	c.Completed = append(c.Completed, id)
}
