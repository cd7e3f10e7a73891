package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckpoint_AddAndContains(t *testing.T) {
	cp := NewCheckpoint(4, "ZACC", 2024)

	assert.False(t, cp.Contains("j-1"))

	cp.Add("j-1")
	cp.Add("j-2")
	cp.Add("j-1") // duplicate

	assert.True(t, cp.Contains("j-1"))
	assert.True(t, cp.Contains("j-2"))
	assert.False(t, cp.Contains("j-3"))
	assert.Len(t, cp.Completed, 2)
}
