package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllPracticeAreas_HasFifteenEntries(t *testing.T) {
	assert.Len(t, AllPracticeAreas, 15)

	seen := make(map[PracticeArea]bool)
	for _, area := range AllPracticeAreas {
		assert.False(t, seen[area], "duplicate practice area: %s", area)
		seen[area] = true
	}
	assert.NotContains(t, AllPracticeAreas, PracticeAreaNotClassified)
}

func TestIsValidPracticeArea(t *testing.T) {
	assert.True(t, IsValidPracticeArea(PracticeAreaLabour))
	assert.True(t, IsValidPracticeArea(PracticeAreaNotClassified))
	assert.False(t, IsValidPracticeArea(PracticeArea("Maritime Law")))
	assert.False(t, IsValidPracticeArea(PracticeArea("")))
}
