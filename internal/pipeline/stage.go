// Package pipeline runs judgments through the eight enrichment stages, from
// scraping to practice area classification.
package pipeline

import (
	"fmt"

	"github.com/semantis/zalr-backend/internal/domain"
)

// Stage identifies one of the eight pipeline stages.
type Stage int

const (
	StageScrape Stage = iota + 1
	StageMetadata
	StageChunk
	StageEmbed
	StageShortSummary
	StageScore
	StageLongSummary
	StageClassify
)

var stageNames = map[Stage]string{
	StageScrape:       "scrape",
	StageMetadata:     "fix-metadata",
	StageChunk:        "chunk",
	StageEmbed:        "embed",
	StageShortSummary: "short-summary",
	StageScore:        "score",
	StageLongSummary:  "long-summary",
	StageClassify:     "classify",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// IsValid reports whether s names a real stage.
func (s Stage) IsValid() bool {
	return s >= StageScrape && s <= StageClassify
}

// RequiredState is the lifecycle state a judgment must be in before this
// stage may touch it. Stage 1 creates judgments and has no required state.
func (s Stage) RequiredState() domain.LifecycleState {
	switch s {
	case StageMetadata:
		return domain.StateScraped
	case StageChunk:
		return domain.StateMetadataFixed
	case StageEmbed:
		return domain.StateChunked
	case StageShortSummary:
		return domain.StateEmbedded
	case StageScore:
		return domain.StateShortSummarized
	case StageLongSummary:
		return domain.StateScored
	case StageClassify:
		return domain.StateLongSummarized
	}
	return ""
}

// ResultState is the lifecycle state a judgment enters once this stage
// completes for it.
func (s Stage) ResultState() domain.LifecycleState {
	switch s {
	case StageScrape:
		return domain.StateScraped
	case StageMetadata:
		return domain.StateMetadataFixed
	case StageChunk:
		return domain.StateChunked
	case StageEmbed:
		return domain.StateEmbedded
	case StageShortSummary:
		return domain.StateShortSummarized
	case StageScore:
		return domain.StateScored
	case StageLongSummary:
		return domain.StateLongSummarized
	case StageClassify:
		return domain.StateClassified
	}
	return ""
}

// Retryable reports whether per-item retries apply. Scraping and embedding
// talk to flaky remote services mid-item; the LLM stages are retried by
// rerunning the stage instead.
func (s Stage) Retryable() bool {
	return s == StageScrape || s == StageEmbed
}

// ParseStage converts a 1-based stage number.
func ParseStage(n int) (Stage, error) {
	s := Stage(n)
	if !s.IsValid() {
		return 0, fmt.Errorf("invalid stage %d: must be 1-8", n)
	}
	return s, nil
}
