package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/semantis/zalr-backend/internal/classify"
	"github.com/semantis/zalr-backend/internal/domain"
)

const (
	// DefaultBatchSize caps how many judgments one poll cycle classifies.
	DefaultBatchSize = 10
)

// JudgmentSource is the slice of the judgment repository the classify
// worker needs.
type JudgmentSource interface {
	ListByState(ctx context.Context, state domain.LifecycleState, court string, year int) ([]*domain.Judgment, error)
	SetPracticeArea(ctx context.Context, id string, area domain.PracticeArea, state domain.LifecycleState) error
}

// PracticeAreaClassifier runs the practice area fallback chain.
type PracticeAreaClassifier interface {
	Classify(ctx context.Context, summary string) classify.Result
}

// ClassifyWorker assigns practice areas to judgments that finished the long
// summary stage. It runs inside the serve daemon so the catalogue stays
// classified without a manual pipeline run.
type ClassifyWorker struct {
	judgments JudgmentSource
	chain     PracticeAreaClassifier
	batchSize int
}

// NewClassifyWorker creates a new ClassifyWorker instance
func NewClassifyWorker(judgments JudgmentSource, chain PracticeAreaClassifier, batchSize int) *ClassifyWorker {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ClassifyWorker{
		judgments: judgments,
		chain:     chain,
		batchSize: batchSize,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *ClassifyWorker) ProcessJobs(ctx context.Context) error {
	pending, err := w.judgments.ListByState(ctx, domain.StateLongSummarized, "", 0)
	if err != nil {
		return fmt.Errorf("failed to fetch unclassified judgments: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}
	if len(pending) > w.batchSize {
		pending = pending[:w.batchSize]
	}

	log.Printf("Classifying %d judgments", len(pending))

	for _, j := range pending {
		result := w.chain.Classify(ctx, j.ShortSummary)
		if err := w.judgments.SetPracticeArea(ctx, j.ID, result.Label, domain.StateClassified); err != nil {
			log.Printf("Error classifying judgment %s: %v", j.ID, err)
			continue
		}
		log.Printf("Judgment %s classified as %s (%s tier)", j.ID, result.Label, result.Tier)
	}

	return nil
}
