// Package classify assigns a practice area to a judgment summary through a
// five-tier fallback chain: rule-based keywords, zero-shot classification,
// LLM closed-choice, loose keyword matching, and finally the Not Classified
// sentinel. The chain always produces a label; tier failures are logged and
// descended past, never surfaced to the caller.
package classify

import (
	"context"
	"errors"

	"github.com/semantis/zalr-backend/internal/domain"
)

// ErrInconclusive marks a tier that ran cleanly but could not commit to a
// label (no keyword hits, confidence below threshold, answer outside the
// label set). It is distinct from a hard error: the loose keyword tier only
// runs after a hard error in the zero-shot or LLM tiers.
var ErrInconclusive = errors.New("classification inconclusive")

// Result is a single tier's answer.
type Result struct {
	Label      domain.PracticeArea
	Confidence float64
	Tier       string
}

// Classifier is one tier of the fallback chain.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, summary string) (Result, error)
}
