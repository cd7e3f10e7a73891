package classify

import (
	"context"

	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/taxonomy"
)

// KeywordClassifier is the loose fourth tier: any keyword hit is enough,
// and ties resolve to the earliest area in taxonomy order. It only runs
// when the zero-shot or LLM tiers failed with a hard error, so a weak
// answer beats none. Deterministic for a fixed taxonomy.
type KeywordClassifier struct {
	tax *taxonomy.Taxonomy
}

func NewKeywordClassifier(tax *taxonomy.Taxonomy) *KeywordClassifier {
	return &KeywordClassifier{tax: tax}
}

func (c *KeywordClassifier) Name() string { return "keyword-match" }

func (c *KeywordClassifier) Classify(ctx context.Context, summary string) (Result, error) {
	scores := keywordScores(summary, c.tax)

	var bestArea domain.PracticeArea
	best := 0
	for i, area := range c.tax.Areas {
		if scores[i] > best {
			best = scores[i]
			bestArea = area.Name
		}
	}

	if best == 0 {
		return Result{}, ErrInconclusive
	}

	return Result{
		Label:      bestArea,
		Confidence: 0.5,
		Tier:       c.Name(),
	}, nil
}
