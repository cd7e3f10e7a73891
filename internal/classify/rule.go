package classify

import (
	"context"
	"strings"

	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/taxonomy"
)

// RuleClassifier is the first tier: count keyword occurrences per practice
// area and accept only a unique maximum at or above the taxonomy's minimum
// hit threshold. Deterministic for a fixed taxonomy.
type RuleClassifier struct {
	tax *taxonomy.Taxonomy
}

func NewRuleClassifier(tax *taxonomy.Taxonomy) *RuleClassifier {
	return &RuleClassifier{tax: tax}
}

func (c *RuleClassifier) Name() string { return "rule-based" }

func (c *RuleClassifier) Classify(ctx context.Context, summary string) (Result, error) {
	scores := keywordScores(summary, c.tax)

	var bestArea domain.PracticeArea
	best, runnerUp := 0, 0
	for i, area := range c.tax.Areas {
		score := scores[i]
		if score > best {
			runnerUp = best
			best = score
			bestArea = area.Name
		} else if score > runnerUp {
			runnerUp = score
		}
	}

	if best < c.tax.RuleMinHits || best == runnerUp {
		return Result{}, ErrInconclusive
	}

	return Result{
		Label:      bestArea,
		Confidence: 1.0,
		Tier:       c.Name(),
	}, nil
}

// keywordScores counts keyword occurrences per area over the lowercased
// summary, indexed by taxonomy position. Occurrences, not presence:
// "damages ... damages" scores 2.
func keywordScores(summary string, tax *taxonomy.Taxonomy) map[int]int {
	lowered := strings.ToLower(summary)
	scores := make(map[int]int, len(tax.Areas))
	for i, area := range tax.Areas {
		total := 0
		for _, kw := range area.Keywords {
			if kw == "" {
				continue
			}
			total += strings.Count(lowered, kw)
		}
		if total > 0 {
			scores[i] = total
		}
	}
	return scores
}
