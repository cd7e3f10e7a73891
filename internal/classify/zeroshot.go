package classify

import (
	"context"
	"fmt"

	"github.com/semantis/zalr-backend/internal/huggingface"
	"github.com/semantis/zalr-backend/internal/taxonomy"
)

// relaxed acceptance: a score under the configured floor still passes when
// it clearly dominates the runner-up.
const (
	zeroShotRelaxedFloor  = 0.2
	zeroShotDominanceRate = 1.5
)

// ZeroShotAPI is the seam over the Hugging Face inference client.
type ZeroShotAPI interface {
	ZeroShotClassify(ctx context.Context, text string, labels []string) ([]huggingface.Classification, error)
}

// ZeroShotClassifier is the second tier: rank taxonomy labels with an NLI
// model and accept the top label when its confidence clears the threshold.
type ZeroShotClassifier struct {
	api ZeroShotAPI
	tax *taxonomy.Taxonomy
}

func NewZeroShotClassifier(api ZeroShotAPI, tax *taxonomy.Taxonomy) *ZeroShotClassifier {
	return &ZeroShotClassifier{api: api, tax: tax}
}

func (c *ZeroShotClassifier) Name() string { return "zero-shot" }

func (c *ZeroShotClassifier) Classify(ctx context.Context, summary string) (Result, error) {
	ranked, err := c.api.ZeroShotClassify(ctx, summary, c.tax.LabelStrings())
	if err != nil {
		return Result{}, fmt.Errorf("zero-shot classification failed: %w", err)
	}
	if len(ranked) == 0 {
		return Result{}, ErrInconclusive
	}

	best := ranked[0]
	label, ok := c.tax.Match(best.Label)
	if !ok {
		return Result{}, ErrInconclusive
	}

	second := 0.0
	if len(ranked) > 1 {
		second = ranked[1].Score
	}

	accepted := best.Score > c.tax.ZeroShotMinConfidence ||
		(best.Score > zeroShotRelaxedFloor && best.Score > second*zeroShotDominanceRate)
	if !accepted {
		return Result{}, ErrInconclusive
	}

	return Result{
		Label:      label,
		Confidence: best.Score,
		Tier:       c.Name(),
	}, nil
}
