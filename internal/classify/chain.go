package classify

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/taxonomy"
)

// Chain runs the tiers in order until one commits to a label. Availability
// over consistency: Classify never returns an error and never returns an
// empty label.
type Chain struct {
	rule     Classifier
	zeroShot Classifier
	llm      Classifier
	keyword  Classifier
}

// NewChain wires the standard five-tier chain. zeroShotAPI and chat may be
// nil when the corresponding credentials are not configured; the chain
// treats a missing tier as a failed one, so the loose keyword tier still
// gets its turn.
func NewChain(tax *taxonomy.Taxonomy, zeroShotAPI ZeroShotAPI, chat ChatCompleter) *Chain {
	c := &Chain{
		rule:    NewRuleClassifier(tax),
		keyword: NewKeywordClassifier(tax),
	}
	if zeroShotAPI != nil {
		c.zeroShot = NewZeroShotClassifier(zeroShotAPI, tax)
	}
	if chat != nil {
		c.llm = NewLLMClassifier(chat, tax)
	}
	return c
}

// NewChainWithTiers builds a chain from explicit tiers, used by tests.
func NewChainWithTiers(rule, zeroShot, llm, keyword Classifier) *Chain {
	return &Chain{rule: rule, zeroShot: zeroShot, llm: llm, keyword: keyword}
}

// Classify returns exactly one label for the summary. Tier errors are
// logged and swallowed; an inconclusive tier descends silently.
func (c *Chain) Classify(ctx context.Context, summary string) Result {
	if strings.TrimSpace(summary) == "" {
		return notClassified()
	}

	if res, err := c.rule.Classify(ctx, summary); err == nil {
		return res
	}

	failed := false

	if res, ok := c.attempt(ctx, c.zeroShot, summary, &failed); ok {
		return res
	}
	if res, ok := c.attempt(ctx, c.llm, summary, &failed); ok {
		return res
	}

	// The loose keyword tier is a recovery path for upstream failures,
	// not a second opinion on a confident "no".
	if failed {
		if res, err := c.keyword.Classify(ctx, summary); err == nil {
			return res
		}
	}

	return notClassified()
}

// attempt runs one optional tier. A nil tier counts as a failure, as does
// any error other than ErrInconclusive.
func (c *Chain) attempt(ctx context.Context, tier Classifier, summary string, failed *bool) (Result, bool) {
	if tier == nil {
		*failed = true
		return Result{}, false
	}

	res, err := tier.Classify(ctx, summary)
	if err == nil {
		return res, true
	}
	if !errors.Is(err, ErrInconclusive) {
		log.Printf("classification tier %s failed: %v", tier.Name(), err)
		*failed = true
	}
	return Result{}, false
}

func notClassified() Result {
	return Result{
		Label: domain.PracticeAreaNotClassified,
		Tier:  "default",
	}
}
