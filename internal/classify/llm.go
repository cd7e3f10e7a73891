package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/semantis/zalr-backend/internal/openai"
	"github.com/semantis/zalr-backend/internal/taxonomy"
)

const llmClassifySystemPrompt = "You are an AI assistant specialized in South African legal case classification. " +
	"Your goal is to pick exactly ONE practice area from the provided list of candidate labels, " +
	"based on which area best fits the text. " +
	"If you must guess, do so with the best logical reasoning. " +
	"Respond ONLY with the chosen label, nothing else."

// ChatCompleter is the seam over the OpenAI chat client.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string, opts ...openai.ChatOption) (string, error)
}

// LLMClassifier is the third tier: ask an LLM to pick one label from the
// closed taxonomy set. The answer is accepted only when it resolves to a
// valid taxonomy label.
type LLMClassifier struct {
	chat ChatCompleter
	tax  *taxonomy.Taxonomy
}

func NewLLMClassifier(chat ChatCompleter, tax *taxonomy.Taxonomy) *LLMClassifier {
	return &LLMClassifier{chat: chat, tax: tax}
}

func (c *LLMClassifier) Name() string { return "llm" }

func (c *LLMClassifier) Classify(ctx context.Context, summary string) (Result, error) {
	user := fmt.Sprintf("Text to classify:\n'''%s'''\n\nCandidate labels: %s\nWhich single label best describes this text?",
		summary, strings.Join(c.tax.LabelStrings(), ", "))

	answer, err := c.chat.Complete(ctx, llmClassifySystemPrompt, user, openai.WithMaxTokens(128))
	if err != nil {
		return Result{}, fmt.Errorf("llm classification failed: %w", err)
	}

	label, ok := c.tax.Match(answer)
	if !ok {
		return Result{}, ErrInconclusive
	}

	return Result{
		Label:      label,
		Confidence: 1.0,
		Tier:       c.Name(),
	}, nil
}
