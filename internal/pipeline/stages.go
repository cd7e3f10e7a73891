package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/service"
)

// metadataRunner fills citation, case number, date, court and judges from
// the title and text, asking the LLM for whatever the regexes miss.
type metadataRunner struct {
	judgments service.JudgmentRepositoryInterface
	chat      ChatCompleter
	opts      Options
}

func (r *metadataRunner) Run(ctx context.Context, j *domain.Judgment) error {
	md := ParseMetadata(j.Title, j.TextMarkdown)

	if !md.Complete() && r.chat != nil {
		answer, err := r.chat.Complete(ctx, metadataSystemPrompt, headerLines(j.TextMarkdown, 50), r.opts.chatOptions()...)
		if err != nil {
			return fmt.Errorf("metadata fallback: %w", err)
		}
		md = md.merge(parseMetadataAnswer(answer))
	}

	if md.FullCitation != "" {
		j.FullCitation = md.FullCitation
	}
	if md.Court != "" {
		j.Court = md.Court
	}
	if md.Year != 0 {
		j.Year = md.Year
	}
	if md.CaseNumber != "" {
		j.CaseNumber = md.CaseNumber
	}
	if md.JudgmentDate != nil {
		j.JudgmentDate = md.JudgmentDate
	}
	if md.Judges != "" {
		j.Judges = md.Judges
	}

	j.State = domain.StateMetadataFixed
	return r.judgments.UpdateMetadata(ctx, j)
}

// chunkRunner splits the judgment text into overlapping windows and swaps
// them in atomically with the state advance.
type chunkRunner struct {
	tx      service.TxRunner
	uuidGen service.UUIDGenerator
	opts    Options
}

func (r *chunkRunner) Run(ctx context.Context, j *domain.Judgment) error {
	pieces := ChunkText(j.TextMarkdown, r.opts.ChunkSize, r.opts.Overlap)
	if len(pieces) == 0 {
		return fmt.Errorf("judgment %s has no text to chunk", j.ID)
	}

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, domain.Chunk{
			ID:         r.uuidGen.NewString(),
			JudgmentID: j.ID,
			ChunkIndex: i,
			Content:    piece,
			CreatedAt:  now,
		})
	}

	return r.tx.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Chunks().ReplaceChunks(ctx, j.ID, chunks); err != nil {
			return err
		}
		return repos.Judgments().SetState(ctx, j.ID, domain.StateChunked)
	})
}

// embedRunner embeds every chunk, then stores their mean as the
// judgment-level vector.
type embedRunner struct {
	judgments service.JudgmentRepositoryInterface
	chunks    service.ChunkRepositoryInterface
	embedder  EmbeddingsClient
}

func (r *embedRunner) Run(ctx context.Context, j *domain.Judgment) error {
	chunks, err := r.chunks.ListByJudgment(ctx, j.ID)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("judgment %s has no chunks to embed", j.ID)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := r.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}

	model := r.embedder.Model()
	for i, c := range chunks {
		if err := r.chunks.UpdateEmbedding(ctx, c.ID, embeddings[i], model); err != nil {
			return err
		}
	}

	return r.judgments.SetEmbedding(ctx, j.ID, averageEmbeddings(embeddings), model, domain.StateEmbedded)
}

// averageEmbeddings computes the component-wise mean of the chunk vectors.
func averageEmbeddings(embeddings [][]float32) []float32 {
	if len(embeddings) == 0 {
		return nil
	}
	avg := make([]float32, len(embeddings[0]))
	for _, e := range embeddings {
		for i, v := range e {
			avg[i] += v
		}
	}
	n := float32(len(embeddings))
	for i := range avg {
		avg[i] /= n
	}
	return avg
}

// shortSummaryRunner produces the law-report headnote.
type shortSummaryRunner struct {
	judgments service.JudgmentRepositoryInterface
	chat      ChatCompleter
	opts      Options
}

func (r *shortSummaryRunner) Run(ctx context.Context, j *domain.Judgment) error {
	answer, err := r.chat.Complete(ctx, "", fmt.Sprintf(shortSummaryPrompt, j.TextMarkdown), r.opts.chatOptions()...)
	if err != nil {
		return fmt.Errorf("short summary: %w", err)
	}

	summary := strings.TrimSpace(answer)
	summary = strings.ReplaceAll(summary, "#", "")
	summary = strings.ReplaceAll(summary, "*", "")
	if summary == "" {
		return fmt.Errorf("short summary: empty model answer")
	}

	return r.judgments.SetShortSummary(ctx, j.ID, summary, domain.StateShortSummarized)
}

// scoreRunner assigns the reportability score.
type scoreRunner struct {
	judgments service.JudgmentRepositoryInterface
	chat      ChatCompleter
	opts      Options
}

func (r *scoreRunner) Run(ctx context.Context, j *domain.Judgment) error {
	answer, err := r.chat.Complete(ctx, scoreSystemPrompt, fmt.Sprintf(scorePrompt, j.TextMarkdown), r.opts.chatOptions()...)
	if err != nil {
		return fmt.Errorf("reportability score: %w", err)
	}

	score, explanation, err := ParseReportability(answer)
	if err != nil {
		return fmt.Errorf("reportability score: %w", err)
	}

	return r.judgments.SetReportability(ctx, j.ID, score, explanation, domain.StateScored)
}

// longSummaryRunner writes the structured long summary for judgments that
// cleared the reportability gate. Judgments below the gate advance state
// with no output so the pipeline keeps moving.
type longSummaryRunner struct {
	judgments service.JudgmentRepositoryInterface
	chat      ChatCompleter
	opts      Options
}

func (r *longSummaryRunner) Run(ctx context.Context, j *domain.Judgment) error {
	if j.Reportability < r.opts.MinReportability {
		return r.judgments.SetState(ctx, j.ID, domain.StateLongSummarized)
	}

	answer, err := r.chat.Complete(ctx, "", fmt.Sprintf(longSummaryPrompt, j.TextMarkdown), r.opts.chatOptions()...)
	if err != nil {
		return fmt.Errorf("long summary: %w", err)
	}

	summary := strings.TrimSpace(answer)
	if summary == "" {
		return fmt.Errorf("long summary: empty model answer")
	}

	return r.judgments.SetLongSummary(ctx, j.ID, summary, domain.StateLongSummarized)
}

// classifyRunner assigns the practice area through the fallback chain. The
// chain always yields a label, so this runner only fails on storage errors.
type classifyRunner struct {
	judgments service.JudgmentRepositoryInterface
	chain     PracticeAreaClassifier
}

func (r *classifyRunner) Run(ctx context.Context, j *domain.Judgment) error {
	result := r.chain.Classify(ctx, j.ShortSummary)
	return r.judgments.SetPracticeArea(ctx, j.ID, result.Label, domain.StateClassified)
}
