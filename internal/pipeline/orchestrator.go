package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/telemetry"
)

// Summary reports what one stage run did.
type Summary struct {
	Stage     Stage
	Selected  int
	Succeeded int
	Failed    int
	Skipped   int
}

func (s *Summary) String() string {
	return fmt.Sprintf("%s: selected=%d succeeded=%d failed=%d skipped=%d",
		s.Stage, s.Selected, s.Succeeded, s.Failed, s.Skipped)
}

// Orchestrator drives judgments through the pipeline stage by stage. Each
// item is processed independently: one failure never aborts the batch, and
// a checkpoint records completed items so an interrupted run resumes where
// it stopped.
type Orchestrator struct {
	deps Deps
}

func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// RunStage runs one stage over all eligible judgments for the court/year
// selection in opts. Configuration problems (unknown stage, missing
// dependency) surface as errors before any work starts; per-item failures
// are counted in the summary.
func (o *Orchestrator) RunStage(ctx context.Context, stage Stage, opts Options) (*Summary, error) {
	if !stage.IsValid() {
		return nil, fmt.Errorf("invalid stage %d", int(stage))
	}
	opts.normalize()

	ctx, span := telemetry.StartSpan(ctx, "Pipeline.RunStage", telemetry.SpanAttributes{
		Court: opts.Court,
		Stage: stage.String(),
	})
	defer span.End()

	if stage == StageScrape {
		return o.runScrape(ctx, opts)
	}

	runner, err := o.runnerFor(stage, opts)
	if err != nil {
		return nil, err
	}

	required := stage.RequiredState()

	cp, err := o.loadCheckpoint(ctx, stage, opts)
	if err != nil {
		return nil, err
	}

	items, err := o.deps.Judgments.ListByState(ctx, required, opts.Court, opts.Year)
	if err != nil {
		return nil, err
	}
	if len(items) > opts.BatchSize {
		items = items[:opts.BatchSize]
	}

	summary := &Summary{Stage: stage, Selected: len(items)}
	log.Printf("pipeline: %s: %d judgments eligible", stage, len(items))

	for _, j := range items {
		if cp.Contains(j.ID) {
			summary.Skipped++
			continue
		}
		// A stage only ever touches judgments in its exact prior state.
		if j.State != required {
			log.Printf("pipeline: %s: skipping judgment %s in state %q (requires %q)", stage, j.ID, j.State, required)
			summary.Skipped++
			continue
		}

		if err := o.runItem(ctx, stage, runner, j, opts); err != nil {
			log.Printf("pipeline: %s: judgment %s failed: %v", stage, j.ID, err)
			telemetry.CaptureError(ctx, err)
			summary.Failed++
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			continue
		}

		cp.Add(j.ID)
		if err := o.deps.Checkpoints.Save(ctx, cp); err != nil {
			log.Printf("pipeline: %s: saving checkpoint: %v", stage, err)
		}
		summary.Succeeded++

		if opts.Delay > 0 {
			if err := sleepCtx(ctx, opts.Delay); err != nil {
				return summary, err
			}
		}
	}

	if summary.Failed == 0 {
		if err := o.deps.Checkpoints.Clear(ctx, int(stage), opts.Court, opts.Year); err != nil {
			log.Printf("pipeline: %s: clearing checkpoint: %v", stage, err)
		}
	}

	log.Printf("pipeline: %s", summary)
	return summary, nil
}

// loadCheckpoint resumes from the saved checkpoint, or starts a fresh one
// when none exists or the run is forced. A forced run reprocesses items the
// previous run already completed.
func (o *Orchestrator) loadCheckpoint(ctx context.Context, stage Stage, opts Options) (*domain.Checkpoint, error) {
	if !opts.Force {
		cp, err := o.deps.Checkpoints.Get(ctx, int(stage), opts.Court, opts.Year)
		if err == nil {
			return cp, nil
		}
		if !errors.Is(err, domain.ErrCheckpointNotFound) {
			return nil, err
		}
	}
	return domain.NewCheckpoint(int(stage), opts.Court, opts.Year), nil
}

// RunAll runs stages 1 through 8 in order for a court/year selection. A
// stage's per-item failures do not stop the following stages; only fatal
// configuration or storage errors abort the run.
func (o *Orchestrator) RunAll(ctx context.Context, opts Options) ([]*Summary, error) {
	summaries := make([]*Summary, 0, int(StageClassify))
	for stage := StageScrape; stage <= StageClassify; stage++ {
		summary, err := o.RunStage(ctx, stage, opts)
		if summary != nil {
			summaries = append(summaries, summary)
		}
		if err != nil {
			return summaries, fmt.Errorf("stage %s: %w", stage, err)
		}
	}
	return summaries, nil
}

// runItem runs one judgment through a stage, retrying transient failures
// for the stages that talk to flaky upstreams mid-item.
func (o *Orchestrator) runItem(ctx context.Context, stage Stage, runner Runner, j *domain.Judgment, opts Options) error {
	attempts := 1
	if stage.Retryable() {
		attempts = opts.MaxRetries
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		runCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		err = runner.Run(runCtx, j)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if attempt < attempts {
			log.Printf("pipeline: %s: judgment %s attempt %d/%d failed: %v", stage, j.ID, attempt, attempts, err)
			if sleepErr := sleepCtx(ctx, time.Duration(attempt)*time.Second); sleepErr != nil {
				return err
			}
		}
	}
	return err
}

func (o *Orchestrator) runnerFor(stage Stage, opts Options) (Runner, error) {
	switch stage {
	case StageMetadata:
		return &metadataRunner{judgments: o.deps.Judgments, chat: o.deps.Chat, opts: opts}, nil
	case StageChunk:
		if o.deps.Tx == nil || o.deps.UUIDGen == nil {
			return nil, fmt.Errorf("chunk stage: transaction runner not configured")
		}
		return &chunkRunner{tx: o.deps.Tx, uuidGen: o.deps.UUIDGen, opts: opts}, nil
	case StageEmbed:
		if o.deps.Embedder == nil {
			return nil, fmt.Errorf("embed stage: embedding client not configured")
		}
		return &embedRunner{judgments: o.deps.Judgments, chunks: o.deps.Chunks, embedder: o.deps.Embedder}, nil
	case StageShortSummary:
		if o.deps.Chat == nil {
			return nil, fmt.Errorf("short summary stage: chat client not configured")
		}
		return &shortSummaryRunner{judgments: o.deps.Judgments, chat: o.deps.Chat, opts: opts}, nil
	case StageScore:
		if o.deps.Chat == nil {
			return nil, fmt.Errorf("score stage: chat client not configured")
		}
		return &scoreRunner{judgments: o.deps.Judgments, chat: o.deps.Chat, opts: opts}, nil
	case StageLongSummary:
		if o.deps.Chat == nil {
			return nil, fmt.Errorf("long summary stage: chat client not configured")
		}
		return &longSummaryRunner{judgments: o.deps.Judgments, chat: o.deps.Chat, opts: opts}, nil
	case StageClassify:
		if o.deps.Chain == nil {
			return nil, fmt.Errorf("classify stage: classification chain not configured")
		}
		return &classifyRunner{judgments: o.deps.Judgments, chain: o.deps.Chain}, nil
	}
	return nil, fmt.Errorf("no runner for stage %d", int(stage))
}

// runScrape creates judgments rather than transforming them, so it has its
// own loop: list citations, skip anything already stored, fetch and create.
// The checkpoint is keyed by case URL because IDs do not exist yet.
func (o *Orchestrator) runScrape(ctx context.Context, opts Options) (*Summary, error) {
	if o.deps.Scraper == nil {
		return nil, fmt.Errorf("scrape stage: scraper not configured")
	}
	if o.deps.UUIDGen == nil {
		return nil, fmt.Errorf("scrape stage: uuid generator not configured")
	}
	if opts.Year == 0 && opts.SingleCaseURL == "" {
		return nil, fmt.Errorf("scrape stage: year is required")
	}

	listURL := opts.SingleCaseURL
	if listURL == "" {
		listURL = o.deps.Scraper.ListingURL(opts.Court, opts.Year)
	}

	citations, err := o.deps.Scraper.Citations(ctx, listURL, opts.Court)
	if err != nil {
		return nil, fmt.Errorf("listing citations: %w", err)
	}

	cp, err := o.loadCheckpoint(ctx, StageScrape, opts)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Stage: StageScrape, Selected: len(citations)}
	log.Printf("pipeline: scrape: %d citations found for %s %d", len(citations), opts.Court, opts.Year)

	for _, citation := range citations {
		url := opts.SingleCaseURL
		if url == "" {
			url = o.deps.Scraper.CaseURL(citation, opts.Court, opts.Year)
		}
		if url == "" {
			log.Printf("pipeline: scrape: no case URL for citation %q", citation)
			summary.Skipped++
			continue
		}

		if cp.Contains(url) {
			summary.Skipped++
			continue
		}

		if _, err := o.deps.Judgments.GetBySafliiURL(ctx, url); err == nil {
			summary.Skipped++
			cp.Add(url)
			continue
		} else if !errors.Is(err, domain.ErrJudgmentNotFound) {
			return summary, err
		}

		if err := o.scrapeCase(ctx, citation, url, opts); err != nil {
			log.Printf("pipeline: scrape: %q failed: %v", citation, err)
			telemetry.CaptureError(ctx, err)
			summary.Failed++
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			continue
		}

		cp.Add(url)
		if err := o.deps.Checkpoints.Save(ctx, cp); err != nil {
			log.Printf("pipeline: scrape: saving checkpoint: %v", err)
		}
		summary.Succeeded++

		if delay := o.deps.Scraper.Delay(); delay > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				return summary, err
			}
		}
	}

	if summary.Failed == 0 {
		if err := o.deps.Checkpoints.Clear(ctx, int(StageScrape), opts.Court, opts.Year); err != nil {
			log.Printf("pipeline: scrape: clearing checkpoint: %v", err)
		}
	}

	log.Printf("pipeline: %s", summary)
	return summary, nil
}

func (o *Orchestrator) scrapeCase(ctx context.Context, citation, url string, opts Options) error {
	var lastErr error
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		fetchCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		text, err := o.deps.Scraper.FetchCase(fetchCtx, url)
		cancel()
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return lastErr
			}
			if attempt < opts.MaxRetries {
				if sleepErr := sleepCtx(ctx, time.Duration(attempt)*time.Second); sleepErr != nil {
					return lastErr
				}
			}
			continue
		}
		if text == "" {
			return fmt.Errorf("empty judgment text for %s", url)
		}

		court := opts.Court
		if court == "" {
			court = ExtractCourtFromCitation(citation)
		}

		j := domain.NewJudgment(o.deps.UUIDGen.NewString(), citation, court, opts.Year, text, url, time.Now().UTC())
		if err := o.deps.Judgments.Create(ctx, j); err != nil {
			if errors.Is(err, domain.ErrJudgmentAlreadyExists) {
				return nil
			}
			return err
		}

		if o.deps.Archive != nil {
			if err := o.deps.Archive.PutDocument(ctx, j.ID, text); err != nil {
				log.Printf("pipeline: scrape: archiving %s: %v", j.ID, err)
			}
		}
		return nil
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
