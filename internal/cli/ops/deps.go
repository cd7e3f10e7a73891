// Package ops holds the operator commands for the zalr CLI: running
// pipeline stages against the database and inspecting or curating the
// catalogue. Commands connect to Postgres directly rather than going
// through the API server.
package ops

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/semantis/zalr-backend/internal/classify"
	"github.com/semantis/zalr-backend/internal/config"
	"github.com/semantis/zalr-backend/internal/database"
	"github.com/semantis/zalr-backend/internal/huggingface"
	"github.com/semantis/zalr-backend/internal/openai"
	"github.com/semantis/zalr-backend/internal/pipeline"
	"github.com/semantis/zalr-backend/internal/repository"
	"github.com/semantis/zalr-backend/internal/scraper"
	"github.com/semantis/zalr-backend/internal/service"
	"github.com/semantis/zalr-backend/internal/storage"
	"github.com/semantis/zalr-backend/internal/taxonomy"
	"github.com/semantis/zalr-backend/internal/telemetry"
	"github.com/semantis/zalr-backend/internal/voyage"
)

// addStageFlags registers the flags shared by run and run-all.
func addStageFlags(cmd *cobra.Command) {
	cmd.Flags().String("court", "", "Court code to select (e.g. ZACC, ZASCA)")
	cmd.Flags().Int("year", 0, "Year to select")
	cmd.Flags().Int("batch-size", pipeline.DefaultBatchSize, "Maximum judgments to process in one run")
	cmd.Flags().Int("max-retries", pipeline.DefaultMaxRetries, "Retry attempts for scrape and embed calls")
	cmd.Flags().String("model", "", "Chat model override for LLM stages")
	cmd.Flags().Int("max-tokens", 0, "Completion token cap for LLM stages")
	cmd.Flags().Int("min-reportability", pipeline.DefaultMinReportability, "Minimum score for a long summary")
	cmd.Flags().Int("chunk-size", 0, "Chunk window size in characters")
	cmd.Flags().Int("overlap", 0, "Chunk overlap in characters")
	cmd.Flags().Duration("timeout", pipeline.DefaultTimeout, "Per-judgment timeout")
	cmd.Flags().Duration("delay", 0, "Delay between scrape requests")
	cmd.Flags().String("case-url", "", "Scrape a single case page instead of a year listing")
	cmd.Flags().Bool("force", false, "Ignore the saved checkpoint and start from scratch")
}

func optionsFromFlags(cmd *cobra.Command) pipeline.Options {
	court, _ := cmd.Flags().GetString("court")
	year, _ := cmd.Flags().GetInt("year")
	batch, _ := cmd.Flags().GetInt("batch-size")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	model, _ := cmd.Flags().GetString("model")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	minReportability, _ := cmd.Flags().GetInt("min-reportability")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	overlap, _ := cmd.Flags().GetInt("overlap")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	delay, _ := cmd.Flags().GetDuration("delay")
	caseURL, _ := cmd.Flags().GetString("case-url")
	force, _ := cmd.Flags().GetBool("force")

	return pipeline.Options{
		Court:            court,
		Year:             year,
		BatchSize:        batch,
		MaxRetries:       maxRetries,
		Model:            model,
		MaxTokens:        maxTokens,
		MinReportability: minReportability,
		ChunkSize:        chunkSize,
		Overlap:          overlap,
		Timeout:          timeout,
		Delay:            delay,
		SingleCaseURL:    caseURL,
		Force:            force,
	}
}

// connect loads config, initializes telemetry and opens the pool. The
// caller must invoke the returned cleanup.
func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	shutdownTelemetry := func() {}
	if cfg.HasSentry() {
		shutdown, err := telemetry.Init(telemetry.Config{
			DSN:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
			Debug:       cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			shutdownTelemetry = shutdown
		}
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		shutdownTelemetry()
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cleanup := func() {
		pool.Close()
		shutdownTelemetry()
	}
	return cfg, pool, cleanup, nil
}

// buildDeps wires every pipeline dependency the configured credentials
// allow. Stages that need a client whose credentials are missing fail
// fast inside the orchestrator, so partial wiring is fine: a machine
// with only DATABASE_URL can still chunk and classify.
func buildDeps(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, delay time.Duration) (pipeline.Deps, error) {
	deps := pipeline.Deps{
		Judgments:   repository.NewJudgmentRepository(pool),
		Chunks:      repository.NewChunkRepository(pool),
		Checkpoints: repository.NewCheckpointRepository(pool),
		Tx:          repository.NewTxRunner(pool),
		UUIDGen:     &service.DefaultUUIDGenerator{},
	}

	var scrapeOpts []scraper.Option
	if delay > 0 {
		scrapeOpts = append(scrapeOpts, scraper.WithDelay(delay))
	}
	deps.Scraper = scraper.New(scrapeOpts...)

	if cfg.HasVoyage() {
		embedder, err := voyage.NewClient(voyage.Config{APIKey: cfg.VoyageAPIKey})
		if err != nil {
			return pipeline.Deps{}, fmt.Errorf("failed to create voyage client: %w", err)
		}
		deps.Embedder = embedder
	} else if cfg.HasOpenAI() {
		// Fallback embedder when no Voyage key is configured.
		deps.Embedder = openai.NewClient(cfg.OpenAIAPIKey)
	}

	if cfg.HasOpenAI() {
		deps.Chat = openai.NewChatClient(cfg.OpenAIAPIKey, "", 0)
	}

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return pipeline.Deps{}, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	var zeroShot classify.ZeroShotAPI
	if cfg.HasHuggingFace() {
		hf, err := huggingface.NewClient(huggingface.Config{APIToken: cfg.HFAPIToken})
		if err != nil {
			return pipeline.Deps{}, fmt.Errorf("failed to create huggingface client: %w", err)
		}
		zeroShot = hf
	}
	deps.Chain = classify.NewChain(tax, zeroShot, deps.Chat)

	if cfg.HasS3() {
		archive, err := storage.NewArchive(ctx, storage.ArchiveConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return pipeline.Deps{}, fmt.Errorf("failed to create archive client: %w", err)
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return pipeline.Deps{}, fmt.Errorf("failed to ensure archive bucket: %w", err)
		}
		deps.Archive = archive
	}

	return deps, nil
}
