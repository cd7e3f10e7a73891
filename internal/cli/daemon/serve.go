package daemon

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/semantis/zalr-backend/internal/api/handlers"
	"github.com/semantis/zalr-backend/internal/classify"
	"github.com/semantis/zalr-backend/internal/config"
	"github.com/semantis/zalr-backend/internal/database"
	"github.com/semantis/zalr-backend/internal/huggingface"
	"github.com/semantis/zalr-backend/internal/jobs"
	"github.com/semantis/zalr-backend/internal/openai"
	"github.com/semantis/zalr-backend/internal/repository"
	"github.com/semantis/zalr-backend/internal/server"
	"github.com/semantis/zalr-backend/internal/service"
	"github.com/semantis/zalr-backend/internal/taxonomy"
	"github.com/semantis/zalr-backend/internal/telemetry"
	"github.com/semantis/zalr-backend/internal/voyage"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the judgment API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-worker", false, "Do not start the background classify worker")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.HasSentry() {
		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if cfg.SentryEnvironment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	judgmentRepo := repository.NewJudgmentRepository(pool)
	searchRepo := repository.NewSearchRepository(pool)
	searchLogRepo := repository.NewSearchLogRepository(pool)

	judgmentSvc := service.NewJudgmentService(judgmentRepo)

	var searchHandler *handlers.SearchHandler
	switch {
	case cfg.HasVoyage():
		embedder, err := voyage.NewClient(voyage.Config{APIKey: cfg.VoyageAPIKey})
		if err != nil {
			return fmt.Errorf("failed to create voyage client: %w", err)
		}
		searchSvc := service.NewSearchService(embedder, searchRepo, searchLogRepo)
		searchHandler = handlers.NewSearchHandler(searchSvc)
	case cfg.HasOpenAI():
		// Queries must be embedded with the same family the judgments were;
		// this fallback matches the pipeline's OpenAI fallback embedder.
		searchSvc := service.NewSearchService(openai.NewClient(cfg.OpenAIAPIKey), searchRepo, searchLogRepo)
		searchHandler = handlers.NewSearchHandler(searchSvc)
	default:
		log.Println("no embedding credentials set: semantic search disabled")
		searchHandler = handlers.NewSearchHandler(&noOpSearchService{})
	}

	var classifyWorker *jobs.Worker
	noWorker, _ := cmd.Flags().GetBool("no-worker")
	if !noWorker {
		chain, err := buildChain(cfg)
		if err != nil {
			return err
		}
		processor := jobs.NewClassifyWorker(judgmentRepo, chain, jobs.DefaultBatchSize)
		classifyWorker = jobs.NewWorker(processor, cfg.WorkerPollInterval)
		go classifyWorker.Start(ctx)
		log.Println("classify worker started")
	}

	routerCfg := server.RouterConfig{
		ServiceRoleKey:      cfg.ServiceRoleKey,
		JudgmentHandler:     handlers.NewJudgmentHandler(judgmentSvc),
		SearchHandler:       searchHandler,
		PracticeAreaHandler: handlers.NewPracticeAreaHandler(),
		AdminHandler:        handlers.NewAdminHandler(judgmentSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if classifyWorker != nil {
		classifyWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// buildChain assembles the classification fallback chain from whatever
// credentials are configured. The rule and keyword tiers only need the
// taxonomy, so the chain always works; missing credentials just skip the
// zero-shot and LLM tiers.
func buildChain(cfg *config.Config) (*classify.Chain, error) {
	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}

	var zeroShot classify.ZeroShotAPI
	if cfg.HasHuggingFace() {
		hf, err := huggingface.NewClient(huggingface.Config{APIToken: cfg.HFAPIToken})
		if err != nil {
			return nil, fmt.Errorf("failed to create huggingface client: %w", err)
		}
		zeroShot = hf
	}

	var chat classify.ChatCompleter
	if cfg.HasOpenAI() {
		chat = openai.NewChatClient(cfg.OpenAIAPIKey, "", 0)
	}

	return classify.NewChain(tax, zeroShot, chat), nil
}

type noOpSearchService struct{}

func (s *noOpSearchService) Search(ctx context.Context, input service.SearchInput) ([]*service.SearchResult, error) {
	return nil, fmt.Errorf("search not configured: embedding provider required")
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs a database/sql connection
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
