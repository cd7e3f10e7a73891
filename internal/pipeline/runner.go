package pipeline

import (
	"context"
	"time"

	"github.com/semantis/zalr-backend/internal/classify"
	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/openai"
	"github.com/semantis/zalr-backend/internal/service"
)

// Runner processes a single judgment for one stage. Implementations write
// their stage output and advance the lifecycle state in the same call.
type Runner interface {
	Run(ctx context.Context, j *domain.Judgment) error
}

// ChatCompleter is the slice of the chat client the LLM stages need.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string, opts ...openai.ChatOption) (string, error)
}

// EmbeddingsClient generates embeddings for a batch of texts, preserving
// order.
type EmbeddingsClient interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// CaseScraper is the slice of the SAFLII client the scrape stage needs.
type CaseScraper interface {
	Citations(ctx context.Context, url, targetCourt string) ([]string, error)
	FetchCase(ctx context.Context, url string) (string, error)
	ListingURL(court string, year int) string
	CaseURL(citation, court string, year int) string
	Delay() time.Duration
}

// PracticeAreaClassifier runs the classification fallback chain.
type PracticeAreaClassifier interface {
	Classify(ctx context.Context, summary string) classify.Result
}

// ArchiveStore archives raw scraped markdown, keyed by judgment ID.
type ArchiveStore interface {
	PutDocument(ctx context.Context, judgmentID, text string) error
}

// Deps carries everything the orchestrator and stage runners depend on.
// Scraper, Embedder, Chat, Chain and Archive may be nil; stages that need
// a missing dependency fail fast before selecting work.
type Deps struct {
	Judgments   service.JudgmentRepositoryInterface
	Chunks      service.ChunkRepositoryInterface
	Checkpoints service.CheckpointRepositoryInterface
	Tx          service.TxRunner
	Scraper     CaseScraper
	Embedder    EmbeddingsClient
	Chat        ChatCompleter
	Chain       PracticeAreaClassifier
	Archive     ArchiveStore
	UUIDGen     service.UUIDGenerator
}

// Options tunes a stage run. Zero values fall back to defaults.
type Options struct {
	Court            string
	Year             int
	BatchSize        int
	Timeout          time.Duration
	MaxRetries       int
	ChunkSize        int
	Overlap          int
	Model            string
	MaxTokens        int
	MinReportability int
	Force            bool
	SingleCaseURL    string
	Delay            time.Duration
}

const (
	DefaultBatchSize        = 20
	DefaultMaxRetries       = 3
	DefaultTimeout          = 2 * time.Minute
	DefaultMinReportability = 75
)

func (o *Options) normalize() {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Overlap < 0 || o.Overlap >= o.ChunkSize {
		o.Overlap = DefaultChunkOverlap
	}
	if o.MinReportability <= 0 {
		o.MinReportability = DefaultMinReportability
	}
}

// chatOptions translates run options into per-request chat options.
func (o *Options) chatOptions() []openai.ChatOption {
	var opts []openai.ChatOption
	if o.Model != "" {
		opts = append(opts, openai.WithModel(o.Model))
	}
	if o.MaxTokens > 0 {
		opts = append(opts, openai.WithMaxTokens(o.MaxTokens))
	}
	return opts
}
