package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/telemetry"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// SearchRepositoryInterface implements vector lookups over judgments.
type SearchRepositoryInterface interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, filter JudgmentFilter, limit int) ([]*SearchResult, error)
}

// SearchLogRepositoryInterface stores search logs for evaluation.
type SearchLogRepositoryInterface interface {
	CreateSearchLog(ctx context.Context, entry SearchLogEntry) (string, error)
}

// SearchResult is a single semantic search hit.
type SearchResult struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Court        string  `json:"court"`
	Year         int     `json:"year"`
	PracticeArea string  `json:"practice_area"`
	ShortSummary string  `json:"short_summary"`
	Score        float64 `json:"score"`
}

// SearchLogEntry captures one search request for later evaluation.
type SearchLogEntry struct {
	Query       string
	ResultCount int
	DurationMs  int
}

// SearchService embeds the query text and runs a vector similarity search
// over judgment embeddings.
type SearchService struct {
	client     EmbeddingClient
	searchRepo SearchRepositoryInterface
	logRepo    SearchLogRepositoryInterface
}

func NewSearchService(client EmbeddingClient, searchRepo SearchRepositoryInterface, logRepo SearchLogRepositoryInterface) *SearchService {
	return &SearchService{
		client:     client,
		searchRepo: searchRepo,
		logRepo:    logRepo,
	}
}

type SearchInput struct {
	Query  string
	Filter JudgmentFilter
	Limit  int
}

func (s *SearchService) Search(ctx context.Context, input SearchInput) ([]*SearchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "search query is required")
	}

	start := time.Now()

	embedding, err := s.client.GenerateEmbedding(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.searchRepo.SearchByEmbedding(ctx, embedding, input.Filter, input.Limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if s.logRepo != nil {
		entry := SearchLogEntry{
			Query:       query,
			ResultCount: len(results),
			DurationMs:  int(time.Since(start).Milliseconds()),
		}
		if _, err := s.logRepo.CreateSearchLog(ctx, entry); err != nil {
			telemetry.CaptureError(ctx, err)
		}
	}

	span.SetStatus(sentry.SpanStatusOK)
	return results, nil
}
