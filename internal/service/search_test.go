package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/semantis/zalr-backend/internal/domain"
)

type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) SearchByEmbedding(ctx context.Context, embedding []float32, filter JudgmentFilter, limit int) ([]*SearchResult, error) {
	args := m.Called(ctx, embedding, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*SearchResult), args.Error(1)
}

type MockSearchLogRepository struct {
	mock.Mock
}

func (m *MockSearchLogRepository) CreateSearchLog(ctx context.Context, entry SearchLogEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

func TestSearchService_Search(t *testing.T) {
	client := new(MockEmbeddingClient)
	searchRepo := new(MockSearchRepository)
	logRepo := new(MockSearchLogRepository)
	svc := NewSearchService(client, searchRepo, logRepo)

	embedding := []float32{0.1, 0.2, 0.3}
	expected := []*SearchResult{
		{ID: "j-1", Title: "Occupiers v City", Score: 0.92},
		{ID: "j-2", Title: "Grobler v Phillips", Score: 0.81},
	}

	client.On("GenerateEmbedding", mock.Anything, "eviction of unlawful occupiers").Return(embedding, nil)
	searchRepo.On("SearchByEmbedding", mock.Anything, embedding, JudgmentFilter{}, 10).Return(expected, nil)
	logRepo.On("CreateSearchLog", mock.Anything, mock.MatchedBy(func(e SearchLogEntry) bool {
		return e.Query == "eviction of unlawful occupiers" && e.ResultCount == 2
	})).Return("log-1", nil)

	results, err := svc.Search(context.Background(), SearchInput{
		Query: "eviction of unlawful occupiers",
		Limit: 10,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "j-1", results[0].ID)
	client.AssertExpectations(t)
	searchRepo.AssertExpectations(t)
	logRepo.AssertExpectations(t)
}

func TestSearchService_Search_EmptyQuery(t *testing.T) {
	client := new(MockEmbeddingClient)
	searchRepo := new(MockSearchRepository)
	svc := NewSearchService(client, searchRepo, nil)

	_, err := svc.Search(context.Background(), SearchInput{Query: "   "})

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
	client.AssertNotCalled(t, "GenerateEmbedding", mock.Anything, mock.Anything)
}

func TestSearchService_Search_EmbeddingFails(t *testing.T) {
	client := new(MockEmbeddingClient)
	searchRepo := new(MockSearchRepository)
	svc := NewSearchService(client, searchRepo, nil)

	client.On("GenerateEmbedding", mock.Anything, "tax appeal").Return(nil, errors.New("voyage unavailable"))

	_, err := svc.Search(context.Background(), SearchInput{Query: "tax appeal"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed query")
	searchRepo.AssertNotCalled(t, "SearchByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchService_Search_LogFailureDoesNotFailSearch(t *testing.T) {
	client := new(MockEmbeddingClient)
	searchRepo := new(MockSearchRepository)
	logRepo := new(MockSearchLogRepository)
	svc := NewSearchService(client, searchRepo, logRepo)

	embedding := []float32{0.5}
	client.On("GenerateEmbedding", mock.Anything, "delict").Return(embedding, nil)
	searchRepo.On("SearchByEmbedding", mock.Anything, embedding, JudgmentFilter{}, 0).Return([]*SearchResult{}, nil)
	logRepo.On("CreateSearchLog", mock.Anything, mock.Anything).Return("", errors.New("insert failed"))

	results, err := svc.Search(context.Background(), SearchInput{Query: "delict"})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchService_Search_PassesFilter(t *testing.T) {
	client := new(MockEmbeddingClient)
	searchRepo := new(MockSearchRepository)
	svc := NewSearchService(client, searchRepo, nil)

	embedding := []float32{0.5}
	filter := JudgmentFilter{PracticeArea: "Labour Law", Court: "ZALC", Year: 2023}

	client.On("GenerateEmbedding", mock.Anything, "unfair dismissal").Return(embedding, nil)
	searchRepo.On("SearchByEmbedding", mock.Anything, embedding, filter, 5).Return([]*SearchResult{}, nil)

	_, err := svc.Search(context.Background(), SearchInput{
		Query:  "unfair dismissal",
		Filter: filter,
		Limit:  5,
	})

	require.NoError(t, err)
	searchRepo.AssertExpectations(t)
}
