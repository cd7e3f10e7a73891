//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/service"
	"github.com/semantis/zalr-backend/internal/testutil"
)

// searchVector builds a 1024-dim embedding whose lead component separates
// the seeded judgments by distance.
func searchVector(lead float32) []float32 {
	v := make([]float32, 1024)
	v[0] = lead
	for i := 1; i < len(v); i++ {
		v[i] = 0.01
	}
	return v
}

func seedEmbedded(ctx context.Context, t *testing.T, repo *JudgmentRepository, title, court string, year int, lead float32, area domain.PracticeArea) *domain.Judgment {
	t.Helper()

	j := newScrapedJudgment(title, court, year)
	require.NoError(t, repo.Create(ctx, j))
	require.NoError(t, repo.SetEmbedding(ctx, j.ID, searchVector(lead), "voyage-law-2", domain.StateEmbedded))
	require.NoError(t, repo.SetShortSummary(ctx, j.ID, "Summary of "+title, domain.StateShortSummarized))
	require.NoError(t, repo.SetReportability(ctx, j.ID, 85, "explanation", domain.StateScored))
	if area != "" {
		require.NoError(t, repo.SetPracticeArea(ctx, j.ID, area, domain.StateClassified))
	}
	return j
}

func TestSearchRepository_SearchByEmbedding(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	judgmentRepo := NewJudgmentRepository(pool)
	searchRepo := NewSearchRepository(pool)

	near := seedEmbedded(ctx, t, judgmentRepo, "Occupiers v City", "ZACC", 2024, 0.1, domain.PracticeAreaLandAndProperty)
	far := seedEmbedded(ctx, t, judgmentRepo, "CSARS v Capitec", "ZASCA", 2024, 0.9, domain.PracticeAreaTax)

	// A judgment without an embedding never appears in results.
	unembedded := newScrapedJudgment("S v Ndlovu", "ZACC", 2024)
	require.NoError(t, judgmentRepo.Create(ctx, unembedded))

	results, err := searchRepo.SearchByEmbedding(ctx, searchVector(0.1), service.JudgmentFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, near.ID, results[0].ID)
	assert.Equal(t, far.ID, results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchRepository_SearchByEmbedding_Filters(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	judgmentRepo := NewJudgmentRepository(pool)
	searchRepo := NewSearchRepository(pool)

	land := seedEmbedded(ctx, t, judgmentRepo, "Occupiers v City", "ZACC", 2024, 0.1, domain.PracticeAreaLandAndProperty)
	seedEmbedded(ctx, t, judgmentRepo, "CSARS v Capitec", "ZASCA", 2024, 0.2, domain.PracticeAreaTax)

	byArea, err := searchRepo.SearchByEmbedding(ctx, searchVector(0.1), service.JudgmentFilter{
		PracticeArea: string(domain.PracticeAreaLandAndProperty),
	}, 10)
	require.NoError(t, err)
	require.Len(t, byArea, 1)
	assert.Equal(t, land.ID, byArea[0].ID)

	byCourt, err := searchRepo.SearchByEmbedding(ctx, searchVector(0.1), service.JudgmentFilter{Court: "ZACC"}, 10)
	require.NoError(t, err)
	require.Len(t, byCourt, 1)
	assert.Equal(t, land.ID, byCourt[0].ID)

	none, err := searchRepo.SearchByEmbedding(ctx, searchVector(0.1), service.JudgmentFilter{Year: 1999}, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchRepository_SearchByEmbedding_Limit(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	judgmentRepo := NewJudgmentRepository(pool)
	searchRepo := NewSearchRepository(pool)

	for i := 0; i < 3; i++ {
		seedEmbedded(ctx, t, judgmentRepo, "Case", "ZACC", 2024, 0.1*float32(i+1), domain.PracticeAreaConstitutional)
	}

	results, err := searchRepo.SearchByEmbedding(ctx, searchVector(0.1), service.JudgmentFilter{}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchLogRepository_CreateSearchLog(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSearchLogRepository(pool)

	id, err := repo.CreateSearchLog(ctx, service.SearchLogEntry{
		Query:       "eviction of unlawful occupiers",
		ResultCount: 4,
		DurationMs:  120,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
