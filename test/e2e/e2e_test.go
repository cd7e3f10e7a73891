//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semantis/zalr-backend/internal/domain"
)

type judgmentSummary struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Court              string `json:"court"`
	Year               int    `json:"year"`
	State              string `json:"state"`
	ShortSummary       string `json:"short_summary"`
	ReportabilityScore int    `json:"reportability_score"`
	PracticeArea       string `json:"practice_area"`
	Featured           bool   `json:"featured"`
}

type judgmentDetail struct {
	judgmentSummary
	LongSummary  string `json:"long_summary"`
	TextMarkdown string `json:"text_markdown"`
}

type judgmentList struct {
	Items   []judgmentSummary `json:"items"`
	Cursor  string            `json:"cursor"`
	HasMore bool              `json:"has_more"`
}

func TestE2E_JudgmentCatalogue(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.SeedJudgment("11111111-1111-1111-1111-111111111111", "Grobler v Phillips", domain.StateClassified)
	env.SeedJudgment("22222222-2222-2222-2222-222222222222", "Minister of Police v Mahlangu", domain.StateShortSummarized)

	t.Run("list judgments", func(t *testing.T) {
		resp, err := env.Get("/judgments", "")
		require.NoError(t, err)

		var list judgmentList
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		require.Len(t, list.Items, 2)
	})

	t.Run("filter by practice area", func(t *testing.T) {
		resp, err := env.Get("/judgments?practice_area=Land+and+Property+Law", "")
		require.NoError(t, err)

		var list judgmentList
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		require.Len(t, list.Items, 1)
		assert.Equal(t, "Grobler v Phillips", list.Items[0].Title)
	})

	t.Run("get judgment detail", func(t *testing.T) {
		resp, err := env.Get("/judgments/11111111-1111-1111-1111-111111111111", "")
		require.NoError(t, err)

		var detail judgmentDetail
		require.NoError(t, json.Unmarshal(resp.Data, &detail))
		assert.Equal(t, "Grobler v Phillips", detail.Title)
		assert.Equal(t, "classified", detail.State)
		assert.Equal(t, 85, detail.ReportabilityScore)
		assert.Contains(t, detail.LongSummary, "LEGAL PRINCIPLES")
		assert.NotEmpty(t, detail.TextMarkdown)
	})

	t.Run("get unknown judgment", func(t *testing.T) {
		_, err := env.Get("/judgments/99999999-9999-9999-9999-999999999999", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 404")
	})

	t.Run("practice areas", func(t *testing.T) {
		resp, err := env.Get("/practice-areas", "")
		require.NoError(t, err)

		var areas []struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &areas))
		assert.Equal(t, len(domain.AllPracticeAreas), len(areas))
	})
}

func TestE2E_Search(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.SeedJudgment("33333333-3333-3333-3333-333333333333", "Occupiers v City of Johannesburg", domain.StateClassified)

	resp, err := env.Post("/search", map[string]interface{}{"query": "eviction of unlawful occupiers"}, "")
	require.NoError(t, err)

	var searchResp struct {
		Results []struct {
			ID    string  `json:"id"`
			Title string  `json:"title"`
			Score float64 `json:"score"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &searchResp))
	require.Len(t, searchResp.Results, 1)
	assert.Equal(t, "Occupiers v City of Johannesburg", searchResp.Results[0].Title)
	assert.Greater(t, searchResp.Results[0].Score, 0.0)
}

func TestE2E_AdminFlows(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	id := "44444444-4444-4444-4444-444444444444"
	env.SeedJudgment(id, "Capitec Bank v Coral Lagoon", domain.StateClassified)
	env.SeedJudgment("55555555-5555-5555-5555-555555555555", "S v Ndlovu", domain.StateScraped)

	t.Run("admin routes reject missing key", func(t *testing.T) {
		_, err := env.Get("/admin/pipeline/status", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 401")
	})

	t.Run("admin routes reject wrong key", func(t *testing.T) {
		_, err := env.Get("/admin/pipeline/status", "not-the-key")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 401")
	})

	t.Run("pipeline status", func(t *testing.T) {
		resp, err := env.Get("/admin/pipeline/status", testServiceKey)
		require.NoError(t, err)

		var status struct {
			Counts map[string]int `json:"counts"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &status))
		assert.Equal(t, 1, status.Counts["classified"])
		assert.Equal(t, 1, status.Counts["scraped"])
	})

	t.Run("feature a judgment", func(t *testing.T) {
		_, err := env.Put(fmt.Sprintf("/admin/judgments/%s/featured", id), map[string]bool{"featured": true}, testServiceKey)
		require.NoError(t, err)

		resp, err := env.Get("/judgments/featured", "")
		require.NoError(t, err)

		var featured []judgmentSummary
		require.NoError(t, json.Unmarshal(resp.Data, &featured))
		require.Len(t, featured, 1)
		assert.Equal(t, id, featured[0].ID)
	})

	t.Run("cannot feature a judgment without a long summary", func(t *testing.T) {
		_, err := env.Put("/admin/judgments/55555555-5555-5555-5555-555555555555/featured", map[string]bool{"featured": true}, testServiceKey)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 400")
	})
}

func TestE2E_ArchiveRoundTrip(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	id := "66666666-6666-6666-6666-666666666666"
	text := "# Judgment\n\nThe court held that the appeal must succeed."

	require.NoError(t, env.Archive.PutDocument(env.Ctx, id, text))

	got, err := env.Archive.GetDocument(env.Ctx, id)
	require.NoError(t, err)
	assert.Equal(t, text, got)
}
