package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/semantis/zalr-backend/internal/api"
	"github.com/semantis/zalr-backend/internal/service"
)

type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) ([]*service.SearchResult, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query            string `json:"query"`
	PracticeArea     string `json:"practice_area"`
	Court            string `json:"court"`
	Year             int    `json:"year"`
	MinReportability int    `json:"min_reportability"`
	Limit            int    `json:"limit"`
}

type SearchResponse struct {
	Results []*service.SearchResult `json:"results"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	results, err := h.svc.Search(r.Context(), service.SearchInput{
		Query: req.Query,
		Filter: service.JudgmentFilter{
			PracticeArea:     req.PracticeArea,
			Court:            req.Court,
			Year:             req.Year,
			MinReportability: req.MinReportability,
		},
		Limit: limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SearchResponse{Results: results})
}
