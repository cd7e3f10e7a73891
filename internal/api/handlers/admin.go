package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/semantis/zalr-backend/internal/api"
	"github.com/semantis/zalr-backend/internal/domain"
)

type AdminService interface {
	SetFeatured(ctx context.Context, id string, featured bool) error
	StateCounts(ctx context.Context) (map[domain.LifecycleState]int, error)
}

// AdminHandler serves the service-key-guarded admin routes.
type AdminHandler struct {
	svc AdminService
}

func NewAdminHandler(svc AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type SetFeaturedRequest struct {
	Featured bool `json:"featured"`
}

func (h *AdminHandler) SetFeatured(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req SetFeaturedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.SetFeatured(r.Context(), id, req.Featured); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]interface{}{
		"id":       id,
		"featured": req.Featured,
	})
}

type PipelineStatusResponse struct {
	Counts map[string]int `json:"counts"`
}

// PipelineStatus reports how many judgments sit in each lifecycle state.
func (h *AdminHandler) PipelineStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.StateCounts(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make(map[string]int, len(counts))
	for state, n := range counts {
		out[string(state)] = n
	}

	api.Success(w, http.StatusOK, PipelineStatusResponse{Counts: out})
}
