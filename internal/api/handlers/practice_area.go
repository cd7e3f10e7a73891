package handlers

import (
	"net/http"

	"github.com/semantis/zalr-backend/internal/api"
	"github.com/semantis/zalr-backend/internal/domain"
)

type PracticeAreaHandler struct{}

func NewPracticeAreaHandler() *PracticeAreaHandler {
	return &PracticeAreaHandler{}
}

type PracticeAreaResponse struct {
	Name string `json:"name"`
}

// List returns the fixed practice area taxonomy.
func (h *PracticeAreaHandler) List(w http.ResponseWriter, r *http.Request) {
	areas := make([]PracticeAreaResponse, 0, len(domain.AllPracticeAreas))
	for _, area := range domain.AllPracticeAreas {
		areas = append(areas, PracticeAreaResponse{Name: string(area)})
	}

	api.Success(w, http.StatusOK, areas)
}
