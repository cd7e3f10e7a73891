package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/semantis/zalr-backend/internal/api"
	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/service"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type JudgmentService interface {
	List(ctx context.Context, input service.ListJudgmentsInput) (*service.ListJudgmentsOutput, error)
	Get(ctx context.Context, id string) (*domain.Judgment, error)
	Featured(ctx context.Context, limit int) ([]*domain.Judgment, error)
}

type JudgmentHandler struct {
	svc JudgmentService
}

func NewJudgmentHandler(svc JudgmentService) *JudgmentHandler {
	return &JudgmentHandler{svc: svc}
}

// JudgmentSummary is the listing shape; the full text is only returned on
// the detail endpoint.
type JudgmentSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Court         string `json:"court"`
	Year          int    `json:"year"`
	CaseNumber    string `json:"case_number,omitempty"`
	FullCitation  string `json:"full_citation,omitempty"`
	JudgmentDate  string `json:"judgment_date,omitempty"`
	Judges        string `json:"judges,omitempty"`
	State         string `json:"state"`
	ShortSummary  string `json:"short_summary,omitempty"`
	Reportability int    `json:"reportability_score"`
	PracticeArea  string `json:"practice_area,omitempty"`
	SafliiURL     string `json:"saflii_url,omitempty"`
	Featured      bool   `json:"featured"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type JudgmentDetail struct {
	JudgmentSummary
	LongSummary  string `json:"long_summary,omitempty"`
	TextMarkdown string `json:"text_markdown"`
}

type JudgmentListResponse struct {
	Items   []*JudgmentSummary `json:"items"`
	Cursor  string             `json:"cursor,omitempty"`
	HasMore bool               `json:"has_more"`
}

func judgmentToSummary(j *domain.Judgment) *JudgmentSummary {
	s := &JudgmentSummary{
		ID:            j.ID,
		Title:         j.Title,
		Court:         j.Court,
		Year:          j.Year,
		CaseNumber:    j.CaseNumber,
		FullCitation:  j.FullCitation,
		Judges:        j.Judges,
		State:         string(j.State),
		ShortSummary:  j.ShortSummary,
		Reportability: j.Reportability,
		PracticeArea:  string(j.PracticeArea),
		SafliiURL:     j.SafliiURL,
		Featured:      j.Featured,
		CreatedAt:     j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     j.UpdatedAt.Format(time.RFC3339),
	}
	if j.JudgmentDate != nil {
		s.JudgmentDate = j.JudgmentDate.Format("2006-01-02")
	}
	return s
}

func judgmentToDetail(j *domain.Judgment) *JudgmentDetail {
	return &JudgmentDetail{
		JudgmentSummary: *judgmentToSummary(j),
		LongSummary:     j.LongSummary,
		TextMarkdown:    j.TextMarkdown,
	}
}

func (h *JudgmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	input := service.ListJudgmentsInput{
		PracticeArea: q.Get("practice_area"),
		Court:        q.Get("court"),
		Cursor:       q.Get("cursor"),
		Limit:        parseIntParam(q.Get("limit"), defaultPageLimit),
	}
	input.Year = parseIntParam(q.Get("year"), 0)
	input.MinReportability = parseIntParam(q.Get("min_reportability"), 0)

	if input.Limit > maxPageLimit {
		input.Limit = maxPageLimit
	}

	out, err := h.svc.List(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*JudgmentSummary, 0, len(out.Items))
	for _, j := range out.Items {
		items = append(items, judgmentToSummary(j))
	}

	api.Success(w, http.StatusOK, JudgmentListResponse{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}

func (h *JudgmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	j, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, judgmentToDetail(j))
}

func (h *JudgmentHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r.URL.Query().Get("limit"), 10)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	judgments, err := h.svc.Featured(r.Context(), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*JudgmentSummary, 0, len(judgments))
	for _, j := range judgments {
		items = append(items, judgmentToSummary(j))
	}

	api.Success(w, http.StatusOK, items)
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
