package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/semantis/zalr-backend/internal/api/handlers"
	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/service"
)

type MockJudgmentService struct {
	mock.Mock
}

func (m *MockJudgmentService) List(ctx context.Context, input service.ListJudgmentsInput) (*service.ListJudgmentsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListJudgmentsOutput), args.Error(1)
}

func (m *MockJudgmentService) Get(ctx context.Context, id string) (*domain.Judgment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Judgment), args.Error(1)
}

func (m *MockJudgmentService) Featured(ctx context.Context, limit int) ([]*domain.Judgment, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Judgment), args.Error(1)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, input service.SearchInput) ([]*service.SearchResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.SearchResult), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) SetFeatured(ctx context.Context, id string, featured bool) error {
	args := m.Called(ctx, id, featured)
	return args.Error(0)
}

func (m *MockAdminService) StateCounts(ctx context.Context) (map[domain.LifecycleState]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.LifecycleState]int), args.Error(1)
}

func setupRouter() (http.Handler, *MockJudgmentService, *MockSearchService, *MockAdminService) {
	judgmentSvc := new(MockJudgmentService)
	searchSvc := new(MockSearchService)
	adminSvc := new(MockAdminService)

	cfg := RouterConfig{
		ServiceRoleKey:      "svc-secret",
		JudgmentHandler:     handlers.NewJudgmentHandler(judgmentSvc),
		SearchHandler:       handlers.NewSearchHandler(searchSvc),
		PracticeAreaHandler: handlers.NewPracticeAreaHandler(),
		AdminHandler:        handlers.NewAdminHandler(adminSvc),
	}

	return NewRouter(cfg), judgmentSvc, searchSvc, adminSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_PublicRoutes(t *testing.T) {
	router, judgmentSvc, searchSvc, _ := setupRouter()

	judgmentSvc.On("List", mock.Anything, mock.Anything).Return(&service.ListJudgmentsOutput{}, nil)
	judgmentSvc.On("Featured", mock.Anything, 10).Return([]*domain.Judgment{}, nil)
	searchSvc.On("Search", mock.Anything, mock.Anything).Return([]*service.SearchResult{}, nil)

	routes := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/judgments", ""},
		{http.MethodGet, "/judgments/featured", ""},
		{http.MethodGet, "/practice-areas", ""},
		{http.MethodPost, "/search", `{"query": "eviction"}`},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			var req *http.Request
			if route.body != "" {
				req = httptest.NewRequest(route.method, route.path, strings.NewReader(route.body))
			} else {
				req = httptest.NewRequest(route.method, route.path, nil)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestRouter_FeaturedRouteNotShadowedByID(t *testing.T) {
	router, judgmentSvc, _, _ := setupRouter()

	judgmentSvc.On("Featured", mock.Anything, 10).Return([]*domain.Judgment{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/judgments/featured", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	judgmentSvc.AssertCalled(t, "Featured", mock.Anything, 10)
	judgmentSvc.AssertNotCalled(t, "Get", mock.Anything, "featured")
}

func TestRouter_AdminRoutes_RequireServiceKey(t *testing.T) {
	router, _, _, _ := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/admin/judgments/j-1/featured"},
		{http.MethodGet, "/admin/pipeline/status"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_AdminRoutes_WithServiceKey(t *testing.T) {
	router, _, _, adminSvc := setupRouter()

	adminSvc.On("SetFeatured", mock.Anything, "j-1", true).Return(nil)

	req := httptest.NewRequest(http.MethodPut, "/admin/judgments/j-1/featured", strings.NewReader(`{"featured": true}`))
	req.Header.Set("Authorization", "Bearer svc-secret")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	adminSvc.AssertExpectations(t)
}
