//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/semantis/zalr-backend/internal/api/handlers"
	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/repository"
	"github.com/semantis/zalr-backend/internal/server"
	"github.com/semantis/zalr-backend/internal/service"
	"github.com/semantis/zalr-backend/internal/storage"
	"github.com/semantis/zalr-backend/internal/testutil"
)

const testServiceKey = "e2e-service-key"

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	Archive      *storage.Archive
	Judgments    *repository.JudgmentRepository
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E environment: containers, migrations and a
// running API server backed by a stub embedder.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	archive, err := storage.NewArchive(ctx, storage.ArchiveConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "zalr-judgments",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create archive client: %v", err)
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		Archive:      archive,
		Judgments:    repository.NewJudgmentRepository(pool),
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// SeedJudgment inserts a judgment directly, then advances it to the given
// state by writing the artifacts each earlier stage would have produced.
func (e *E2ETestEnv) SeedJudgment(id, title string, state domain.LifecycleState) *domain.Judgment {
	now := time.Now().UTC()
	j := domain.NewJudgment(id, title, "ZACC", 2024, "The applicant seeks leave to appeal against an eviction order.", "https://www.saflii.org/za/cases/ZACC/2024/"+id+".html", now)
	if err := e.Judgments.Create(e.Ctx, j); err != nil {
		e.T.Fatalf("failed to seed judgment: %v", err)
	}

	ord := state.Ordinal()
	if ord >= domain.StateMetadataFixed.Ordinal() {
		j.FullCitation = fmt.Sprintf("[2024] ZACC %s", id)
		j.CaseNumber = "CCT 1/24"
		j.Judges = "Maya DCJ"
		j.State = domain.StateMetadataFixed
		if err := e.Judgments.UpdateMetadata(e.Ctx, j); err != nil {
			e.T.Fatalf("failed to seed metadata: %v", err)
		}
	}
	if ord >= domain.StateChunked.Ordinal() {
		if err := e.Judgments.SetState(e.Ctx, id, domain.StateChunked); err != nil {
			e.T.Fatalf("failed to seed state: %v", err)
		}
	}
	if ord >= domain.StateEmbedded.Ordinal() {
		if err := e.Judgments.SetEmbedding(e.Ctx, id, testVector(0.1), "voyage-law-2", domain.StateEmbedded); err != nil {
			e.T.Fatalf("failed to seed embedding: %v", err)
		}
	}
	if ord >= domain.StateShortSummarized.Ordinal() {
		if err := e.Judgments.SetShortSummary(e.Ctx, id, "An eviction appeal about unlawful occupation.", domain.StateShortSummarized); err != nil {
			e.T.Fatalf("failed to seed short summary: %v", err)
		}
	}
	if ord >= domain.StateScored.Ordinal() {
		if err := e.Judgments.SetReportability(e.Ctx, id, 85, "Novel point of constitutional property law.", domain.StateScored); err != nil {
			e.T.Fatalf("failed to seed score: %v", err)
		}
	}
	if ord >= domain.StateLongSummarized.Ordinal() {
		if err := e.Judgments.SetLongSummary(e.Ctx, id, "FACTS\nThe applicant occupied the property...\n\nLEGAL PRINCIPLES\nSection 26(3)...", domain.StateLongSummarized); err != nil {
			e.T.Fatalf("failed to seed long summary: %v", err)
		}
	}
	if ord >= domain.StateClassified.Ordinal() {
		if err := e.Judgments.SetPracticeArea(e.Ctx, id, domain.PracticeAreaLandAndProperty, domain.StateClassified); err != nil {
			e.T.Fatalf("failed to seed practice area: %v", err)
		}
	}

	seeded, err := e.Judgments.GetByID(e.Ctx, id)
	if err != nil {
		e.T.Fatalf("failed to reload seeded judgment: %v", err)
	}
	return seeded
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, authToken)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, authToken)
}

// Put performs a PUT request
func (e *E2ETestEnv) Put(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("PUT", path, body, authToken)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// startServer starts the HTTP server with all handlers
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	judgmentRepo := repository.NewJudgmentRepository(pool)
	searchRepo := repository.NewSearchRepository(pool)
	searchLogRepo := repository.NewSearchLogRepository(pool)

	judgmentSvc := service.NewJudgmentService(judgmentRepo)
	searchSvc := service.NewSearchService(&stubEmbedder{}, searchRepo, searchLogRepo)

	cfg := server.RouterConfig{
		ServiceRoleKey:      testServiceKey,
		JudgmentHandler:     handlers.NewJudgmentHandler(judgmentSvc),
		SearchHandler:       handlers.NewSearchHandler(searchSvc),
		PracticeAreaHandler: handlers.NewPracticeAreaHandler(),
		AdminHandler:        handlers.NewAdminHandler(judgmentSvc),
	}

	router := server.NewRouter(cfg)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// stubEmbedder returns a fixed query vector so search works without a
// Voyage key. Results are ranked by distance to the seeded vectors.
type stubEmbedder struct{}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return testVector(0.1), nil
}

// testVector builds a 1024-dim vector whose first component carries the
// value; the rest is constant so cosine distance orders by the first.
func testVector(lead float32) []float32 {
	v := make([]float32, 1024)
	v[0] = lead
	for i := 1; i < len(v); i++ {
		v[i] = 0.01
	}
	return v
}
