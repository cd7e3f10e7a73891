package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semantis/zalr-backend/internal/classify"
	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/openai"
	"github.com/semantis/zalr-backend/internal/pagination"
	"github.com/semantis/zalr-backend/internal/service"
)

// In-memory fakes for the repository and client seams. They keep everything
// in plain maps and slices; the orchestrator runs single-threaded, so no
// locking is needed.

type fakeJudgments struct {
	items []*domain.Judgment
	// listAll makes ListByState ignore the state filter, simulating a
	// listing that went stale between selection and processing.
	listAll bool
}

func (f *fakeJudgments) get(id string) *domain.Judgment {
	for _, j := range f.items {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func (f *fakeJudgments) Create(ctx context.Context, j *domain.Judgment) error {
	for _, existing := range f.items {
		if existing.SafliiURL == j.SafliiURL {
			return domain.ErrJudgmentAlreadyExists
		}
	}
	f.items = append(f.items, j)
	return nil
}

func (f *fakeJudgments) GetByID(ctx context.Context, id string) (*domain.Judgment, error) {
	if j := f.get(id); j != nil {
		return j, nil
	}
	return nil, domain.ErrJudgmentNotFound
}

func (f *fakeJudgments) GetBySafliiURL(ctx context.Context, url string) (*domain.Judgment, error) {
	for _, j := range f.items {
		if j.SafliiURL == url {
			return j, nil
		}
	}
	return nil, domain.ErrJudgmentNotFound
}

func (f *fakeJudgments) ListByState(ctx context.Context, state domain.LifecycleState, court string, year int) ([]*domain.Judgment, error) {
	var out []*domain.Judgment
	for _, j := range f.items {
		if !f.listAll && j.State != state {
			continue
		}
		if court != "" && j.Court != court {
			continue
		}
		if year != 0 && j.Year != year {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeJudgments) ListWithCursor(ctx context.Context, filter service.JudgmentFilter, cursor *pagination.Cursor, limit int) (*service.JudgmentPageResult, error) {
	return &service.JudgmentPageResult{}, nil
}

func (f *fakeJudgments) ListFeatured(ctx context.Context, limit int) ([]*domain.Judgment, error) {
	return nil, nil
}

func (f *fakeJudgments) SetFeatured(ctx context.Context, id string, featured bool) error {
	j := f.get(id)
	if j == nil {
		return domain.ErrJudgmentNotFound
	}
	j.Featured = featured
	return nil
}

func (f *fakeJudgments) UpdateMetadata(ctx context.Context, j *domain.Judgment) error {
	stored := f.get(j.ID)
	if stored == nil {
		return domain.ErrJudgmentNotFound
	}
	*stored = *j
	return nil
}

func (f *fakeJudgments) SetState(ctx context.Context, id string, state domain.LifecycleState) error {
	j := f.get(id)
	if j == nil {
		return domain.ErrJudgmentNotFound
	}
	j.State = state
	return nil
}

func (f *fakeJudgments) SetEmbedding(ctx context.Context, id string, embedding []float32, model string, state domain.LifecycleState) error {
	j := f.get(id)
	if j == nil {
		return domain.ErrJudgmentNotFound
	}
	j.Embedding = embedding
	j.EmbeddingModel = model
	j.State = state
	return nil
}

func (f *fakeJudgments) SetShortSummary(ctx context.Context, id, summary string, state domain.LifecycleState) error {
	j := f.get(id)
	if j == nil {
		return domain.ErrJudgmentNotFound
	}
	j.ShortSummary = summary
	j.State = state
	return nil
}

func (f *fakeJudgments) SetReportability(ctx context.Context, id string, score int, explanation string, state domain.LifecycleState) error {
	j := f.get(id)
	if j == nil {
		return domain.ErrJudgmentNotFound
	}
	j.Reportability = score
	j.ReportabilityExplanation = explanation
	j.State = state
	return nil
}

func (f *fakeJudgments) SetLongSummary(ctx context.Context, id, summary string, state domain.LifecycleState) error {
	j := f.get(id)
	if j == nil {
		return domain.ErrJudgmentNotFound
	}
	j.LongSummary = summary
	j.State = state
	return nil
}

func (f *fakeJudgments) SetPracticeArea(ctx context.Context, id string, area domain.PracticeArea, state domain.LifecycleState) error {
	j := f.get(id)
	if j == nil {
		return domain.ErrJudgmentNotFound
	}
	j.PracticeArea = area
	j.State = state
	return nil
}

func (f *fakeJudgments) StateCounts(ctx context.Context) (map[domain.LifecycleState]int, error) {
	counts := make(map[domain.LifecycleState]int)
	for _, j := range f.items {
		counts[j.State]++
	}
	return counts, nil
}

type fakeChunks struct {
	byJudgment map[string][]domain.Chunk
}

func newFakeChunks() *fakeChunks {
	return &fakeChunks{byJudgment: make(map[string][]domain.Chunk)}
}

func (f *fakeChunks) ReplaceChunks(ctx context.Context, judgmentID string, chunks []domain.Chunk) error {
	f.byJudgment[judgmentID] = chunks
	return nil
}

func (f *fakeChunks) ListByJudgment(ctx context.Context, judgmentID string) ([]*domain.Chunk, error) {
	stored := f.byJudgment[judgmentID]
	out := make([]*domain.Chunk, len(stored))
	for i := range stored {
		out[i] = &stored[i]
	}
	return out, nil
}

func (f *fakeChunks) UpdateEmbedding(ctx context.Context, chunkID string, embedding []float32, model string) error {
	for id := range f.byJudgment {
		chunks := f.byJudgment[id]
		for i := range chunks {
			if chunks[i].ID == chunkID {
				chunks[i].Embedding = embedding
				chunks[i].EmbeddingModel = model
				return nil
			}
		}
	}
	return domain.ErrChunkNotFound
}

type fakeCheckpoints struct {
	cps map[string]*domain.Checkpoint
}

func newFakeCheckpoints() *fakeCheckpoints {
	return &fakeCheckpoints{cps: make(map[string]*domain.Checkpoint)}
}

func cpKey(stage int, court string, year int) string {
	return fmt.Sprintf("%d|%s|%d", stage, court, year)
}

func (f *fakeCheckpoints) Get(ctx context.Context, stage int, court string, year int) (*domain.Checkpoint, error) {
	if cp, ok := f.cps[cpKey(stage, court, year)]; ok {
		return cp, nil
	}
	return nil, domain.ErrCheckpointNotFound
}

func (f *fakeCheckpoints) Save(ctx context.Context, cp *domain.Checkpoint) error {
	f.cps[cpKey(cp.Stage, cp.Court, cp.Year)] = cp
	return nil
}

func (f *fakeCheckpoints) Clear(ctx context.Context, stage int, court string, year int) error {
	delete(f.cps, cpKey(stage, court, year))
	return nil
}

type fakeTx struct {
	judgments *fakeJudgments
	chunks    *fakeChunks
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	return fn(f)
}

func (f *fakeTx) Judgments() service.JudgmentRepositoryInterface { return f.judgments }
func (f *fakeTx) Chunks() service.ChunkRepositoryInterface       { return f.chunks }

type fakeChat struct {
	calls   int
	respond func(system, user string) (string, error)
}

func (f *fakeChat) Complete(ctx context.Context, system, user string, opts ...openai.ChatOption) (string, error) {
	f.calls++
	if f.respond == nil {
		return "Execution — Sale in execution — Notice requirements condonable", nil
	}
	return f.respond(system, user)
}

type fakeEmbedder struct {
	calls        int
	failuresLeft int
}

func (f *fakeEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return nil, fmt.Errorf("embedding service unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1, 2}
	}
	return out, nil
}

func (f *fakeEmbedder) Model() string { return "voyage-law-2" }

type fakeScraper struct {
	citations map[string][]string // listing URL -> citations
	urls      map[string]string   // citation -> case URL
	pages     map[string]string   // case URL -> markdown
}

func (f *fakeScraper) Citations(ctx context.Context, url, targetCourt string) ([]string, error) {
	return f.citations[url], nil
}

func (f *fakeScraper) FetchCase(ctx context.Context, url string) (string, error) {
	text, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("fetching %s: status 404", url)
	}
	return text, nil
}

func (f *fakeScraper) ListingURL(court string, year int) string {
	return fmt.Sprintf("https://saflii.test/za/cases/%s/%d/", court, year)
}

func (f *fakeScraper) CaseURL(citation, court string, year int) string {
	return f.urls[citation]
}

func (f *fakeScraper) Delay() time.Duration { return 0 }

type fakeChain struct {
	result classify.Result
}

func (f *fakeChain) Classify(ctx context.Context, summary string) classify.Result {
	return f.result
}

type fakeArchive struct {
	docs map[string]string
}

func (f *fakeArchive) PutDocument(ctx context.Context, judgmentID, text string) error {
	if f.docs == nil {
		f.docs = make(map[string]string)
	}
	f.docs[judgmentID] = text
	return nil
}

type seqUUID struct {
	n int
}

func (g *seqUUID) NewString() string {
	g.n++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", g.n)
}

type fixture struct {
	judgments   *fakeJudgments
	chunks      *fakeChunks
	checkpoints *fakeCheckpoints
	chat        *fakeChat
	embedder    *fakeEmbedder
	orch        *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		judgments:   &fakeJudgments{},
		chunks:      newFakeChunks(),
		checkpoints: newFakeCheckpoints(),
		chat:        &fakeChat{},
		embedder:    &fakeEmbedder{},
	}
	f.orch = NewOrchestrator(Deps{
		Judgments:   f.judgments,
		Chunks:      f.chunks,
		Checkpoints: f.checkpoints,
		Tx:          &fakeTx{judgments: f.judgments, chunks: f.chunks},
		Embedder:    f.embedder,
		Chat:        f.chat,
		Chain:       &fakeChain{result: classify.Result{Label: domain.PracticeAreaTax, Confidence: 0.9, Tier: "keyword"}},
		UUIDGen:     &seqUUID{},
	})
	return f
}

func testJudgment(id string, state domain.LifecycleState) *domain.Judgment {
	now := time.Now().UTC()
	j := domain.NewJudgment(id, "Test v Case "+id, "ZACC", 2024,
		"Judgment text for "+id, "https://saflii.test/za/cases/ZACC/2024/"+id+".html", now)
	j.State = state
	return j
}

func TestRunStage_InvalidStage(t *testing.T) {
	f := newFixture()
	_, err := f.orch.RunStage(context.Background(), Stage(0), Options{})
	assert.Error(t, err)
}

func TestRunStage_MissingDependency(t *testing.T) {
	f := newFixture()
	orch := NewOrchestrator(Deps{
		Judgments:   f.judgments,
		Checkpoints: f.checkpoints,
	})
	f.judgments.items = append(f.judgments.items, testJudgment("j1", domain.StateChunked))

	_, err := orch.RunStage(context.Background(), StageEmbed, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestRunStage_SkipsJudgmentsInWrongState(t *testing.T) {
	f := newFixture()
	f.judgments.listAll = true
	f.judgments.items = append(f.judgments.items, testJudgment("j1", domain.StateScraped))

	summary, err := f.orch.RunStage(context.Background(), StageShortSummary, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Selected)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Zero(t, f.chat.calls)
	assert.Equal(t, domain.StateScraped, f.judgments.items[0].State)
}

func TestRunStage_ResumesFromCheckpoint(t *testing.T) {
	f := newFixture()
	for i := 1; i <= 5; i++ {
		f.judgments.items = append(f.judgments.items, testJudgment(fmt.Sprintf("j%d", i), domain.StateEmbedded))
	}
	cp := domain.NewCheckpoint(int(StageShortSummary), "", 0)
	cp.Add("j1")
	cp.Add("j2")
	cp.Add("j3")
	require.NoError(t, f.checkpoints.Save(context.Background(), cp))

	summary, err := f.orch.RunStage(context.Background(), StageShortSummary, Options{})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Selected)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, f.chat.calls)

	// Checkpointed judgments were not reprocessed.
	assert.Equal(t, domain.StateEmbedded, f.judgments.get("j1").State)
	assert.Equal(t, domain.StateShortSummarized, f.judgments.get("j4").State)
	assert.NotEmpty(t, f.judgments.get("j5").ShortSummary)

	// A clean run retires its checkpoint.
	_, err = f.checkpoints.Get(context.Background(), int(StageShortSummary), "", 0)
	assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)
}

func TestRunStage_ForceReprocessesCheckpointedItems(t *testing.T) {
	f := newFixture()
	for i := 1; i <= 5; i++ {
		f.judgments.items = append(f.judgments.items, testJudgment(fmt.Sprintf("j%d", i), domain.StateEmbedded))
	}
	cp := domain.NewCheckpoint(int(StageShortSummary), "", 0)
	cp.Add("j1")
	cp.Add("j2")
	cp.Add("j3")
	require.NoError(t, f.checkpoints.Save(context.Background(), cp))

	summary, err := f.orch.RunStage(context.Background(), StageShortSummary, Options{Force: true})
	require.NoError(t, err)

	// The saved checkpoint is ignored: every item runs again.
	assert.Equal(t, 5, summary.Selected)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 5, summary.Succeeded)
	assert.Equal(t, 5, f.chat.calls)
	assert.Equal(t, domain.StateShortSummarized, f.judgments.get("j1").State)
}

func TestRunStage_PartialFailureKeepsCheckpoint(t *testing.T) {
	f := newFixture()
	for i := 1; i <= 3; i++ {
		f.judgments.items = append(f.judgments.items, testJudgment(fmt.Sprintf("j%d", i), domain.StateEmbedded))
	}
	f.judgments.get("j2").TextMarkdown = "FAILME"
	f.chat.respond = func(system, user string) (string, error) {
		if strings.Contains(user, "FAILME") {
			return "", fmt.Errorf("model overloaded")
		}
		return "Contract — interpretation — clause enforceable", nil
	}

	summary, err := f.orch.RunStage(context.Background(), StageShortSummary, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, domain.StateEmbedded, f.judgments.get("j2").State)

	// The checkpoint survives so a rerun picks up only the failed judgment.
	cp, err := f.checkpoints.Get(context.Background(), int(StageShortSummary), "", 0)
	require.NoError(t, err)
	assert.True(t, cp.Contains("j1"))
	assert.True(t, cp.Contains("j3"))
	assert.False(t, cp.Contains("j2"))
}

func TestRunStage_EmbedRetriesTransientFailure(t *testing.T) {
	f := newFixture()
	j := testJudgment("j1", domain.StateChunked)
	f.judgments.items = append(f.judgments.items, j)
	f.chunks.byJudgment["j1"] = []domain.Chunk{
		{ID: "c1", JudgmentID: "j1", ChunkIndex: 0, Content: "first half"},
		{ID: "c2", JudgmentID: "j1", ChunkIndex: 1, Content: "second half"},
	}
	f.embedder.failuresLeft = 1

	summary, err := f.orch.RunStage(context.Background(), StageEmbed, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, f.embedder.calls)

	assert.Equal(t, domain.StateEmbedded, j.State)
	assert.Equal(t, "voyage-law-2", j.EmbeddingModel)
	// Chunk vectors {0,1,2} and {1,1,2} average to {0.5,1,2}.
	assert.Equal(t, []float32{0.5, 1, 2}, j.Embedding)
	assert.Equal(t, []float32{0, 1, 2}, f.chunks.byJudgment["j1"][0].Embedding)
	assert.Equal(t, []float32{1, 1, 2}, f.chunks.byJudgment["j1"][1].Embedding)
}

func TestRunStage_LowScoreSkipsLongSummary(t *testing.T) {
	f := newFixture()
	j := testJudgment("j1", domain.StateScored)
	j.Reportability = 40
	f.judgments.items = append(f.judgments.items, j)

	summary, err := f.orch.RunStage(context.Background(), StageLongSummary, Options{})
	require.NoError(t, err)

	// The judgment advances with no long summary and no model call.
	assert.Equal(t, 1, summary.Succeeded)
	assert.Zero(t, f.chat.calls)
	assert.Equal(t, domain.StateLongSummarized, j.State)
	assert.Empty(t, j.LongSummary)
}

func TestRunStage_HighScoreGetsLongSummary(t *testing.T) {
	f := newFixture()
	j := testJudgment("j1", domain.StateScored)
	j.Reportability = 80
	f.judgments.items = append(f.judgments.items, j)
	f.chat.respond = func(system, user string) (string, error) {
		return "**Case Note**: Novel principle on vicarious liability.", nil
	}

	summary, err := f.orch.RunStage(context.Background(), StageLongSummary, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, f.chat.calls)
	assert.Equal(t, domain.StateLongSummarized, j.State)
	assert.Contains(t, j.LongSummary, "Case Note")
}

func TestRunStage_ClassifyAssignsPracticeArea(t *testing.T) {
	f := newFixture()
	j := testJudgment("j1", domain.StateLongSummarized)
	j.ShortSummary = "Income tax — deductions — whether expenditure of a capital nature"
	f.judgments.items = append(f.judgments.items, j)

	summary, err := f.orch.RunStage(context.Background(), StageClassify, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, domain.PracticeAreaTax, j.PracticeArea)
	assert.Equal(t, domain.StateClassified, j.State)
}

func TestRunScrape_SkipsExistingJudgments(t *testing.T) {
	f := newFixture()
	scraper := &fakeScraper{
		citations: map[string][]string{
			"https://saflii.test/za/cases/ZACC/2024/": {
				"Old v Known (CCT 1/24) [2024] ZACC 1 (1 February 2024)",
				"New v Fresh (CCT 2/24) [2024] ZACC 2 (1 March 2024)",
			},
		},
		urls: map[string]string{
			"Old v Known (CCT 1/24) [2024] ZACC 1 (1 February 2024)": "https://saflii.test/za/cases/ZACC/2024/1.html",
			"New v Fresh (CCT 2/24) [2024] ZACC 2 (1 March 2024)":    "https://saflii.test/za/cases/ZACC/2024/2.html",
		},
		pages: map[string]string{
			"https://saflii.test/za/cases/ZACC/2024/2.html": "New v Fresh\n\nThe court held that the application succeeds.",
		},
	}
	archive := &fakeArchive{}
	f.orch.deps.Scraper = scraper
	f.orch.deps.Archive = archive

	existing := testJudgment("j-old", domain.StateClassified)
	existing.SafliiURL = "https://saflii.test/za/cases/ZACC/2024/1.html"
	f.judgments.items = append(f.judgments.items, existing)

	summary, err := f.orch.RunStage(context.Background(), StageScrape, Options{Court: "ZACC", Year: 2024})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Selected)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Succeeded)

	created, err := f.judgments.GetBySafliiURL(context.Background(), "https://saflii.test/za/cases/ZACC/2024/2.html")
	require.NoError(t, err)
	assert.Equal(t, domain.StateScraped, created.State)
	assert.Equal(t, "ZACC", created.Court)
	assert.Equal(t, 2024, created.Year)
	assert.Contains(t, created.TextMarkdown, "application succeeds")

	// The raw markdown landed in the archive under the new ID.
	assert.Contains(t, archive.docs[created.ID], "application succeeds")
}

func TestRunScrape_RequiresYear(t *testing.T) {
	f := newFixture()
	f.orch.deps.Scraper = &fakeScraper{}

	_, err := f.orch.RunStage(context.Background(), StageScrape, Options{Court: "ZACC"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year is required")
}

func TestRunAll_FullPipeline(t *testing.T) {
	f := newFixture()
	citation := "Alpha v Beta (CCT 1/24) [2024] ZACC 5 (12 April 2024)"
	caseURL := "https://saflii.test/za/cases/ZACC/2024/5.html"
	f.orch.deps.Scraper = &fakeScraper{
		citations: map[string][]string{"https://saflii.test/za/cases/ZACC/2024/": {citation}},
		urls:      map[string]string{citation: caseURL},
		pages:     map[string]string{caseURL: "Alpha v Beta\n\nThe appeal is upheld with costs."},
	}
	f.chat.respond = func(system, user string) (string, error) {
		switch {
		case system == metadataSystemPrompt:
			return "Citation: Unknown\nCase Number: Unknown\nDate: Unknown\nJudges: Maya DCJ, Theron J", nil
		case system == scoreSystemPrompt:
			return scoredAnswer, nil
		case strings.Contains(user, "LEGAL PRINCIPLES"):
			return "**Case Note**: Establishes a new approach to appellate costs.", nil
		default:
			return "Appeal — costs — when upheld with costs", nil
		}
	}

	summaries, err := f.orch.RunAll(context.Background(), Options{Court: "ZACC", Year: 2024})
	require.NoError(t, err)
	require.Len(t, summaries, 8)
	for _, s := range summaries {
		assert.Equal(t, 1, s.Succeeded, "stage %s", s.Stage)
		assert.Equal(t, 0, s.Failed, "stage %s", s.Stage)
	}

	j, err := f.judgments.GetBySafliiURL(context.Background(), caseURL)
	require.NoError(t, err)

	assert.Equal(t, domain.StateClassified, j.State)
	assert.Equal(t, "[2024] ZACC 5", j.FullCitation)
	assert.Equal(t, "CCT 1/24", j.CaseNumber)
	assert.Equal(t, "Maya DCJ, Theron J", j.Judges)
	assert.NotEmpty(t, f.chunks.byJudgment[j.ID])
	assert.NotEmpty(t, j.Embedding)
	assert.Contains(t, j.ShortSummary, "Appeal — costs")
	assert.Equal(t, 85, j.Reportability)
	assert.Contains(t, j.LongSummary, "Case Note")
	assert.Equal(t, domain.PracticeAreaTax, j.PracticeArea)
}
