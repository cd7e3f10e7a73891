package service

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/pagination"
	"github.com/semantis/zalr-backend/internal/telemetry"
)

// JudgmentRepositoryInterface defines the repository interface for judgment persistence
type JudgmentRepositoryInterface interface {
	Create(ctx context.Context, j *domain.Judgment) error
	GetByID(ctx context.Context, id string) (*domain.Judgment, error)
	GetBySafliiURL(ctx context.Context, url string) (*domain.Judgment, error)
	ListByState(ctx context.Context, state domain.LifecycleState, court string, year int) ([]*domain.Judgment, error)
	ListWithCursor(ctx context.Context, filter JudgmentFilter, cursor *pagination.Cursor, limit int) (*JudgmentPageResult, error)
	ListFeatured(ctx context.Context, limit int) ([]*domain.Judgment, error)
	SetFeatured(ctx context.Context, id string, featured bool) error
	UpdateMetadata(ctx context.Context, j *domain.Judgment) error
	SetState(ctx context.Context, id string, state domain.LifecycleState) error
	SetEmbedding(ctx context.Context, id string, embedding []float32, model string, state domain.LifecycleState) error
	SetShortSummary(ctx context.Context, id, summary string, state domain.LifecycleState) error
	SetReportability(ctx context.Context, id string, score int, explanation string, state domain.LifecycleState) error
	SetLongSummary(ctx context.Context, id, summary string, state domain.LifecycleState) error
	SetPracticeArea(ctx context.Context, id string, area domain.PracticeArea, state domain.LifecycleState) error
	StateCounts(ctx context.Context) (map[domain.LifecycleState]int, error)
}

// ChunkRepositoryInterface defines the repository interface for judgment chunk persistence
type ChunkRepositoryInterface interface {
	ReplaceChunks(ctx context.Context, judgmentID string, chunks []domain.Chunk) error
	ListByJudgment(ctx context.Context, judgmentID string) ([]*domain.Chunk, error)
	UpdateEmbedding(ctx context.Context, chunkID string, embedding []float32, model string) error
}

// CheckpointRepositoryInterface defines the repository interface for pipeline checkpoints
type CheckpointRepositoryInterface interface {
	Get(ctx context.Context, stage int, court string, year int) (*domain.Checkpoint, error)
	Save(ctx context.Context, cp *domain.Checkpoint) error
	Clear(ctx context.Context, stage int, court string, year int) error
}

// JudgmentFilter narrows judgment listings.
type JudgmentFilter struct {
	PracticeArea     string
	Court            string
	Year             int
	MinReportability int
}

type JudgmentPageResult struct {
	Items      []*domain.Judgment
	NextCursor string
	HasMore    bool
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// JudgmentService handles read-side business logic for published judgments.
type JudgmentService struct {
	repo JudgmentRepositoryInterface
}

func NewJudgmentService(repo JudgmentRepositoryInterface) *JudgmentService {
	return &JudgmentService{repo: repo}
}

type ListJudgmentsInput struct {
	PracticeArea     string
	Court            string
	Year             int
	MinReportability int
	Cursor           string
	Limit            int
}

type ListJudgmentsOutput struct {
	Items   []*domain.Judgment
	Cursor  string
	HasMore bool
}

func (s *JudgmentService) List(ctx context.Context, input ListJudgmentsInput) (*ListJudgmentsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "JudgmentService.List", telemetry.SpanAttributes{
		Court:     input.Court,
		Operation: "list",
	})
	defer span.End()

	if input.PracticeArea != "" && !domain.IsValidPracticeArea(domain.PracticeArea(input.PracticeArea)) {
		return nil, domain.ErrInvalidPracticeArea
	}

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid cursor")
	}

	filter := JudgmentFilter{
		PracticeArea:     input.PracticeArea,
		Court:            input.Court,
		Year:             input.Year,
		MinReportability: input.MinReportability,
	}

	page, err := s.repo.ListWithCursor(ctx, filter, cursor, input.Limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	span.SetStatus(sentry.SpanStatusOK)
	return &ListJudgmentsOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

func (s *JudgmentService) Get(ctx context.Context, id string) (*domain.Judgment, error) {
	ctx, span := telemetry.StartSpan(ctx, "JudgmentService.Get", telemetry.SpanAttributes{
		JudgmentID: id,
		Operation:  "get",
	})
	defer span.End()

	if id == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "judgment ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *JudgmentService) Featured(ctx context.Context, limit int) ([]*domain.Judgment, error) {
	ctx, span := telemetry.StartSpan(ctx, "JudgmentService.Featured", telemetry.SpanAttributes{
		Operation: "featured",
	})
	defer span.End()

	return s.repo.ListFeatured(ctx, limit)
}

// SetFeatured toggles the featured flag. Only judgments that made it past the
// reportability gate carry a long summary, and only those can be featured.
func (s *JudgmentService) SetFeatured(ctx context.Context, id string, featured bool) error {
	ctx, span := telemetry.StartSpan(ctx, "JudgmentService.SetFeatured", telemetry.SpanAttributes{
		JudgmentID: id,
		Operation:  "set_featured",
	})
	defer span.End()

	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if featured && j.LongSummary == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "judgment has no long summary and cannot be featured")
	}
	return s.repo.SetFeatured(ctx, id, featured)
}

// StateCounts reports how many judgments sit in each lifecycle state.
func (s *JudgmentService) StateCounts(ctx context.Context) (map[domain.LifecycleState]int, error) {
	return s.repo.StateCounts(ctx)
}
