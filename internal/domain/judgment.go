package domain

import (
	"fmt"
	"time"
)

// LifecycleState tracks how far a judgment has advanced through the
// processing pipeline. States are strictly ordered; a judgment enters a
// state only when the corresponding stage has written its output.
type LifecycleState string

const (
	StateScraped         LifecycleState = "scraped"
	StateMetadataFixed   LifecycleState = "metadata_fixed"
	StateChunked         LifecycleState = "chunked"
	StateEmbedded        LifecycleState = "embedded"
	StateShortSummarized LifecycleState = "short_summarized"
	StateScored          LifecycleState = "scored"
	StateLongSummarized  LifecycleState = "long_summarized"
	StateClassified      LifecycleState = "classified"
)

// lifecycleOrder maps each state to its position in the pipeline.
var lifecycleOrder = map[LifecycleState]int{
	StateScraped:         1,
	StateMetadataFixed:   2,
	StateChunked:         3,
	StateEmbedded:        4,
	StateShortSummarized: 5,
	StateScored:          6,
	StateLongSummarized:  7,
	StateClassified:      8,
}

// Ordinal returns the 1-based pipeline position of the state, or 0 for an
// unknown state.
func (s LifecycleState) Ordinal() int {
	return lifecycleOrder[s]
}

// Next returns the state a judgment advances to after the following stage
// completes. The final state returns itself.
func (s LifecycleState) Next() LifecycleState {
	switch s {
	case StateScraped:
		return StateMetadataFixed
	case StateMetadataFixed:
		return StateChunked
	case StateChunked:
		return StateEmbedded
	case StateEmbedded:
		return StateShortSummarized
	case StateShortSummarized:
		return StateScored
	case StateScored:
		return StateLongSummarized
	case StateLongSummarized:
		return StateClassified
	}
	return s
}

// IsValidLifecycleState reports whether s is a known pipeline state.
func IsValidLifecycleState(s LifecycleState) bool {
	return lifecycleOrder[s] != 0
}

// Judgment represents a court judgment and everything the pipeline derives
// from it. TextMarkdown holds the cleaned judgment body as scraped; the
// remaining enrichment fields are populated stage by stage.
type Judgment struct {
	ID                       string
	Title                    string
	Court                    string
	Year                     int
	CaseNumber               string
	FullCitation             string
	JudgmentDate             *time.Time
	Judges                   string
	TextMarkdown             string
	SafliiURL                string
	State                    LifecycleState
	ShortSummary             string
	LongSummary              string
	Reportability            int
	ReportabilityExplanation string
	PracticeArea             PracticeArea
	Embedding                []float32
	EmbeddingModel           string
	Featured                 bool
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// NewJudgment creates a freshly scraped judgment.
func NewJudgment(id, title, court string, year int, text, url string, now time.Time) *Judgment {
	return &Judgment{
		ID:           id,
		Title:        title,
		Court:        court,
		Year:         year,
		TextMarkdown: text,
		SafliiURL:    url,
		State:        StateScraped,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ValidateJudgment validates a Judgment instance.
func ValidateJudgment(j *Judgment) error {
	if j == nil {
		return fmt.Errorf("judgment cannot be nil")
	}

	if j.ID == "" {
		return fmt.Errorf("judgment ID is required")
	}

	if j.Title == "" {
		return fmt.Errorf("judgment Title is required")
	}

	if j.TextMarkdown == "" {
		return fmt.Errorf("judgment TextMarkdown is required")
	}

	if !IsValidLifecycleState(j.State) {
		return fmt.Errorf("judgment State is invalid: %s", j.State)
	}

	if j.Reportability < 0 || j.Reportability > 100 {
		return fmt.Errorf("judgment Reportability must be within [0,100]: %d", j.Reportability)
	}

	return nil
}

// HasMetadata reports whether the metadata stage has anything left to fill.
func (j *Judgment) HasMetadata() bool {
	return j.FullCitation != "" && j.CaseNumber != "" && j.JudgmentDate != nil
}
