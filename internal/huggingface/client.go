// Package huggingface calls the Hugging Face inference API for zero-shot
// classification, the second tier of the practice-area fallback chain.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultModel is the NLI model used for zero-shot classification.
	DefaultModel = "facebook/bart-large-mnli"
	// hypothesisTemplate steers the NLI model toward legal-domain labels.
	hypothesisTemplate = "This legal case involves matters of {}."

	defaultBaseURL = "https://api-inference.huggingface.co/models"
	defaultTimeout = 30 * time.Second
)

var (
	// ErrNoLabels is returned when no candidate labels are provided.
	ErrNoLabels = errors.New("candidate labels cannot be empty")
	// ErrNoToken is returned when the API token is not configured.
	ErrNoToken = errors.New("HF_API_TOKEN is not set")
)

// Config holds configuration for the inference client.
type Config struct {
	APIToken string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// Client calls the zero-shot classification endpoint.
type Client struct {
	httpClient *http.Client
	apiToken   string
	model      string
	baseURL    string
}

// Classification is one ranked zero-shot result.
type Classification struct {
	Label string
	Score float64
}

// NewClient creates an inference client, applying defaults for anything unset.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, ErrNoToken
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiToken:   cfg.APIToken,
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
	}, nil
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels    []string `json:"candidate_labels"`
	MultiLabel         bool     `json:"multi_label"`
	HypothesisTemplate string   `json:"hypothesis_template"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
	Error  string    `json:"error"`
}

// ZeroShotClassify ranks the candidate labels against the text, best first.
func (c *Client) ZeroShotClassify(ctx context.Context, text string, labels []string) ([]Classification, error) {
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}

	body, err := json.Marshal(zeroShotRequest{
		Inputs: text,
		Parameters: zeroShotParameters{
			CandidateLabels:    labels,
			MultiLabel:         false,
			HypothesisTemplate: hypothesisTemplate,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode zero-shot request: %w", err)
	}

	url := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read inference response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference API returned status %d: %s", resp.StatusCode, truncate(string(payload), 200))
	}

	var decoded zeroShotResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("inference API error: %s", decoded.Error)
	}
	if len(decoded.Labels) == 0 || len(decoded.Labels) != len(decoded.Scores) {
		return nil, errors.New("inference API returned malformed label scores")
	}

	results := make([]Classification, len(decoded.Labels))
	for i := range decoded.Labels {
		results[i] = Classification{Label: decoded.Labels[i], Score: decoded.Scores[i]}
	}

	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
