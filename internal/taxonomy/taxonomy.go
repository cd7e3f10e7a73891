// Package taxonomy loads the practice-area taxonomy used by the
// classification fallback chain.
package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"github.com/semantis/zalr-backend/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultRuleMinHits is the minimum keyword-hit count the rule-based
	// classifier requires before it accepts a label.
	DefaultRuleMinHits = 2
	// DefaultZeroShotMinConfidence is the confidence floor for the
	// zero-shot classifier.
	DefaultZeroShotMinConfidence = 0.3
)

// Area couples a practice-area label with its keyword set.
type Area struct {
	Name     domain.PracticeArea `yaml:"name"`
	Keywords []string            `yaml:"keywords"`
}

// Taxonomy is the full practice-area configuration. Thresholds are tunable
// per deployment through the YAML file; missing values fall back to the
// package defaults.
type Taxonomy struct {
	Areas                 []Area  `yaml:"areas"`
	RuleMinHits           int     `yaml:"rule_min_hits"`
	ZeroShotMinConfidence float64 `yaml:"zero_shot_min_confidence"`
}

// Load reads and validates a taxonomy file.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates taxonomy YAML.
func Parse(data []byte) (*Taxonomy, error) {
	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file: %w", err)
	}

	if tax.RuleMinHits <= 0 {
		tax.RuleMinHits = DefaultRuleMinHits
	}
	if tax.ZeroShotMinConfidence <= 0 {
		tax.ZeroShotMinConfidence = DefaultZeroShotMinConfidence
	}

	if err := tax.validate(); err != nil {
		return nil, err
	}

	// Keyword matching is case-insensitive throughout.
	for i := range tax.Areas {
		for k, kw := range tax.Areas[i].Keywords {
			tax.Areas[i].Keywords[k] = strings.ToLower(strings.TrimSpace(kw))
		}
	}

	return &tax, nil
}

func (t *Taxonomy) validate() error {
	if len(t.Areas) != len(domain.AllPracticeAreas) {
		return fmt.Errorf("taxonomy must define exactly %d practice areas, got %d",
			len(domain.AllPracticeAreas), len(t.Areas))
	}

	seen := make(map[domain.PracticeArea]bool, len(t.Areas))
	for _, area := range t.Areas {
		if !domain.IsValidPracticeArea(area.Name) || area.Name == domain.PracticeAreaNotClassified {
			return fmt.Errorf("unknown practice area in taxonomy: %q", area.Name)
		}
		if seen[area.Name] {
			return fmt.Errorf("duplicate practice area in taxonomy: %q", area.Name)
		}
		seen[area.Name] = true
		if len(area.Keywords) == 0 {
			return fmt.Errorf("practice area %q has no keywords", area.Name)
		}
	}

	return nil
}

// Labels returns the candidate labels in taxonomy order.
func (t *Taxonomy) Labels() []domain.PracticeArea {
	labels := make([]domain.PracticeArea, 0, len(t.Areas))
	for _, area := range t.Areas {
		labels = append(labels, area.Name)
	}
	return labels
}

// LabelStrings returns the candidate labels as plain strings, for classifiers
// that take string label sets.
func (t *Taxonomy) LabelStrings() []string {
	labels := make([]string, 0, len(t.Areas))
	for _, area := range t.Areas {
		labels = append(labels, string(area.Name))
	}
	return labels
}

// Keywords returns the keyword list for a label, or nil if the label is not
// part of the taxonomy.
func (t *Taxonomy) Keywords(label domain.PracticeArea) []string {
	for _, area := range t.Areas {
		if area.Name == label {
			return area.Keywords
		}
	}
	return nil
}

// Match resolves a free-form classifier answer back to a taxonomy label.
// Matching is case-insensitive on substring, so "the label is Tax Law."
// resolves to Tax Law.
func (t *Taxonomy) Match(answer string) (domain.PracticeArea, bool) {
	lowered := strings.ToLower(answer)
	for _, area := range t.Areas {
		if strings.Contains(lowered, strings.ToLower(string(area.Name))) {
			return area.Name, true
		}
	}
	return "", false
}
