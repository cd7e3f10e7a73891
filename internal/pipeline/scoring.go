package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoScore means the model's answer carried neither a total score line
// nor any category scores to reconstruct one from.
var ErrNoScore = errors.New("no reportability score in model answer")

var reportedScoreRe = regexp.MustCompile(`Reportability Score:\s*(\d+)`)

// scoreCategories and their maximum weights, in prompt order.
var scoreCategories = []struct {
	name string
	max  int
}{
	{"Legal Significance", 35},
	{"Precedential Value", 25},
	{"Practical Impact", 20},
	{"Quality of Reasoning", 15},
	{"Public Interest", 5},
}

var categoryScoreRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(scoreCategories))
	for _, c := range scoreCategories {
		// Matches "Score: 20/35" or "(20/35)" after the category name.
		res[c.name] = regexp.MustCompile(`(?is)` + regexp.QuoteMeta(c.name) + `.*?(?:Score:|\()\s*(\d+)(?:/\d+|\s*\))`)
	}
	return res
}()

// ParseReportability extracts the score from a model answer. The model is
// told to lead with "Reportability Score: XX", but it also reports
// per-category scores; when the categories are present and disagree with
// the headline number, the category sum wins and a validation note is
// appended to the explanation.
func ParseReportability(answer string) (int, string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return 0, "", ErrNoScore
	}

	categoryScores := make(map[string]int)
	total := 0
	for _, c := range scoreCategories {
		if m := categoryScoreRes[c.name].FindStringSubmatch(answer); m != nil {
			score, _ := strconv.Atoi(m[1])
			categoryScores[c.name] = score
			total += score
		}
	}

	reported := -1
	if m := reportedScoreRe.FindStringSubmatch(answer); m != nil {
		reported, _ = strconv.Atoi(m[1])
	}

	if reported < 0 && len(categoryScores) == 0 {
		return 0, "", ErrNoScore
	}

	score := reported
	var validation strings.Builder
	if len(categoryScores) > 0 {
		validation.WriteString("\n\n## Score Validation\nCategory Scores:\n")
		for _, c := range scoreCategories {
			if s, ok := categoryScores[c.name]; ok {
				fmt.Fprintf(&validation, "- %s: %d\n", c.name, s)
			}
		}
		fmt.Fprintf(&validation, "\nCalculated Total: %d", total)
		if reported >= 0 {
			fmt.Fprintf(&validation, "\nReported Score: %d", reported)
			if total != reported {
				fmt.Fprintf(&validation, "\nWarning: reported score (%d) does not match calculated score (%d)", reported, total)
			}
		}
		// Category sum is the authoritative number.
		score = total
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, answer + validation.String(), nil
}
