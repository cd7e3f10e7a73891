package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Metadata holds what the fix-metadata stage extracts from a judgment's
// title and text.
type Metadata struct {
	FullCitation string
	Court        string
	Year         int
	CaseNumber   string
	JudgmentDate *time.Time
	Judges       string
}

// courtCodes are the South African courts the pipeline recognises.
var courtCodes = map[string]bool{
	"ZACC":    true, // Constitutional Court
	"ZASCA":   true, // Supreme Court of Appeal
	"ZAGPJHC": true, // Gauteng Local Division, Johannesburg
	"ZAGPPHC": true, // Gauteng Division, Pretoria
	"ZAWCHC":  true, // Western Cape Division, Cape Town
	"ZAKZDHC": true, // KwaZulu-Natal Division, Durban
	"ZAECG":   true, // Eastern Cape Division, Grahamstown
}

var (
	neutralCitationRe = regexp.MustCompile(`\[(\d{4})\]\s+([A-Z]+)\s+(\d+)`)
	titleCaseNumberRe = regexp.MustCompile(`\(([A-Z]+\s*\d+/\d+)\)`)
	titleDateRe       = regexp.MustCompile(`\((\d{1,2}\s+[A-Za-z]+\s+\d{4})\)`)

	caseNumberRes = []*regexp.Regexp{
		regexp.MustCompile(`Case\s+(?:No|Number)[:.]?\s*(\w+/\d+/\d+)`),
		regexp.MustCompile(`Case\s+(?:No|Number)[:.]?\s*(\d+/\d+)`),
		regexp.MustCompile(`\b([A-Z]+\s+\d+/\d+)\b`),
		regexp.MustCompile(`\b(\d+/\d+/\d+)\b`),
	}

	datePatterns = []struct {
		re     *regexp.Regexp
		layout string
	}{
		{regexp.MustCompile(`Date\s+of\s+Judgment:\s*(\d{1,2}\s+\w+\s+\d{4})`), "2 January 2006"},
		{regexp.MustCompile(`Delivered\s+on:\s*(\d{1,2}\s+\w+\s+\d{4})`), "2 January 2006"},
		{regexp.MustCompile(`Date:\s*(\d{1,2}\s+\w+\s+\d{4})`), "2 January 2006"},
		{regexp.MustCompile(`(\d{1,2}\s+\w+\s+\d{4})`), "2 January 2006"},
		{regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`), "2006-01-02"},
	}

	courtNamePatterns = []struct {
		re   *regexp.Regexp
		code string
	}{
		{regexp.MustCompile(`(?i)CONSTITUTIONAL\s+COURT`), "ZACC"},
		{regexp.MustCompile(`(?i)SUPREME\s+COURT\s+OF\s+APPEAL`), "ZASCA"},
		{regexp.MustCompile(`(?i)GAUTENG.*JOHANNESBURG`), "ZAGPJHC"},
		{regexp.MustCompile(`(?i)GAUTENG.*PRETORIA`), "ZAGPPHC"},
		{regexp.MustCompile(`(?i)WESTERN\s+CAPE`), "ZAWCHC"},
		{regexp.MustCompile(`(?i)KWAZULU-NATAL.*DURBAN`), "ZAKZDHC"},
		{regexp.MustCompile(`(?i)EASTERN\s+CAPE.*GRAHAMSTOWN`), "ZAECG"},
	}
)

// ParseMetadata extracts metadata from a judgment title, falling back to
// the first fifty lines of the text where the title comes up short. Most
// SAFLII titles carry the full neutral citation, so the text fallback only
// fires for malformed listings.
func ParseMetadata(title, text string) Metadata {
	var md Metadata

	header := headerLines(text, 50)

	if m := titleCaseNumberRe.FindStringSubmatch(title); m != nil {
		md.CaseNumber = m[1]
	}

	if m := neutralCitationRe.FindStringSubmatch(title); m != nil {
		year, _ := strconv.Atoi(m[1])
		if courtCodes[m[2]] {
			md.Court = m[2]
			md.Year = year
			md.FullCitation = "[" + m[1] + "] " + m[2] + " " + m[3]
		}
	}

	if m := titleDateRe.FindStringSubmatch(title); m != nil {
		if t, err := time.Parse("2 January 2006", m[1]); err == nil {
			md.JudgmentDate = &t
		}
	}

	if md.FullCitation == "" {
		if m := neutralCitationRe.FindStringSubmatch(header); m != nil {
			year, _ := strconv.Atoi(m[1])
			md.FullCitation = m[0]
			md.Year = year
			if courtCodes[m[2]] {
				md.Court = m[2]
			}
		}
	}

	if md.Court == "" {
		md.Court = extractCourtFromHeader(header)
	}

	if md.CaseNumber == "" {
		for _, re := range caseNumberRes {
			if m := re.FindStringSubmatch(header); m != nil {
				md.CaseNumber = strings.TrimSpace(m[1])
				break
			}
		}
	}

	if md.JudgmentDate == nil {
		for _, p := range datePatterns {
			if m := p.re.FindStringSubmatch(header); m != nil {
				if t, err := time.Parse(p.layout, m[1]); err == nil {
					md.JudgmentDate = &t
					break
				}
			}
		}
	}

	return md
}

// ExtractCourtFromCitation pulls the court code out of a neutral citation,
// e.g. "[2024] ZASCA 42" yields "ZASCA".
func ExtractCourtFromCitation(citation string) string {
	if m := neutralCitationRe.FindStringSubmatch(citation); m != nil {
		return m[2]
	}
	return ""
}

// Complete reports whether nothing is left for the LLM fallback to fill.
func (m Metadata) Complete() bool {
	return m.FullCitation != "" && m.CaseNumber != "" && m.JudgmentDate != nil && m.Judges != ""
}

var courtCodeRe = regexp.MustCompile(`\b(ZACC|ZASCA|ZAGPJHC|ZAGPPHC|ZAWCHC|ZAKZDHC|ZAECG)\b`)

func extractCourtFromHeader(header string) string {
	if m := courtCodeRe.FindStringSubmatch(header); m != nil {
		return m[1]
	}
	for _, p := range courtNamePatterns {
		if p.re.MatchString(header) {
			return p.code
		}
	}
	return ""
}

func headerLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

// parseMetadataAnswer reads the four-line answer format produced by the
// metadata LLM fallback.
func parseMetadataAnswer(answer string) Metadata {
	var md Metadata
	for _, line := range strings.Split(answer, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, "Unknown") {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "citation":
			md.FullCitation = value
			if m := neutralCitationRe.FindStringSubmatch(value); m != nil {
				if courtCodes[m[2]] {
					md.Court = m[2]
				}
				md.Year, _ = strconv.Atoi(m[1])
			}
		case "case number":
			md.CaseNumber = value
		case "date":
			if t, err := time.Parse("2 January 2006", value); err == nil {
				md.JudgmentDate = &t
			}
		case "judges":
			md.Judges = value
		}
	}
	return md
}

// merge fills empty fields of m from other, leaving populated fields alone.
func (m Metadata) merge(other Metadata) Metadata {
	if m.FullCitation == "" {
		m.FullCitation = other.FullCitation
	}
	if m.Court == "" {
		m.Court = other.Court
	}
	if m.Year == 0 {
		m.Year = other.Year
	}
	if m.CaseNumber == "" {
		m.CaseNumber = other.CaseNumber
	}
	if m.JudgmentDate == nil {
		m.JudgmentDate = other.JudgmentDate
	}
	if m.Judges == "" {
		m.Judges = other.Judges
	}
	return m
}
