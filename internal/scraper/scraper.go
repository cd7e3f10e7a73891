// Package scraper fetches judgments from SAFLII and converts the case pages
// into cleaned markdown text.
package scraper

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://www.saflii.org"
	// DefaultDelay is the pause between case fetches. SAFLII is a free
	// service run on donations; hammer it and everyone gets blocked.
	DefaultDelay = 2 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/91.0.4472.124 Safari/537.36"
)

// Judgment is a single scraped case before it enters the pipeline.
type Judgment struct {
	Citation string
	URL      string
	Text     string
}

// Client scrapes SAFLII listing and case pages.
type Client struct {
	httpClient *http.Client
	baseURL    string
	delay      time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Client) { s.httpClient = c }
}

func WithBaseURL(u string) Option {
	return func(s *Client) { s.baseURL = strings.TrimRight(u, "/") }
}

func WithDelay(d time.Duration) Option {
	return func(s *Client) { s.delay = d }
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    DefaultBaseURL,
		delay:      DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	listItemRe   = regexp.MustCompile(`(?is)<li class="make-database"><a[^>]*>([^<]+)</a>`)
	singleCaseRe = regexp.MustCompile(`(?is)<h2>\s*(.*?)\s*</h2>`)
	citationRe   = regexp.MustCompile(`^.*\[\d{4}\].*\d+.*$`)
	courtRe      = regexp.MustCompile(`\[.*?\]\s+(\w+)\s+\d+`)
	dateRe       = regexp.MustCompile(`\((\d+\s+\w+\s+\d{4})\)`)

	scriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	breakRe  = regexp.MustCompile(`(?i)<(br|/p|/div|/h[1-6]|/li|/tr)[^>]*>`)
	bulletRe = regexp.MustCompile(`(?i)<li[^>]*>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	blankRe  = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// Citations fetches a SAFLII page and extracts case citations. Works for
// both year listing pages and single case pages. When targetCourt is set,
// only citations mentioning that court are returned.
func (c *Client) Citations(ctx context.Context, url, targetCourt string) ([]string, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	var citations []string
	for _, m := range listItemRe.FindAllStringSubmatch(body, -1) {
		if s := strings.TrimSpace(m[1]); s != "" {
			citations = append(citations, s)
		}
	}

	if len(citations) == 0 {
		// Single case pages carry the citation in the first h2.
		if m := singleCaseRe.FindStringSubmatch(body); m != nil {
			citation := strings.TrimSpace(m[1])
			if citation != "" && !strings.HasPrefix(citation, "20") {
				citations = []string{citation}
			}
		}
	}

	if targetCourt != "" {
		filtered := citations[:0]
		for _, citation := range citations {
			if strings.Contains(citation, targetCourt) {
				filtered = append(filtered, citation)
			}
		}
		citations = filtered
	}

	return citations, nil
}

// FetchCase downloads a case page and returns its cleaned markdown text.
func (c *Client) FetchCase(ctx context.Context, url string) (string, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return CleanJudgmentText(htmlToMarkdown(body)), nil
}

// ListingURL returns the SAFLII listing page for a court and year.
func (c *Client) ListingURL(court string, year int) string {
	return fmt.Sprintf("%s/za/cases/%s/%d/", c.baseURL, court, year)
}

// CaseURL derives the case page URL from a citation, or "" when the
// citation does not carry a case number for the court and year.
func (c *Client) CaseURL(citation, court string, year int) string {
	re, err := regexp.Compile(fmt.Sprintf(`\[%d\]\s+%s\s+(\d+)`, year, regexp.QuoteMeta(court)))
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(citation)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s/za/cases/%s/%d/%s.html", c.baseURL, court, year, m[1])
}

// Delay returns the configured inter-request pause.
func (c *Client) Delay() time.Duration {
	return c.delay
}

func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", c.baseURL+"/")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("saflii returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ExtractCourt pulls the court identifier out of a citation, e.g.
// "[2024] ZASCA 42" yields "ZASCA".
func ExtractCourt(citation string) string {
	m := courtRe.FindStringSubmatch(citation)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractJudgmentDate parses the "(15 March 2024)" suffix of a citation.
func ExtractJudgmentDate(citation string) (time.Time, bool) {
	m := dateRe.FindStringSubmatch(citation)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2 January 2006", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CleanJudgmentText strips SAFLII navigation chrome from the top of a
// converted page and collapses runs of blank lines.
func CleanJudgmentText(text string) string {
	lines := strings.Split(text, "\n")

	headers := []string{
		"About SAFLII",
		"Databases",
		"Search",
		"Terms of Use",
		"RSS Feeds",
		"<!-- image -->",
		"[Home]",
		"[Databases]",
		"[Search]",
		"[Noteup]",
	}

	startIdx := 0
	for i, line := range lines {
		skip := false
		for _, header := range headers {
			if strings.Contains(line, header) {
				startIdx = i + 1
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if citationRe.MatchString(line) {
			break
		}
	}

	cleaned := strings.Join(lines[startIdx:], "\n")
	cleaned = blankRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// htmlToMarkdown converts a case page to plain markdown-ish text: block
// elements become line breaks, list items become bullets, everything else
// is stripped.
func htmlToMarkdown(page string) string {
	out := scriptRe.ReplaceAllString(page, "")
	out = bulletRe.ReplaceAllString(out, "\n- ")
	out = breakRe.ReplaceAllString(out, "\n")
	out = tagRe.ReplaceAllString(out, "")
	out = html.UnescapeString(out)

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
