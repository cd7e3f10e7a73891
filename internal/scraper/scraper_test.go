package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<html><body>
<ul>
<li class="make-database"><a href="/za/cases/ZASCA/2024/1.html">Minister of Police v Mahlangu (1/2024) [2024] ZASCA 1 (12 January 2024)</a></li>
<li class="make-database"><a href="/za/cases/ZASCA/2024/2.html">S v Ndlovu (2/2024) [2024] ZASCA 2 (19 January 2024)</a></li>
<li class="make-database"><a href="/za/cases/ZACC/2024/5.html">Speaker of the National Assembly v Others (5/2024) [2024] ZACC 5 (1 February 2024)</a></li>
</ul>
</body></html>`

const casePage = `<html><head><script>var x = 1;</script></head><body>
<p>About SAFLII</p>
<p>[Home] [Databases] [Search]</p>
<h2>Minister of Police v Mahlangu (1/2024) [2024] ZASCA 1 (12 January 2024)</h2>
<p>The appellant appeals against the whole judgment &amp; order of the High Court.</p>
<p>Order: the appeal is dismissed with costs.</p>
</body></html>`

func TestClient_Citations_ListPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithDelay(0))

	citations, err := c.Citations(context.Background(), srv.URL, "")
	require.NoError(t, err)
	assert.Len(t, citations, 3)

	zasca, err := c.Citations(context.Background(), srv.URL, "ZASCA")
	require.NoError(t, err)
	require.Len(t, zasca, 2)
	assert.Contains(t, zasca[0], "ZASCA 1")
}

func TestClient_Citations_SingleCasePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(casePage))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))

	citations, err := c.Citations(context.Background(), srv.URL, "")
	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Contains(t, citations[0], "[2024] ZASCA 1")
}

func TestClient_Citations_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))

	_, err := c.Citations(context.Background(), srv.URL, "")
	assert.Error(t, err)
}

func TestClient_FetchCase_CleansNavigation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(casePage))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))

	text, err := c.FetchCase(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.NotContains(t, text, "About SAFLII")
	assert.NotContains(t, text, "[Home]")
	assert.NotContains(t, text, "var x = 1")
	assert.Contains(t, text, "[2024] ZASCA 1")
	assert.Contains(t, text, "judgment & order")
	assert.Contains(t, text, "dismissed with costs")
}

func TestClient_CaseURL(t *testing.T) {
	c := New()

	url := c.CaseURL("Minister of Police v Mahlangu (1/2024) [2024] ZASCA 1 (12 January 2024)", "ZASCA", 2024)
	assert.Equal(t, "https://www.saflii.org/za/cases/ZASCA/2024/1.html", url)

	assert.Empty(t, c.CaseURL("no citation here", "ZASCA", 2024))
	assert.Empty(t, c.CaseURL("[2024] ZACC 5", "ZASCA", 2024))
}

func TestClient_ListingURL(t *testing.T) {
	c := New()
	assert.Equal(t, "https://www.saflii.org/za/cases/ZACC/2023/", c.ListingURL("ZACC", 2023))
}

func TestExtractCourt(t *testing.T) {
	assert.Equal(t, "ZASCA", ExtractCourt("S v Ndlovu (2/2024) [2024] ZASCA 2 (19 January 2024)"))
	assert.Empty(t, ExtractCourt("no citation"))
}

func TestExtractJudgmentDate(t *testing.T) {
	date, ok := ExtractJudgmentDate("S v Ndlovu (2/2024) [2024] ZASCA 2 (19 January 2024)")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC), date)

	_, ok = ExtractJudgmentDate("S v Ndlovu [2024] ZASCA 2")
	assert.False(t, ok)
}

func TestCleanJudgmentText_CollapsesBlankLines(t *testing.T) {
	in := "About SAFLII\nSome nav\nS v X [2024] ZASCA 9\n\n\n\nBody text"
	out := CleanJudgmentText(in)
	assert.NotContains(t, out, "About SAFLII")
	assert.Contains(t, out, "S v X [2024] ZASCA 9")
	assert.NotContains(t, out, "\n\n\n")
}
