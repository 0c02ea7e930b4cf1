// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/review-engine/pkg/types"
)

func testClient(ts *httptest.Server) *Client {
	c := New(types.GatewayConfig{BaseURL: ts.URL})
	c.httpClient = ts.Client()
	return c
}

const sampleSearchJSON = `{
  "results": [
    {
      "number": 1,
      "title": "Mindfulness for adolescent anxiety",
      "abstract": "A randomized trial of mindfulness training.",
      "authors": ["A. Smith", "B. Jones"],
      "year": "2021",
      "article_type": "Randomized Controlled Trial",
      "pmid": "33221100",
      "doi": "10.1000/jat.2021.1",
      "pmcid": "PMC7654321",
      "full_text_available": true
    },
    {
      "number": 2,
      "title": "CBT in primary care",
      "abstract": "An observational cohort.",
      "authors": ["C. Lee"],
      "year": "N/A",
      "article_type": "Journal Article",
      "full_text_available": false
    }
  ],
  "total_count": 23,
  "current_page": 1,
  "total_pages": 3
}`

func TestSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "mindfulness anxiety", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		fmt.Fprint(w, sampleSearchJSON)
	}))
	defer ts.Close()

	page, err := testClient(ts).Search(context.Background(), "mindfulness anxiety", 1)
	require.NoError(t, err)

	require.Len(t, page.Articles, 2)
	assert.Equal(t, 23, page.Page.TotalCount)
	assert.Equal(t, 3, page.Page.TotalPages)
	assert.Equal(t, 1, page.Page.Current)
	assert.Equal(t, "mindfulness anxiety", page.Page.Query)

	a := page.Articles[0]
	assert.Equal(t, "Mindfulness for adolescent anxiety", a.Title)
	assert.Equal(t, []string{"A. Smith", "B. Jones"}, a.Authors)
	assert.Equal(t, "33221100", a.PMID)
	assert.True(t, a.FullTextAvailable)
	// Enrichment bags start empty.
	assert.False(t, a.Summary.Requested())
	assert.Empty(t, a.Chats)
	assert.Equal(t, types.Decision(""), a.Status)
}

func TestSearchServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"detail": "esearch upstream timeout"}`)
	}))
	defer ts.Close()

	_, err := testClient(ts).Search(context.Background(), "anything", 1)
	require.Error(t, err)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, http.StatusInternalServerError, f.StatusCode)
	assert.Equal(t, "esearch upstream timeout", f.Message)
}

func TestSearchTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close() // connection refused from here on

	_, err := testClient(ts).Search(context.Background(), "anything", 1)
	require.Error(t, err)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Zero(t, f.StatusCode)
}

func TestCrowSearchSendsBearerToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/crow-search", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"results": [{"number": 1, "title": "Deep result", "abstract": "x", "authors": ["D"], "year": "2024", "article_type": "Article"}], "total_count": 1, "current_page": 1, "total_pages": 1}`)
	}))
	defer ts.Close()

	c := testClient(ts)
	c.SetToken("tok-123")

	page, err := c.CrowSearch(context.Background(), "deep question")
	require.NoError(t, err)
	require.Len(t, page.Articles, 1)
	assert.Equal(t, "Deep result", page.Articles[0].Title)
}

func TestCrowSearchUnauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail": "Could not validate credentials"}`)
	}))
	defer ts.Close()

	_, err := testClient(ts).CrowSearch(context.Background(), "deep question")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSuggest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/suggestions", r.URL.Path)
		fmt.Fprint(w, `{"suggestions": ["hypertension", "hypotension"]}`)
	}))
	defer ts.Close()

	got, err := testClient(ts).Suggest(context.Background(), "hyp")
	require.NoError(t, err)
	assert.Equal(t, []string{"hypertension", "hypotension"}, got)
}

func TestSummarize(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Abstract string `json:"abstract"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "An abstract.", req.Abstract)
		fmt.Fprint(w, `{"summary": "Short version."}`)
	}))
	defer ts.Close()

	got, err := testClient(ts).Summarize(context.Background(), "An abstract.")
	require.NoError(t, err)
	assert.Equal(t, "Short version.", got)
}

func TestExtractStudyData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"sample_size": "120", "outcome": "HAM-A score", "effect_size": "d=0.4", "confidence_interval": "0.1-0.7"}`)
	}))
	defer ts.Close()

	got, err := testClient(ts).ExtractStudyData(context.Background(), "An abstract.")
	require.NoError(t, err)
	assert.Equal(t, "120", got.SampleSize)
	assert.Equal(t, "HAM-A score", got.Outcome)
}

func TestAskAboutArticleReplaysHistory(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ArticleContent string `json:"article_content"`
			Query          string `json:"query"`
			Context        string `json:"context"`
			History        []struct {
				Q string `json:"q"`
				A string `json:"a"`
			} `json:"history"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What was the dropout rate?", req.Query)
		require.Len(t, req.History, 1)
		assert.Equal(t, "How many participants?", req.History[0].Q)
		assert.Equal(t, "120 adolescents.", req.History[0].A)
		fmt.Fprint(w, `{"response": "Twelve percent.", "confidence": "high"}`)
	}))
	defer ts.Close()

	history := []types.ChatTurn{{Question: "How many participants?", Answer: "120 adolescents.", Confidence: "high"}}
	got, err := testClient(ts).AskAboutArticle(context.Background(), "abstract text", "What was the dropout rate?", "ctx", history)
	require.NoError(t, err)
	assert.Equal(t, "Twelve percent.", got.Response)
	assert.Equal(t, "high", got.Confidence)
}

func TestFetchFullText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req FullTextRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "PMC7654321", req.PMCID)
		fmt.Fprint(w, `{"htmlUrl": "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC7654321", "source": "PMC", "message": "Full text available on PMC", "embedPdf": false}`)
	}))
	defer ts.Close()

	got, err := testClient(ts).FetchFullText(context.Background(), FullTextRequest{Title: "T", PMCID: "PMC7654321"})
	require.NoError(t, err)
	assert.Equal(t, "PMC", got.Source)
	assert.False(t, got.EmbedPDF)
	assert.Contains(t, got.HTMLURL, "PMC7654321")
}

func TestLoginInstallsToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "reviewer", creds.Username)
		fmt.Fprint(w, `{"access_token": "tok-456", "token_type": "bearer"}`)
	}))
	defer ts.Close()

	c := testClient(ts)
	token, err := c.Login(context.Background(), Credentials{Username: "reviewer", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-456", token)
	assert.Equal(t, "tok-456", c.Token())
}

func TestLoginRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail": "Incorrect username or password"}`)
	}))
	defer ts.Close()

	c := testClient(ts)
	_, err := c.Login(context.Background(), Credentials{Username: "reviewer", Password: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, c.Token())

	var errAs *Failure
	require.True(t, errors.As(err, &errAs))
	assert.Equal(t, "Incorrect username or password", errAs.Message)
}
