// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/review-engine/internal/gateway"
	"github.com/pdiddy/review-engine/internal/store"
	"github.com/pdiddy/review-engine/pkg/types"
)

// fakeGateway substitutes the remote boundary. Each behavior defaults to a
// zero result; tests override only the calls they exercise.
type fakeGateway struct {
	search    func(query string, page int) (gateway.SearchPage, error)
	summarize func(abstract string) (string, error)
	stats     func(abstract string) (string, error)
	appraisal func(abstract string) (string, error)
	extract   func(abstract string) (types.StudyData, error)
	analyze   func(abstracts []string) (string, error)
	ask       func(content, question, chatContext string, history []types.ChatTurn) (gateway.ChatAnswer, error)
	fulltext  func(req gateway.FullTextRequest) (types.FullText, error)
}

func (f *fakeGateway) Search(_ context.Context, query string, page int) (gateway.SearchPage, error) {
	if f.search == nil {
		return gateway.SearchPage{}, nil
	}
	return f.search(query, page)
}

func (f *fakeGateway) CrowSearch(ctx context.Context, query string) (gateway.SearchPage, error) {
	return f.Search(ctx, query, 1)
}

func (f *fakeGateway) Summarize(_ context.Context, abstract string) (string, error) {
	if f.summarize == nil {
		return "", nil
	}
	return f.summarize(abstract)
}

func (f *fakeGateway) Statistics(_ context.Context, abstract string) (string, error) {
	if f.stats == nil {
		return "", nil
	}
	return f.stats(abstract)
}

func (f *fakeGateway) Appraisal(_ context.Context, abstract string) (string, error) {
	if f.appraisal == nil {
		return "", nil
	}
	return f.appraisal(abstract)
}

func (f *fakeGateway) ExtractStudyData(_ context.Context, abstract string) (types.StudyData, error) {
	if f.extract == nil {
		return types.StudyData{}, nil
	}
	return f.extract(abstract)
}

func (f *fakeGateway) Analyze(_ context.Context, abstracts []string) (string, error) {
	if f.analyze == nil {
		return "", nil
	}
	return f.analyze(abstracts)
}

func (f *fakeGateway) AskAboutArticle(_ context.Context, content, question, chatContext string, history []types.ChatTurn) (gateway.ChatAnswer, error) {
	if f.ask == nil {
		return gateway.ChatAnswer{}, nil
	}
	return f.ask(content, question, chatContext, history)
}

func (f *fakeGateway) FetchFullText(_ context.Context, req gateway.FullTextRequest) (types.FullText, error) {
	if f.fulltext == nil {
		return types.FullText{}, nil
	}
	return f.fulltext(req)
}

func resultPage(query string, total int, articles ...types.Article) gateway.SearchPage {
	return gateway.SearchPage{
		Articles: articles,
		Page:     types.Page{Current: 1, TotalCount: total, Query: query},
	}
}

func testArticle(pmid, title string) types.Article {
	return types.Article{
		Title:    title,
		Abstract: "Abstract of " + title,
		Authors:  []string{"A. Smith"},
		Year:     "2021",
		PMID:     pmid,
	}
}

func newSession(t *testing.T, gw Gateway) *Session {
	t.Helper()
	st := store.OpenFile(t.TempDir())
	t.Cleanup(func() { st.Close() })
	return New(gw, st, types.SessionConfig{PageSize: 10})
}

// searchOne puts a single article on display.
func searchOne(t *testing.T, s *Session, gw *fakeGateway, a types.Article) {
	t.Helper()
	gw.search = func(query string, page int) (gateway.SearchPage, error) {
		return resultPage(query, 1, a), nil
	}
	require.NoError(t, s.Search(context.Background(), "sepsis", 1))
}

func TestSearchReplacesList(t *testing.T) {
	gw := &fakeGateway{
		search: func(query string, page int) (gateway.SearchPage, error) {
			return resultPage(query, 2, testArticle("100", "Paper A"), testArticle("200", "Paper B")), nil
		},
	}
	s := newSession(t, gw)

	require.NoError(t, s.Search(context.Background(), "sepsis", 1))
	articles := s.Articles()
	require.Len(t, articles, 2)
	assert.Equal(t, "Paper A", articles[0].Title)
	assert.Equal(t, types.FieldUnset, articles[0].Summary.State)
	assert.Equal(t, "sepsis", s.Page().Query)
}

func TestSearchDerivesTotalPages(t *testing.T) {
	gw := &fakeGateway{
		search: func(query string, page int) (gateway.SearchPage, error) {
			return resultPage(query, 23, testArticle("100", "Paper A")), nil
		},
	}
	s := newSession(t, gw)

	require.NoError(t, s.Search(context.Background(), "sepsis", 1))
	assert.Equal(t, 3, s.Page().TotalPages)
}

func TestSearchFailureClearsList(t *testing.T) {
	gw := &fakeGateway{
		search: func(query string, page int) (gateway.SearchPage, error) {
			return resultPage(query, 1, testArticle("100", "Paper A")), nil
		},
	}
	s := newSession(t, gw)
	require.NoError(t, s.Search(context.Background(), "sepsis", 1))

	gw.search = func(query string, page int) (gateway.SearchPage, error) {
		return gateway.SearchPage{}, errors.New("backend down")
	}
	err := s.Search(context.Background(), "sepsis", 2)
	require.Error(t, err)
	assert.Empty(t, s.Articles())
	assert.Equal(t, 1, s.Page().Current)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	s := newSession(t, &fakeGateway{})
	assert.Error(t, s.Search(context.Background(), "   ", 1))
}

// A search whose response arrives after a newer search has replaced the
// list is discarded. The fake's first call dispatches a second search
// before returning, so its own result comes back stale.
func TestStaleSearchDiscarded(t *testing.T) {
	gw := &fakeGateway{}
	s := newSession(t, gw)

	first := true
	gw.search = func(query string, page int) (gateway.SearchPage, error) {
		if first {
			first = false
			require.NoError(t, s.Search(context.Background(), "newer", 1))
			return resultPage(query, 1, testArticle("100", "Stale Paper")), nil
		}
		return resultPage(query, 1, testArticle("200", "Fresh Paper")), nil
	}

	err := s.Search(context.Background(), "older", 1)
	assert.ErrorIs(t, err, ErrSuperseded)

	articles := s.Articles()
	require.Len(t, articles, 1)
	assert.Equal(t, "Fresh Paper", articles[0].Title)
	assert.Equal(t, "newer", s.Page().Query)
}

func TestSummarize(t *testing.T) {
	gw := &fakeGateway{
		summarize: func(abstract string) (string, error) {
			return "A concise summary.", nil
		},
	}
	s := newSession(t, gw)
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	require.NoError(t, s.Summarize(context.Background(), 0))
	a, err := s.Article(0)
	require.NoError(t, err)
	assert.Equal(t, types.FieldOK, a.Summary.State)
	assert.Equal(t, "A concise summary.", a.Summary.Text)
}

func TestEnrichmentFailureMarkers(t *testing.T) {
	failing := func(string) (string, error) { return "", errors.New("boom") }
	gw := &fakeGateway{summarize: failing, stats: failing, appraisal: failing}
	s := newSession(t, gw)
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	require.NoError(t, s.Summarize(context.Background(), 0))
	require.NoError(t, s.FetchStatistics(context.Background(), 0))
	require.NoError(t, s.FetchAppraisal(context.Background(), 0))

	a, err := s.Article(0)
	require.NoError(t, err)
	assert.Equal(t, types.FieldFailed, a.Summary.State)
	assert.Equal(t, "Failed to summarize.", a.Summary.Text)
	assert.Equal(t, "Failed to extract statistics.", a.Statistics.Text)
	assert.Equal(t, "Failed to perform critical appraisal.", a.Appraisal.Text)
}

func TestSummarizeBadIndex(t *testing.T) {
	s := newSession(t, &fakeGateway{})
	assert.Error(t, s.Summarize(context.Background(), 0))
}

func TestAskAppendsTurnAndReplaysHistory(t *testing.T) {
	var seenHistory []types.ChatTurn
	gw := &fakeGateway{
		ask: func(content, question, chatContext string, history []types.ChatTurn) (gateway.ChatAnswer, error) {
			seenHistory = history
			return gateway.ChatAnswer{Response: "answer to " + question, Confidence: "high"}, nil
		},
	}
	s := newSession(t, gw)
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	require.NoError(t, s.Ask(context.Background(), 0, types.ContextAbstract, "first?"))
	require.NoError(t, s.Ask(context.Background(), 0, types.ContextAbstract, "second?"))

	require.Len(t, seenHistory, 1)
	assert.Equal(t, "first?", seenHistory[0].Question)

	a, err := s.Article(0)
	require.NoError(t, err)
	thread := a.Thread(types.ContextAbstract)
	require.Len(t, thread, 2)
	assert.Equal(t, "answer to second?", thread[1].Answer)
	assert.Equal(t, "high", thread[1].Confidence)
}

func TestAskFailureRecordsErrorTurn(t *testing.T) {
	gw := &fakeGateway{
		ask: func(content, question, chatContext string, history []types.ChatTurn) (gateway.ChatAnswer, error) {
			return gateway.ChatAnswer{}, errors.New("boom")
		},
	}
	s := newSession(t, gw)
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	require.NoError(t, s.Ask(context.Background(), 0, types.ContextAbstract, "anything?"))

	a, err := s.Article(0)
	require.NoError(t, err)
	thread := a.Thread(types.ContextAbstract)
	require.Len(t, thread, 1)
	assert.Equal(t, "Failed to get response. Please try again.", thread[0].Answer)
	assert.Equal(t, "error", thread[0].Confidence)
}

func TestAskFullTextRequiresFetch(t *testing.T) {
	gw := &fakeGateway{}
	s := newSession(t, gw)
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	err := s.Ask(context.Background(), 0, types.ContextFullText, "anything?")
	assert.Error(t, err)

	_, err = s.FetchFullText(context.Background(), 0)
	require.NoError(t, err)
	assert.NoError(t, s.Ask(context.Background(), 0, types.ContextFullText, "anything?"))
}

func TestDecideInclude(t *testing.T) {
	gw := &fakeGateway{
		extract: func(abstract string) (types.StudyData, error) {
			return types.StudyData{SampleSize: "120", Outcome: "mortality", EffectSize: "0.8", ConfidenceInterval: "0.7-0.9"}, nil
		},
	}
	s := newSession(t, gw)
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	out, err := s.Decide(context.Background(), 0, types.DecisionInclude)
	require.NoError(t, err)
	assert.True(t, out.Persisted)
	assert.Equal(t, types.DecisionInclude, out.Article.Status)
	require.NotNil(t, out.Article.Extracted)
	assert.Equal(t, "120", out.Article.Extracted.SampleSize)

	assert.Len(t, s.Included(), 1)
	assert.Empty(t, s.Excluded())

	a, err := s.Article(0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionInclude, a.Status)
}

func TestDecideIncludeExtractionFailureUsesPlaceholder(t *testing.T) {
	gw := &fakeGateway{
		extract: func(abstract string) (types.StudyData, error) {
			return types.StudyData{}, errors.New("boom")
		},
	}
	s := newSession(t, gw)
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	out, err := s.Decide(context.Background(), 0, types.DecisionInclude)
	require.NoError(t, err)
	require.NotNil(t, out.Article.Extracted)
	assert.Equal(t, types.PlaceholderStudyData(), *out.Article.Extracted)
	assert.Len(t, s.Included(), 1)
}

func TestDecideExclude(t *testing.T) {
	gw := &fakeGateway{}
	s := newSession(t, gw)
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	out, err := s.Decide(context.Background(), 0, types.DecisionExclude)
	require.NoError(t, err)
	assert.Nil(t, out.Article.Extracted)
	assert.Len(t, s.Excluded(), 1)
	assert.Empty(t, s.Included())
}

func TestDecideCannotSwitchSets(t *testing.T) {
	gw := &fakeGateway{}
	s := newSession(t, gw)
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	_, err := s.Decide(context.Background(), 0, types.DecisionInclude)
	require.NoError(t, err)

	_, err = s.Decide(context.Background(), 0, types.DecisionExclude)
	assert.Error(t, err)

	// Repeating the same decision is allowed.
	_, err = s.Decide(context.Background(), 0, types.DecisionInclude)
	assert.NoError(t, err)
}

// failingStore rejects writes so persistence failures can be observed.
type failingStore struct{}

func (failingStore) Load() (store.Decisions, error)          { return store.Decisions{}, nil }
func (failingStore) Append(store.Set, types.Article) error   { return errors.New("disk full") }
func (failingStore) Move(string, store.Set, store.Set) error { return errors.New("disk full") }
func (failingStore) Close() error                            { return nil }

func TestDecidePersistFailureIsSurfacedNotFatal(t *testing.T) {
	gw := &fakeGateway{}
	s := New(gw, failingStore{}, types.SessionConfig{PageSize: 10})
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	out, err := s.Decide(context.Background(), 0, types.DecisionExclude)
	require.NoError(t, err)
	assert.False(t, out.Persisted)
	assert.Error(t, out.PersistErr)

	// The in-session decision stands despite the failed write.
	a, err := s.Article(0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionExclude, a.Status)
	assert.Len(t, s.Excluded(), 1)
}

func TestRemoveMovesIncludedToExcluded(t *testing.T) {
	gw := &fakeGateway{}
	s := newSession(t, gw)
	a := testArticle("100", "Paper A")
	searchOne(t, s, gw, a)

	_, err := s.Decide(context.Background(), 0, types.DecisionInclude)
	require.NoError(t, err)
	require.NoError(t, s.Remove(a.Key()))

	assert.Empty(t, s.Included())
	require.Len(t, s.Excluded(), 1)
	assert.Equal(t, types.DecisionExclude, s.Excluded()[0].Status)

	displayed, err := s.Article(0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionExclude, displayed.Status)
}

// moveFailingStore accepts appends but rejects moves, so Remove's
// persistence-failure path can be observed.
type moveFailingStore struct {
	store.Store
}

func (moveFailingStore) Move(string, store.Set, store.Set) error {
	return errors.New("disk full")
}

func TestRemovePersistFailureKeepsSessionMove(t *testing.T) {
	gw := &fakeGateway{}
	st := store.OpenFile(t.TempDir())
	t.Cleanup(func() { st.Close() })
	s := New(gw, moveFailingStore{Store: st}, types.SessionConfig{PageSize: 10})

	a := testArticle("100", "Paper A")
	searchOne(t, s, gw, a)
	_, err := s.Decide(context.Background(), 0, types.DecisionInclude)
	require.NoError(t, err)

	// The session move stands; the error reports the unsaved change.
	err = s.Remove(a.Key())
	require.Error(t, err)
	assert.Empty(t, s.Included())
	require.Len(t, s.Excluded(), 1)
	assert.Equal(t, types.DecisionExclude, s.Excluded()[0].Status)
}

func TestRemoveUnknownKey(t *testing.T) {
	s := newSession(t, &fakeGateway{})
	assert.Error(t, s.Remove("pmid:999"))
}

// Decisions made in one session are visible to a new session over the same
// store.
func TestDecisionsSurviveRestart(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeGateway{}

	st := store.OpenFile(dir)
	s := New(gw, st, types.SessionConfig{PageSize: 10})
	searchOne(t, s, gw, testArticle("100", "Paper A"))
	_, err := s.Decide(context.Background(), 0, types.DecisionInclude)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	reopened := New(gw, store.OpenFile(dir), types.SessionConfig{PageSize: 10})
	require.Len(t, reopened.Included(), 1)
	assert.Equal(t, "pmid:100", reopened.Included()[0].Key())
}

func TestFetchFullTextRequiresIdentifier(t *testing.T) {
	gw := &fakeGateway{}
	s := newSession(t, gw)
	searchOne(t, s, gw, types.Article{Title: "Untraceable Paper", Abstract: "x"})

	_, err := s.FetchFullText(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoIdentifier)
}

func TestFetchFullTextCachesByKey(t *testing.T) {
	calls := 0
	gw := &fakeGateway{
		fulltext: func(req gateway.FullTextRequest) (types.FullText, error) {
			calls++
			return types.FullText{PDFURL: "https://example.org/a.pdf", Source: "pmc", EmbedPDF: true}, nil
		},
	}
	s := newSession(t, gw)
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	ft, err := s.FetchFullText(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, HasFullText(ft))

	_, err = s.FetchFullText(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	a, err := s.Article(0)
	require.NoError(t, err)
	require.NotNil(t, a.FullText)
	assert.Equal(t, "https://example.org/a.pdf", a.FullText.PDFURL)
}

// A search landing while full text resolves drops only the displayed
// copy; the payload is still returned and cached for later requests.
func TestFetchFullTextSurvivesSupersedingSearch(t *testing.T) {
	gw := &fakeGateway{}
	s := newSession(t, gw)
	a := testArticle("100", "Paper A")
	searchOne(t, s, gw, a)

	calls := 0
	gw.fulltext = func(req gateway.FullTextRequest) (types.FullText, error) {
		calls++
		require.NoError(t, s.Search(context.Background(), "newer", 1))
		return types.FullText{PDFURL: "https://example.org/a.pdf", EmbedPDF: true}, nil
	}

	ft, err := s.FetchFullText(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, HasFullText(ft))

	// The new page's copy of the same article hits the cache.
	gw.fulltext = nil
	ft, err = s.FetchFullText(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/a.pdf", ft.PDFURL)
	assert.Equal(t, 1, calls)
}

func TestChangePageRedispatchesLastQuery(t *testing.T) {
	var gotQuery string
	var gotPage int
	gw := &fakeGateway{
		search: func(query string, page int) (gateway.SearchPage, error) {
			gotQuery, gotPage = query, page
			return gateway.SearchPage{Page: types.Page{Current: page, TotalPages: 3, TotalCount: 23, Query: query}}, nil
		},
	}
	s := newSession(t, gw)
	require.NoError(t, s.Search(context.Background(), "sepsis", 1))

	require.NoError(t, s.NextPage(context.Background()))
	assert.Equal(t, "sepsis", gotQuery)
	assert.Equal(t, 2, gotPage)

	require.NoError(t, s.LastPage(context.Background()))
	assert.Equal(t, 3, gotPage)
}

func TestChangePageOutOfRangeIsNoOp(t *testing.T) {
	calls := 0
	gw := &fakeGateway{
		search: func(query string, page int) (gateway.SearchPage, error) {
			calls++
			return gateway.SearchPage{Page: types.Page{Current: page, TotalPages: 2, TotalCount: 12, Query: query}}, nil
		},
	}
	s := newSession(t, gw)
	require.NoError(t, s.Search(context.Background(), "sepsis", 1))

	require.NoError(t, s.ChangePage(context.Background(), 0))
	require.NoError(t, s.ChangePage(context.Background(), 3))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, s.Page().Current)
}

func TestChangePageBeforeAnySearchIsNoOp(t *testing.T) {
	calls := 0
	gw := &fakeGateway{
		search: func(query string, page int) (gateway.SearchPage, error) {
			calls++
			return gateway.SearchPage{}, nil
		},
	}
	s := newSession(t, gw)
	require.NoError(t, s.ChangePage(context.Background(), 1))
	assert.Zero(t, calls)
}

// Analyze covers every abstract on the displayed page, regardless of
// triage status.
func TestAnalyzeCoversDisplayedPage(t *testing.T) {
	var seen []string
	gw := &fakeGateway{
		search: func(query string, page int) (gateway.SearchPage, error) {
			return resultPage(query, 2, testArticle("100", "Paper A"), testArticle("200", "Paper B")), nil
		},
		analyze: func(abstracts []string) (string, error) {
			seen = abstracts
			return "Overall synthesis.", nil
		},
	}
	s := newSession(t, gw)
	require.NoError(t, s.Search(context.Background(), "sepsis", 1))

	require.NoError(t, s.Analyze(context.Background()))
	assert.Equal(t, []string{"Abstract of Paper A", "Abstract of Paper B"}, seen)
	assert.Equal(t, types.FieldOK, s.Analysis().State)
	assert.Equal(t, "Overall synthesis.", s.Analysis().Text)
}

func TestAnalyzeFailureMarker(t *testing.T) {
	gw := &fakeGateway{
		analyze: func(abstracts []string) (string, error) {
			return "", errors.New("boom")
		},
	}
	s := newSession(t, gw)
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	require.NoError(t, s.Analyze(context.Background()))
	assert.Equal(t, types.FieldFailed, s.Analysis().State)
	assert.Equal(t, "Failed to generate overall summary.", s.Analysis().Text)
}

func TestAnalyzeWithNothingDisplayedClears(t *testing.T) {
	called := false
	gw := &fakeGateway{
		analyze: func(abstracts []string) (string, error) {
			called = true
			return "", nil
		},
	}
	s := newSession(t, gw)
	require.NoError(t, s.Analyze(context.Background()))
	assert.False(t, called)
	assert.Equal(t, types.FieldUnset, s.Analysis().State)
}

func TestAnalyzeDiscardedAfterNewSearch(t *testing.T) {
	gw := &fakeGateway{}
	s := newSession(t, gw)
	searchOne(t, s, gw, testArticle("100", "Paper A"))

	gw.analyze = func(abstracts []string) (string, error) {
		// A new search lands while the synthesis is in flight.
		require.NoError(t, s.Search(context.Background(), "newer", 1))
		return "Stale synthesis.", nil
	}

	err := s.Analyze(context.Background())
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, types.FieldUnset, s.Analysis().State)
}
