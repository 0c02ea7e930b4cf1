// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the in-memory state of one review session: the
// current query, the displayed result page, and each article's enrichment
// bag. It is the single source of truth the presentation layer renders
// from; every remote outcome is merged back here before anything is shown.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/review-engine/internal/gateway"
	"github.com/pdiddy/review-engine/internal/store"
	"github.com/pdiddy/review-engine/pkg/types"
)

// ErrSuperseded is returned when an operation's result arrived after a
// newer search had already replaced the article list. The stale result is
// discarded, never merged.
var ErrSuperseded = errors.New("result superseded by a newer search")

// Gateway is the remote boundary the session dispatches to. *gateway.Client
// implements it; tests substitute fakes.
type Gateway interface {
	Search(ctx context.Context, query string, page int) (gateway.SearchPage, error)
	CrowSearch(ctx context.Context, query string) (gateway.SearchPage, error)
	Summarize(ctx context.Context, abstract string) (string, error)
	Statistics(ctx context.Context, abstract string) (string, error)
	Appraisal(ctx context.Context, abstract string) (string, error)
	ExtractStudyData(ctx context.Context, abstract string) (types.StudyData, error)
	Analyze(ctx context.Context, abstracts []string) (string, error)
	AskAboutArticle(ctx context.Context, content, question, chatContext string, history []types.ChatTurn) (gateway.ChatAnswer, error)
	FetchFullText(ctx context.Context, req gateway.FullTextRequest) (types.FullText, error)
}

var _ Gateway = (*gateway.Client)(nil)

const defaultPageSize = 10

// Session is the review workflow state machine. All methods are safe for
// concurrent use: independent enrichment calls may be in flight at once,
// racing on last-write-wins per field, while a search generation counter
// keeps stale search results from clobbering newer ones.
type Session struct {
	gw       Gateway
	store    store.Store
	pageSize int

	mu         sync.Mutex
	articles   []types.Article
	page       types.Page
	lastQuery  string
	generation uint64

	included []types.Article
	excluded []types.Article

	analysis types.Field

	// fulltext caches resolved payloads across searches within the
	// session, keyed by the article composite key (PMID or DOI only).
	fulltext map[string]types.FullText
}

// New builds a session over the given gateway and decision store, loading
// the persisted sets. Corrupt or unreadable stored decisions load as empty
// sets; a broken store never prevents a session from starting.
func New(gw Gateway, st store.Store, cfg types.SessionConfig) *Session {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	decisions, err := st.Load()
	if err != nil {
		decisions = store.Decisions{}
	}

	return &Session{
		gw:       gw,
		store:    st,
		pageSize: pageSize,
		included: decisions.Included,
		excluded: decisions.Excluded,
		fulltext: make(map[string]types.FullText),
	}
}

// Search issues a new query and, on success, replaces the displayed list
// wholesale with the returned page. Enrichment bags start empty for the
// new page since identity is page-scoped. On failure the list is cleared
// and pagination resets to page 1 with no results.
//
// Only the latest issued search is authoritative: if a newer search was
// dispatched while this one was in flight, the result is discarded and
// ErrSuperseded is returned.
func (s *Session) Search(ctx context.Context, query string, page int) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("query is empty: provide a search query")
	}
	if page < 1 {
		return fmt.Errorf("page %d out of range: pages start at 1", page)
	}

	gen := s.nextGeneration()
	sp, err := s.gw.Search(ctx, query, page)
	return s.applySearch(gen, query, sp, err)
}

// CrowSearch issues a query against the authenticated deep-search backend,
// with the same supersession and failure semantics as Search.
func (s *Session) CrowSearch(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("query is empty: provide a search query")
	}

	gen := s.nextGeneration()
	sp, err := s.gw.CrowSearch(ctx, query)
	return s.applySearch(gen, query, sp, err)
}

func (s *Session) nextGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

func (s *Session) applySearch(gen uint64, query string, sp gateway.SearchPage, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return ErrSuperseded
	}

	if err != nil {
		s.articles = nil
		s.page = types.Page{Current: 1}
		return err
	}

	s.articles = sp.Articles
	s.page = sp.Page
	// Some backends report only a total count. Derive the page count from
	// the configured page size so navigation still knows its bounds.
	if s.page.TotalPages == 0 && s.page.TotalCount > 0 {
		s.page.TotalPages = (s.page.TotalCount + s.pageSize - 1) / s.pageSize
	}
	s.lastQuery = query
	return nil
}

// Articles returns a snapshot of the displayed list.
func (s *Session) Articles() []types.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Article, len(s.articles))
	copy(out, s.articles)
	return out
}

// Article returns the displayed article at index i.
func (s *Session) Article(i int) (types.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.articles) {
		return types.Article{}, fmt.Errorf("article index %d out of range (%d displayed)", i, len(s.articles))
	}
	return s.articles[i], nil
}

// Page returns the current pagination metadata.
func (s *Session) Page() types.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Included returns a snapshot of the included set.
func (s *Session) Included() []types.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Article, len(s.included))
	copy(out, s.included)
	return out
}

// Excluded returns a snapshot of the excluded set.
func (s *Session) Excluded() []types.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Article, len(s.excluded))
	copy(out, s.excluded)
	return out
}

// Analysis returns the cross-article synthesis field.
func (s *Session) Analysis() types.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis
}

// snapshotForEnrichment captures the fields an enrichment call needs along
// with the generation it belongs to, so the merge can be discarded if a
// newer search replaces the list while the call is in flight.
func (s *Session) snapshotForEnrichment(i int) (types.Article, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.articles) {
		return types.Article{}, 0, fmt.Errorf("article index %d out of range (%d displayed)", i, len(s.articles))
	}
	return s.articles[i], s.generation, nil
}

// merge applies fn to the article at index i unless the list has been
// replaced since gen was captured.
func (s *Session) merge(gen uint64, i int, fn func(a *types.Article)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || i >= len(s.articles) {
		return ErrSuperseded
	}
	fn(&s.articles[i])
	return nil
}
