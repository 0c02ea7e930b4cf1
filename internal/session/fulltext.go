// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"strings"

	"github.com/pdiddy/review-engine/internal/gateway"
	"github.com/pdiddy/review-engine/pkg/types"
)

// ErrNoIdentifier is returned when full text is requested for an article
// that has neither a PMID nor a DOI. Title-only identity is too unstable to
// cache a full-text payload under, so such articles are treated as having
// no full text available.
var ErrNoIdentifier = errors.New("article has no PMID or DOI: full text unavailable")

// FetchFullText resolves the full-text location for the displayed article
// at index i and caches it on the article and in the session, keyed by the
// article's identifier. A repeat request for the same article within the
// session is served from the cache without a remote call.
func (s *Session) FetchFullText(ctx context.Context, i int) (types.FullText, error) {
	a, gen, err := s.snapshotForEnrichment(i)
	if err != nil {
		return types.FullText{}, err
	}
	if a.PMID == "" && a.DOI == "" {
		return types.FullText{}, ErrNoIdentifier
	}
	key := a.Key()

	s.mu.Lock()
	cached, ok := s.fulltext[key]
	s.mu.Unlock()
	if ok {
		// A superseding search only drops the displayed copy; the cached
		// payload stays valid for the caller.
		ft := cached
		_ = s.merge(gen, i, func(a *types.Article) { a.FullText = &ft })
		return cached, nil
	}

	ft, err := s.gw.FetchFullText(ctx, gateway.FullTextRequest{
		Title: a.Title,
		DOI:   a.DOI,
		PMID:  a.PMID,
		PMCID: a.PMCID,
	})
	if err != nil {
		return types.FullText{}, err
	}

	s.mu.Lock()
	s.fulltext[key] = ft
	s.mu.Unlock()

	stored := ft
	_ = s.merge(gen, i, func(a *types.Article) { a.FullText = &stored })
	return ft, nil
}

// HasFullText reports whether the article's full-text payload actually
// resolved to a viewable document rather than a not-found message.
func HasFullText(ft types.FullText) bool {
	return strings.TrimSpace(ft.HTMLURL) != "" || strings.TrimSpace(ft.PDFURL) != ""
}
