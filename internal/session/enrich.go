// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"

	"github.com/pdiddy/review-engine/pkg/types"
)

// User-facing markers written into a field when its enrichment call fails.
// The field still flips to the failed state so callers can distinguish
// "failed" from "never requested" without parsing the text.
const (
	summaryFailed    = "Failed to summarize."
	statisticsFailed = "Failed to extract statistics."
	appraisalFailed  = "Failed to perform critical appraisal."
	analysisFailed   = "Failed to generate overall summary."
)

// Summarize requests a summary for the displayed article at index i and
// merges the outcome into its summary field. A remote failure is absorbed
// into the field as a failure marker, never returned as an error; the only
// errors are a bad index or a superseding search.
func (s *Session) Summarize(ctx context.Context, i int) error {
	return s.enrichField(ctx, i, s.gw.Summarize, summaryFailed,
		func(a *types.Article, f types.Field) { a.Summary = f })
}

// FetchStatistics requests the statistics report for the displayed article
// at index i, with the same merge semantics as Summarize.
func (s *Session) FetchStatistics(ctx context.Context, i int) error {
	return s.enrichField(ctx, i, s.gw.Statistics, statisticsFailed,
		func(a *types.Article, f types.Field) { a.Statistics = f })
}

// FetchAppraisal requests the critical appraisal for the displayed article
// at index i, with the same merge semantics as Summarize.
func (s *Session) FetchAppraisal(ctx context.Context, i int) error {
	return s.enrichField(ctx, i, s.gw.Appraisal, appraisalFailed,
		func(a *types.Article, f types.Field) { a.Appraisal = f })
}

func (s *Session) enrichField(
	ctx context.Context,
	i int,
	call func(context.Context, string) (string, error),
	failMarker string,
	assign func(*types.Article, types.Field),
) error {
	a, gen, err := s.snapshotForEnrichment(i)
	if err != nil {
		return err
	}

	field := types.Field{}
	if text, err := call(ctx, a.Abstract); err != nil {
		field = types.FailedField(failMarker)
	} else {
		field = types.OKField(text)
	}

	return s.merge(gen, i, func(a *types.Article) { assign(a, field) })
}

// Analyze synthesizes the abstracts of every currently displayed article
// into one cross-page summary, stored session-wide rather than per
// article. With nothing displayed it clears the field and does nothing
// else. A search replacing the list while the call is in flight discards
// the result.
func (s *Session) Analyze(ctx context.Context) error {
	s.mu.Lock()
	gen := s.generation
	abstracts := make([]string, 0, len(s.articles))
	for _, a := range s.articles {
		abstracts = append(abstracts, a.Abstract)
	}
	s.mu.Unlock()

	if len(abstracts) == 0 {
		s.mu.Lock()
		s.analysis = types.Field{}
		s.mu.Unlock()
		return nil
	}

	field := types.Field{}
	if text, err := s.gw.Analyze(ctx, abstracts); err != nil {
		field = types.FailedField(analysisFailed)
	} else {
		field = types.OKField(text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrSuperseded
	}
	s.analysis = field
	return nil
}
