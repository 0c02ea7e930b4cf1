// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"fmt"

	"github.com/pdiddy/review-engine/internal/store"
	"github.com/pdiddy/review-engine/pkg/types"
)

// DecideOutcome reports the result of a triage decision. The in-session
// status change is applied optimistically before persistence, so Article
// always reflects the decision; Persisted tells the caller whether the
// store write also succeeded, and PersistErr carries the failure when it
// did not.
type DecideOutcome struct {
	Article    types.Article
	Persisted  bool
	PersistErr error
}

// Decide records an include or exclude decision for the displayed article
// at index i.
//
// Including an article first attempts to extract its structured study data;
// an extraction failure substitutes an all-"N/A" record rather than
// blocking the decision. The status flip and set membership are applied
// in-session unconditionally; a store write failure is surfaced in the
// outcome instead of rolling the decision back.
//
// Repeating the same decision is allowed and appends again (backends may
// deduplicate). Switching a decided article to the other set is not done
// here; use Remove to move an included article to the excluded set.
func (s *Session) Decide(ctx context.Context, i int, decision types.Decision) (DecideOutcome, error) {
	if !decision.Valid() {
		return DecideOutcome{}, fmt.Errorf("unknown decision %q", decision)
	}

	a, gen, err := s.snapshotForEnrichment(i)
	if err != nil {
		return DecideOutcome{}, err
	}
	if a.Status.Valid() && a.Status != decision {
		return DecideOutcome{}, fmt.Errorf("article %q already decided as %s: use remove to change it", a.Title, a.Status)
	}

	a.Status = decision
	if decision == types.DecisionInclude {
		data, err := s.gw.ExtractStudyData(ctx, a.Abstract)
		if err != nil {
			data = types.PlaceholderStudyData()
		}
		a.Extracted = &data
	}

	set := store.SetIncluded
	if decision == types.DecisionExclude {
		set = store.SetExcluded
	}
	persistErr := s.store.Append(set, a)

	outcome := DecideOutcome{Article: a, Persisted: persistErr == nil, PersistErr: persistErr}

	s.mu.Lock()
	defer s.mu.Unlock()

	if decision == types.DecisionInclude {
		s.included = append(s.included, a)
	} else {
		s.excluded = append(s.excluded, a)
	}

	// The displayed copy updates only if the list has not been replaced;
	// the decision itself stands either way.
	if gen == s.generation && i < len(s.articles) {
		s.articles[i].Status = decision
		s.articles[i].Extracted = a.Extracted
	}
	return outcome, nil
}

// Remove moves the article with the given composite key from the included
// set to the excluded set, in session state and in the store. This is the
// only path from include to exclude.
//
// Like Decide, the in-session move is optimistic: it applies before the
// store write, and a write failure leaves the session state moved while
// the returned error reports the unsaved change.
func (s *Session) Remove(key string) error {
	s.mu.Lock()

	idx := -1
	for j, a := range s.included {
		if a.Key() == key {
			idx = j
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return fmt.Errorf("article %s not in the included set", key)
	}

	moved := s.included[idx]
	moved.Status = types.DecisionExclude
	s.included = append(s.included[:idx], s.included[idx+1:]...)
	s.excluded = append(s.excluded, moved)

	for j := range s.articles {
		if s.articles[j].Key() == key {
			s.articles[j].Status = types.DecisionExclude
		}
	}
	s.mu.Unlock()

	if err := s.store.Move(key, store.SetIncluded, store.SetExcluded); err != nil {
		return fmt.Errorf("persisting removal of %s: %w", key, err)
	}
	return nil
}
