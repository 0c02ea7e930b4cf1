// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import "context"

// ChangePage re-dispatches the last successful query for the given page.
// Requests outside [1, TotalPages], or before any search has succeeded,
// are silently ignored: the current page stays displayed.
func (s *Session) ChangePage(ctx context.Context, page int) error {
	s.mu.Lock()
	query := s.lastQuery
	inRange := query != "" && s.page.InRange(page)
	s.mu.Unlock()

	if !inRange {
		return nil
	}
	return s.Search(ctx, query, page)
}

// FirstPage navigates to page 1.
func (s *Session) FirstPage(ctx context.Context) error {
	return s.ChangePage(ctx, 1)
}

// PrevPage navigates one page back.
func (s *Session) PrevPage(ctx context.Context) error {
	return s.ChangePage(ctx, s.Page().Current-1)
}

// NextPage navigates one page forward.
func (s *Session) NextPage(ctx context.Context) error {
	return s.ChangePage(ctx, s.Page().Current+1)
}

// LastPage navigates to the final page.
func (s *Session) LastPage(ctx context.Context) error {
	return s.ChangePage(ctx, s.Page().TotalPages)
}
