// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Page holds pagination metadata for one fetched result page, together with
// the query string that produced it. Navigation must redispatch Query, not
// whatever the user has since typed into the search box.
type Page struct {
	// Current is the 1-based page number.
	Current int `json:"current_page" yaml:"current_page"`

	// TotalPages is the number of pages the backend reports for the query.
	TotalPages int `json:"total_pages" yaml:"total_pages"`

	// TotalCount is the total number of results across all pages.
	TotalCount int `json:"total_count" yaml:"total_count"`

	// Query is the query string that produced this page.
	Query string `json:"query" yaml:"query"`
}

// InRange reports whether p is a valid navigation target for this page set.
func (pg Page) InRange(p int) bool {
	return p >= 1 && p <= pg.TotalPages
}
