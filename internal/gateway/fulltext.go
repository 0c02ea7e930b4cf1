// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"

	"github.com/pdiddy/review-engine/pkg/types"
)

// FullTextRequest carries the identifiers the backend tries in order:
// PMCID, then DOI, then a title search.
type FullTextRequest struct {
	Title string `json:"title"`
	DOI   string `json:"doi,omitempty"`
	PMID  string `json:"pmid,omitempty"`
	PMCID string `json:"pmcid,omitempty"`
}

// FetchFullText resolves an article's identifiers to a full-text location.
// The payload either embeds a PDF (EmbedPDF set, PDFURL present) or names an
// external link target in HTMLURL.
func (c *Client) FetchFullText(ctx context.Context, req FullTextRequest) (types.FullText, error) {
	var ft types.FullText
	if err := c.postJSON(ctx, "/get-full-text", req, &ft); err != nil {
		return types.FullText{}, err
	}
	return ft, nil
}
