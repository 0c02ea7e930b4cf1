// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pdiddy/review-engine/pkg/types"
)

// SearchPage is one page of search results together with its pagination
// metadata, as returned by the backend.
type SearchPage struct {
	Articles []types.Article
	Page     types.Page
}

// searchResponse mirrors the backend's search envelope.
type searchResponse struct {
	Results     []articleJSON `json:"results"`
	TotalCount  int           `json:"total_count"`
	CurrentPage int           `json:"current_page"`
	TotalPages  int           `json:"total_pages"`
}

type articleJSON struct {
	Number            int      `json:"number"`
	Title             string   `json:"title"`
	Abstract          string   `json:"abstract"`
	Authors           []string `json:"authors"`
	Year              string   `json:"year"`
	ArticleType       string   `json:"article_type"`
	PMID              string   `json:"pmid"`
	DOI               string   `json:"doi"`
	PMCID             string   `json:"pmcid"`
	FullTextAvailable bool     `json:"full_text_available"`
}

func (a articleJSON) toArticle() types.Article {
	return types.Article{
		Number:            a.Number,
		Title:             a.Title,
		Abstract:          a.Abstract,
		Authors:           a.Authors,
		Year:              a.Year,
		ArticleType:       a.ArticleType,
		PMID:              a.PMID,
		DOI:               a.DOI,
		PMCID:             a.PMCID,
		FullTextAvailable: a.FullTextAvailable,
	}
}

// Search queries the backend's literature search for one result page.
// Articles come back with empty enrichment bags; identity within the page
// is positional, cross-page identity uses Article.Key.
func (c *Client) Search(ctx context.Context, query string, page int) (SearchPage, error) {
	params := url.Values{
		"query": {query},
		"page":  {strconv.Itoa(page)},
	}

	var sr searchResponse
	if err := c.getJSON(ctx, "/search", params, &sr); err != nil {
		return SearchPage{}, err
	}
	return sr.toPage(query), nil
}

// CrowSearch queries the authenticated deep-search backend. Results arrive
// unpaginated in the same envelope shape and are reconciled into a single
// page.
func (c *Client) CrowSearch(ctx context.Context, query string) (SearchPage, error) {
	body := map[string]string{"query": query}

	var sr searchResponse
	if err := c.postJSON(ctx, "/api/crow-search", body, &sr); err != nil {
		return SearchPage{}, err
	}
	return sr.toPage(query), nil
}

func (sr searchResponse) toPage(query string) SearchPage {
	articles := make([]types.Article, 0, len(sr.Results))
	for _, r := range sr.Results {
		articles = append(articles, r.toArticle())
	}

	current := sr.CurrentPage
	if current < 1 {
		current = 1
	}
	return SearchPage{
		Articles: articles,
		Page: types.Page{
			Current:    current,
			TotalPages: sr.TotalPages,
			TotalCount: sr.TotalCount,
			Query:      query,
		},
	}
}

// Suggest returns query completions for a partial search string. An empty
// suggestion list is not an error.
func (c *Client) Suggest(ctx context.Context, query string) ([]string, error) {
	params := url.Values{"query": {query}}

	var body struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := c.getJSON(ctx, "/suggestions", params, &body); err != nil {
		return nil, err
	}
	return body.Suggestions, nil
}
