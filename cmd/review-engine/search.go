// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/gateway"
	"github.com/pdiddy/review-engine/internal/session"
	"github.com/pdiddy/review-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the literature backend for articles",
	Long: `Search queries the backend for articles matching a free-text query and
prints one result page. Use --page to fetch a later page and --crow for the
authenticated deep-search backend (requires login).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	page, _ := cmd.Flags().GetInt("page")
	crow, _ := cmd.Flags().GetBool("crow")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	s, cleanup, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if crow {
		err = s.CrowSearch(ctx, query)
	} else {
		err = s.Search(ctx, query, page)
	}
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return fmt.Errorf("backend rejected the request: run `review-engine login` and retry: %w", err)
		}
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s.Articles())
	}

	printArticleTable(s.Articles(), s.Page())
	return nil
}

func printArticleTable(articles []types.Article, page types.Page) {
	if len(articles) == 0 {
		fmt.Println("No results found.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-60s  %-6s  %-10s  %-8s  %s\n",
		"#", "Title", "Year", "PMID", "Status", "Full text")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 102))

	for _, a := range articles {
		title := a.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		status := string(a.Status)
		if status == "" {
			status = "-"
		}
		fullText := "no"
		if a.FullTextAvailable {
			fullText = "yes"
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-60s  %-6s  %-10s  %-8s  %s\n",
			a.Number, title, a.Year, a.PMID, status, fullText)
	}

	fmt.Fprintf(os.Stdout, "\nPage %d of %d (%d results)\n",
		page.Current, page.TotalPages, page.TotalCount)
}

// searchForIndex runs a search and returns the session together with the
// zero-based index of the article selected by --article. Commands that
// operate on a single article share this entry path.
func searchForIndex(cmd *cobra.Command, args []string) (*session.Session, func(), int, error) {
	query := strings.Join(args, " ")
	page, _ := cmd.Flags().GetInt("page")
	number, _ := cmd.Flags().GetInt("article")
	if number < 1 {
		return nil, nil, 0, fmt.Errorf("--article selects a 1-based result on the page; got %d", number)
	}

	s, cleanup, err := newSession(cmd)
	if err != nil {
		return nil, nil, 0, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := s.Search(ctx, query, page); err != nil {
		cleanup()
		return nil, nil, 0, err
	}
	if number > len(s.Articles()) {
		cleanup()
		return nil, nil, 0, fmt.Errorf("article %d not on this page (%d results)", number, len(s.Articles()))
	}
	return s, cleanup, number - 1, nil
}

func init() {
	searchCmd.Flags().Int("page", 1, "result page to fetch")
	searchCmd.Flags().Bool("crow", false, "use the authenticated deep-search backend")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
