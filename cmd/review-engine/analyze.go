// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <query>",
	Short: "Synthesize a result page into an overall summary",
	Long: `Analyze runs a search and sends every abstract on the result page to
the backend for a cross-article synthesis: common themes, contradictions,
and research gaps. Use --page to analyze a later page.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	page, _ := cmd.Flags().GetInt("page")

	s, cleanup, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := s.Search(ctx, query, page); err != nil {
		return err
	}
	if len(s.Articles()) == 0 {
		fmt.Println("No results to analyze.")
		return nil
	}

	if err := s.Analyze(ctx); err != nil {
		return err
	}

	analysis := s.Analysis()
	fmt.Println(analysis.Text)
	if analysis.State == types.FieldFailed {
		return fmt.Errorf("analysis failed")
	}
	return nil
}

func init() {
	analyzeCmd.Flags().Int("page", 1, "result page to analyze")

	rootCmd.AddCommand(analyzeCmd)
}
