// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/pkg/types"
)

var includeCmd = &cobra.Command{
	Use:   "include <query>",
	Short: "Include the selected article in the review",
	Long: `Include records an include decision for the selected search result and
persists it. Inclusion also extracts the article's structured study data
(sample size, outcome, effect size, confidence interval); if extraction
fails the record is filled with N/A placeholders.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecide(cmd, args, types.DecisionInclude)
	},
}

var excludeCmd = &cobra.Command{
	Use:   "exclude <query>",
	Short: "Exclude the selected article from the review",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecide(cmd, args, types.DecisionExclude)
	},
}

func runDecide(cmd *cobra.Command, args []string, decision types.Decision) error {
	s, cleanup, idx, err := searchForIndex(cmd, args)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	out, err := s.Decide(ctx, idx, decision)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", decision, out.Article.Title)
	if decision == types.DecisionInclude && out.Article.Extracted != nil {
		d := out.Article.Extracted
		fmt.Printf("  sample size: %s  outcome: %s  effect size: %s  CI: %s\n",
			d.SampleSize, d.Outcome, d.EffectSize, d.ConfidenceInterval)
	}
	if !out.Persisted {
		fmt.Fprintf(os.Stderr, "warning: decision recorded for this run but not saved: %v\n", out.PersistErr)
	}
	return nil
}

var removeCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Move an included article to the excluded set",
	Long: `Remove reverses an include decision, moving the article into the
excluded set. The key is the article identity printed by list, e.g.
pmid:12345678 or doi:10.1000/xyz.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := s.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("Moved %s to the excluded set.\n", args[0])
		return nil
	},
}

func init() {
	// include/exclude share the article selection flags.
	for _, c := range []*cobra.Command{includeCmd, excludeCmd} {
		c.Flags().Int("page", 1, "result page to fetch")
		c.Flags().Int("article", 1, "1-based position of the article on the page")
	}

	rootCmd.AddCommand(includeCmd)
	rootCmd.AddCommand(excludeCmd)
	rootCmd.AddCommand(removeCmd)
}
