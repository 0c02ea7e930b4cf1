// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/session"
	"github.com/pdiddy/review-engine/pkg/types"
)

var articleCmd = &cobra.Command{
	Use:   "article",
	Short: "Enrich or question a single search result",
	Long: `Article runs one enrichment operation against a single result of a
search. Every subcommand takes the search query as its arguments and
selects the result with --article (1-based position on the page).`,
}

// --- summarize subcommand ---

var articleSummarizeCmd = &cobra.Command{
	Use:   "summarize <query>",
	Short: "Summarize the selected article's abstract",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnrichment(cmd, args, (*session.Session).Summarize, func(a types.Article) types.Field {
			return a.Summary
		})
	},
}

// --- statistics subcommand ---

var articleStatisticsCmd = &cobra.Command{
	Use:   "statistics <query>",
	Short: "Extract the statistical findings from the selected article",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnrichment(cmd, args, (*session.Session).FetchStatistics, func(a types.Article) types.Field {
			return a.Statistics
		})
	},
}

// --- appraisal subcommand ---

var articleAppraisalCmd = &cobra.Command{
	Use:   "appraisal <query>",
	Short: "Critically appraise the selected article",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnrichment(cmd, args, (*session.Session).FetchAppraisal, func(a types.Article) types.Field {
			return a.Appraisal
		})
	},
}

func runEnrichment(
	cmd *cobra.Command,
	args []string,
	enrich func(*session.Session, context.Context, int) error,
	field func(types.Article) types.Field,
) error {
	s, cleanup, idx, err := searchForIndex(cmd, args)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := enrich(s, ctx, idx); err != nil {
		return err
	}

	a, err := s.Article(idx)
	if err != nil {
		return err
	}
	printArticleHeading(a)
	fmt.Println(field(a).Text)
	return nil
}

// --- ask subcommand ---

var articleAskCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask a question about the selected article",
	Long: `Ask sends a question grounded on the selected article. With
--context fulltext the article's full text is fetched first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runArticleAsk,
}

func runArticleAsk(cmd *cobra.Command, args []string) error {
	question, _ := cmd.Flags().GetString("question")
	if question == "" {
		return fmt.Errorf("question required: pass --question")
	}
	contextName, _ := cmd.Flags().GetString("context")
	chatContext := types.ChatContext(contextName)

	s, cleanup, idx, err := searchForIndex(cmd, args)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if chatContext == types.ContextFullText {
		if _, err := s.FetchFullText(ctx, idx); err != nil {
			return err
		}
	}

	if err := s.Ask(ctx, idx, chatContext, question); err != nil {
		return err
	}

	a, err := s.Article(idx)
	if err != nil {
		return err
	}
	thread := a.Thread(chatContext)
	turn := thread[len(thread)-1]

	printArticleHeading(a)
	fmt.Printf("Q: %s\n", turn.Question)
	fmt.Printf("A: %s\n", turn.Answer)
	fmt.Printf("Confidence: %s\n", turn.Confidence)
	return nil
}

// --- fulltext subcommand ---

var articleFullTextCmd = &cobra.Command{
	Use:   "fulltext <query>",
	Short: "Resolve the selected article's full-text location",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runArticleFullText,
}

func runArticleFullText(cmd *cobra.Command, args []string) error {
	s, cleanup, idx, err := searchForIndex(cmd, args)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	ft, err := s.FetchFullText(ctx, idx)
	if err != nil {
		return err
	}

	a, _ := s.Article(idx)
	printArticleHeading(a)

	if !session.HasFullText(ft) {
		if ft.Message != "" {
			fmt.Println(ft.Message)
		} else {
			fmt.Println("Full text not available.")
		}
		return nil
	}
	if ft.PDFURL != "" {
		fmt.Printf("PDF:    %s\n", ft.PDFURL)
	}
	if ft.HTMLURL != "" {
		fmt.Printf("HTML:   %s\n", ft.HTMLURL)
	}
	if ft.Source != "" {
		fmt.Printf("Source: %s\n", ft.Source)
	}
	return nil
}

func printArticleHeading(a types.Article) {
	fmt.Fprintf(os.Stdout, "[%d] %s (%s)\n\n", a.Number, a.Title, a.Year)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	articleCmd.PersistentFlags().Int("page", 1, "result page to fetch")
	articleCmd.PersistentFlags().Int("article", 1, "1-based position of the article on the page")

	articleAskCmd.Flags().String("question", "", "question to ask about the article")
	articleAskCmd.Flags().String("context", string(types.ContextAbstract), "grounding context: abstract or fulltext")

	articleCmd.AddCommand(articleSummarizeCmd)
	articleCmd.AddCommand(articleStatisticsCmd)
	articleCmd.AddCommand(articleAppraisalCmd)
	articleCmd.AddCommand(articleAskCmd)
	articleCmd.AddCommand(articleFullTextCmd)

	rootCmd.AddCommand(articleCmd)
}
