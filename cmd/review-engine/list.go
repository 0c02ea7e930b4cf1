// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list [included|excluded]",
	Short: "List persisted triage decisions",
	Long: `List prints the persisted included or excluded set (default: included).
The key column is the stable article identity accepted by remove.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	which := "included"
	if len(args) == 1 {
		which = args[0]
	}

	s, cleanup, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var articles []types.Article
	switch which {
	case "included":
		articles = s.Included()
	case "excluded":
		articles = s.Excluded()
	default:
		return fmt.Errorf("unknown set %q: use included or excluded", which)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(articles)
	}

	if len(articles) == 0 {
		fmt.Printf("No %s articles.\n", which)
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-60s  %-6s\n", "Key", "Title", "Year")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 94))
	for _, a := range articles {
		key := a.Key()
		if len(key) > 24 {
			key = key[:21] + "..."
		}
		title := a.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-24s  %-60s  %-6s\n", key, title, a.Year)
	}
	fmt.Fprintf(os.Stdout, "\n%d articles\n", len(articles))
	return nil
}

func init() {
	listCmd.Flags().Bool("json", false, "output the set as JSON")

	rootCmd.AddCommand(listCmd)
}
