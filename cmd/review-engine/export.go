// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the included set to YAML or CSV",
	Long: `Export writes the included articles, with their extracted study
records, to a file for downstream analysis. YAML keeps the full citation
and abstract; CSV flattens the study record into spreadsheet columns.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	s, cleanup, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	included := s.Included()
	if len(included) == 0 {
		return fmt.Errorf("no included articles to export")
	}

	switch format {
	case "yaml", "":
		if out == "" {
			out = "included.yaml"
		}
		if err := export.WriteYAML(out, included); err != nil {
			return err
		}
	case "csv":
		if out == "" {
			out = "included.csv"
		}
		if err := export.WriteCSV(out, included); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or csv", format)
	}

	fmt.Printf("Exported %d articles to %s\n", len(included), out)
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or csv")
	exportCmd.Flags().String("out", "", "output path (default: included.yaml or included.csv)")

	rootCmd.AddCommand(exportCmd)
}
