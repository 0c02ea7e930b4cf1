// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the included-article set to disk for downstream
// analysis: YAML for humans and tooling, CSV for spreadsheet review of the
// extracted study records.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/review-engine/pkg/types"
)

// Entry is one included article as it appears in an export. The extracted
// study record is flattened alongside the citation metadata.
type Entry struct {
	Title    string   `json:"title" yaml:"title"`
	Authors  []string `json:"authors" yaml:"authors"`
	Year     string   `json:"year" yaml:"year"`
	PMID     string   `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	DOI      string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	Abstract string   `json:"abstract" yaml:"abstract"`

	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	SampleSize         string `json:"sample_size" yaml:"sample_size"`
	Outcome            string `json:"outcome" yaml:"outcome"`
	EffectSize         string `json:"effect_size" yaml:"effect_size"`
	ConfidenceInterval string `json:"confidence_interval" yaml:"confidence_interval"`
}

// Entries flattens the included set into export entries. Articles without
// an extracted record get the all-"N/A" placeholder so every row has the
// same shape.
func Entries(included []types.Article) []Entry {
	entries := make([]Entry, len(included))
	for i, a := range included {
		data := types.PlaceholderStudyData()
		if a.Extracted != nil {
			data = *a.Extracted
		}

		entries[i] = Entry{
			Title:              a.Title,
			Authors:            a.Authors,
			Year:               a.Year,
			PMID:               a.PMID,
			DOI:                a.DOI,
			Abstract:           a.Abstract,
			SampleSize:         data.SampleSize,
			Outcome:            data.Outcome,
			EffectSize:         data.EffectSize,
			ConfidenceInterval: data.ConfidenceInterval,
		}
		if a.Summary.State == types.FieldOK {
			entries[i].Summary = a.Summary.Text
		}
	}
	return entries
}

// WriteYAML writes the included set to path as a YAML document.
func WriteYAML(path string, included []types.Article) error {
	data, err := yaml.Marshal(Entries(included))
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

var csvHeader = []string{
	"title", "authors", "year", "pmid", "doi",
	"sample_size", "outcome", "effect_size", "confidence_interval",
}

// WriteCSV writes the included set to path as a CSV table, one row per
// article with the extracted study record flattened into columns.
func WriteCSV(path string, included []types.Article) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, e := range Entries(included) {
		row := []string{
			e.Title,
			strings.Join(e.Authors, "; "),
			e.Year,
			e.PMID,
			e.DOI,
			e.SampleSize,
			e.Outcome,
			e.EffectSize,
			e.ConfidenceInterval,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encoding CSV: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
