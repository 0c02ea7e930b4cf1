// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the review-engine core:
// articles with their enrichment fields, result pages, triage decisions,
// and configuration for the gateway, store, and session layers.
package types

import (
	"strings"
	"unicode"
)

// Decision is the triage outcome for an article. The zero value means the
// article has not been decided yet. Once set, a decision never returns to
// unset; include may move to exclude only via an explicit removal.
type Decision string

const (
	DecisionInclude Decision = "include"
	DecisionExclude Decision = "exclude"
)

// Valid reports whether d is one of the two decided states.
func (d Decision) Valid() bool {
	return d == DecisionInclude || d == DecisionExclude
}

// FieldState tracks the lifecycle of an asynchronously populated
// enrichment field, so callers can tell "not yet requested" from
// "requested and failed".
type FieldState string

const (
	FieldUnset  FieldState = ""
	FieldOK     FieldState = "ok"
	FieldFailed FieldState = "failed"
)

// Field is a tagged enrichment result. Text carries the enrichment content
// on success and a fixed human-readable marker on failure.
type Field struct {
	State FieldState `json:"state" yaml:"state"`
	Text  string     `json:"text,omitempty" yaml:"text,omitempty"`
}

// OKField returns a successfully populated field.
func OKField(text string) Field { return Field{State: FieldOK, Text: text} }

// FailedField returns a failed field carrying the given marker text.
func FailedField(marker string) Field { return Field{State: FieldFailed, Text: marker} }

// Requested reports whether the field has been fetched at least once,
// successfully or not.
func (f Field) Requested() bool { return f.State != FieldUnset }

// ChatContext selects which article content a chat thread is grounded on.
type ChatContext string

const (
	ContextAbstract ChatContext = "abstract"
	ContextFullText ChatContext = "fulltext"
)

// ChatTurn is one question/answer pair in an article's chat thread.
// Threads are append-only; a failed ask still appends a turn, with
// Confidence set to "error".
type ChatTurn struct {
	Question   string `json:"question" yaml:"question"`
	Answer     string `json:"answer" yaml:"answer"`
	Confidence string `json:"confidence" yaml:"confidence"`
}

// StudyData holds the structured record extracted from an abstract when an
// article is included. Fields the extraction could not determine are "N/A".
type StudyData struct {
	SampleSize         string `json:"sample_size" yaml:"sample_size"`
	Outcome            string `json:"outcome" yaml:"outcome"`
	EffectSize         string `json:"effect_size" yaml:"effect_size"`
	ConfidenceInterval string `json:"confidence_interval" yaml:"confidence_interval"`
}

// PlaceholderStudyData returns the record substituted when extraction fails,
// so inclusion is never blocked on the extraction call.
func PlaceholderStudyData() StudyData {
	return StudyData{
		SampleSize:         "N/A",
		Outcome:            "N/A",
		EffectSize:         "N/A",
		ConfidenceInterval: "N/A",
	}
}

// FullText is the resolved full-text payload for an article. When EmbedPDF
// is set the document can be displayed inline; otherwise HTMLURL is an
// external link target.
type FullText struct {
	HTMLURL  string `json:"htmlUrl,omitempty" yaml:"html_url,omitempty"`
	PDFURL   string `json:"pdfUrl,omitempty" yaml:"pdf_url,omitempty"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
	EmbedPDF bool   `json:"embedPdf" yaml:"embed_pdf"`
}

// Article is one search result with its identity and enrichment bag.
// Enrichment fields populate asynchronously and independently; a fresh
// search always produces articles with empty bags.
type Article struct {
	// Number is the 1-based position across the whole result set
	// (page offset included), as assigned by the backend.
	Number int `json:"number" yaml:"number"`

	Title    string   `json:"title" yaml:"title"`
	Abstract string   `json:"abstract" yaml:"abstract"`
	Authors  []string `json:"authors" yaml:"authors"`

	// Year is the publication year as reported by the backend ("N/A" when unknown).
	Year string `json:"year" yaml:"year"`

	// ArticleType is the publication type label (e.g. "Randomized Controlled Trial").
	ArticleType string `json:"article_type" yaml:"article_type"`

	PMID  string `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	DOI   string `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMCID string `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`

	// FullTextAvailable indicates the backend believes a full-text link
	// can be resolved (a DOI or PMCID is present).
	FullTextAvailable bool `json:"full_text_available" yaml:"full_text_available"`

	// Enrichment bag. Populated after the article is created, never by search.
	Summary    Field                     `json:"summary,omitempty" yaml:"summary,omitempty"`
	Statistics Field                     `json:"statistics,omitempty" yaml:"statistics,omitempty"`
	Appraisal  Field                     `json:"appraisal,omitempty" yaml:"appraisal,omitempty"`
	Chats      map[ChatContext][]ChatTurn `json:"chats,omitempty" yaml:"chats,omitempty"`
	FullText   *FullText                 `json:"full_text,omitempty" yaml:"full_text,omitempty"`
	Extracted  *StudyData                `json:"extracted,omitempty" yaml:"extracted,omitempty"`

	// Status is the triage decision recorded for this article in-session.
	Status Decision `json:"status,omitempty" yaml:"status,omitempty"`
}

// Key returns the composite identity key for cross-page and cross-session
// matching. Positional index is stable only within one fetched page, so the
// key prefers PMID, then DOI, then the normalized title.
func (a Article) Key() string {
	if a.PMID != "" {
		return "pmid:" + a.PMID
	}
	if a.DOI != "" {
		return "doi:" + a.DOI
	}
	return "title:" + NormalizeTitle(a.Title)
}

// Thread returns the chat thread for the given context. The returned slice
// is the live thread; callers must not reorder or truncate it.
func (a Article) Thread(ctx ChatContext) []ChatTurn {
	return a.Chats[ctx]
}

// NormalizeTitle returns a lowercased, punctuation-stripped form of a title
// for identity matching.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
