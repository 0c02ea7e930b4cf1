// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists include/exclude triage decisions across review
// sessions. The Store interface is injected into the session layer; nothing
// here is a process-wide singleton. Two backends exist: a JSON file using
// the fixed includedArticles/excludedArticles keys, and a SQLite database.
package store

import (
	"fmt"

	"github.com/pdiddy/review-engine/pkg/types"
)

// Set names one of the two persisted decision sets.
type Set string

const (
	SetIncluded Set = "included"
	SetExcluded Set = "excluded"
)

// Valid reports whether s names a known set.
func (s Set) Valid() bool { return s == SetIncluded || s == SetExcluded }

// Decisions holds both persisted sets as loaded at session start.
type Decisions struct {
	Included []types.Article
	Excluded []types.Article
}

// Store is the durable mapping of article identity to triage decision.
//
// Writes are synchronous and local to this process; concurrent writers in
// other processes may race and lose a write. Move is atomic only from the
// caller's perspective: a crash between the removal and the append can
// leave the article transiently absent from both sets.
type Store interface {
	// Load reads both sets. Missing or corrupt stored data yields empty
	// sets, never an error that would abort the session.
	Load() (Decisions, error)

	// Append adds the article to the named set and persists it.
	Append(set Set, article types.Article) error

	// Move removes the article with the given composite key from one set
	// and appends it to the other, persisting both in sequence.
	Move(key string, from, to Set) error

	Close() error
}

// Open builds the configured store backend rooted at cfg.DataDir.
func Open(cfg types.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case types.StoreSQLite:
		return OpenSQLite(cfg.DataDir)
	case types.StoreFile, "":
		return OpenFile(cfg.DataDir), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
