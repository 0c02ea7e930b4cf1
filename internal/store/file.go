// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdiddy/review-engine/pkg/types"
)

const stateFile = "review.json"

// Fixed keys inside the state file, matching the browser-era storage layout.
const (
	keyIncluded = "includedArticles"
	keyExcluded = "excludedArticles"
)

// FileStore persists decision sets as JSON-serialized arrays under fixed
// string keys in a single state file. Every mutation reads the current
// state, applies the change, and writes the whole state back.
//
// Append does not deduplicate: deciding the same article twice appends it
// twice. Callers that need at-most-once semantics check the in-session
// status before deciding, or use the SQLite backend.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// OpenFile returns a FileStore rooted at dataDir. The state file is created
// on first write.
func OpenFile(dataDir string) *FileStore {
	return &FileStore{path: filepath.Join(dataDir, stateFile)}
}

// Load reads both sets from the state file. A missing file, unreadable
// file, or malformed entry silently yields empty sets: stored garbage must
// never crash the session.
func (s *FileStore) Load() (Decisions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.readState()
	return Decisions{
		Included: decodeSet(state[keyIncluded]),
		Excluded: decodeSet(state[keyExcluded]),
	}, nil
}

// Append adds the article to the named set and writes the state back.
func (s *FileStore) Append(set Set, article types.Article) error {
	if !set.Valid() {
		return fmt.Errorf("unknown decision set %q", set)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.readState()
	key := storageKey(set)
	articles := append(decodeSet(state[key]), article)

	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	state[key] = data
	return s.writeState(state)
}

// Move removes the article with the given composite key from one set and
// appends it to the other. The removal is persisted before the append, so
// a crash in between leaves the article in neither set; callers treat Move
// as best-effort.
func (s *FileStore) Move(key string, from, to Set) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("unknown decision set in move %q -> %q", from, to)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.readState()
	source := decodeSet(state[storageKey(from)])

	var moved *types.Article
	remaining := make([]types.Article, 0, len(source))
	for _, a := range source {
		if moved == nil && a.Key() == key {
			moved = &a
			continue
		}
		remaining = append(remaining, a)
	}
	if moved == nil {
		return fmt.Errorf("article %s not found in %s set", key, from)
	}

	srcData, err := json.Marshal(remaining)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", storageKey(from), err)
	}
	state[storageKey(from)] = srcData
	if err := s.writeState(state); err != nil {
		return err
	}

	dest := append(decodeSet(state[storageKey(to)]), *moved)
	destData, err := json.Marshal(dest)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", storageKey(to), err)
	}
	state[storageKey(to)] = destData
	return s.writeState(state)
}

// Close is a no-op; the file is not held open between operations.
func (s *FileStore) Close() error { return nil }

func storageKey(set Set) string {
	if set == SetIncluded {
		return keyIncluded
	}
	return keyExcluded
}

// readState loads the raw key/value state. Any read or parse error yields
// an empty state.
func (s *FileStore) readState() map[string]json.RawMessage {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]json.RawMessage{}
	}

	var state map[string]json.RawMessage
	if err := json.Unmarshal(data, &state); err != nil || state == nil {
		return map[string]json.RawMessage{}
	}
	return state
}

func (s *FileStore) writeState(state map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// decodeSet parses one stored array. Malformed entries default to an empty
// set.
func decodeSet(raw json.RawMessage) []types.Article {
	if len(raw) == 0 {
		return nil
	}
	var articles []types.Article
	if err := json.Unmarshal(raw, &articles); err != nil {
		return nil
	}
	return articles
}
