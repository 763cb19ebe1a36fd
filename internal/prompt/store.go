// Package prompt provides the system prompt template store.
//
// Templates are identified by a short ID and resolved to static text.
// Defaults are embedded at compile time; a directory of .txt files can
// override them (prompt_dir in the configuration), which keeps prompt
// iteration possible without a rebuild.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Template identifiers registered in the store.
const (
	// RAGAnswer instructs the model to answer from a formatted source block.
	RAGAnswer = "rag"

	// RAGSearch instructs the model to derive a search query from the
	// conversation.
	RAGSearch = "rag_search"

	// RAGAgent instructs the model to decide itself when to call the
	// retrieval tool.
	RAGAgent = "rag_agent"
)

// ErrTemplateNotFound indicates the template ID is unregistered or the
// backing content is unavailable.
var ErrTemplateNotFound = errors.New("prompt template not found")

//go:embed templates/*.txt
var templatesFS embed.FS

// Store maps template IDs to static text. Results for a fixed ID are
// stable within a process lifetime; overrides are read once and cached.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	overrideDir string

	mu    sync.RWMutex
	cache map[string]string
}

// NewStore creates a Store. overrideDir may be empty, in which case only
// the embedded defaults are served.
func NewStore(overrideDir string) *Store {
	return &Store{
		overrideDir: overrideDir,
		cache:       make(map[string]string),
	}
}

// Read returns the template text for the given ID.
// Fails with ErrTemplateNotFound when the ID is unregistered.
func (s *Store) Read(id string) (string, error) {
	if !validID(id) {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}

	s.mu.RLock()
	text, ok := s.cache[id]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}

	text, err := s.load(id)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[id] = text
	s.mu.Unlock()

	return text, nil
}

// load resolves a template, preferring the override directory.
func (s *Store) load(id string) (string, error) {
	if s.overrideDir != "" {
		path := filepath.Join(s.overrideDir, id+".txt")
		data, err := os.ReadFile(path)
		if err == nil {
			return strings.TrimSpace(string(data)), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: reading %s: %v", ErrTemplateNotFound, path, err)
		}
	}

	data, err := templatesFS.ReadFile("templates/" + id + ".txt")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	return strings.TrimSpace(string(data)), nil
}

// validID reports whether id is one of the registered template IDs.
// Doubles as path traversal protection for the override lookup.
func validID(id string) bool {
	switch id {
	case RAGAnswer, RAGSearch, RAGAgent:
		return true
	default:
		return false
	}
}
