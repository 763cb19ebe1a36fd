// Package retrieval provides vector search over the document collection.
//
// The orchestrator consumes retrieval through a single operation: given a
// query string, return an ordered list of (name, content) sources, most
// relevant first. The backing implementation is PostgreSQL + pgvector
// with query embeddings from the configured embedding model.
package retrieval

import (
	"regexp"
	"strings"
)

// Source is one retrieved document chunk. Ordering of a []Source reflects
// the relevance ranking returned by the search; duplicates are possible.
type Source struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// NoSourcesMarker is the text substituted for the source block when
// retrieval returns nothing or fails. Flows proceed with this marker
// instead of aborting.
const NoSourcesMarker = "No sources found."

// FormatSources renders sources into the context block fed to the model,
// one <source> element per entry, in retrieval order. No re-ranking, no
// truncation beyond what the search itself returned.
func FormatSources(sources []Source) string {
	if len(sources) == 0 {
		return NoSourcesMarker
	}

	entries := make([]string, len(sources))
	for i, src := range sources {
		entries[i] = "<source><name>" + src.Name + "</name><content>" + src.Content + "</content></source>"
	}
	return strings.Join(entries, "\n")
}

var sourcePattern = regexp.MustCompile(`(?s)<source><name>(.*?)</name><content>(.*?)</content></source>`)

// ParseSources is the inverse of FormatSources: it recovers the
// (name, content) pairs from a formatted block, preserving order.
// Returns nil for the no-sources marker or unrecognized text.
func ParseSources(block string) []Source {
	matches := sourcePattern.FindAllStringSubmatch(block, -1)
	if len(matches) == 0 {
		return nil
	}

	sources := make([]Source, len(matches))
	for i, m := range matches {
		sources[i] = Source{Name: m[1], Content: m[2]}
	}
	return sources
}
