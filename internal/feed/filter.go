package feed

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

type entrySource []Entry

func (s entrySource) String(i int) string {
	return s[i].Title + " " + s[i].Origin
}

func (s entrySource) Len() int {
	return len(s)
}

// Filter returns the entries whose title and origin fuzzy match query, best
// match first. An empty query returns entries unchanged.
func Filter(entries []Entry, query string) []Entry {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}
	matches := fuzzy.FindFrom(query, entrySource(entries))
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out
}
