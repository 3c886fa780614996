package search

import (
	"strings"
)

// Scope names the single library dimension a query runs against.
type Scope string

const (
	ScopeArtist Scope = "artist"
	ScopeAlbum  Scope = "album"
	ScopeTitle  Scope = "title"
)

// Query is a parsed search input: a scope and the term to match.
type Query struct {
	Scope Scope
	Term  string
}

// ParseQuery splits raw input into a scope prefix and a term. The first
// whitespace-separated token selects the scope, compared case-insensitively.
// There is no default scope: a missing or unrecognized prefix, or an empty
// term, yields ok=false.
func ParseQuery(raw string) (Query, bool) {
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return Query{}, false
	}
	var scope Scope
	switch strings.ToLower(fields[0]) {
	case "artist":
		scope = ScopeArtist
	case "album":
		scope = ScopeAlbum
	case "title":
		scope = ScopeTitle
	default:
		return Query{}, false
	}
	return Query{Scope: scope, Term: strings.Join(fields[1:], " ")}, true
}
