package search

import (
	"slices"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/xeptore/tonearm/cache"
	"github.com/xeptore/tonearm/config"
	"github.com/xeptore/tonearm/sliceutil"
)

// similarityThreshold is the minimum Jaro-Winkler score for a non-substring
// match to count as a hit.
const similarityThreshold = 0.72

// index is one approximate-match engine over parallel key/text slices. Keys
// are coordinates into the library snapshot the index was built from; they
// stay valid exactly as long as that snapshot is not mutated or re-sorted.
type index[K comparable] struct {
	keys    []K
	texts   []string
	results *cache.Results[[]K]
}

func newIndex[K comparable]() *index[K] {
	return &index[K]{
		keys:    nil,
		texts:   nil,
		results: cache.NewResults[[]K](config.SearchCacheMaxEntries, config.SearchCacheTTL),
	}
}

func (ix *index[K]) add(key K, text string) {
	ix.keys = append(ix.keys, key)
	ix.texts = append(ix.texts, strings.ToLower(text))
}

func (ix *index[K]) search(term string) []K {
	norm := strings.ToLower(strings.TrimSpace(term))
	if norm == "" {
		return nil
	}
	out, err := ix.results.Fetch(norm, func() ([]K, error) { return ix.scan(norm), nil })
	if nil != err {
		return ix.scan(norm)
	}
	return slices.Clone(out)
}

func (ix *index[K]) scan(norm string) []K {
	type scored struct {
		key   K
		score float64
	}
	var matches []scored
	for i, text := range ix.texts {
		if score, ok := matchScore(norm, text); ok {
			matches = append(matches, scored{key: ix.keys[i], score: score})
		}
	}
	slices.SortStableFunc(matches, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})
	return sliceutil.Map(matches, func(m scored) K { return m.key })
}

// matchScore rates how well the normalized term matches a normalized text.
// Substring containment always hits, preferring shorter texts; anything
// else needs a Jaro-Winkler similarity at or above the threshold, taken as
// the best of whole-text and per-word comparisons so single-word terms
// still find multi-word titles.
func matchScore(term, text string) (float64, bool) {
	if strings.Contains(text, term) {
		return 1.0 + float64(len(term))/float64(len(text)), true
	}

	best := 0.0
	if sim, err := edlib.StringsSimilarity(term, text, edlib.JaroWinkler); nil == err {
		best = float64(sim)
	}
	for _, word := range strings.Fields(text) {
		sim, err := edlib.StringsSimilarity(term, word, edlib.JaroWinkler)
		if nil != err {
			continue
		}
		if s := float64(sim); s > best {
			best = s
		}
	}

	if best >= similarityThreshold {
		return best, true
	}
	return 0, false
}
