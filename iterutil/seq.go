package iterutil

import (
	"iter"
)

// WithIndex pairs each element of s with its position, starting at zero.
func WithIndex[V any](s iter.Seq[V]) iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		index := 0
		for v := range s {
			if !yield(index, v) {
				return
			}
			index++
		}
	}
}
