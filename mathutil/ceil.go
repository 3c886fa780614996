package mathutil

import (
	"golang.org/x/exp/constraints"
)

// CeilDiv returns the ceiling of a divided by b.
func CeilDiv[T constraints.Integer](a, b T) T {
	q := a / b
	if r := a % b; r != 0 && (r < 0) == (b < 0) {
		q++
	}
	return q
}
