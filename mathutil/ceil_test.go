package mathutil_test

import (
	"testing"

	"github.com/xeptore/tonearm/mathutil"
)

func TestCeilDiv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b, want int64
	}{
		{a: 0, b: 44100, want: 0},
		{a: 44100, b: 44100, want: 1},
		{a: 44101, b: 44100, want: 2},
		{a: 88199, b: 44100, want: 2},
		{a: 88200, b: 44100, want: 2},
		{a: -3, b: 2, want: -1},
		{a: 3, b: -2, want: -1},
	}
	for _, tt := range tests {
		if got := mathutil.CeilDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("CeilDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
