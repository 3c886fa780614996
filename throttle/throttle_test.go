package throttle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/tonearm/throttle"
)

func TestThrottleDropsWithinInterval(t *testing.T) {
	t.Parallel()

	th := throttle.New(t.Context(), time.Hour)
	defer th.Close()

	ran := 0
	assert.True(t, th.Do(func() { ran++ }))
	assert.False(t, th.Do(func() { ran++ }))
	assert.False(t, th.Do(func() { ran++ }))
	assert.Exactly(t, 1, ran)
}

func TestThrottleRefreshesAfterInterval(t *testing.T) {
	t.Parallel()

	th := throttle.New(t.Context(), 50*time.Millisecond)
	defer th.Close()

	ran := 0
	assert.True(t, th.Do(func() { ran++ }))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if th.Do(func() { ran++ }) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Exactly(t, 2, ran, "expected a new interval to allow another run")
}
