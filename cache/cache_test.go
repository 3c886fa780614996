package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/tonearm/cache"
)

func TestResultsFetch(t *testing.T) {
	t.Parallel()

	c := cache.NewResults[[]int](16, time.Minute)

	calls := 0
	fetch := func() ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	}

	first, err := c.Fetch("k", fetch)
	require.NoError(t, err)
	assert.Exactly(t, []int{1, 2, 3}, first)
	assert.Exactly(t, 1, calls)

	second, err := c.Fetch("k", fetch)
	require.NoError(t, err)
	assert.Exactly(t, []int{1, 2, 3}, second)
	assert.Exactly(t, 1, calls, "second fetch of the same key must be served from cache")

	_, err = c.Fetch("other", fetch)
	require.NoError(t, err)
	assert.Exactly(t, 2, calls)
}

func TestResultsClear(t *testing.T) {
	t.Parallel()

	c := cache.NewResults[[]int](16, time.Minute)

	calls := 0
	fetch := func() ([]int, error) {
		calls++
		return nil, nil
	}

	_, err := c.Fetch("k", fetch)
	require.NoError(t, err)
	c.Clear()
	_, err = c.Fetch("k", fetch)
	require.NoError(t, err)
	assert.Exactly(t, 2, calls)
}
