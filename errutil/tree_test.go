package errutil_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/tonearm/errutil"
)

func TestTree(t *testing.T) {
	t.Parallel()

	t.Run("NilErr", func(t *testing.T) {
		t.Parallel()
		assert.PanicsWithValue(t, "nil error", func() { errutil.Tree(nil) })
	})

	t.Run("SimpleStringErr", func(t *testing.T) {
		t.Parallel()
		tree := errutil.Tree(fmt.Errorf("simple string error"))
		expected := errutil.Node{
			Message:  "simple string error",
			TypeName: "*errors.errorString",
			Children: nil,
		}
		assertNodesEqual(t, expected, tree)
	})

	t.Run("JoinedSimpleStringErrs", func(t *testing.T) {
		t.Parallel()
		tree := errutil.Tree(
			errors.Join(
				fmt.Errorf("simple string error"),
				fmt.Errorf("another simple string error"),
			),
		)
		expected := errutil.Node{
			Message:  "simple string error\nanother simple string error",
			TypeName: "*errors.joinError",
			Children: []errutil.Node{
				{
					Message:  "simple string error",
					TypeName: "*errors.errorString",
					Children: nil,
				},
				{
					Message:  "another simple string error",
					TypeName: "*errors.errorString",
					Children: nil,
				},
			},
		}
		assertNodesEqual(t, expected, tree)
	})

	t.Run("UnwrapableErr", func(t *testing.T) {
		t.Parallel()
		_, err := os.ReadDir("nonexistent")
		tree := errutil.Tree(fmt.Errorf("os.ReadDir error: %w", err))
		expected := errutil.Node{
			Message:  "os.ReadDir error: open nonexistent: no such file or directory",
			TypeName: "*fmt.wrapError",
			Children: []errutil.Node{
				{
					Message:  "open nonexistent: no such file or directory",
					TypeName: "*fs.PathError",
					Children: []errutil.Node{
						{
							Message:  "no such file or directory",
							TypeName: "syscall.Errno",
							Children: nil,
						},
					},
				},
			},
		}
		assertNodesEqual(t, expected, tree)
	})
}

func TestNodeFlawP(t *testing.T) {
	t.Parallel()

	tree := errutil.Tree(
		errors.Join(
			fmt.Errorf("first error"),
			fmt.Errorf("second error"),
		),
	)
	p := tree.FlawP()
	assert.Exactly(t, "first error\nsecond error", p["message"])

	children, ok := p["children"].([]flaw.P)
	if !ok {
		t.Fatalf("expected children to be []flaw.P, got %T", p["children"])
	}
	assert.Len(t, children, 2)
	assert.Exactly(t, "first error", children[0]["message"])
	assert.Exactly(t, "second error", children[1]["message"])
}

func assertNodesEqual(t *testing.T, expected, actual errutil.Node) {
	t.Helper()
	assert.Exactly(t, expected.Message, actual.Message, "unequal Message field: expected: %q, actual: %q", expected.Message, actual.Message)
	assert.Exactly(t, expected.TypeName, actual.TypeName, "unequal TypeName field: expected: %q, actual: %q", expected.TypeName, actual.TypeName)
	assert.Len(t, actual.Children, len(expected.Children), "unequal Children length: expected: %d, actual: %d", len(expected.Children), len(actual.Children))
	for i, child := range actual.Children {
		assertNodesEqual(t, expected.Children[i], child)
	}
}
