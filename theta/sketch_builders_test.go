// Apache-2.0 licensed. See LICENSE for the full text.

package theta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newUpdateSketch builds a QuickSelectUpdateSketch with the given options, failing the
// test immediately if construction errors. Tests that exercise construction errors call
// NewQuickSelectUpdateSketch directly instead.
func newUpdateSketch(t *testing.T, opts ...UpdateSketchOptionFunc) *QuickSelectUpdateSketch {
	t.Helper()
	sketch, err := NewQuickSelectUpdateSketch(opts...)
	require.NoError(t, err)
	return sketch
}

// newUnionSketch builds a Union with the given options, failing the test immediately
// if construction errors.
func newUnionSketch(t *testing.T, opts ...UnionOptionFunc) *Union {
	t.Helper()
	u, err := NewUnion(opts...)
	require.NoError(t, err)
	return u
}
