// Apache-2.0 licensed. See LICENSE for the full text.

package frequencies

import (
	"encoding/binary"
	"testing"

	"github.com/corestream/sketches/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStringFreqSketch builds a string-keyed frequency sketch with the given max map
// size and serde, failing the test immediately if construction errors. serde may be
// nil when the test never serializes the sketch.
func newStringFreqSketch(t *testing.T, maxMapSize int, serde common.ItemSketchSerde[string]) *ItemsSketch[string] {
	t.Helper()
	sketch, err := NewFrequencyItemsSketchWithMaxMapSize[string](maxMapSize, common.ItemSketchStringHasher{}, serde)
	require.NoError(t, err)
	return sketch
}

// newLongFreqSketch builds an int64-keyed frequency sketch with the given max map
// size and serde, failing the test immediately if construction errors.
func newLongFreqSketch(t *testing.T, maxMapSize int, serde common.ItemSketchSerde[int64]) *ItemsSketch[int64] {
	t.Helper()
	sketch, err := NewFrequencyItemsSketchWithMaxMapSize[int64](maxMapSize, common.ItemSketchLongHasher{}, serde)
	require.NoError(t, err)
	return sketch
}

// tryBadMem stamps byteValue at byteOffset in a serialized sketch and asserts
// the corruption is rejected on deserialization.
func tryBadMem(t *testing.T, mem []byte, byteOffset, byteValue int) {
	t.Helper()
	binary.LittleEndian.PutUint64(mem[byteOffset:], uint64(byteValue))
	_, err := NewFrequencyItemsSketchFromSlice[int64](mem, common.ItemSketchLongHasher{}, common.ItemSketchLongSerDe{})
	assert.Error(t, err)
}
