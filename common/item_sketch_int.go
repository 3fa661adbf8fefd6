// Apache-2.0 licensed. See LICENSE for the full text.

package common

import (
	"encoding/binary"

	"github.com/twmb/murmur3"
)

var ItemSketchIntComparator = func(reverseOrder bool) CompareFn[int32] {
	return func(a int32, b int32) bool {
		if reverseOrder {
			return a > b
		}
		return a < b
	}
}

type ItemSketchIntHasher struct {
	scratch [4]byte
}

// ItemSketchIntSerDe handles serialization and deserialization of 32-bit integer sketch items.
type ItemSketchIntSerDe struct{}

func (f ItemSketchIntHasher) Hash(item int32) uint64 {
	binary.LittleEndian.PutUint32(f.scratch[:], uint32(item))
	return murmur3.SeedSum64(defaultSerdeHashSeed, f.scratch[:])
}

func (s ItemSketchIntSerDe) SizeOf(item int32) int {
	return 4
}

func (s ItemSketchIntSerDe) SizeOfMany(mem []byte, offsetBytes int, numItems int) (int, error) {
	return numItems * 4, nil
}

func (s ItemSketchIntSerDe) SerializeOneToSlice(item int32) []byte {
	bytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(bytes, uint32(item))
	return bytes
}

func (s ItemSketchIntSerDe) SerializeManyToSlice(items []int32) []byte {
	if len(items) == 0 {
		return []byte{}
	}

	bytes := make([]byte, 4*len(items))
	offset := 0
	for _, item := range items {
		binary.LittleEndian.PutUint32(bytes[offset:], uint32(item))
		offset += 4
	}
	return bytes
}

func (s ItemSketchIntSerDe) DeserializeManyFromSlice(mem []byte, offsetBytes int, numItems int) ([]int32, error) {
	if numItems == 0 {
		return []int32{}, nil
	}

	array := make([]int32, 0, numItems)
	for i := 0; i < numItems; i++ {
		array = append(array, int32(binary.LittleEndian.Uint32(mem[offsetBytes:])))
		offsetBytes += 4
	}
	return array, nil
}
