// Apache-2.0 licensed. See LICENSE for the full text.

package common

type CompareFn[C comparable] func(C, C) bool

// defaultSerdeHashSeed salts the built-in item hashers. It is internal to the
// generic item sketches and unrelated to the update seed of the Theta family.
const defaultSerdeHashSeed = 9001

type ItemSketchHasher[C comparable] interface {
	Hash(item C) uint64
}

type ItemSketchSerde[C comparable] interface {
	SizeOf(item C) int
	SizeOfMany(mem []byte, offsetBytes int, numItems int) (int, error)
	SerializeManyToSlice(items []C) []byte
	SerializeOneToSlice(item C) []byte
	DeserializeManyFromSlice(mem []byte, offsetBytes int, numItems int) ([]C, error)
}
