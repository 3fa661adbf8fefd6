// Apache-2.0 licensed. See LICENSE for the full text.

package frequencies

import (
	"math"
	"math/rand"
)

const (
	// lgMinMapSize constant controle the size of the initial data structure for the
	// frequencies sketches and its value is somewhat arbitrary.
	lgMinMapSize = 3
	// sampleSize constant is large enough so that computing the median of SAMPLE_SIZE
	// randomly selected entries from a list of numbers and outputting
	// the empirical median will give a constant-factor approximation to the
	// true median with high probability.
	sampleSize = 1024
)

type errorType struct {
	id   int
	Name string
}

type errorTypes struct {
	NoFalsePositives errorType
	NoFalseNegatives errorType
}

var ErrorTypeEnum = &errorTypes{
	NoFalsePositives: errorType{
		id:   1,
		Name: "NO_FALSE_POSITIVES",
	},
	NoFalseNegatives: errorType{
		id:   2,
		Name: "NO_FALSE_NEGATIVES",
	},
}

// hashFn returns an index into the hashFn table.
// This hashFn function is taken from the internals of Austin Appleby's MurmurHash3 algorithm.
// It is also used by the Trove for Java libraries.
func hashFn(okey int64) int64 {
	key := uint64(okey)
	key ^= key >> 33
	key *= 0xff51afd7ed558ccd
	key ^= key >> 33
	key *= 0xc4ceb9fe1a85ec53
	key ^= key >> 33
	return int64(key)
}

func randomGeometricDist(prob float64) int64 {
	if prob <= 0.0 || prob >= 1.0 {
		panic("prob must be in (0, 1)")
	}
	return int64(1 + math.Log(rand.Float64())/math.Log(1.0-prob))
}
