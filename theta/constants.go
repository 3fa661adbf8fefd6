// Apache-2.0 licensed. See LICENSE for the full text.

package theta

import "math"

// ResizeFactor represents the hash table resize factor
type ResizeFactor uint8

const (
	// ResizeX1 - resize by factor of 1 (no resize)
	ResizeX1 ResizeFactor = iota
	// ResizeX2 - resize by factor of 2
	ResizeX2
	// ResizeX4 - resize by factor of 4
	ResizeX4
	// ResizeX8 - resize by factor of 8
	ResizeX8
)

// DefaultResizeFactor is the default resize factor
const DefaultResizeFactor = ResizeX8

// MaxTheta is the max theta - signed max for compatibility with Java
const MaxTheta uint64 = math.MaxInt64

// MinLgK is the min log2 of K
const MinLgK uint8 = 5

// MaxLgK is the max log2 of K
const MaxLgK uint8 = 26

// DefaultLgK is the default log2 of K
const DefaultLgK uint8 = 12

// DefaultSeed is the default seed for hashing
const DefaultSeed uint64 = 9001
