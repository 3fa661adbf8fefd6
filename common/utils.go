// Apache-2.0 licensed. See LICENSE for the full text.

package common

import (
	"math"
	"math/bits"
	"strconv"
)

// InvPow2 returns 2^(-e).
func InvPow2(e int) float64 {
	if e < 0 || e > 1023 {
		panic("e cannot be negative or greater than 1023: " + strconv.Itoa(e))
	}
	return math.Float64frombits((1023 - uint64(e)) << 52)
}

// CeilPowerOf2 returns the smallest power of 2 greater than or equal to n.
func CeilPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	topIntPwrOf2 := 1 << 30
	if n >= topIntPwrOf2 {
		return topIntPwrOf2
	}
	return int(math.Pow(2, math.Ceil(math.Log2(float64(n)))))
}

func ExactLog2OfLong(powerOf2 uint64) int {
	if !isLongPowerOf2(powerOf2) {
		panic("Argument 'powerOf2' must be a positive power of 2.")
	}
	return bits.TrailingZeros64(powerOf2)
}

// isLongPowerOf2 returns true if the given number is a power of 2.
func isLongPowerOf2(powerOf2 uint64) bool {
	return powerOf2 > 0 && (powerOf2&(powerOf2-1)) == 0
}

func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// checkBounds reports whether [offset, offset+reqLen) lies within a buffer of
// memCap bytes.
func checkBounds(offset int, reqLen int, memCap int) bool {
	return offset >= 0 && reqLen >= 0 && offset+reqLen <= memCap
}
