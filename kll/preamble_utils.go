// Apache-2.0 licensed. See LICENSE for the full text.

package kll

import "encoding/binary"

const (
	preambleIntsByteAdr = 0
	serVerByteAdr       = 1
	familyByteAdr       = 2
	flagsByteAdr        = 3
	kShortAdr           = 4 // to 5
	mByteAdr            = 6

	// SINGLE ITEM ONLY
	dataStartAdrSingleItem = 8 //also ok for empty

	// MULTI-ITEM
	nLongAdr     = 8  // to 15
	minKShortAdr = 16 // to 17

	numLevelsByteAdr = 18

	// 19 is reserved for future use
	dataStartAdr = 20 // Full Sketch, not single item

	// Other static members
	serialVersionEmptyFull  = 1 // Empty or full preamble, NOT single item format, NOT updatable
	serialVersionSingle     = 2 // only single-item format, NOT updatable
	serialVersionUpdatable  = 3 // PreInts=5, Full preamble + LevelsArr + min, max + empty space
	preambleIntsEmptySingle = 2 // for empty or single item
	preambleIntsFull        = 5 // Full preamble, not empty nor single item.

	// Flag bit masks
	emptyBitMask           = 1
	levelZeroSortedBitMask = 2
	singleItemBitMask      = 4
)

func getPreInts(mem []byte) int {
	return int(mem[preambleIntsByteAdr] & 0xFF)
}

func getSerVer(mem []byte) int {
	return int(mem[serVerByteAdr] & 0xFF)
}

func getFamilyID(mem []byte) int {
	return int(mem[familyByteAdr] & 0xFF)
}

func getFlags(mem []byte) int {
	return int(mem[flagsByteAdr] & 0xFF)
}

func getEmptyFlag(mem []byte) bool {
	return (getFlags(mem) & emptyBitMask) != 0
}

func getK(mem []byte) uint16 {
	return binary.LittleEndian.Uint16(mem[kShortAdr : kShortAdr+2])
}

func getM(mem []byte) uint8 {
	return mem[mByteAdr] & 0xFF
}

func getN(mem []byte) uint64 {
	return binary.LittleEndian.Uint64(mem[nLongAdr : nLongAdr+8])
}

func getMinK(mem []byte) uint16 {
	return binary.LittleEndian.Uint16(mem[minKShortAdr : minKShortAdr+2])
}

func getNumLevels(mem []byte) uint8 {
	return mem[numLevelsByteAdr] & 0xFF
}

func getLevelZeroSortedFlag(mem []byte) bool {
	return (getFlags(mem) & levelZeroSortedBitMask) != 0
}
