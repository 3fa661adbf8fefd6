// Apache-2.0 licensed. See LICENSE for the full text.

package internal

// Bit-exact MurmurHash3_x64_128 (Appleby's reference algorithm). The bit
// pattern must match the C++/Java reference exactly: this is the wire hash
// that peer sketch libraries compute over the same bytes, so retained keys
// have to line up across implementations, not just within this module.

const (
	murmur3C1 = 0x87c37b91114253d5
	murmur3C2 = 0x4cf5ad432745937f
)

// murmur128 accumulates the running (h1, h2) halves of one hash computation.
type murmur128 struct {
	h1, h2 uint64
}

func seedMurmur128(seed uint64) murmur128 {
	return murmur128{h1: seed, h2: seed}
}

func rotl64(x uint64, r uint) uint64 {
	return (x << r) | (x >> (64 - r))
}

func scrambleK1(k1 uint64) uint64 {
	k1 *= murmur3C1
	k1 = rotl64(k1, 31)
	return k1 * murmur3C2
}

func scrambleK2(k2 uint64) uint64 {
	k2 *= murmur3C2
	k2 = rotl64(k2, 33)
	return k2 * murmur3C1
}

func avalanche64(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// absorb mixes one full 128-bit (k1, k2) block into the running state.
func (m *murmur128) absorb(k1, k2 uint64) {
	m.h1 ^= scrambleK1(k1)
	m.h1 = rotl64(m.h1, 27)
	m.h1 += m.h2
	m.h1 = m.h1*5 + 0x52dce729

	m.h2 ^= scrambleK2(k2)
	m.h2 = rotl64(m.h2, 31)
	m.h2 += m.h1
	m.h2 = m.h2*5 + 0x38495ab5
}

// finish mixes the (possibly partial) tail block and the total input length
// into the running state and returns the final (h1, h2) pair.
func (m *murmur128) finish(tailK1, tailK2, lengthBytes uint64) (uint64, uint64) {
	m.h1 ^= scrambleK1(tailK1)
	m.h2 ^= scrambleK2(tailK2)
	m.h1 ^= lengthBytes
	m.h2 ^= lengthBytes
	m.h1 += m.h2
	m.h2 += m.h1
	m.h1 = avalanche64(m.h1)
	m.h2 = avalanche64(m.h2)
	m.h1 += m.h2
	m.h2 += m.h1
	return m.h1, m.h2
}

// readLE reads up to 8 bytes starting at bArr[index] as a little-endian
// unsigned integer, treating anything beyond the first n bytes as zero.
// n is always in [0, 8] at every call site below.
func readLE(bArr []byte, index int, n int) uint64 {
	var out uint64
	for i := n - 1; i >= 0; i-- {
		out ^= uint64(bArr[index+i]) << uint(i*8)
	}
	return out
}

// HashByteArrMurmur3 hashes key[offsetBytes : offsetBytes+lengthBytes] as a
// raw byte stream, 16 bytes (one 128-bit block) at a time.
func HashByteArrMurmur3(key []byte, offsetBytes int, lengthBytes int, seed uint64) (uint64, uint64) {
	state := seedMurmur128(seed)

	const blockBytes = 16
	nblocks := lengthBytes / blockBytes
	for i := 0; i < nblocks; i++ {
		base := offsetBytes + i*blockBytes
		state.absorb(readLE(key, base, 8), readLE(key, base+8, 8))
	}

	tailStart := nblocks * blockBytes
	rem := lengthBytes - tailStart
	k1, k2 := tailPair(key, offsetBytes+tailStart, rem, 8)
	return state.finish(k1, k2, uint64(lengthBytes))
}

// HashCharSliceMurmur3 hashes a byte-backed "char" stream where each block
// groups 8 chars into one 128-bit mix step (4 chars feeding k1, 4 feeding k2).
func HashCharSliceMurmur3(key []byte, offsetChars int, lengthChars int, seed uint64) (uint64, uint64) {
	state := seedMurmur128(seed)

	const charsPerBlock = 8
	nblocks := lengthChars / charsPerBlock
	for i := 0; i < nblocks; i++ {
		base := offsetChars + i*charsPerBlock
		state.absorb(readLE(key, base, 4), readLE(key, base+4, 4))
	}

	tailStart := nblocks * charsPerBlock
	rem := lengthChars - tailStart
	k1, k2 := tailPair(key, offsetChars+tailStart, rem, 4)
	return state.finish(k1, k2, uint64(lengthChars)<<1)
}

// tailPair reads a trailing, less-than-one-block remainder of rem bytes
// starting at index, splitting it across k1 (up to half) and k2 (the rest),
// per MurmurHash3_x64_128's tail-mixing convention.
func tailPair(key []byte, index int, rem int, half int) (uint64, uint64) {
	switch {
	case rem > half:
		return readLE(key, index, half), readLE(key, index+half, rem-half)
	case rem > 0:
		return readLE(key, index, rem), 0
	default:
		return 0, 0
	}
}

// HashInt32SliceMurmur3 hashes a slice of int32 values. Each 128-bit block
// spans 4 consecutive int32s, but only the values at relative offsets 0 and
// 2 within the block feed the mix (offsets 1 and 3 are skipped), mirroring
// the reference implementation this hash must stay bit-compatible with.
func HashInt32SliceMurmur3(key []int32, offsetInts int, lengthInts int, seed uint64) (uint64, uint64) {
	state := seedMurmur128(seed)

	const intsPerBlock = 4
	nblocks := lengthInts / intsPerBlock
	for i := 0; i < nblocks; i++ {
		base := offsetInts + i*intsPerBlock
		state.absorb(uint64(key[base]), uint64(key[base+2]))
	}

	tailStart := nblocks * intsPerBlock
	rem := lengthInts - tailStart
	var k1, k2 uint64
	if rem > 2 {
		k1 = uint64(key[offsetInts+tailStart])
		k2 = uint64(key[offsetInts+tailStart+2])
	} else if rem != 0 {
		k1 = uint64(key[offsetInts+tailStart])
	}
	return state.finish(k1, k2, uint64(lengthInts)<<2)
}

// HashInt64SliceMurmur3 hashes a slice of int64 values, two per 128-bit block.
func HashInt64SliceMurmur3(key []int64, offsetLongs int, lengthLongs int, seed uint64) (uint64, uint64) {
	state := seedMurmur128(seed)

	const longsPerBlock = 2
	nblocks := lengthLongs / longsPerBlock
	for i := 0; i < nblocks; i++ {
		base := offsetLongs + i*longsPerBlock
		state.absorb(uint64(key[base]), uint64(key[base+1]))
	}

	tailStart := nblocks * longsPerBlock
	rem := lengthLongs - tailStart
	var k1 uint64
	if rem != 0 {
		k1 = uint64(key[offsetLongs+tailStart])
	}
	return state.finish(k1, 0, uint64(lengthLongs)<<3)
}
