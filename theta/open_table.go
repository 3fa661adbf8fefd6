// Apache-2.0 licensed. See LICENSE for the full text.

package theta

import (
	"errors"
	"math"

	"github.com/corestream/sketches/internal"
)

// Capacity management thresholds: grow the backing array once it's half
// full (and there's still room to grow toward lgNom+1), otherwise rebuild
// around a smaller theta once 15/16 full.
const (
	growThreshold    = 0.5
	rebuildThreshold = 15.0 / 16.0
)

const (
	strideHashBits = 7
	strideMask     = (1 << strideHashBits) - 1
)

var (
	ErrKeyNotFound                = errors.New("key not found")
	ErrKeyNotFoundAndNoEmptySlots = errors.New("key not found and no empty slots")
	// ErrZeroHashValue means the candidate hash landed on the reserved
	// "empty slot" sentinel and cannot be stored.
	ErrZeroHashValue    = errors.New("zero hash value")
	ErrHashExceedsTheta = errors.New("hash exceeds theta")
)

// OpenTable is the open-addressed slot array backing every Theta sketch
// (update sketches and the internal state of the three set operations).
// Every stored slot value is a non-zero 64-bit hash strictly below theta.
type OpenTable struct {
	slots   []uint64
	theta   uint64
	seed    uint64
	filled  uint32
	p       float32
	lgCap   uint8
	lgNom   uint8
	rf      ResizeFactor
	isEmpty bool
}

// NewOpenTable allocates a table with 1<<lgCap physical slots.
func NewOpenTable(lgCap, lgNom uint8, rf ResizeFactor, p float32, theta, seed uint64, isEmpty bool) *OpenTable {
	t := &OpenTable{
		isEmpty: isEmpty,
		lgCap:   lgCap,
		lgNom:   lgNom,
		rf:      rf,
		p:       p,
		theta:   theta,
		seed:    seed,
	}
	if lgCap > 0 {
		t.slots = make([]uint64, 1<<lgCap)
	}
	return t
}

// Copy returns a deep copy, independent of t's backing array.
func (t *OpenTable) Copy() *OpenTable {
	c := &OpenTable{
		isEmpty: t.isEmpty,
		lgCap:   t.lgCap,
		lgNom:   t.lgNom,
		rf:      t.rf,
		p:       t.p,
		filled:  t.filled,
		theta:   t.theta,
		seed:    t.seed,
	}
	if t.slots != nil {
		c.slots = make([]uint64, 1<<t.lgCap)
		copy(c.slots, t.slots)
	}
	return c
}

// screen applies the theta/zero acceptance test to a raw 128-bit hash's
// low half and marks the table non-empty regardless of whether the value
// is ultimately kept.
func (t *OpenTable) screen(h1 uint64) (uint64, error) {
	t.isEmpty = false
	hash := h1 >> 1
	switch {
	case hash >= t.theta:
		return 0, ErrHashExceedsTheta
	case hash == 0:
		return 0, ErrZeroHashValue
	default:
		return hash, nil
	}
}

// ScreenString hashes data and screens the result against theta.
func (t *OpenTable) ScreenString(data string) (uint64, error) {
	h1, _ := internal.HashCharSliceMurmur3([]byte(data), 0, len(data), t.seed)
	return t.screen(h1)
}

// ScreenInt32 hashes data and screens the result against theta.
func (t *OpenTable) ScreenInt32(data int32) (uint64, error) {
	h1, _ := internal.HashInt32SliceMurmur3([]int32{data}, 0, 1, t.seed)
	return t.screen(h1)
}

// ScreenInt64 hashes data and screens the result against theta.
func (t *OpenTable) ScreenInt64(data int64) (uint64, error) {
	h1, _ := internal.HashInt64SliceMurmur3([]int64{data}, 0, 1, t.seed)
	return t.screen(h1)
}

// ScreenBytes hashes data and screens the result against theta.
func (t *OpenTable) ScreenBytes(data []byte) (uint64, error) {
	h1, _ := internal.HashByteArrMurmur3(data, 0, len(data), t.seed)
	return t.screen(h1)
}

// Probe searches for key, returning its slot index on a hit, or the first
// empty slot on its probe path (with ErrKeyNotFound) so the caller can
// insert there without a second lookup.
func (t *OpenTable) Probe(key uint64) (int, error) {
	return probeSlots(t.slots, t.lgCap, key)
}

func probeSlots(slots []uint64, lgSize uint8, key uint64) (int, error) {
	mask := uint32(1<<lgSize) - 1
	stride := strideFor(key, lgSize)
	start := uint32(key) & mask

	for index := start; ; index = (index + stride) & mask {
		switch slots[index] {
		case 0:
			return int(index), ErrKeyNotFound
		case key:
			return int(index), nil
		}
		if (index+stride)&mask == start {
			return 0, ErrKeyNotFoundAndNoEmptySlots
		}
	}
}

// strideFor derives an odd probe stride from bits of key above the index
// bits, so every slot is eventually visited regardless of starting index.
func strideFor(key uint64, lgSize uint8) uint32 {
	return 2*uint32((key>>lgSize)&strideMask) + 1
}

// Insert stores entry at index (as previously located by Probe) and grows
// or rebuilds the table if occupancy now exceeds its threshold.
func (t *OpenTable) Insert(index int, entry uint64) {
	t.slots[index] = entry
	t.filled++

	if t.filled <= capacityLimit(t.lgCap, t.lgNom) {
		return
	}
	if t.lgCap <= t.lgNom {
		t.grow()
	} else {
		t.rebuild()
	}
}

// capacityLimit is the occupancy ceiling at which the table must act: half
// full while there's still room to grow, 15/16 full once at max size.
func capacityLimit(lgCap, lgNom uint8) uint32 {
	fraction := rebuildThreshold
	if lgCap <= lgNom {
		fraction = growThreshold
	}
	return uint32(math.Floor(fraction * float64(uint32(1)<<lgCap)))
}

// grow doubles (times the resize factor) the backing array and rehashes
// every retained key into it, without touching theta.
func (t *OpenTable) grow() {
	oldSlots := t.slots
	lgNewSize := min(t.lgCap+uint8(t.rf), t.lgNom+1)
	newSlots := make([]uint64, 1<<lgNewSize)

	for _, key := range oldSlots {
		if key == 0 {
			continue
		}
		index, _ := probeSlots(newSlots, lgNewSize, key) // always finds an empty slot in a larger table
		newSlots[index] = key
	}

	t.slots = newSlots
	t.lgCap = lgNewSize
}

// rebuild picks a new, lower theta via quick-select on the retained keys so
// that exactly the nominal count survives, then rehashes the survivors into
// a same-sized array.
func (t *OpenTable) rebuild() {
	nominalSize := 1 << t.lgNom
	live := packLive(t.slots, int(t.filled))

	internal.QuickSelect(live, 0, len(live)-1, nominalSize)
	t.theta = live[nominalSize]

	t.slots = make([]uint64, 1<<t.lgCap)
	t.filled = uint32(nominalSize)
	for _, key := range live[:nominalSize] {
		index, _ := probeSlots(t.slots, t.lgCap, key)
		t.slots[index] = key
	}
}

// Trim forces a rebuild if occupancy has somehow crept above nominal
// capacity (e.g. after a union insert that skipped the usual resize path).
func (t *OpenTable) Trim() {
	if t.filled > uint32(1<<t.lgNom) {
		t.rebuild()
	}
}

// Reset returns the table to its initial, empty state, reusing the backing
// array when its starting size hasn't changed.
func (t *OpenTable) Reset() {
	startSize := startingSubMultiple(t.lgNom+1, MinLgK, uint8(t.rf))
	if startSize != t.lgCap {
		t.lgCap = startSize
		t.slots = make([]uint64, 1<<startSize)
	} else {
		for i := range t.slots {
			t.slots[i] = 0
		}
	}
	t.filled = 0
	t.theta = startingThetaFromP(t.p)
	t.isEmpty = true
}

// packLive compacts the num non-zero slots of a possibly-sparse slice to
// the front, in place, and returns that live prefix.
func packLive(slots []uint64, num int) []uint64 {
	dst := 0
	for src := range slots {
		if slots[src] == 0 {
			continue
		}
		if dst != src {
			slots[dst] = slots[src]
		}
		dst++
		if dst == num {
			break
		}
	}
	return slots[:num]
}
