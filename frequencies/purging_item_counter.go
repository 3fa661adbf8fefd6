// Apache-2.0 licensed. See LICENSE for the full text.

package frequencies

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/corestream/sketches/common"
	"github.com/corestream/sketches/internal"
)

// purgingItemCounter is an open-addressed key/counter table that grows by
// doubling and, once full, discards its median counter from every slot
// (purge) rather than growing past a caller-chosen cap. This bounds memory
// while keeping heavy hitters' counts close to exact.
type purgingItemCounter[C comparable] struct {
	lgLength      int
	loadThreshold int
	keys          []C
	values        []int64
	states        []int16
	numActive     int
	hasher        common.ItemSketchHasher[C]
	serde         common.ItemSketchSerde[C]
}

const purgingItemCounterLoadFactor = 0.75

// newPurgingItemCounter allocates a table with mapSize slots, which must be
// a power of two so probe masking stays cheap.
func newPurgingItemCounter[C comparable](mapSize int, hasher common.ItemSketchHasher[C], serde common.ItemSketchSerde[C]) (*purgingItemCounter[C], error) {
	lgLength, err := internal.ExactLog2(mapSize)
	if err != nil {
		return nil, err
	}
	return &purgingItemCounter[C]{
		lgLength:      lgLength,
		loadThreshold: int(float64(mapSize) * purgingItemCounterLoadFactor),
		keys:          make([]C, mapSize),
		values:        make([]int64, mapSize),
		states:        make([]int16, mapSize),
		hasher:        hasher,
		serde:         serde,
	}, nil
}

func (r *purgingItemCounter[C]) get(key C) (int64, error) {
	if internal.IsNil(key) {
		return 0, nil
	}

	probe := r.hashProbe(key)
	if r.states[probe] == 0 {
		return 0, nil
	}
	if r.keys[probe] != key {
		return 0, fmt.Errorf("key not found")
	}
	return r.values[probe], nil
}

func (r *purgingItemCounter[C]) getCapacity() int {
	return r.loadThreshold
}

// probeForInsert walks the same linear-probe-with-drift path used by both
// lookups and insertions, returning the slot key should occupy and how far
// it drifted from its ideal home.
func (r *purgingItemCounter[C]) probeForInsert(key C) (probe uint64, drift int) {
	arrayMask := uint64(len(r.keys) - 1)
	probe = r.hasher.Hash(key) & arrayMask
	drift = 1
	for r.states[probe] != 0 && r.keys[probe] != key {
		probe = (probe + 1) & arrayMask
		drift++
	}
	return probe, drift
}

// adjustOrPutValue increments the counter for key by adjustAmount, inserting
// key with that amount if it isn't already present.
func (r *purgingItemCounter[C]) adjustOrPutValue(key C, adjustAmount int64) error {
	probe, drift := r.probeForInsert(key)

	if r.states[probe] != 0 {
		if r.keys[probe] != key {
			return fmt.Errorf("key not found")
		}
		r.values[probe] += adjustAmount
		return nil
	}

	if r.numActive > r.loadThreshold {
		return fmt.Errorf("numActive: %d >= loadThreshold: %d", r.numActive, r.loadThreshold)
	}
	r.keys[probe] = key
	r.values[probe] = adjustAmount
	r.states[probe] = int16(drift)
	r.numActive++
	return nil
}

func (r *purgingItemCounter[C]) resize(newSize int) error {
	oldKeys, oldValues, oldStates := r.keys, r.values, r.states

	r.keys = make([]C, newSize)
	r.values = make([]int64, newSize)
	r.states = make([]int16, newSize)
	r.loadThreshold = int(float64(newSize) * purgingItemCounterLoadFactor)
	r.lgLength = bits.TrailingZeros64(uint64(newSize))
	r.numActive = 0

	for i, state := range oldStates {
		if state <= 0 {
			continue
		}
		if err := r.adjustOrPutValue(oldKeys[i], oldValues[i]); err != nil {
			return err
		}
	}
	return nil
}

// purge finds the median of all active counters, subtracts it from every
// counter, and drops the ones that go non-positive. Returns the subtracted
// median.
func (r *purgingItemCounter[C]) purge(sampleSize int) int64 {
	limit := min(sampleSize, r.numActive)
	samples := make([]int64, limit)

	numSamples, i := 0, 0
	for numSamples < limit {
		if r.states[i] > 0 {
			samples[numSamples] = r.values[i]
			numSamples++
		}
		i++
	}

	median := internal.QuickSelect(samples, 0, numSamples-1, limit/2)
	r.adjustAllValuesBy(-median)
	r.keepOnlyPositiveCounts()
	return median
}

func (r *purgingItemCounter[C]) serializeToString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d,%d,", r.numActive, len(r.keys)))
	for i, state := range r.states {
		if state != 0 {
			sb.WriteString(fmt.Sprintf("%v,%d,", r.keys[i], r.values[i]))
		}
	}
	return sb.String()
}

func (r *purgingItemCounter[C]) adjustAllValuesBy(adjustAmount int64) {
	for i := range r.values {
		r.values[i] += adjustAmount
	}
}

// keepOnlyPositiveCounts evicts every slot whose counter is no longer
// positive after a purge. It walks from the back of the table to find a
// cluster boundary first, so hashDelete's forward search for a replacement
// never has to wrap past a slot this same pass already emptied.
func (r *purgingItemCounter[C]) keepOnlyPositiveCounts() {
	firstProbe := len(r.states) - 1
	for r.states[firstProbe] > 0 {
		firstProbe--
	}

	evictIfNonPositive := func(probe int) {
		if r.states[probe] > 0 && r.values[probe] <= 0 {
			r.hashDelete(probe)
			r.numActive--
		}
	}
	for probe := firstProbe; probe > 0; {
		probe--
		evictIfNonPositive(probe)
	}
	for probe := len(r.states); probe > firstProbe; {
		probe--
		evictIfNonPositive(probe)
	}
}

// hashDelete empties deleteProbe and, if a later entry in its probe chain
// can legally move up to fill the gap (its drift exceeds what moving would
// cost), relocates it there and repeats from the vacated slot.
func (r *purgingItemCounter[C]) hashDelete(deleteProbe int) {
	r.states[deleteProbe] = 0
	arrayMask := len(r.keys) - 1
	drift := 1
	probe := (deleteProbe + drift) & arrayMask

	for r.states[probe] != 0 {
		if r.states[probe] > int16(drift) {
			r.keys[deleteProbe] = r.keys[probe]
			r.values[deleteProbe] = r.values[probe]
			r.states[deleteProbe] = r.states[probe] - int16(drift)
			r.states[probe] = 0
			drift = 0
			deleteProbe = probe
		}
		probe = (probe + 1) & arrayMask
		drift++
	}
}

func (r *purgingItemCounter[C]) getActiveValues() []int64 {
	if r.numActive == 0 {
		return nil
	}
	active := make([]int64, 0, r.numActive)
	for i, state := range r.states {
		if state > 0 {
			active = append(active, r.values[i])
		}
	}
	return active
}

func (r *purgingItemCounter[C]) getActiveKeys() []C {
	if r.numActive == 0 {
		return nil
	}
	active := make([]C, 0, r.numActive)
	for i, state := range r.states {
		if state > 0 {
			active = append(active, r.keys[i])
		}
	}
	return active
}

func (r *purgingItemCounter[C]) iterator() *purgingItemCounterIterator[C] {
	return newPurgingItemCounterIterator(r.keys, r.values, r.states, r.numActive)
}

func (r *purgingItemCounter[C]) hashProbe(key C) int {
	arrayMask := uint64(len(r.keys) - 1)
	probe := r.hasher.Hash(key) & arrayMask
	for r.states[probe] > 0 && r.keys[probe] != key {
		probe = (probe + 1) & arrayMask
	}
	return int(probe)
}

func (r *purgingItemCounter[C]) String() string {
	var sb strings.Builder
	sb.WriteString("purgingItemCounter:\n")
	sb.WriteString(fmt.Sprintf("  %12s:%11s%20s %s\n", "Index", "States", "Values", "Keys"))
	for i, state := range r.states {
		if state <= 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %12d:%11d%20d %v\n", i, state, r.values[i], r.keys[i]))
	}
	return sb.String()
}

// purgingItemCounterIterator walks a purgingItemCounter's active slots in a
// golden-ratio stride order rather than table order, so partial iterations
// sample spread-out slots instead of one contiguous run.
type purgingItemCounterIterator[C comparable] struct {
	keys      []C
	values    []int64
	states    []int16
	numActive int
	stride    int
	mask      int
	pos       int
	seen      int
}

func newPurgingItemCounterIterator[C comparable](keys []C, values []int64, states []int16, numActive int) *purgingItemCounterIterator[C] {
	stride := int(uint64(float64(len(keys))*internal.InverseGolden) | 1)
	return &purgingItemCounterIterator[C]{
		keys:      keys,
		values:    values,
		states:    states,
		numActive: numActive,
		stride:    stride,
		mask:      len(keys) - 1,
		pos:       -stride,
	}
}

func (it *purgingItemCounterIterator[C]) next() bool {
	it.pos = (it.pos + it.stride) & it.mask
	for it.seen < it.numActive {
		if it.states[it.pos] > 0 {
			it.seen++
			return true
		}
		it.pos = (it.pos + it.stride) & it.mask
	}
	return false
}

func (it *purgingItemCounterIterator[C]) getKey() C {
	return it.keys[it.pos]
}

func (it *purgingItemCounterIterator[C]) getValue() int64 {
	return it.values[it.pos]
}
