// Apache-2.0 licensed. See LICENSE for the full text.

package theta

import (
	"slices"

	"github.com/corestream/sketches/errs"
	"github.com/corestream/sketches/internal"
)

type intersectionOptions struct {
	policy Policy
	seed   uint64
}

type IntersectionOptionFunc func(*intersectionOptions)

// WithIntersectionPolicy sets the policy for processing matched entries during intersection.
func WithIntersectionPolicy(policy Policy) IntersectionOptionFunc {
	return func(i *intersectionOptions) {
		i.policy = policy
	}
}

// WithIntersectionSeed sets the seed for the hash function.
func WithIntersectionSeed(seed uint64) IntersectionOptionFunc {
	return func(i *intersectionOptions) {
		i.seed = seed
	}
}

// Intersection accumulates the set intersection of Theta sketches. Before the
// first Update it stands for the universal set, so Result is undefined until
// at least one sketch has been folded in.
type Intersection struct {
	table   *OpenTable
	policy  Policy
	isValid bool
}

// NewIntersection creates a new intersection.
func NewIntersection(opts ...IntersectionOptionFunc) *Intersection {
	options := &intersectionOptions{
		policy: &noopPolicy{},
		seed:   DefaultSeed,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Intersection{
		table:  emptyIntersectionTable(MaxTheta, options.seed, false),
		policy: options.policy,
	}
}

// emptyIntersectionTable is the zero-capacity table the intersection holds
// whenever its accumulated key set is empty.
func emptyIntersectionTable(theta, seed uint64, isEmpty bool) *OpenTable {
	return NewOpenTable(0, 0, ResizeX1, 1.0, theta, seed, isEmpty)
}

// tableFromHashes builds a fixed-size table holding exactly the given hashes.
// The hashes must be distinct; a repeat means the caller was fed a corrupted
// sketch.
func tableFromHashes(hashes []uint64, theta, seed uint64, isEmpty bool) (*OpenTable, error) {
	lgSize := internal.LgSizeFromCount(uint32(len(hashes)), rebuildThreshold)
	table := NewOpenTable(lgSize, lgSize-1, ResizeX1, 1.0, theta, seed, isEmpty)

	for _, hash := range hashes {
		index, err := table.Probe(hash)
		switch err {
		case ErrKeyNotFound:
			table.Insert(index, hash)
		case nil:
			return nil, errs.Corruption("duplicate key, possibly corrupted input sketch")
		default:
			return nil, err
		}
	}
	return table, nil
}

// checkSeedHash rejects a non-empty input sketch whose seed hash disagrees
// with the seed this intersection was built with.
func (i *Intersection) checkSeedHash(sketch Sketch) error {
	seedHash, err := internal.ComputeSeedHash(int64(i.table.seed))
	if err != nil {
		return err
	}
	sketchSeedHash, err := sketch.SeedHash()
	if err != nil {
		return err
	}
	if !sketch.IsEmpty() && sketchSeedHash != uint16(seedHash) {
		return errs.Corruption("seed hash mismatch")
	}
	return nil
}

// Update intersects the accumulated state with the given sketch.
func (i *Intersection) Update(sketch Sketch) error {
	if i.table.isEmpty {
		return nil // provably empty, no input can re-grow it
	}
	if err := i.checkSeedHash(sketch); err != nil {
		return err
	}

	i.table.isEmpty = sketch.IsEmpty()
	if i.table.isEmpty {
		i.table.theta = MaxTheta
	} else {
		i.table.theta = min(i.table.theta, sketch.Theta64())
	}

	if i.isValid && i.table.filled == 0 {
		return nil
	}

	if sketch.NumRetained() == 0 {
		i.isValid = true
		i.table = emptyIntersectionTable(i.table.theta, i.table.seed, i.table.isEmpty)
		return nil
	}

	if !i.isValid {
		return i.seedFromSketch(sketch)
	}
	return i.intersectWith(sketch)
}

// seedFromSketch makes the first input sketch's retained keys the accumulated
// state, verifying the sketch yields exactly as many distinct keys as it
// claims to hold.
func (i *Intersection) seedFromSketch(sketch Sketch) error {
	i.isValid = true

	hashes := slices.Collect(sketch.All())
	if uint32(len(hashes)) != sketch.NumRetained() {
		return errs.Corruption("num entries mismatch, possibly corrupted input sketch")
	}

	table, err := tableFromHashes(hashes, i.table.theta, i.table.seed, i.table.isEmpty)
	if err != nil {
		return err
	}
	i.table = table
	return nil
}

// intersectWith keeps only the accumulated keys that also appear in the
// given sketch below the working theta, then rebuilds the table around the
// survivors.
func (i *Intersection) intersectWith(sketch Sketch) error {
	maxMatches := min(i.table.filled, sketch.NumRetained())
	matches := make([]uint64, 0, maxMatches)

	seen := 0
	for entry := range sketch.All() {
		if entry >= i.table.theta {
			if sketch.IsOrdered() {
				break // remaining keys of an ordered sketch are only larger
			}
			seen++
			continue
		}

		if index, err := i.table.Probe(entry); err == nil {
			if uint32(len(matches)) == maxMatches {
				return errs.Corruption("max matches exceeded, possibly corrupted input sketch")
			}
			i.policy.Apply(&i.table.slots[index], entry)
			matches = append(matches, i.table.slots[index])
		}
		seen++
	}
	if seen > int(sketch.NumRetained()) {
		return errs.Corruption("more keys than expected, possibly corrupted input sketch")
	}
	if !sketch.IsOrdered() && seen < int(sketch.NumRetained()) {
		return errs.Corruption("fewer keys than expected, possibly corrupted input sketch")
	}

	if len(matches) == 0 {
		i.table = emptyIntersectionTable(i.table.theta, i.table.seed, i.table.isEmpty)
		if i.table.theta == MaxTheta {
			i.table.isEmpty = true
		}
		return nil
	}

	table, err := tableFromHashes(matches, i.table.theta, i.table.seed, i.table.isEmpty)
	if err != nil {
		return err
	}
	i.table = table
	return nil
}

// Result produces a copy of the current state of the intersection.
func (i *Intersection) Result(ordered bool) (*CompactSketch, error) {
	if !i.isValid {
		return nil, errs.State("calling Result before any Update is undefined")
	}

	seedHash, err := internal.ComputeSeedHash(int64(i.table.seed))
	if err != nil {
		return nil, err
	}

	entries := make([]uint64, 0, i.table.filled)
	for _, hash := range i.table.slots {
		if hash != 0 {
			entries = append(entries, hash)
		}
	}
	if ordered {
		slices.Sort(entries)
	}

	return newCompactSketchFromEntries(
		i.table.isEmpty,
		ordered,
		uint16(seedHash),
		i.table.theta,
		entries,
	), nil
}

// OrderedResult produces a copy of the current state of the intersection.
func (i *Intersection) OrderedResult() (*CompactSketch, error) {
	return i.Result(true)
}

// HasResult returns true if the state of the intersection is defined.
func (i *Intersection) HasResult() bool {
	return i.isValid
}

// Policy returns the policy for processing matched entries during intersection.
func (i *Intersection) Policy() Policy {
	return i.policy
}
