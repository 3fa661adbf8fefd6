// Apache-2.0 licensed. See LICENSE for the full text.

package theta

import (
	"slices"

	"github.com/corestream/sketches/errs"
	"github.com/corestream/sketches/internal"
)

// Union accumulates Theta sketches into their set union. It owns an
// internal OpenTable; every Update call inserts already-hashed keys
// directly into it without re-hashing them.
type Union struct {
	table  *OpenTable
	policy Policy
	theta  uint64
}

type unionOptions struct {
	lgK   uint8
	rf    ResizeFactor
	p     float32
	seed  uint64
	theta uint64
	lgCap uint8
}

type UnionOptionFunc func(*unionOptions)

// WithUnionLgK sets log2(k), where k is a nominal number of entries in the union
func WithUnionLgK(lgK uint8) UnionOptionFunc {
	return func(opts *unionOptions) { opts.lgK = lgK }
}

// WithUnionResizeFactor sets a resize factor for the internal hash table (defaults to 8)
func WithUnionResizeFactor(rf ResizeFactor) UnionOptionFunc {
	return func(opts *unionOptions) { opts.rf = rf }
}

// WithUnionSketchP sets sampling probability (initial theta). The default is 1, so the union retains
// all entries until it reaches the limit, at which point it goes into the estimation mode
// and reduces the effective sampling probability (theta) as necessary
func WithUnionSketchP(p float32) UnionOptionFunc {
	return func(opts *unionOptions) { opts.p = p }
}

// WithUnionSeed sets the seed for the hash function. Should be used carefully if needed.
// Union produced with different seeds are not compatible
// and cannot be mixed in set operations.
func WithUnionSeed(seed uint64) UnionOptionFunc {
	return func(opts *unionOptions) { opts.seed = seed }
}

// NewUnion creates a new union with the given options
func NewUnion(opts ...UnionOptionFunc) (*Union, error) {
	options := &unionOptions{
		lgK:  DefaultLgK,
		rf:   DefaultResizeFactor,
		p:    1.0,
		seed: DefaultSeed,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.lgK < MinLgK {
		return nil, errs.Argument("lg_k must not be less than %d: %d", MinLgK, options.lgK)
	}
	if options.lgK > MaxLgK {
		return nil, errs.Argument("lg_k must not be greater than %d: %d", MaxLgK, options.lgK)
	}
	if options.p <= 0 || options.p > 1 {
		return nil, errs.Argument("sampling probability must be between 0 and 1")
	}

	options.lgCap = startingSubMultiple(options.lgK+1, MinLgK, uint8(options.rf))
	options.theta = startingThetaFromP(options.p)

	table := NewOpenTable(options.lgCap, options.lgK, options.rf, options.p, options.theta, options.seed, true)

	return &Union{
		table:  table,
		policy: &noopPolicy{},
		theta:  table.theta,
	}, nil
}

// Update folds sketch's retained keys into the union. Keys are inserted
// as-is (they are already hashes) and never passed back through the
// byte-hashing path.
func (u *Union) Update(sketch Sketch) error {
	if sketch.IsEmpty() {
		return nil
	}

	ourSeedHash, err := internal.ComputeSeedHash(int64(u.table.seed))
	if err != nil {
		return err
	}
	theirSeedHash, err := sketch.SeedHash()
	if err != nil {
		return err
	}
	if uint16(ourSeedHash) != theirSeedHash {
		return errs.Corruption("seed hash mismatch")
	}

	u.table.isEmpty = false
	u.theta = min(u.theta, sketch.Theta64())

	for key := range sketch.All() {
		if key >= u.theta || key >= u.table.theta {
			if sketch.IsOrdered() {
				break // remaining keys of an ordered sketch are only larger
			}
			continue
		}
		index, err := u.table.Probe(key)
		if err == nil {
			u.policy.Apply(&u.table.slots[index], key) // key already present
			continue
		}
		if err != ErrKeyNotFound {
			return err
		}
		u.table.Insert(index, key)
	}

	u.theta = min(u.theta, u.table.theta)
	return nil
}

// Result snapshots the union's current state as a compact sketch, trimming
// to nominal capacity (and lowering theta accordingly) if still oversized.
func (u *Union) Result(ordered bool) (*CompactSketch, error) {
	seedHash, err := internal.ComputeSeedHash(int64(u.table.seed))
	if err != nil {
		return nil, err
	}

	if u.table.isEmpty {
		return newCompactSketchFromEntries(true, true, uint16(seedHash), u.theta, nil), nil
	}

	effectiveTheta := min(u.theta, u.table.theta)
	var retained []uint64
	for _, key := range u.table.slots {
		if key != 0 && key < effectiveTheta {
			retained = append(retained, key)
		}
	}

	nominal := uint32(1 << u.table.lgNom)
	if uint32(len(retained)) > nominal {
		internal.QuickSelect(retained, 0, len(retained)-1, int(nominal))
		effectiveTheta = retained[nominal]
		retained = retained[:nominal]
	}
	if ordered {
		slices.Sort(retained)
	}

	return newCompactSketchFromEntries(u.table.isEmpty, ordered, uint16(seedHash), effectiveTheta, retained), nil
}

// OrderedResult produces a copy of the current state of the Union
// as an ordered compact sketch
func (u *Union) OrderedResult() (*CompactSketch, error) {
	return u.Result(true)
}

// Reset resets the union to the initial empty state
func (u *Union) Reset() {
	u.table.Reset()
	u.theta = u.table.theta
}

// Policy returns the policy used by this union
func (u *Union) Policy() Policy {
	return u.policy
}
