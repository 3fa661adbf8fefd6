// Apache-2.0 licensed. See LICENSE for the full text.

package theta

import (
	"iter"
	"slices"

	"github.com/corestream/sketches/errs"
	"github.com/corestream/sketches/internal"
)

// ANotB computes the set difference of two Theta sketches.
func ANotB(a, b Sketch, seed uint64, ordered bool) (*CompactSketch, error) {
	seedHash, err := internal.ComputeSeedHash(int64(seed))
	if err != nil {
		return nil, err
	}

	if a.IsEmpty() {
		return NewCompactSketch(a, ordered), nil
	}
	if a.NumRetained() > 0 && b.IsEmpty() {
		return NewCompactSketch(a, ordered), nil
	}

	aSeedHash, err := a.SeedHash()
	if err != nil {
		return nil, err
	}
	bSeedHash, err := b.SeedHash()
	if err != nil {
		return nil, err
	}
	if aSeedHash != uint16(seedHash) {
		return nil, errs.Corruption("sketch A seed hash mismatch: expected %d, got %d", seedHash, aSeedHash)
	}
	if bSeedHash != uint16(seedHash) {
		return nil, errs.Corruption("sketch B seed hash mismatch: expected %d, got %d", seedHash, bSeedHash)
	}

	theta := min(a.Theta64(), b.Theta64())
	var entries []uint64

	if b.NumRetained() == 0 {
		for entry := range a.All() {
			if entry < theta {
				entries = append(entries, entry)
			}
		}
	} else if a.IsOrdered() && b.IsOrdered() {
		entries = sortMergeDiff(a, b, theta)
	} else {
		var err error
		entries, err = hashLookupDiff(a, b, theta)
		if err != nil {
			return nil, err
		}
	}

	isEmpty := a.IsEmpty()
	if len(entries) == 0 && theta == MaxTheta {
		isEmpty = true
	}

	if ordered && !a.IsOrdered() {
		slices.Sort(entries)
	}

	return newCompactSketchFromEntries(
		isEmpty,
		a.IsOrdered() || ordered,
		uint16(seedHash),
		theta,
		entries,
	), nil
}

// sortMergeDiff walks both ordered sketches in tandem, keeping A's keys
// below theta that never appear in B.
func sortMergeDiff(a, b Sketch, theta uint64) []uint64 {
	next, stop := iter.Pull(b.All())
	defer stop()
	bEntry, bOk := next()

	var entries []uint64
	for entry := range a.All() {
		if entry >= theta {
			break
		}
		for bOk && bEntry < entry {
			bEntry, bOk = next()
		}
		if bOk && bEntry == entry {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func hashLookupDiff(a, b Sketch, theta uint64) ([]uint64, error) {
	lgSize := internal.LgSizeFromCount(b.NumRetained(), rebuildThreshold)

	table := NewOpenTable(lgSize, lgSize-1, ResizeX1, 1, 0, 0, false)

	for entry := range b.All() {
		if entry < theta {
			idx, err := table.Probe(entry)
			if err != nil && err == ErrKeyNotFoundAndNoEmptySlots {
				return nil, err
			}

			table.Insert(idx, entry)
		} else if b.IsOrdered() {
			break // Early stop
		}
	}

	// Scan A and look up B
	var entries []uint64
	for entry := range a.All() {
		if entry < theta {
			_, err := table.Probe(entry)
			if err != nil && err == ErrKeyNotFound {
				entries = append(entries, entry)
			}
		} else if a.IsOrdered() {
			break // Early stop
		}
	}

	return entries, nil
}
