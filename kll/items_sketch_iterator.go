// Apache-2.0 licensed. See LICENSE for the full text.

package kll

type ItemsSketchIterator[C comparable] struct {
	quantiles     []C
	levelsArr     []uint32
	numLevels     int
	index         uint32
	level         int
	weight        int64
	isInitialized bool
}

func newItemsSketchIterator[C comparable](
	quantiles []C,
	levelsArr []uint32,
	numLevels int,
) *ItemsSketchIterator[C] {
	return &ItemsSketchIterator[C]{
		quantiles: quantiles,
		levelsArr: levelsArr,
		numLevels: numLevels,
	}
}

func (s *ItemsSketchIterator[C]) Next() bool {

	if !s.isInitialized {
		s.level = 0
		s.index = s.levelsArr[s.level]
		s.weight = 1
		s.isInitialized = true
	} else {
		s.index++
	}
	if s.index < s.levelsArr[s.level+1] {
		return true
	}
	// go to next non-empty level
	for {
		s.level++
		if s.level == s.numLevels {
			return false
		}
		s.weight *= 2
		if s.levelsArr[s.level] != s.levelsArr[s.level+1] {
			break
		}
	}
	s.index = s.levelsArr[s.level]
	return true
}

// GetQuantile return the generic quantile at the current index.
//
// Don't call this before calling next() for the first time
// or after getting false from next().
func (s *ItemsSketchIterator[C]) GetQuantile() C {
	return s.quantiles[s.index]
}

func (s *ItemsSketchIterator[C]) GetWeight() int64 {
	return s.weight
}
