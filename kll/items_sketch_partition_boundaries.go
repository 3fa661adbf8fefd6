// Apache-2.0 licensed. See LICENSE for the full text.

package kll

import "errors"

// ItemsSketchPartitionBoundaries describes a set of equally (or as-close-to-equally)
// sized partitions of the input stream, as produced by ItemsSketch.GetPartitionBoundaries.
// Each adjacent pair of boundaries delimits one partition; ApproxItemCount reports how
// many of the original input items that partition is estimated to hold.
type ItemsSketchPartitionBoundaries[C comparable] struct {
	totalN        uint64
	boundaries    []C
	naturalRanks  []int64
	normRanks     []float64
	maxItem       C
	minItem       C
	inclusive     bool
	deltaItems    []int64
	numPartitions int
}

func newItemsSketchPartitionBoundaries[C comparable](totalN uint64, boundaries []C, naturalRanks []int64, normRanks []float64, maxItem C, minItem C, inclusive bool) (*ItemsSketchPartitionBoundaries[C], error) {
	if len(boundaries) < 2 {
		return nil, errors.New("at least two boundaries are required to form a partition")
	}
	deltaItems := make([]int64, len(boundaries))
	for i := 1; i < len(boundaries); i++ {
		var inclusiveAdjustment int64
		if (i == 1 && inclusive) || (i == len(boundaries)-1 && !inclusive) {
			inclusiveAdjustment = 1
		}
		deltaItems[i] = naturalRanks[i] - naturalRanks[i-1] + inclusiveAdjustment
	}
	return &ItemsSketchPartitionBoundaries[C]{
		totalN:        totalN,
		boundaries:    boundaries,
		naturalRanks:  naturalRanks,
		normRanks:     normRanks,
		maxItem:       maxItem,
		minItem:       minItem,
		inclusive:     inclusive,
		deltaItems:    deltaItems,
		numPartitions: len(boundaries) - 1,
	}, nil
}

// GetBoundaries returns the partition edges, one more than NumPartitions.
func (b *ItemsSketchPartitionBoundaries[C]) GetBoundaries() []C {
	return b.boundaries
}

// NumPartitions reports how many partitions the boundaries delimit.
func (b *ItemsSketchPartitionBoundaries[C]) NumPartitions() int {
	return b.numPartitions
}

// NaturalRanks returns the estimated rank (in source items) of each boundary.
func (b *ItemsSketchPartitionBoundaries[C]) NaturalRanks() []int64 {
	return b.naturalRanks
}

// NormalizedRanks returns each boundary's rank as a fraction of the source stream's length.
func (b *ItemsSketchPartitionBoundaries[C]) NormalizedRanks() []float64 {
	return b.normRanks
}

// ApproxItemCount estimates how many source items fall within partition i, which
// lies between boundaries[i] and boundaries[i+1]. With inclusive boundaries the
// upper edge belongs to the partition (and the first partition also keeps its
// lower edge); with exclusive boundaries the lower edge belongs to it (and the
// last partition also keeps its upper edge). Valid for 0 <= i < NumPartitions().
func (b *ItemsSketchPartitionBoundaries[C]) ApproxItemCount(partition int) int64 {
	return b.deltaItems[partition+1]
}

// MaxItem returns the maximum item observed in the source sketch.
func (b *ItemsSketchPartitionBoundaries[C]) MaxItem() C {
	return b.maxItem
}

// MinItem returns the minimum item observed in the source sketch.
func (b *ItemsSketchPartitionBoundaries[C]) MinItem() C {
	return b.minItem
}
