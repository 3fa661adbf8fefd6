// Apache-2.0 licensed. See LICENSE for the full text.

package frequencies

import "fmt"

// RowItem is one row of a frequent-items query result: an item together with
// its estimated frequency and the guaranteed bounds on the true frequency.
type RowItem[C comparable] struct {
	item C
	est  int64
	ub   int64
	lb   int64
}

func newRowItem[C comparable](item C, estimate int64, ub int64, lb int64) *RowItem[C] {
	return &RowItem[C]{
		item: item,
		est:  estimate,
		ub:   ub,
		lb:   lb,
	}
}

// GetItem returns the item.
func (r *RowItem[C]) GetItem() C {
	return r.item
}

// GetEstimate returns the estimated frequency of the item.
func (r *RowItem[C]) GetEstimate() int64 {
	return r.est
}

// GetUpperBound returns the guaranteed upper bound frequency of the item.
func (r *RowItem[C]) GetUpperBound() int64 {
	return r.ub
}

// GetLowerBound returns the guaranteed lower bound frequency of the item.
func (r *RowItem[C]) GetLowerBound() int64 {
	return r.lb
}

func (r *RowItem[C]) String() string {
	return fmt.Sprintf("%20d%20d%20d %v", r.est, r.ub, r.lb, r.item)
}
