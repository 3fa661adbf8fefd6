// Apache-2.0 licensed. See LICENSE for the full text.

package theta

import (
	"fmt"
	"iter"
	"strings"
)

// Sketch is a generalization of the Kth Minimum Value (KMV) sketch.
type Sketch interface {
	// IsEmpty returns true if this sketch represents an empty set
	// (not the same as no retained entries!)
	IsEmpty() bool

	// Estimate returns estimate of the distinct count of the input stream
	Estimate() float64

	// LowerBound returns the approximate lower error bound given a number of standard deviations.
	// This parameter is similar to the number of standard deviations of the normal distribution
	// and corresponds to approximately 67%, 95% and 99% confidence intervals.
	// numStdDevs number of Standard Deviations (1, 2 or 3)
	LowerBound(numStdDevs uint8) (float64, error)

	// UpperBound returns the approximate upper error bound given a number of standard deviations.
	// This parameter is similar to the number of standard deviations of the normal distribution
	// and corresponds to approximately 67%, 95% and 99% confidence intervals.
	// numStdDevs number of Standard Deviations (1, 2 or 3)
	UpperBound(numStdDevs uint8) (float64, error)

	// IsEstimationMode returns true if the sketch is in estimation mode
	// (as opposed to exact mode)
	IsEstimationMode() bool

	// Theta returns theta as a fraction from 0 to 1 (effective sampling rate)
	Theta() float64

	// Theta64 returns theta as a positive integer between 0 and math.MaxInt64
	Theta64() uint64

	// NumRetained returns the number of retained entries in the sketch
	NumRetained() uint32

	// SeedHash returns hash of the seed that was used to hash the input
	SeedHash() (uint16, error)

	// IsOrdered returns true if retained entries are ordered
	IsOrdered() bool

	// String returns a human-readable summary of this sketch as a string
	// If shouldPrintItems is true, include the list of items retained by the sketch
	String(shouldPrintItems bool) string

	// All returns hash values in the sketch.
	All() iter.Seq[uint64]
}

// summaryRow is one "label : value" line of a rendered sketch summary.
type summaryRow struct {
	label string
	value string
}

// renderSketchSummary builds the human-readable block shared by every Sketch
// implementation's String method, appending any implementation-specific rows
// after the common ones and optionally listing every retained hash.
func renderSketchSummary(s Sketch, shouldPrintItems bool, extra ...summaryRow) string {
	seedHash, _ := s.SeedHash()
	lb, _ := s.LowerBound(2)
	ub, _ := s.UpperBound(2)

	rows := append([]summaryRow{
		{"num retained entries", fmt.Sprintf("%d", s.NumRetained())},
		{"seed hash", fmt.Sprintf("%d", seedHash)},
		{"empty?", fmt.Sprintf("%t", s.IsEmpty())},
		{"ordered?", fmt.Sprintf("%t", s.IsOrdered())},
		{"estimation mode?", fmt.Sprintf("%t", s.IsEstimationMode())},
		{"theta (fraction)", fmt.Sprintf("%f", s.Theta())},
		{"theta (raw 64-bit)", fmt.Sprintf("%d", s.Theta64())},
		{"estimate", fmt.Sprintf("%f", s.Estimate())},
		{"lower bound 95% conf", fmt.Sprintf("%f", lb)},
		{"upper bound 95% conf", fmt.Sprintf("%f", ub)},
	}, extra...)

	var result strings.Builder
	result.WriteString("### Theta sketch summary:\n")
	for _, row := range rows {
		result.WriteString(fmt.Sprintf("   %-20s : %s\n", row.label, row.value))
	}
	result.WriteString("### End sketch summary\n")

	if shouldPrintItems {
		result.WriteString("### Retained entries\n")
		for hash := range s.All() {
			result.WriteString(fmt.Sprintf("%d\n", hash))
		}
		result.WriteString("### End retained entries\n")
	}

	return result.String()
}
