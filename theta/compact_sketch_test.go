// Apache-2.0 licensed. See LICENSE for the full text.

package theta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCompactSketch(t *testing.T) {
	cases := []struct {
		name         string
		source       func() *QuickSelectUpdateSketch
		requestOrder bool
		wantEmpty    bool
		wantRetained uint32
		wantOrdered  bool
	}{
		{
			name:         "empty source",
			source:       func() *QuickSelectUpdateSketch { return newUpdateSketch(t) },
			requestOrder: false,
			wantEmpty:    true,
			wantRetained: 0,
			wantOrdered:  true,
		},
		{
			name: "ordered source",
			source: func() *QuickSelectUpdateSketch {
				s := newUpdateSketch(t)
				_ = s.UpdateInt64(1)
				return s
			},
			requestOrder: false,
			wantEmpty:    false,
			wantRetained: 1,
			wantOrdered:  true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sketch := NewCompactSketch(c.source(), c.requestOrder)

			assert.NotNil(t, sketch)
			assert.Equal(t, c.wantEmpty, sketch.IsEmpty())
			assert.Equal(t, c.wantRetained, sketch.NumRetained())
			assert.Equal(t, c.wantOrdered, sketch.IsOrdered())
		})
	}

	unorderedCases := []struct {
		name         string
		requestOrder bool
		wantOrdered  bool
	}{
		{"unordered source with ordering requested", true, true},
		{"unordered source without ordering requested", false, false},
	}
	entries := []uint64{100, 200}
	for _, c := range unorderedCases {
		t.Run(c.name, func(t *testing.T) {
			unordered := newCompactSketchFromEntries(false, false, 0x1234, MaxTheta, entries)
			sketch := NewCompactSketch(unordered, c.requestOrder)
			assert.Equal(t, c.wantOrdered, sketch.IsOrdered())
		})
	}
}

func TestCompactSketch_Estimate(t *testing.T) {
	sketch := newCompactSketchFromEntries(false, true, 0x1234, MaxTheta, []uint64{100, 200, 300})
	assert.Equal(t, 3.0, sketch.Estimate())
}

func TestCompactSketch_Bounds(t *testing.T) {
	cases := []struct {
		name          string
		theta         uint64
		entries       []uint64
		wantEstMode   bool
		checkExact    bool
		call          func(s *CompactSketch, numStdDevs uint8) (float64, error)
		exactRelation func(t *testing.T, got, estimate float64)
	}{
		{
			name:        "lower bound, exact mode",
			theta:       MaxTheta,
			entries:     []uint64{100, 200, 300},
			wantEstMode: false,
			checkExact:  true,
			call:        (*CompactSketch).LowerBound,
		},
		{
			name:        "lower bound, estimation mode",
			theta:       MaxTheta / 2,
			entries:     []uint64{100, 200},
			wantEstMode: true,
			call:        (*CompactSketch).LowerBound,
			exactRelation: func(t *testing.T, got, estimate float64) {
				assert.LessOrEqual(t, got, estimate)
			},
		},
		{
			name:        "upper bound, exact mode",
			theta:       MaxTheta,
			entries:     []uint64{100, 200, 300},
			wantEstMode: false,
			checkExact:  true,
			call:        (*CompactSketch).UpperBound,
		},
		{
			name:        "upper bound, estimation mode",
			theta:       MaxTheta / 2,
			entries:     []uint64{100, 200},
			wantEstMode: true,
			call:        (*CompactSketch).UpperBound,
			exactRelation: func(t *testing.T, got, estimate float64) {
				assert.GreaterOrEqual(t, got, estimate)
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sketch := newCompactSketchFromEntries(false, true, 0x1234, c.theta, c.entries)
			assert.Equal(t, c.wantEstMode, sketch.IsEstimationMode())

			bound, err := c.call(sketch, 2)
			assert.NoError(t, err)
			if c.checkExact {
				assert.Equal(t, float64(len(c.entries)), bound)
				return
			}
			c.exactRelation(t, bound, sketch.Estimate())
		})
	}
}

func TestCompactSketch_Theta(t *testing.T) {
	theta := MaxTheta / 2
	sketch := newCompactSketchFromEntries(false, true, 0x1234, theta, []uint64{100})
	assert.InDelta(t, 0.5, sketch.Theta(), 0.01)
}

func TestCompactSketch_String(t *testing.T) {
	t.Run("Without Items", func(t *testing.T) {
		sketch := newCompactSketchFromEntries(false, true, 0x1234, MaxTheta, []uint64{100, 200})

		result := sketch.String(false)
		assert.Contains(t, result, "### Theta sketch summary:")
		assert.Contains(t, result, "num retained entries : 2")
		assert.Contains(t, result, "seed hash            : 4660")
		assert.Contains(t, result, "empty?               : false")
		assert.Contains(t, result, "ordered?             : true")
		assert.NotContains(t, result, "### Retained entries")
	})

	t.Run("With Items", func(t *testing.T) {
		sketch := newCompactSketchFromEntries(false, true, 0x1234, MaxTheta, []uint64{100, 200})

		result := sketch.String(true)
		assert.Contains(t, result, "### Theta sketch summary:")
		assert.Contains(t, result, "### Retained entries")
		assert.Contains(t, result, "100")
		assert.Contains(t, result, "200")
		assert.Contains(t, result, "### End retained entries")
	})
}

func TestCompactSketch_All(t *testing.T) {
	entries := []uint64{100, 200, 300}
	sketch := newCompactSketchFromEntries(false, true, 0x1234, MaxTheta, entries)

	count := 0
	seen := make(map[uint64]bool)
	for entry := range sketch.All() {
		count++
		seen[entry] = true
	}

	assert.Equal(t, 3, count)
	assert.Equal(t, 3, len(seen))
	for _, entry := range entries {
		assert.True(t, seen[entry])
	}
}

func TestCompactSketch_MarshalBinary(t *testing.T) {
	cases := []struct {
		name        string
		n           int
		wantEstMode bool
	}{
		{"empty sketch", 0, false},
		{"single entry sketch", 1, false},
		{"multiple entries exact mode", 10, false},
		{"large sketch estimation mode", 10000, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sketch := newUpdateSketch(t)
			for i := 0; i < c.n; i++ {
				sketch.UpdateInt64(int64(i))
			}
			compact := sketch.CompactOrdered()
			assert.Equal(t, c.wantEstMode, compact.IsEstimationMode())

			data, err := compact.MarshalBinary()
			assert.NoError(t, err)
			assert.NotNil(t, data)
			if c.n == 0 {
				assert.Greater(t, len(data), 0)
			}

			decoded, err := Decode(data, DefaultSeed)
			assert.NoError(t, err)
			assert.Equal(t, c.n == 0, decoded.IsEmpty())
			assert.Equal(t, compact.NumRetained(), decoded.NumRetained())
			assert.Equal(t, compact.Theta64(), decoded.Theta64())
			if c.n > 1 {
				assert.Equal(t, compact.IsOrdered(), decoded.IsOrdered())
			}
			if c.wantEstMode {
				assert.True(t, decoded.IsEstimationMode())
			}
		})
	}
}
