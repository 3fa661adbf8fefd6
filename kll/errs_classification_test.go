// Apache-2.0 licensed. See LICENSE for the full text.

package kll

import (
	"testing"

	"github.com/corestream/sketches/common"
	"github.com/corestream/sketches/errs"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	comparator := common.ItemSketchStringComparator(false)

	t.Run("argument errors", func(t *testing.T) {
		cases := []struct {
			name string
			call func() error
		}{
			{"k below minimum", func() error {
				_, err := NewKllItemsSketch[string](minKLimit-1, defaultM, comparator, common.ItemSketchStringSerDe{})
				return err
			}},
			{"nil compare function", func() error {
				_, err := NewKllItemsSketch[string](defaultK, defaultM, nil, common.ItemSketchStringSerDe{})
				return err
			}},
			{"rank above one", func() error {
				sketch := newDefaultStringSketch(t)
				sketch.Update("a")
				_, err := sketch.GetQuantile(1.5, true)
				return err
			}},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				assert.ErrorIs(t, c.call(), errs.ErrArgument)
			})
		}
	})

	t.Run("corruption errors", func(t *testing.T) {
		sketch := newDefaultStringSketch(t)
		for _, s := range []string{"a", "b", "c", "d"} {
			sketch.Update(s)
		}
		valid, err := sketch.ToSlice()
		assert.NoError(t, err)

		cases := []struct {
			name    string
			corrupt func(b []byte) []byte
		}{
			{"truncated preamble", func(b []byte) []byte { return b[:4] }},
			{"wrong family id", func(b []byte) []byte { b[familyByteAdr] = 99; return b }},
			{"invalid serial version", func(b []byte) []byte { b[serVerByteAdr] = 99; return b }},
			{"invalid m", func(b []byte) []byte { b[mByteAdr] = 3; return b }},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				b := make([]byte, len(valid))
				copy(b, valid)
				_, err := NewKllItemsSketchFromSlice[string](c.corrupt(b), comparator, common.ItemSketchStringSerDe{})
				assert.ErrorIs(t, err, errs.ErrCorruption)
			})
		}
	})

	t.Run("state errors", func(t *testing.T) {
		sketch := newDefaultStringSketch(t)

		_, err := sketch.GetMinItem()
		assert.ErrorIs(t, err, errs.ErrState)
		_, err = sketch.GetQuantile(0.5, true)
		assert.ErrorIs(t, err, errs.ErrState)
		_, err = sketch.GetRank("a", true)
		assert.ErrorIs(t, err, errs.ErrState)
	})
}
