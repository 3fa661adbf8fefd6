// Apache-2.0 licensed. See LICENSE for the full text.

package count

import (
	"errors"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/corestream/sketches/errs"
	"github.com/corestream/sketches/internal"
)

// Min returns the smaller of a and b, retained for callers that built against
// earlier versions of this package before the min builtin covered this case.
func Min[T constraints.Ordered](a, b T) T {
	return min(a, b)
}

func SuggestNumBuckets(relativeError float64) (int32, error) {
	if relativeError <= 0 {
		return 0, errors.New("relative error must be greater than 0.0")
	}
	return int32(math.Ceil(math.Exp(1.0) / relativeError)), nil
}

func SuggestNumHashes(confidence float64) (int8, error) {
	if confidence < 0 || confidence > 1.0 {
		return 0, errors.New("confidence must be between 0 and 1.0 (inclusive)")
	}
	return min(int8(math.Ceil(math.Log(1.0/(1.0-confidence)))), int8(math.MaxInt8)), nil
}

func checkHeaderValidity(preamble, serVer, familyID, flagsByte byte) error {
	if preamble != PreambleLongsShort {
		return errs.Corruption("preamble longs must be %d: %d", PreambleLongsShort, preamble)
	}
	if serVer != SerialVersion1 {
		return errs.Corruption("unsupported serial version: %d", serVer)
	}
	if familyID != byte(internal.FamilyEnum.CountMinSketch.Id) {
		return errs.Corruption("family id must be %d: %d", internal.FamilyEnum.CountMinSketch.Id, familyID)
	}
	return nil
}

const (
	PreambleLongsShort = 2
	SerialVersion1     = 1
	Null8              = 0
	Null32             = 0
	IsEmpty            = 0
)
