// Apache-2.0 licensed. See LICENSE for the full text.

package kll

import "github.com/corestream/sketches/errs"

type sketchStructure struct {
	preInts int
	serVer  int
}

var (
	compactEmptyStructure  = sketchStructure{preambleIntsEmptySingle, serialVersionEmptyFull}
	compactSingleStructure = sketchStructure{preambleIntsEmptySingle, serialVersionSingle}
	compactFullStructure   = sketchStructure{preambleIntsFull, serialVersionEmptyFull}
	updatableStructure     = sketchStructure{preambleIntsFull, serialVersionUpdatable}
)

func (s sketchStructure) getPreInts() int { return s.preInts }

func (s sketchStructure) getSerVer() int { return s.serVer }

func getSketchStructure(preInts, serVer int) (sketchStructure, error) {
	if preInts == preambleIntsEmptySingle {
		if serVer == serialVersionEmptyFull {
			return compactEmptyStructure, nil
		} else if serVer == serialVersionSingle {
			return compactSingleStructure, nil
		}
	} else if preInts == preambleIntsFull {
		if serVer == serialVersionEmptyFull {
			return compactFullStructure, nil
		} else if serVer == serialVersionUpdatable {
			return updatableStructure, nil
		}
	}
	return sketchStructure{}, errs.Corruption("invalid combination of preamble ints %d and serial version %d", preInts, serVer)
}
