// Apache-2.0 licensed. See LICENSE for the full text.

package count

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"math/rand"

	"github.com/corestream/sketches/errs"
	"github.com/corestream/sketches/internal"
)

// Implementation of the CountMin sketch data structure of Cormode and Muthukrishnan.
// [1] - http://dimacs.rutgers.edu/~graham/pubs/papers/cm-full.pdf
type CountMinSketch struct {
	numBuckets  int32 // counter array size for each of the hashing function
	numHashes   int8  // number of hashing functions
	sketchSlice []int64
	seed        int64
	totalWeight int64
	hashSeeds   []int64
}

// NewCountMinSketch creates an instance of the CounrMin sketch given parameters numHashes, numBuckets and hash seed.
// The items inserted into the sketch can be arbitrary type, so long as they are hashable via murmurhash.
// Only update and estimate methods are added for uint64 and string types.
func NewCountMinSketch(numHashes int8, numBuckets int32, seed int64) (*CountMinSketch, error) {
	if numBuckets < 3 {
		return nil, errs.Argument("using fewer than 3 buckets incurs relative error greater than 1.0")
	}

	if numBuckets*int32(numHashes) >= 1<<30 {
		return nil, errs.Argument("these parameters generate a sketch that exceeds 2^30 elements")
	}

	rng := rand.New(rand.NewSource(seed))
	hashSeeds := make([]int64, numHashes)
	for i := range int(numHashes) {
		hashSeeds[i] = int64(rng.Int()) + seed
	}

	sketchSize := int(numBuckets * int32(numHashes))
	sketchSlice := make([]int64, sketchSize)

	return &CountMinSketch{
		numBuckets:  numBuckets,
		numHashes:   numHashes,
		sketchSlice: sketchSlice,
		seed:        seed,
		hashSeeds:   hashSeeds,
	}, nil
}

func (c *CountMinSketch) GetNumBuckets() int32 {
	return c.numBuckets
}

func (c *CountMinSketch) GetNumHashes() int8 {
	return c.numHashes
}

func (c *CountMinSketch) GetTotalWeight() int64 {
	return c.totalWeight
}

func (c *CountMinSketch) GetSeed() int64 {
	return c.seed
}

func (c *CountMinSketch) GetRelativeError() float64 {
	return math.Exp(1.0) / float64(c.numBuckets)
}

func (c *CountMinSketch) isEmpty() bool {
	return c.totalWeight == 0
}

func (c *CountMinSketch) getHashes(item []byte) []int64 {
	sketchUpdateLocations := make([]int64, c.numHashes)

	for i, s := range c.hashSeeds {
		h1, _ := internal.HashByteArrMurmur3(item, 0, len(item), uint64(s))
		bucketIndex := h1 % uint64(c.numBuckets)
		sketchUpdateLocations[i] = int64(i)*int64(c.numBuckets) + int64(bucketIndex)
	}

	return sketchUpdateLocations
}

func (c *CountMinSketch) Update(item []byte, weight int64) error {
	if len(item) == 0 {
		return nil
	}

	if weight < 0 {
		c.totalWeight += -weight
	} else {
		c.totalWeight += weight
	}

	hashLocations := c.getHashes(item)
	for _, h := range hashLocations {
		c.sketchSlice[h] += weight
	}
	return nil
}

func uint64ToBytes(item uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, item)
	return b
}

func (c *CountMinSketch) UpdateUint64(item uint64, weight int64) error {
	return c.Update(uint64ToBytes(item), weight)
}

func (c *CountMinSketch) UpdateString(item string, weight int64) error {
	if len(item) == 0 {
		return nil
	}

	return c.Update([]byte(item), weight)
}

func (c *CountMinSketch) GetEstimate(item []byte) int64 {
	if len(item) == 0 {
		return 0
	}

	hashLocations := c.getHashes(item)
	estimate := int64(math.MaxInt64)
	for _, h := range hashLocations {
		estimate = min(estimate, c.sketchSlice[h])
	}
	return estimate
}

func (c *CountMinSketch) GetEstimateUint64(item uint64) int64 {
	return c.GetEstimate(uint64ToBytes(item))
}

func (c *CountMinSketch) GetEstimateString(item string) int64 {
	if len(item) == 0 {
		return 0
	}
	return c.GetEstimate([]byte(item))
}

func (c *CountMinSketch) GetUpperBound(item []byte) int64 {
	return c.GetEstimate(item) + int64(c.GetRelativeError()*float64(c.GetTotalWeight()))
}

func (c *CountMinSketch) GetUpperBoundUint64(item uint64) int64 {
	return c.GetUpperBound(uint64ToBytes(item))
}

func (c *CountMinSketch) GetLowerBound(item []byte) int64 {
	return c.GetEstimate(item)
}

func (c *CountMinSketch) GetLowerBoundUint64(item uint64) int64 {
	return c.GetLowerBound(uint64ToBytes(item))
}

func (c *CountMinSketch) Merge(otherSketch *CountMinSketch) error {
	if c == otherSketch {
		return errs.Argument("cannot merge sketch with itself")
	}

	canMerge := c.GetNumHashes() == otherSketch.GetNumHashes() &&
		c.GetNumBuckets() == otherSketch.GetNumBuckets() &&
		c.GetSeed() == otherSketch.GetSeed()

	if !canMerge {
		return errs.Corruption("sketches are incompatible")
	}

	for i := range c.sketchSlice {
		c.sketchSlice[i] += otherSketch.sketchSlice[i]
	}
	c.totalWeight += otherSketch.totalWeight

	return nil
}

// writeFields serializes each field to w in order, in little-endian form, stopping
// at the first error.
func writeFields(w io.Writer, fields ...any) error {
	for _, field := range fields {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return err
		}
	}
	return nil
}

func (c *CountMinSketch) Serialize(w io.Writer) error {
	preambleLongs := byte(PreambleLongsShort)
	serVer := byte(SerialVersion1)
	familyID := byte(internal.FamilyEnum.CountMinSketch.Id)

	var flagsByte byte
	if c.isEmpty() {
		flagsByte |= 1 << IsEmpty
	}
	unused32 := uint32(Null32)

	if err := writeFields(w, preambleLongs, serVer, familyID, flagsByte, unused32); err != nil {
		return err
	}

	seedHash, err := internal.ComputeSeedHash(c.seed)
	if err != nil {
		return err
	}

	unused8 := byte(Null8)
	if err := writeFields(w, c.numBuckets, c.numHashes, seedHash, unused8); err != nil {
		return err
	}

	// Skip rest if sketch is empty
	if c.isEmpty() {
		return nil
	}

	if err := writeFields(w, c.totalWeight); err != nil {
		return err
	}

	for _, h := range c.sketchSlice {
		if err := writeFields(w, h); err != nil {
			return err
		}
	}

	return nil
}

// readFields deserializes each field from r in order, in little-endian form, stopping
// at the first error.
func readFields(r io.Reader, fields ...any) error {
	for _, field := range fields {
		if err := binary.Read(r, binary.LittleEndian, field); err != nil {
			return err
		}
	}
	return nil
}

func (c *CountMinSketch) Deserialize(b []byte, seed int64) (*CountMinSketch, error) {
	r := bytes.NewReader(b)

	var preamble, serVe, familyID, flag byte
	if err := readFields(r, &preamble, &serVe, &familyID, &flag); err != nil {
		return nil, err
	}
	if err := checkHeaderValidity(preamble, serVe, familyID, flag); err != nil {
		return nil, err
	}

	unused32 := make([]byte, 4)
	if _, err := r.Read(unused32); err != nil {
		return nil, err
	}

	var numBuckets int32
	var numHashes int8
	var seedHash int16
	var unused8 int8
	if err := readFields(r, &numBuckets, &numHashes, &seedHash, &unused8); err != nil {
		return nil, err
	}

	expectedSeedHash, err := internal.ComputeSeedHash(seed)
	if err != nil {
		return nil, err
	}
	if seedHash != expectedSeedHash {
		return nil, errs.Corruption("seed hash mismatch: expected %d, got %d", expectedSeedHash, seedHash)
	}

	cms, err := NewCountMinSketch(numHashes, numBuckets, seed)
	if err != nil {
		return nil, err
	}

	isEmpty := (flag & (1 << IsEmpty)) > 0
	if isEmpty {
		return cms, nil
	}

	var totalWeight int64
	if err := readFields(r, &totalWeight); err != nil {
		return nil, err
	}
	cms.totalWeight = totalWeight

	var w int64
	for i := 0; r.Len() > 0; i++ {
		if err := readFields(r, &w); err != nil {
			return nil, err
		}
		cms.sketchSlice[i] = w
	}

	return cms, nil
}
