// Apache-2.0 licensed. See LICENSE for the full text.

package internal

// Family identifies a sketch family in the serialized preamble. The ids are
// part of the wire format shared with peer implementations and must not
// change.
type Family struct {
	Id          int
	MaxPreLongs int
}

type families struct {
	Alpha          Family
	QuickSelect    Family
	Compact        Family
	Union          Family
	Intersection   Family
	ANotB          Family
	HLL            Family
	Frequency      Family
	Kll            Family
	CPC            Family
	CountMinSketch Family
	BloomFilter    Family
}

var FamilyEnum = &families{
	Alpha: Family{
		Id:          1,
		MaxPreLongs: 3,
	},
	QuickSelect: Family{
		Id:          2,
		MaxPreLongs: 3,
	},
	Compact: Family{
		Id:          3,
		MaxPreLongs: 3,
	},
	Union: Family{
		Id:          4,
		MaxPreLongs: 4,
	},
	Intersection: Family{
		Id:          5,
		MaxPreLongs: 3,
	},
	ANotB: Family{
		Id:          6,
		MaxPreLongs: 3,
	},
	HLL: Family{
		Id:          7,
		MaxPreLongs: 1,
	},
	Frequency: Family{
		Id:          10,
		MaxPreLongs: 4,
	},
	Kll: Family{
		Id:          15,
		MaxPreLongs: 2,
	},
	CPC: Family{
		Id:          16,
		MaxPreLongs: 5,
	},
	CountMinSketch: Family{
		Id:          18,
		MaxPreLongs: 2,
	},
	BloomFilter: Family{
		Id:          21,
		MaxPreLongs: 4,
	},
}
