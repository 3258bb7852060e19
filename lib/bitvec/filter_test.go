//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bitvec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jyesselm/rna-map-nextflow/lib/esam"
)

func filterBV(mapq byte, seqLen int, data map[int]Symbol) *BitVector {
	return &BitVector{
		Reads: []*esam.AlignedRead{{
			QName: "r1",
			RName: "tc1",
			MapQ:  mapq,
			Seq:   strings.Repeat("A", seqLen),
		}},
		Data: data,
	}
}

func TestFilterLowMapQ(t *testing.T) {
	cons := DefaultConstraints()

	assert.Equal(t, SkipLowMapQ, cons.Filter(filterBV(14, 50, nil), 100, 1, 100))
	assert.Equal(t, "", cons.Filter(filterBV(15, 50, nil), 100, 1, 100))

	// Either mate below the cutoff rejects the pair.
	bv := filterBV(42, 50, nil)
	bv.Reads = append(bv.Reads, &esam.AlignedRead{QName: "r1", MapQ: 3, Seq: bv.Reads[0].Seq})
	assert.Equal(t, SkipLowMapQ, cons.Filter(bv, 100, 1, 100))
}

func TestFilterStricterDisabled(t *testing.T) {
	cons := DefaultConstraints()
	data := map[int]Symbol{10: 'A', 11: 'C', 12: 'G', 13: 'T', 14: 'A', 15: 'C'}

	assert.Equal(t, "", cons.Filter(filterBV(42, 5, data), 100, 1, 100))
}

func TestFilterShortRead(t *testing.T) {
	cons := DefaultConstraints()
	cons.Stricter = true

	assert.Equal(t, SkipShortRead, cons.Filter(filterBV(42, 9, nil), 100, 1, 100))
	assert.Equal(t, "", cons.Filter(filterBV(42, 10, nil), 100, 1, 100))
}

func TestFilterTooManyMuts(t *testing.T) {
	cons := DefaultConstraints()
	cons.Stricter = true

	spaced := func(n int) map[int]Symbol {
		data := make(map[int]Symbol)
		for i := 0; i < n; i++ {
			data[1+6*i] = 'A'
		}
		return data
	}
	assert.Equal(t, SkipTooManyMuts, cons.Filter(filterBV(42, 50, spaced(6)), 100, 1, 100))
	assert.Equal(t, "", cons.Filter(filterBV(42, 50, spaced(5)), 100, 1, 100))
}

func TestFilterMutsTooClose(t *testing.T) {
	cons := DefaultConstraints()
	cons.Stricter = true

	assert.Equal(t, SkipMutsTooClose, cons.Filter(filterBV(42, 50, map[int]Symbol{10: 'A', 15: 'C'}), 100, 1, 100))
	assert.Equal(t, "", cons.Filter(filterBV(42, 50, map[int]Symbol{10: 'A', 16: 'C'}), 100, 1, 100))
	// Deletions are not mutation calls.
	assert.Equal(t, "", cons.Filter(filterBV(42, 50, map[int]Symbol{10: 'A', 12: Deletion}), 100, 1, 100))
}

func TestFilterOrder(t *testing.T) {
	cons := DefaultConstraints()
	cons.Stricter = true

	// A read failing several rules reports the first one.
	data := map[int]Symbol{10: 'A', 11: 'C', 12: 'G', 13: 'T', 14: 'A', 15: 'C'}
	assert.Equal(t, SkipShortRead, cons.Filter(filterBV(42, 9, data), 100, 1, 100))
	assert.Equal(t, SkipLowMapQ, cons.Filter(filterBV(2, 9, data), 100, 1, 100))
	assert.Equal(t, SkipTooManyMuts, cons.Filter(filterBV(42, 50, data), 100, 1, 100))
}
