//
// Copyright (C) 2023-2026 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bitvec

// Skip reasons recorded for rejected bit vectors.
const (
	SkipLowMapQ        = "low_mapq"
	SkipShortRead      = "short_read"
	SkipTooManyMuts    = "too_many_muts"
	SkipMutsTooClose   = "muts_too_close"
	SkipMalformedCigar = "malformed_cigar"
)

// SkipReasons lists every skip reason in reporting order.
var SkipReasons = []string{
	SkipLowMapQ,
	SkipShortRead,
	SkipTooManyMuts,
	SkipMutsTooClose,
	SkipMalformedCigar,
}

// Constraints gates which reads and bit vectors enter the histograms.
// The three stricter rules only apply when Stricter is set.
type Constraints struct {
	QScoreCutoff   int
	NumSurBases    int
	MapScoreCutoff int

	Stricter            bool
	MinMutDistance      int
	PercentLengthCutoff float64
	MutationCountCutoff int
}

// DefaultConstraints returns the standard DMS-MaPseq cutoffs.
func DefaultConstraints() Constraints {
	return Constraints{
		QScoreCutoff:        25,
		NumSurBases:         10,
		MapScoreCutoff:      15,
		MinMutDistance:      5,
		PercentLengthCutoff: 0.10,
		MutationCountCutoff: 5,
	}
}

// Filter decides whether a bit vector enters the histograms. It returns
// the empty string to accept, or the skip reason to reject. The mapping
// quality rule always applies; the rules below it only with Stricter
// set, in order, first match wins.
func (cons Constraints) Filter(bv *BitVector, refLen, start, end int) string {
	for _, read := range bv.Reads {
		if int(read.MapQ) < cons.MapScoreCutoff {
			return SkipLowMapQ
		}
	}
	if !cons.Stricter {
		return ""
	}
	for _, read := range bv.Reads {
		if float64(len(read.Seq))/float64(refLen) < cons.PercentLengthCutoff {
			return SkipShortRead
		}
	}
	nMut := 0
	for pos := start; pos <= end; pos++ {
		if bv.Data[pos].IsMutation() {
			nMut++
		}
	}
	if nMut > cons.MutationCountCutoff {
		return SkipTooManyMuts
	}
	for pos := start; pos <= end; pos++ {
		if !bv.Data[pos].IsMutation() {
			continue
		}
		for pos2 := pos - cons.MinMutDistance; pos2 < pos+cons.MinMutDistance; pos2++ {
			if pos2 == pos {
				continue
			}
			if bv.Data[pos2].IsMutation() {
				return SkipMutsTooClose
			}
		}
	}
	return ""
}
