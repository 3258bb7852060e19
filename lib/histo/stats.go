//
// Copyright (C) 2023-2026 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package histo

import (
	"math"
	"strings"
)

func roundTo(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}

// SignalToNoise returns the ratio of the per-base mutation rate on A/C
// positions to the rate on the remaining positions. DMS modifies A and C,
// so a clean library has a high ratio. Rates are normalized by the A/C
// and G/U/T counts of the full sequence. Degenerate inputs (no A/C
// bases, no G/U/T bases, or a zero G/U rate) return 0.0.
func (mh *MutationHistogram) SignalToNoise() float64 {
	acCount := strings.Count(mh.Sequence, "A") + strings.Count(mh.Sequence, "C")
	guCount := strings.Count(mh.Sequence, "G") + strings.Count(mh.Sequence, "U") + strings.Count(mh.Sequence, "T")
	if acCount == 0 || guCount == 0 {
		return 0.0
	}
	var ac, gu float64
	for pos := mh.Start; pos <= mh.End; pos++ {
		switch mh.Sequence[pos-1] {
		case 'A', 'C':
			ac += mh.MutBases[pos]
		default:
			gu += mh.MutBases[pos]
		}
	}
	ac /= float64(acCount)
	gu /= float64(guCount)
	if gu == 0 {
		return 0.0
	}
	return roundTo(ac/gu, 2)
}

// PopAvg returns the per-position population average over the window:
// mutation count (plus deletion count if includeDel) over informative
// count, rounded to 5 decimals, 0.0 for uncovered positions.
func (mh *MutationHistogram) PopAvg(includeDel bool) []float64 {
	out := make([]float64, 0, mh.End-mh.Start+1)
	for pos := mh.Start; pos <= mh.End; pos++ {
		info := mh.InfoBases[pos]
		if info == 0 {
			out = append(out, 0.0)
			continue
		}
		n := mh.MutBases[pos]
		if includeDel {
			n += mh.DelBases[pos]
		}
		out = append(out, roundTo(n/info, 5))
	}
	return out
}

// PercentMutations returns the percentage of aligned reads carrying 0,
// 1, 2, 3 and more than 3 mutations, rounded to 2 decimals. All zeros
// when nothing aligned.
func (mh *MutationHistogram) PercentMutations() []float64 {
	buckets := make([]float64, 5)
	if mh.NumAligned == 0 {
		return buckets
	}
	for i, n := range mh.NumOfMutations {
		if i < 4 {
			buckets[i] = float64(n)
		} else {
			buckets[4] += float64(n)
		}
	}
	for i := range buckets {
		buckets[i] = roundTo(buckets[i]/float64(mh.NumAligned)*100, 2)
	}
	return buckets
}

// ReadCoverage returns the per-position fraction of reads covering each
// window position, counting every read seen including rejected ones.
func (mh *MutationHistogram) ReadCoverage() []float64 {
	out := make([]float64, 0, mh.End-mh.Start+1)
	for pos := mh.Start; pos <= mh.End; pos++ {
		if mh.NumReads == 0 {
			out = append(out, 0.0)
		} else {
			out = append(out, mh.CovBases[pos]/float64(mh.NumReads))
		}
	}
	return out
}

// AlignedPercent returns the percentage of reads that were accepted,
// rounded to 2 decimals, 0.0 when no reads were seen.
func (mh *MutationHistogram) AlignedPercent() float64 {
	if mh.NumReads == 0 {
		return 0.0
	}
	return roundTo(float64(mh.NumAligned)/float64(mh.NumReads)*100, 2)
}
