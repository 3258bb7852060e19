//
// Copyright (C) 2023-2026 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package histo

import (
	"errors"
	"fmt"

	"github.com/jyesselm/rna-map-nextflow/lib/bitvec"
)

// ErrMismatch is returned when merging histograms whose identity fields
// differ.
var ErrMismatch = errors.New("mutation histograms do not match")

// Bases are the four mutation-call letters tracked per position.
var Bases = []string{"A", "C", "G", "T"}

// MutationHistogram accumulates per-position mutation counts for one
// reference. Every positional array has length len(sequence)+1 and is
// indexed by 1-based reference position, slot 0 unused. The float64
// counters only ever hold whole-read counts, so sums stay exact and
// Merge is order-independent.
type MutationHistogram struct {
	Name           string               `json:"name"`
	Sequence       string               `json:"sequence"`
	Structure      string               `json:"structure"`
	DataType       string               `json:"data_type"`
	Start          int                  `json:"start"`
	End            int                  `json:"end"`
	NumReads       int                  `json:"num_reads"`
	NumAligned     int                  `json:"num_aligned"`
	Skips          map[string]int       `json:"skips"`
	NumOfMutations []int                `json:"num_of_mutations"`
	MutBases       []float64            `json:"mut_bases"`
	InfoBases      []float64            `json:"info_bases"`
	DelBases       []float64            `json:"del_bases"`
	InsBases       []float64            `json:"ins_bases"`
	CovBases       []float64            `json:"cov_bases"`
	ModBases       map[string][]float64 `json:"mod_bases"`
}

// New creates an empty histogram with the window covering the whole
// sequence.
func New(name, sequence, dataType string) *MutationHistogram {
	n := len(sequence) + 1
	mh := &MutationHistogram{
		Name:           name,
		Sequence:       sequence,
		DataType:       dataType,
		Start:          1,
		End:            len(sequence),
		Skips:          make(map[string]int, len(bitvec.SkipReasons)),
		NumOfMutations: make([]int, n),
		MutBases:       make([]float64, n),
		InfoBases:      make([]float64, n),
		DelBases:       make([]float64, n),
		InsBases:       make([]float64, n),
		CovBases:       make([]float64, n),
		ModBases:       make(map[string][]float64, len(Bases)),
	}
	for _, reason := range bitvec.SkipReasons {
		mh.Skips[reason] = 0
	}
	for _, base := range Bases {
		mh.ModBases[base] = make([]float64, n)
	}
	return mh
}

// Record adds one accepted bit vector. Positions outside the window are
// ignored; covered means any symbol but Ambiguous; informative counts
// every covered or ambiguous position.
func (mh *MutationHistogram) Record(data map[int]bitvec.Symbol) {
	mh.NumReads++
	mh.NumAligned++
	nMut := 0
	for pos := mh.Start; pos <= mh.End; pos++ {
		s, ok := data[pos]
		if !ok {
			continue
		}
		if s != bitvec.Ambiguous {
			mh.CovBases[pos]++
		}
		if s.IsMutation() {
			nMut++
			mh.ModBases[s.String()][pos]++
			mh.MutBases[pos]++
		} else if s == bitvec.Deletion {
			mh.DelBases[pos]++
		}
		mh.InfoBases[pos]++
	}
	if nMut >= len(mh.NumOfMutations) {
		nMut = len(mh.NumOfMutations) - 1
	}
	mh.NumOfMutations[nMut]++
}

// RecordSkip counts one rejected read against the named skip reason.
func (mh *MutationHistogram) RecordSkip(reason string) {
	mh.NumReads++
	mh.Skips[reason]++
}

// Merge folds other into mh. The identity fields must match exactly,
// otherwise ErrMismatch. Merging is associative and commutative, so
// independently accumulated histograms combine in any order.
func (mh *MutationHistogram) Merge(other *MutationHistogram) error {
	switch {
	case mh.Name != other.Name:
		return fmt.Errorf("%w: names %q and %q", ErrMismatch, mh.Name, other.Name)
	case mh.Sequence != other.Sequence:
		return fmt.Errorf("%w: sequences differ for %s", ErrMismatch, mh.Name)
	case mh.DataType != other.DataType:
		return fmt.Errorf("%w: data types differ for %s", ErrMismatch, mh.Name)
	case mh.Start != other.Start || mh.End != other.End:
		return fmt.Errorf("%w: windows differ for %s", ErrMismatch, mh.Name)
	case mh.Structure != other.Structure:
		return fmt.Errorf("%w: structures differ for %s", ErrMismatch, mh.Name)
	}
	mh.NumReads += other.NumReads
	mh.NumAligned += other.NumAligned
	for reason, n := range other.Skips {
		mh.Skips[reason] += n
	}
	for i, n := range other.NumOfMutations {
		mh.NumOfMutations[i] += n
	}
	addCounts(mh.MutBases, other.MutBases)
	addCounts(mh.InfoBases, other.InfoBases)
	addCounts(mh.DelBases, other.DelBases)
	addCounts(mh.InsBases, other.InsBases)
	addCounts(mh.CovBases, other.CovBases)
	for _, base := range Bases {
		addCounts(mh.ModBases[base], other.ModBases[base])
	}
	return nil
}

func addCounts(dst, src []float64) {
	for i, v := range src {
		dst[i] += v
	}
}
