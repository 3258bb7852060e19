//
// Copyright (C) 2023-2026 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bitvec

import (
	"github.com/biogo/hts/sam"
	log "github.com/sirupsen/logrus"

	"github.com/jyesselm/rna-map-nextflow/lib/esam"
	"github.com/jyesselm/rna-map-nextflow/lib/phred"
)

// BitVector is the per-position symbol map derived from one read or one
// mate pair, keyed by 1-based reference position. An empty Data map marks
// a read that could not be converted.
type BitVector struct {
	Reads []*esam.AlignedRead
	Data  map[int]Symbol
}

// QName returns the query name of the underlying read(s).
func (bv *BitVector) QName() string {
	return bv.Reads[0].QName
}

// Converter turns aligned reads into bit vectors. It is stateless and
// safe for concurrent use.
type Converter struct {
	QScores     phred.Table
	Constraints Constraints
}

func NewConverter(qscores phred.Table, cons Constraints) *Converter {
	return &Converter{QScores: qscores, Constraints: cons}
}

// Single converts one read against its reference sequence.
func (c *Converter) Single(read *esam.AlignedRead, refSeq string) *BitVector {
	return &BitVector{
		Reads: []*esam.AlignedRead{read},
		Data:  c.toSymbols(read, refSeq),
	}
}

// Paired converts both mates and merges them into one vector.
func (c *Converter) Paired(read1, read2 *esam.AlignedRead, refSeq string) *BitVector {
	return &BitVector{
		Reads: []*esam.AlignedRead{read1, read2},
		Data:  MergePaired(c.toSymbols(read1, refSeq), c.toSymbols(read2, refSeq)),
	}
}

// toSymbols walks the CIGAR with a reference cursor i (1-based) and a
// read cursor j, emitting one symbol per covered reference position. An
// unrecognized operation or a walk past the end of either sequence
// aborts with an empty map.
func (c *Converter) toSymbols(read *esam.AlignedRead, refSeq string) map[int]Symbol {
	data := make(map[int]Symbol, len(read.Seq))
	i := read.Pos
	j := 0
	for iOp, co := range read.Cigar {
		length := co.Len()
		switch co.Type() {
		case sam.CigarMatch:
			if i+length-1 > len(refSeq) || j+length > len(read.Seq) || j+length > len(read.Qual) {
				log.Warnf("read %s: CIGAR %s overruns reference %s", read.QName, read.Cigar, read.RName)
				return map[int]Symbol{}
			}
			for n := 0; n < length; n++ {
				if c.QScores.Score(read.Qual[j]) > c.Constraints.QScoreCutoff {
					if read.Seq[j] != refSeq[i-1] {
						data[i] = Symbol(read.Seq[j])
					} else {
						data[i] = NoMut
					}
				} else {
					data[i] = Ambiguous
				}
				i++
				j++
			}
		case sam.CigarDeletion:
			if i+length-1 > len(refSeq) {
				log.Warnf("read %s: CIGAR %s overruns reference %s", read.QName, read.Cigar, read.RName)
				return map[int]Symbol{}
			}
			for n := 0; n < length-1; n++ {
				data[i] = Ambiguous
				i++
			}
			if c.ambiguousDeletion(refSeq, i, length) {
				data[i] = Ambiguous
			} else {
				data[i] = Deletion
			}
			i++
		case sam.CigarInsertion:
			j += length
		case sam.CigarSoftClipped:
			j += length
			if iOp == len(read.Cigar)-1 {
				for n := 0; n < length; n++ {
					data[i] = Missing
					i++
				}
			}
		default:
			log.Warnf("read %s: unknown CIGAR operation %v", read.QName, co.Type())
			return map[int]Symbol{}
		}
	}
	return data
}

// ambiguousDeletion reports whether a deletion of the given length ending
// at 1-based position pos cannot be placed uniquely: a same-length
// deletion shifted by up to length positions leaves an identical flanking
// sequence. The flanks are the NumSurBases reference bases on each side
// of the deleted span.
func (c *Converter) ambiguousDeletion(refSeq string, pos, length int) bool {
	n := len(refSeq)
	if n == 0 || pos < 1 || pos > n {
		return false
	}
	delStart := pos - length + 1
	surStart := delStart - c.Constraints.NumSurBases
	surEnd := pos + c.Constraints.NumSurBases
	orig := substr(refSeq, surStart-1, delStart-1) + substr(refSeq, pos, surEnd)
	for newEnd := pos - length; newEnd <= pos+length; newEnd++ {
		if newEnd == pos || newEnd < 1 || newEnd > n {
			continue
		}
		newStart := newEnd - length + 1
		if newStart < 1 {
			continue
		}
		sur := substr(refSeq, surStart-1, newStart-1) + substr(refSeq, newEnd, surEnd)
		if sur == orig {
			return true
		}
	}
	return false
}

/// substr slices s with permissive bounds: a negative offset counts back
// from the end of s, offsets beyond the end clamp to it, and an empty
// range yields "".
func substr(s string, lo, hi int) string {
	if lo < 0 {
		lo += len(s)
		if lo < 0 {
			lo = 0
		}
	} else if lo > len(s) {
		lo = len(s)
	}
	if hi < 0 {
		hi += len(s)
		if hi < 0 {
			hi = 0
		}
	} else if hi > len(s) {
		hi = len(s)
	}
	if lo >= hi {
		return ""
	}
	return s[lo:hi]
}
