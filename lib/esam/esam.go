//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"github.com/biogo/hts/sam"
)

// PathSAM stores Path to SAM (Binary=false) or BAM (Binary=true) file.
type PathSAM struct {
	Path   string
	Binary bool
}

// AlignedRead is a plain view of one mapped SAM record: 1-based
// coordinates, expanded sequence, and the quality string re-encoded as
// ASCII characters (Phred+33).
type AlignedRead struct {
	QName    string
	Flag     int
	RName    string
	Pos      int
	MapQ     byte
	Cigar    sam.Cigar
	RNext    string
	PNext    int
	TLen     int
	Seq      string
	Qual     string
	MDString string
}

// FromRecord converts a parsed SAM record to an AlignedRead.
func FromRecord(r *sam.Record) *AlignedRead {
	a := &AlignedRead{
		QName: r.Name,
		Flag:  int(r.Flags),
		RName: RefName(r.Ref),
		Pos:   r.Pos + 1,
		MapQ:  r.MapQ,
		Cigar: r.Cigar,
		RNext: MateRefName(r),
		PNext: r.MatePos + 1,
		TLen:  r.TempLen,
		Seq:   string(r.Seq.Expand()),
	}
	qual := make([]byte, len(r.Qual))
	for i, q := range r.Qual {
		qual[i] = q + 33
	}
	a.Qual = string(qual)
	if aux, ok := r.Tag([]byte("MD")); ok {
		if v, ok := aux.Value().(string); ok {
			a.MDString = v
		}
	}
	return a
}

// RefName returns the record reference name, or "*" for nil.
func RefName(ref *sam.Reference) string {
	if ref == nil {
		return "*"
	}
	return ref.Name()
}

// MateRefName returns the mate reference name, "=" when the mate maps to
// the same reference, or "*" for nil.
func MateRefName(r *sam.Record) string {
	if r.MateRef == nil {
		return "*"
	}
	if r.Ref != nil && r.MateRef.Name() == r.Ref.Name() {
		return "="
	}
	return r.MateRef.Name()
}

// VerifyPair checks that two records form a consistent mate pair: same
// query name, same mapping quality, read 1 pointing at read 2's position,
// and both on the same reference.
func VerifyPair(r1, r2 *sam.Record) bool {
	return r1.MatePos == r2.Pos &&
		RefName(r1.Ref) == RefName(r2.Ref) &&
		MateRefName(r1) == "=" &&
		r1.Name == r2.Name &&
		r1.MapQ == r2.MapQ
}
