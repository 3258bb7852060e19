//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bitvec

import (
	"fmt"
	"os"
)

// RejectedWriter logs every rejected bit vector with its skip reason to
// a CSV file, one file for all references.
type RejectedWriter struct {
	f *os.File
}

func NewRejectedWriter(path string) (*RejectedWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err := f.WriteString("qname,rname,reason,read1,read2,bitvector\n"); err != nil {
		f.Close()
		return nil, err
	}
	return &RejectedWriter{f: f}, nil
}

// Write renders the rejected vector over the histogram window of its
// reference.
func (rw *RejectedWriter) Write(bv *BitVector, reason string, start, end int) error {
	read1 := bv.Reads[0]
	seq2 := ""
	if len(bv.Reads) > 1 {
		seq2 = bv.Reads[1].Seq
	}
	row, _ := Render(bv.Data, start, end)
	_, err := fmt.Fprintf(rw.f, "%s,%s,%s,%s,%s,%s\n", read1.QName, read1.RName, reason, read1.Seq, seq2, row)
	return err
}

func (rw *RejectedWriter) Close() error {
	return rw.f.Close()
}
