//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bitvec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jyesselm/rna-map-nextflow/lib/esam"
)

func TestRejectedWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejected_bvs.csv")
	rw, err := NewRejectedWriter(path)
	require.NoError(t, err)

	data := map[int]Symbol{1: NoMut, 2: NoMut, 3: NoMut}
	bv1 := storedBV("r9", 42, "AAGG", data)
	require.NoError(t, rw.Write(bv1, SkipShortRead, 1, 4))

	bv2 := storedBV("r8", 2, "AAGG", data)
	bv2.Reads = append(bv2.Reads, &esam.AlignedRead{QName: "r8", RName: "tc1", MapQ: 2, Seq: "CCTT"})
	require.NoError(t, rw.Write(bv2, SkipLowMapQ, 1, 4))
	require.NoError(t, rw.Close())

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "qname,rname,reason,read1,read2,bitvector\n"+
		"r9,tc1,short_read,AAGG,,000.\n"+
		"r8,tc1,low_mapq,AAGG,CCTT,000.\n", string(buf))
}
