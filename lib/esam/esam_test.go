//
// Copyright (C) 2023-2026 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"io"
	"strings"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, data string) []*sam.Record {
	t.Helper()
	sr, err := sam.NewReader(strings.NewReader(data))
	require.NoError(t, err)
	var records []*sam.Record
	for {
		r, err := sr.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		records = append(records, r)
	}
	return records
}

const samHeader = "@HD\tVN:1.6\tSO:queryname\n@SQ\tSN:tc1\tLN:8\n"

func TestFromRecord(t *testing.T) {
	records := readAll(t, samHeader+
		"r1\t99\ttc1\t1\t42\t4M\t=\t5\t8\tAAGA\tIIII\tMD:Z:3A0\n"+
		"r1\t147\ttc1\t5\t42\t4M\t=\t1\t-8\tCCTT\tII:I\n"+
		"r2\t0\ttc1\t3\t11\t4M\t*\t0\t0\tGGCC\tIIII\n")
	require.Len(t, records, 3)

	a := FromRecord(records[0])
	assert.Equal(t, "r1", a.QName)
	assert.Equal(t, 99, a.Flag)
	assert.Equal(t, "tc1", a.RName)
	assert.Equal(t, 1, a.Pos)
	assert.Equal(t, byte(42), a.MapQ)
	assert.Equal(t, "4M", a.Cigar.String())
	assert.Equal(t, "=", a.RNext)
	assert.Equal(t, 5, a.PNext)
	assert.Equal(t, 8, a.TLen)
	assert.Equal(t, "AAGA", a.Seq)
	assert.Equal(t, "IIII", a.Qual)
	assert.Equal(t, "3A0", a.MDString)

	a = FromRecord(records[1])
	assert.Equal(t, 5, a.Pos)
	assert.Equal(t, -8, a.TLen)
	assert.Equal(t, "II:I", a.Qual)
	assert.Equal(t, "", a.MDString)

	a = FromRecord(records[2])
	assert.Equal(t, "*", a.RNext)
	assert.Equal(t, 0, a.PNext)
}

func TestRefNames(t *testing.T) {
	records := readAll(t, samHeader+
		"r1\t99\ttc1\t1\t42\t4M\t=\t5\t8\tAAGA\tIIII\n"+
		"r2\t0\ttc1\t3\t11\t4M\t*\t0\t0\tGGCC\tIIII\n")
	require.Len(t, records, 2)

	assert.Equal(t, "*", RefName(nil))
	assert.Equal(t, "tc1", RefName(records[0].Ref))
	assert.Equal(t, "=", MateRefName(records[0]))
	assert.Equal(t, "*", MateRefName(records[1]))
}

func TestVerifyPair(t *testing.T) {
	records := readAll(t, samHeader+
		"r1\t99\ttc1\t1\t42\t4M\t=\t5\t8\tAAGG\tIIII\n"+
		"r1\t147\ttc1\t5\t42\t4M\t=\t1\t-8\tCCTT\tIIII\n"+
		"r3\t99\ttc1\t1\t30\t4M\t=\t5\t8\tAAGG\tIIII\n"+
		"r3\t147\ttc1\t5\t29\t4M\t=\t1\t-8\tCCTT\tIIII\n"+
		"r4\t99\ttc1\t1\t30\t4M\t=\t6\t8\tAAGG\tIIII\n"+
		"r4\t147\ttc1\t5\t30\t4M\t=\t1\t-8\tCCTT\tIIII\n")
	require.Len(t, records, 6)

	assert.True(t, VerifyPair(records[0], records[1]))
	// Mate names differ.
	assert.False(t, VerifyPair(records[0], records[3]))
	// Mapping qualities differ.
	assert.False(t, VerifyPair(records[2], records[3]))
	// Mate 1 does not point at mate 2's position.
	assert.False(t, VerifyPair(records[4], records[5]))
}
