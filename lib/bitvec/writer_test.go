//
// Copyright (C) 2023-2026 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bitvec

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jyesselm/rna-map-nextflow/lib/esam"
)

func TestSplitFormat(t *testing.T) {
	tests := []struct {
		format string
		base   string
		zip    string
	}{
		{"txt", "txt", ""},
		{"json", "json", ""},
		{"txt+gz", "txt", "gz"},
		{"json+lz4", "json", "lz4"},
		{"txt+lz4hc", "txt", "lz4hc"},
	}
	for _, test := range tests {
		base, zip := SplitFormat(test.format)
		assert.Equal(t, test.base, base)
		assert.Equal(t, test.zip, zip)
	}
}

func TestZipExt(t *testing.T) {
	assert.Equal(t, "", ZipExt(""))
	assert.Equal(t, ".gz", ZipExt("gz"))
	assert.Equal(t, ".lz4", ZipExt("lz4"))
	assert.Equal(t, ".lz4", ZipExt("lz4hc"))
}

func TestRender(t *testing.T) {
	data := map[int]Symbol{1: NoMut, 2: 'A', 4: Deletion, 6: Ambiguous}

	row, nMut := Render(data, 1, 6)
	assert.Equal(t, "0A.1.?", row)
	assert.Equal(t, 1, nMut)

	row, nMut = Render(data, 2, 4)
	assert.Equal(t, "A.1", row)
	assert.Equal(t, 1, nMut)

	row, nMut = Render(data, 5, 5)
	assert.Equal(t, ".", row)
	assert.Equal(t, 0, nMut)
}

func storedBV(qname string, mapq byte, seq string, data map[int]Symbol) *BitVector {
	return &BitVector{
		Reads: []*esam.AlignedRead{{QName: qname, RName: "tc1", MapQ: mapq, Seq: seq}},
		Data:  data,
	}
}

func TestTextRoundTrip(t *testing.T) {
	bv1 := storedBV("r1", 42, "AAGGCCTT", map[int]Symbol{
		1: NoMut, 2: NoMut, 3: NoMut, 4: NoMut,
		5: NoMut, 6: NoMut, 7: NoMut, 8: NoMut,
	})
	bv2 := storedBV("r2", 42, "AAGACC", map[int]Symbol{
		1: NoMut, 2: NoMut, 3: NoMut, 4: 'A', 5: Deletion, 6: Ambiguous,
	})

	for _, zip := range []string{"", "gz", "lz4", "lz4hc"} {
		dirOut := t.TempDir()
		tw, err := NewTextWriter(dirOut, "tc1", "AAGGCCTT", "DMS", 1, 8, zip)
		require.NoError(t, err, zip)
		require.NoError(t, tw.Write(bv1))
		require.NoError(t, tw.Write(bv2))
		require.NoError(t, tw.Close())

		tf, err := ReadTextFile(filepath.Join(dirOut, "tc1_bitvectors.txt"+ZipExt(zip)))
		require.NoError(t, err, zip)
		assert.Equal(t, "tc1", tf.Name)
		assert.Equal(t, "AAGGCCTT", tf.Sequence)
		assert.Equal(t, "DMS", tf.DataType)
		assert.Equal(t, 1, tf.Start)
		assert.Equal(t, 8, tf.End)
		require.Len(t, tf.Rows, 2)
		assert.Equal(t, TextRow{QName: "r1", BitString: "00000000", NMutations: 0}, tf.Rows[0])
		assert.Equal(t, TextRow{QName: "r2", BitString: "000A1?..", NMutations: 1}, tf.Rows[1])
		assert.Equal(t, bv2.Data, tf.Rows[1].Symbols(tf.Start))
	}
}

func TestJSONRoundTrip(t *testing.T) {
	bv1 := storedBV("r1", 20, "AAGACCTT", map[int]Symbol{1: NoMut, 4: 'A', 5: Deletion, 6: Ambiguous})
	bv2 := storedBV("r2", 42, "ACGG", map[int]Symbol{2: 'C'})
	bv2.Reads = append(bv2.Reads, &esam.AlignedRead{QName: "r2", RName: "tc1", MapQ: 40, Seq: "CCTTGG"})

	for _, zip := range []string{"", "gz"} {
		dirOut := t.TempDir()
		jw, err := NewJSONWriter(dirOut, zip)
		require.NoError(t, err, zip)
		require.NoError(t, jw.Write(bv1))
		require.NoError(t, jw.Write(bv2))
		require.NoError(t, jw.Close())

		records, err := ReadJSONFile(filepath.Join(dirOut, "muts.json"+ZipExt(zip)))
		require.NoError(t, err, zip)
		require.Len(t, records, 2)

		assert.Equal(t, JSONRecord{
			RName: "tc1", MapQ1: 20, MapQ2: 0, Len1: 8, Len2: 0,
			Muts:   map[int]Symbol{4: 'A'},
			Dels:   map[int]Symbol{5: Deletion},
			Ambigs: map[int]Symbol{6: Ambiguous},
		}, records[0])
		assert.Equal(t, map[int]Symbol{4: 'A', 5: Deletion, 6: Ambiguous}, records[0].Data())

		assert.Equal(t, JSONRecord{
			RName: "tc1", MapQ1: 42, MapQ2: 40, Len1: 4, Len2: 6,
			Muts:   map[int]Symbol{2: 'C'},
			Dels:   map[int]Symbol{},
			Ambigs: map[int]Symbol{},
		}, records[1])
	}
}

func TestJSONEmpty(t *testing.T) {
	dirOut := t.TempDir()
	jw, err := NewJSONWriter(dirOut, "")
	require.NoError(t, err)
	require.NoError(t, jw.Close())

	records, err := ReadJSONFile(filepath.Join(dirOut, "muts.json"))
	require.NoError(t, err)
	assert.Len(t, records, 0)
}
