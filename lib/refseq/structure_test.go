//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package refseq

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "structures.csv")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestLoadStructures(t *testing.T) {
	s, err := OpenFASTA(writeFasta(t, ">tc1\nAAGGCCTT\n>tc2\nGGGGTTTT\n"))
	require.NoError(t, err)

	path := writeCSV(t, "name,sequence,structure\n"+
		"tc1,AAGGCCTT,((....))\n"+
		"tc2,GGGGTTTT,........\n")
	require.NoError(t, s.LoadStructures(path))

	r, err := s.Get("tc1")
	require.NoError(t, err)
	assert.Equal(t, "((....))", r.Structure)
	r, err = s.Get("tc2")
	require.NoError(t, err)
	assert.Equal(t, "........", r.Structure)
}

func TestLoadStructuresColumnOrder(t *testing.T) {
	s, err := OpenFASTA(writeFasta(t, ">tc1\nAAGG\n"))
	require.NoError(t, err)

	path := writeCSV(t, "structure,name,sequence\n(..),tc1,AAGG\n")
	require.NoError(t, s.LoadStructures(path))

	r, err := s.Get("tc1")
	require.NoError(t, err)
	assert.Equal(t, "(..)", r.Structure)
}

func TestLoadStructuresErrors(t *testing.T) {
	s, err := OpenFASTA(writeFasta(t, ">tc1\nAAGG\n"))
	require.NoError(t, err)

	tests := []struct {
		name string
		data string
	}{
		{"missing structure column", "name,sequence\ntc1,AAGG\n"},
		{"construct count mismatch", "name,sequence,structure\ntc1,AAGG,....\ntc2,CCTT,....\n"},
		{"empty file", ""},
	}
	for _, test := range tests {
		assert.Error(t, s.LoadStructures(writeCSV(t, test.data)), test.name)
	}

	err = s.LoadStructures(writeCSV(t, "name,sequence,structure\ntc9,AAGG,....\n"))
	assert.True(t, errors.Is(err, ErrUnknownReference))
}
