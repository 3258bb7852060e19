//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package histo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jyesselm/rna-map-nextflow/lib/bitvec"
)

func TestWriteSummary(t *testing.T) {
	mh := New("tc1", "AACCAGGTTG", "DMS")
	mh.Record(map[int]bitvec.Symbol{1: 'G', 6: 'A'})
	mh.Record(map[int]bitvec.Symbol{1: bitvec.NoMut})
	mh.RecordSkip(bitvec.SkipLowMapQ)
	histos := map[string]*MutationHistogram{
		"tc2": New("tc2", "GGGG", "DMS"),
		"tc1": mh,
	}

	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, WriteSummary(histos, path))

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,reads,aligned,no_mut,1_mut,2_mut,3_mut,3plus_mut,sn\n"+
		"tc1,3,66.67,50,0,50,0,0,1\n"+
		"tc2,0,0,0,0,0,0,0,0\n", string(buf))
}
