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
	"sort"
	"strconv"
	"strings"
)

// WriteSummary writes one CSV row of whole-reference statistics per
// histogram, sorted by name.
func WriteSummary(histos map[string]*MutationHistogram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(histos))
	for name := range histos {
		names = append(names, name)
	}
	sort.Strings(names)

	f.WriteString("name,reads,aligned,no_mut,1_mut,2_mut,3_mut,3plus_mut,sn\n")
	for _, name := range names {
		mh := histos[name]
		fields := []string{
			name,
			strconv.Itoa(mh.NumReads),
			formatFloat(mh.AlignedPercent()),
		}
		for _, pct := range mh.PercentMutations() {
			fields = append(fields, formatFloat(pct))
		}
		fields = append(fields, formatFloat(mh.SignalToNoise()))
		if _, err := f.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
