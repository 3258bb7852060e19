//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jyesselm/rna-map-nextflow/lib/histo"

	"gopkg.in/fatih/set.v0"
)

func WriteReport(pathReport string, readSet set.Interface, histos map[string]*histo.MutationHistogram) (err error) {
	countReport := make(map[string]uint64)
	countReport["references"] = uint64(len(histos))
	countReport["reads_unique"] = uint64(readSet.Size())
	for _, mh := range histos {
		countReport["vectors_accepted"] += uint64(mh.NumAligned)
		for reason, n := range mh.Skips {
			countReport["rejected_"+reason] += uint64(n)
		}
	}
	report, _ := json.MarshalIndent(countReport, "", "  ")
	if pathReport != "-" {
		if f, err := os.Create(pathReport); err != nil {
			return err
		} else {
			f.Write(report)
			f.Close()
		}
	} else {
		fmt.Println(string(report))
	}
	return nil
}
