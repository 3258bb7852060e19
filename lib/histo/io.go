//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package histo

import (
	"encoding/json"
	"os"
)

// WriteFile writes the name-to-histogram map as indented JSON, the
// interchange format consumed by ReadFile and downstream analysis.
func WriteFile(histos map[string]*MutationHistogram, path string) error {
	buf, err := json.MarshalIndent(histos, "", "  ")
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads a histogram map written by WriteFile.
func ReadFile(path string) (map[string]*MutationHistogram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var histos map[string]*MutationHistogram
	if err := json.NewDecoder(f).Decode(&histos); err != nil {
		return nil, err
	}
	return histos, nil
}

// MergeMaps folds src into dst. Names present in both are merged,
// names only in src are inserted.
func MergeMaps(dst, src map[string]*MutationHistogram) error {
	for name, other := range src {
		if mh, ok := dst[name]; ok {
			if err := mh.Merge(other); err != nil {
				return err
			}
		} else {
			dst[name] = other
		}
	}
	return nil
}

// MergeFiles loads any number of histogram files and merges them into
// one map.
func MergeFiles(paths []string) (map[string]*MutationHistogram, error) {
	merged := make(map[string]*MutationHistogram)
	for _, path := range paths {
		histos, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := MergeMaps(merged, histos); err != nil {
			return nil, err
		}
	}
	return merged, nil
}
