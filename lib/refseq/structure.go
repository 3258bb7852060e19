//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package refseq

import (
	"encoding/csv"
	"os"

	"github.com/pkg/errors"
)

// LoadStructures attaches dot-bracket structures from a CSV file with
// "name", "sequence" and "structure" columns. The file must describe the
// same constructs as the FASTA: same count, every name known.
func (s *Set) LoadStructures(cpath string) error {
	cfos, err := os.Open(cpath)
	if err != nil {
		return err
	}
	defer cfos.Close()

	rows, err := csv.NewReader(cfos).ReadAll()
	if err != nil {
		return errors.Wrap(err, cpath)
	}
	if len(rows) == 0 {
		return errors.Errorf("%s: no header row", cpath)
	}
	cols := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		cols[col] = i
	}
	for _, col := range []string{"name", "sequence", "structure"} {
		if _, ok := cols[col]; !ok {
			return errors.Errorf("%s: missing column %q", cpath, col)
		}
	}
	if len(rows)-1 != s.Len() {
		return errors.Errorf("%s has %d constructs, FASTA has %d", cpath, len(rows)-1, s.Len())
	}
	for _, row := range rows[1:] {
		name := row[cols["name"]]
		r, err := s.Get(name)
		if err != nil {
			return errors.Wrapf(err, "%s", cpath)
		}
		r.Structure = row[cols["structure"]]
	}
	return nil
}
