//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package phred

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Table maps a quality character from a SAM QUAL string to its numeric
// score. Characters absent from the table score 0.
type Table map[byte]int

// Sanger returns the standard Sanger table: ASCII 33 ('!') to 126 ('~')
// encoding scores 0 to 93.
func Sanger() Table {
	t := make(Table, 94)
	for score := 0; score <= 93; score++ {
		t[byte(33+score)] = score
	}
	return t
}

// Score returns the score of quality character q.
func (t Table) Score(q byte) int {
	return t[q]
}

// Open loads a quality table from a text file: one header line, then one
// "<score> <character>" pair per line, whitespace separated.
func Open(tpath string) (Table, error) {
	t := make(Table)

	tfos, err := os.Open(tpath)
	if err != nil {
		return t, err
	}
	defer tfos.Close()

	tscanner := bufio.NewScanner(tfos)
	iLine := 0
	for tscanner.Scan() {
		iLine++
		if iLine == 1 {
			continue
		}
		fields := strings.Fields(tscanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 || len(fields[1]) != 1 {
			return t, errors.Errorf("%s: malformed line %d: %q", tpath, iLine, tscanner.Text())
		}
		score, err := strconv.Atoi(fields[0])
		if err != nil {
			return t, errors.Wrapf(err, "%s: line %d", tpath, iLine)
		}
		t[fields[1][0]] = score
	}
	if err := tscanner.Err(); err != nil {
		return t, err
	}
	return t, nil
}
