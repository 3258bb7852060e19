//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package refseq

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrUnknownReference is returned when a name is not part of the
// reference set.
var ErrUnknownReference = errors.New("reference not found in FASTA")

// RefSeq is one reference construct.
type RefSeq struct {
	Name      string
	Sequence  string
	Structure string
}

// Set holds the reference constructs of one FASTA file, keyed by name and
// ordered as in the file.
type Set struct {
	refs  map[string]*RefSeq
	names []string
}

// Get returns the construct named name, or ErrUnknownReference.
func (s *Set) Get(name string) (*RefSeq, error) {
	r, ok := s.refs[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownReference, name)
	}
	return r, nil
}

// Names returns the construct names in file order.
func (s *Set) Names() []string {
	return s.names
}

// All returns the constructs in file order.
func (s *Set) All() []*RefSeq {
	all := make([]*RefSeq, 0, len(s.names))
	for _, name := range s.names {
		all = append(all, s.refs[name])
	}
	return all
}

// Len returns the number of constructs.
func (s *Set) Len() int {
	return len(s.names)
}

// OpenFASTA reads and validates a reference FASTA file. The format is
// strict: name lines and single sequence lines alternate, names follow
// ">" without a space, sequences are uppercase AGCT only, and no blank
// lines are allowed.
func OpenFASTA(fpath string) (*Set, error) {
	ffos, err := os.Open(fpath)
	if err != nil {
		return nil, err
	}
	defer ffos.Close()

	s := &Set{refs: make(map[string]*RefSeq)}
	fscanner := bufio.NewScanner(ffos)
	iLine := 0
	var cur *RefSeq
	for fscanner.Scan() {
		iLine++
		line := strings.TrimRight(fscanner.Text(), " \t\r\n")
		if len(line) == 0 {
			return nil, errors.Errorf("%s: blank line %d: blank lines are not allowed", fpath, iLine)
		}
		if iLine%2 == 1 {
			if !strings.HasPrefix(line, ">") {
				return nil, errors.Errorf("%s: line %d: expected a '>name' line", fpath, iLine)
			}
			if strings.HasPrefix(line, "> ") {
				return nil, errors.Errorf("%s: line %d: no space allowed between '>' and the reference name", fpath, iLine)
			}
			name := line[1:]
			if _, ok := s.refs[name]; ok {
				return nil, errors.Errorf("%s: line %d: duplicate reference %q", fpath, iLine, name)
			}
			cur = &RefSeq{Name: name}
			s.refs[name] = cur
			s.names = append(s.names, name)
		} else {
			if strings.HasPrefix(line, ">") {
				return nil, errors.Errorf("%s: line %d: expected a sequence line", fpath, iLine)
			}
			if i := strings.IndexFunc(line, func(r rune) bool {
				return r != 'A' && r != 'G' && r != 'C' && r != 'T'
			}); i != -1 {
				return nil, errors.Errorf("%s: line %d: sequences must contain only AGCT characters", fpath, iLine)
			}
			cur.Sequence = line
		}
	}
	if err := fscanner.Err(); err != nil {
		return nil, err
	}
	if iLine%2 == 1 {
		return nil, errors.Errorf("%s: reference %q has no sequence line", fpath, cur.Name)
	}
	if iLine > 2000 {
		log.Warnf("%s contains more than 1000 sequences, per-reference file generation may be slow", fpath)
	}
	return s, nil
}
