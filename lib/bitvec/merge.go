//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bitvec

import (
	log "github.com/sirupsen/logrus"
)

// MergePaired merges mate symbol maps over the union of their positions.
// Positions covered by a single mate keep that mate's symbol; conflicts
// go through resolveConflict.
func MergePaired(bv1, bv2 map[int]Symbol) map[int]Symbol {
	merged := make(map[int]Symbol, len(bv1)+len(bv2))
	for pos, s := range bv1 {
		merged[pos] = s
	}
	for pos, s2 := range bv2 {
		s1, ok := merged[pos]
		if !ok {
			merged[pos] = s2
		} else if s1 != s2 {
			merged[pos] = resolveConflict(pos, s1, s2)
		}
	}
	return merged
}

// resolveConflict picks one symbol for a position where the mates
// disagree. NoMut always wins, Ambiguous and Missing always lose, and
// two contradictory calls (two bases, or a base against a deletion)
// collapse to Ambiguous.
func resolveConflict(pos int, s1, s2 Symbol) Symbol {
	switch {
	case s1 == NoMut || s2 == NoMut:
		return NoMut
	case s1 == Ambiguous:
		return s2
	case s2 == Ambiguous:
		return s1
	case s1 == Missing:
		return s2
	case s2 == Missing:
		return s1
	case s1.IsMutation() && s2.IsMutation():
		return Ambiguous
	case s1 == Deletion && s2.IsMutation():
		return Ambiguous
	case s1.IsMutation() && s2 == Deletion:
		return Ambiguous
	}
	log.Warnf("position %d: cannot merge %s and %s, keeping mate 1", pos, s1, s2)
	return s1
}
