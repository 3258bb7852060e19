//
// Copyright © 2023 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bitvec

// Symbol encodes the state of one reference position in a bit vector.
// Mutation calls carry the read base itself: 'A', 'C', 'G' or 'T'.
type Symbol byte

const (
	// Missing marks positions under a trailing soft clip.
	Missing Symbol = '*'
	// Ambiguous marks positions without a confident call.
	Ambiguous Symbol = '?'
	// NoMut marks positions matching the reference.
	NoMut Symbol = '0'
	// Deletion marks the resolved last position of a deletion.
	Deletion Symbol = '1'
)

// IsMutation reports whether s is a mutation call.
func (s Symbol) IsMutation() bool {
	switch s {
	case 'A', 'C', 'G', 'T':
		return true
	}
	return false
}

func (s Symbol) String() string {
	return string(rune(s))
}
