// Package bitset provides a fixed-width bitset over small integer indices,
// used to address component and system handles in O(1).
//
// It is a thin adapter over github.com/TheBitDrifter/mask, matching the way
// the warehouse package addresses archetype signatures: a value type usable
// as a map key, with Mark/Unmark/ContainsAll/ContainsAny/ContainsNone tests.
package bitset

import "github.com/TheBitDrifter/mask"

// Set is a fixed-width bitset addressed by 0-based index.
type Set struct {
	m mask.Mask
}

// Mark sets bit i.
func (s *Set) Mark(i uint32) {
	s.m.Mark(i)
}

// Unmark clears bit i.
func (s *Set) Unmark(i uint32) {
	s.m.Unmark(i)
}

// IsEmpty reports whether no bit is set.
func (s Set) IsEmpty() bool {
	return s.m.IsEmpty()
}

// ContainsAll reports whether every bit set in other is also set in s —
// the archetype table's superset test against a system's match mask.
func (s Set) ContainsAll(other Set) bool {
	return s.m.ContainsAll(other.m)
}

// ContainsAny reports whether s and other share at least one set bit.
func (s Set) ContainsAny(other Set) bool {
	return s.m.ContainsAny(other.m)
}

// ContainsNone reports whether s and other share no set bits.
func (s Set) ContainsNone(other Set) bool {
	return s.m.ContainsNone(other.m)
}

// Mask returns the underlying mask.Mask value, for use as a map key when
// grouping archetypes by signature.
func (s Set) Mask() mask.Mask {
	return s.m
}

// Lock is a wider bitset used for storage/world re-entrancy locks, where a
// caller holds one bit per concurrent cursor or iteration.
type Lock struct {
	m mask.Mask256
}

// Mark sets lock bit i.
func (l *Lock) Mark(i uint32) {
	l.m.Mark(i)
}

// Unmark clears lock bit i.
func (l *Lock) Unmark(i uint32) {
	l.m.Unmark(i)
}

// IsEmpty reports whether no lock bit is held.
func (l Lock) IsEmpty() bool {
	return l.m.IsEmpty()
}
