// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package cson

// Member is one name/value pair inside an Object, in insertion order.
type Member struct {
	SymbolID uint32
	Value    Value
}

// Object is a boxed, reference-counted set of members keyed by
// interned symbol id, preserving insertion order and accelerated by a
// Bloom-style membership mask.
type Object struct {
	refcount uint32
	table    *Table
	members  []Member
	blmmask  uint32
}

func newObject(table *Table) *Object {
	return &Object{refcount: 1, table: table}
}

func (o *Object) reset() {
	o.refcount = 0
	o.table = nil
	o.members = o.members[:0]
	o.blmmask = 0
}

// indexOf returns the slice index of the member with the given symbol
// id, applying the Bloom pre-check first: if the mask can't contain
// the bit, skip the scan entirely.
func (o *Object) indexOf(symbolID uint32) int {
	bit := symbolHash(symbolID)
	if o.blmmask&bit != bit {
		return -1
	}
	for i := range o.members {
		if o.members[i].SymbolID == symbolID {
			return i
		}
	}
	return -1
}

// set installs value under symbolID, replacing any existing member
// with that id. Returns the previous value and whether one existed,
// so the caller can unref it.
func (o *Object) set(symbolID uint32, value Value) (Value, bool) {
	if i := o.indexOf(symbolID); i >= 0 {
		old := o.members[i].Value
		o.members[i].Value = value
		return old, true
	}
	o.members = append(o.members, Member{SymbolID: symbolID, Value: value})
	o.blmmask |= symbolHash(symbolID)
	return Value{}, false
}

// get returns the member value for symbolID.
func (o *Object) get(symbolID uint32) (Value, bool) {
	if i := o.indexOf(symbolID); i >= 0 {
		return o.members[i].Value, true
	}
	return Value{}, false
}

// del removes the member for symbolID, returning the removed value.
// The Bloom mask bit is left set per spec §4.B: Bloom filters can't
// remove bits, and a stray bit only ever degrades a future miss into
// an unnecessary scan, never a false negative.
func (o *Object) del(symbolID uint32) (Value, bool) {
	i := o.indexOf(symbolID)
	if i < 0 {
		return Value{}, false
	}
	old := o.members[i].Value
	o.members = append(o.members[:i], o.members[i+1:]...)
	return old, true
}
