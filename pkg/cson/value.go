// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package cson

import (
	"github.com/murphyproxy/resource-proxy/pkg/errors"
)

// Mode selects the default representation a Value's constructors pick
// for a compactable type when the caller doesn't force one explicitly
// (spec §4.B "process-wide default mode").
type Mode int

const (
	// ModeCompact packs every compactable scalar into a tagged word.
	ModeCompact Mode = iota
	// ModeSharable boxes every value, even ones that would fit
	// compactly, trading the tagged-word win for uniform refcounted
	// sharing semantics.
	ModeSharable
)

// DefaultMode is the process-wide representation mode new Values use
// when Create isn't given an explicit override, mirroring the
// original's global default (spec §5 "global_ctx").
var DefaultMode = ModeCompact

// Value is a polymorphic, reference-counted CSON value. The zero
// Value has TypeNull but is not compact; Null() returns the compact
// Null.
//
// A Value is either compact (its whole state lives in the fields
// below, no heap box) or boxed (compact == false; objects, arrays and
// sharable strings sit behind obj/arr/str, while boxed numbers keep
// their payload in i/u/f). Go's GC makes the original's single tagged
// machine word unsafe to reproduce literally — see the comment above
// compact.go's integer range constants — so this type keeps the behavioral
// contract (O(1) dispatch on a tag, identity semantics for non-string
// compacts, forced-range failures) with an explicit discriminator
// instead of pointer bit-stealing.
type Value struct {
	typ     Type
	compact bool

	// scalar payload: i/u for integers (compact or boxed), f for
	// doubles (never compact), bytes for compact strings.
	i     int64
	u     uint64
	f     float64
	bytes []byte // compact string buffer; uniquely owned, duplicated on Ref

	// boxed-representation payload, meaningful when compact is false.
	obj *Object
	arr *Array
	str *string
}

// CreateOption overrides Create's representation choice for one call.
type CreateOption func(*createOptions)

type createOptions struct {
	mode      Mode
	modeForce bool
}

// WithMode forces a specific representation for one Create call,
// overriding DefaultMode.
func WithMode(mode Mode) CreateOption {
	return func(o *createOptions) {
		o.mode = mode
		o.modeForce = true
	}
}

func resolveMode(opts []CreateOption) Mode {
	o := createOptions{mode: DefaultMode}
	for _, apply := range opts {
		apply(&o)
	}
	return o.mode
}

// Null returns a compact Null value.
func Null() Value { return Value{typ: TypeNull, compact: true} }

// Bool returns a compact boolean value (True or False).
func Bool(b bool) Value {
	if b {
		return Value{typ: TypeTrue, compact: true}
	}
	return Value{typ: TypeFalse, compact: true}
}

// CreateString creates a String value. Compact mode stores it as an
// owned byte buffer; sharable mode boxes it behind a refcount.
func CreateString(s string, opts ...CreateOption) Value {
	if resolveMode(opts) == ModeSharable {
		boxed := s
		return Value{typ: TypeString, str: &boxed}
	}
	buf := make([]byte, len(s))
	copy(buf, s)
	return Value{typ: TypeString, compact: true, bytes: buf}
}

// CreateInt creates a sized signed integer value of type typ, which
// must be one of the signed integer types. Returns an OutOfRange error
// if the mode is forced compact and v falls outside the compact
// integer range (spec §3 "out-of-range construction fails").
func CreateInt(typ Type, v int64, opts ...CreateOption) (Value, error) {
	switch typ {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
	default:
		return Value{}, errors.NewInvalidArgError("not a signed integer type", "type", typ)
	}

	o := createOptions{mode: DefaultMode}
	for _, apply := range opts {
		apply(&o)
	}

	if o.mode == ModeSharable {
		return Value{typ: typ, i: v}, nil
	}
	if !fitsCompactInt(v) {
		if o.modeForce {
			return Value{}, errors.NewOutOfRangeError("integer value exceeds compact representation range")
		}
		return Value{typ: typ, i: v}, nil
	}
	return Value{typ: typ, compact: true, i: v}, nil
}

// CreateUint creates a sized unsigned integer value. See CreateInt for
// range-failure semantics.
func CreateUint(typ Type, v uint64, opts ...CreateOption) (Value, error) {
	switch typ {
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
	default:
		return Value{}, errors.NewInvalidArgError("not an unsigned integer type", "type", typ)
	}

	o := createOptions{mode: DefaultMode}
	for _, apply := range opts {
		apply(&o)
	}

	if o.mode == ModeSharable {
		return Value{typ: typ, u: v}, nil
	}
	if !fitsCompactUint(v) {
		if o.modeForce {
			return Value{}, errors.NewOutOfRangeError("unsigned value exceeds compact representation range")
		}
		return Value{typ: typ, u: v}, nil
	}
	return Value{typ: typ, compact: true, u: v}, nil
}

// CreateDouble creates a Double value. Doubles are never compactable
// (compact.go's isCompactable), so this always boxes in the sense
// that it's not tagged-pointer packed, though no heap Object/Array
// allocation is needed for a scalar float either.
func CreateDouble(v float64) Value {
	return Value{typ: TypeDouble, f: v}
}

// CreateObject creates an empty Object value using table for member
// name interning.
func CreateObject(table *Table) Value {
	if table == nil {
		table = Default
	}
	return Value{typ: TypeObject, obj: getObject(table)}
}

// CreateArray creates an empty Array value.
func CreateArray() Value {
	return Value{typ: TypeArray, arr: getArray()}
}

// GetType reports v's type, branching on the compact/boxed
// distinction as spec §4.B requires (O(1), no payload inspection
// needed beyond the tag).
func (v Value) GetType() Type { return v.typ }

// IsCompact reports whether v holds its payload inline rather than in
// a heap box.
func (v Value) IsCompact() bool { return v.compact }

// IsNull reports whether v is the Null value.
func (v Value) IsNull() bool { return v.typ == TypeNull }

// Ref returns a reference to v suitable for independent ownership.
// Compact non-string values are pure bit patterns and need no
// bookkeeping: the returned Value is simply v. A compact string is
// uniquely owned, so Ref clones its buffer. A boxed value's refcount
// is incremented.
func (v Value) Ref() Value {
	switch {
	case v.compact && v.typ == TypeString:
		dup := make([]byte, len(v.bytes))
		copy(dup, v.bytes)
		return Value{typ: TypeString, compact: true, bytes: dup}
	case v.compact:
		return v
	case v.typ == TypeObject:
		v.obj.refcount++
		return v
	case v.typ == TypeArray:
		v.arr.refcount++
		return v
	case v.typ == TypeString:
		// Boxed strings are immutable Go strings shared by value; per
		// design note 9 only Object/Array need real refcounting.
		return v
	default:
		return v
	}
}

// Unref releases a reference to v, running destructors and returning
// the underlying node to its pool once the last reference is gone.
// Returns true iff this call dropped the last reference (or v held no
// shared state to begin with, e.g. a scalar).
func (v Value) Unref() bool {
	switch {
	case v.compact && v.typ == TypeString:
		// Compact strings have no refcount: the buffer is uniquely
		// owned and this call is its only owner's release.
		return true
	case v.compact:
		return true
	case v.typ == TypeObject:
		v.obj.refcount--
		if v.obj.refcount > 0 {
			return false
		}
		for _, m := range v.obj.members {
			if name, ok := v.obj.table.LookupByID(m.SymbolID); ok {
				v.obj.table.Release(name)
			}
			m.Value.Unref()
		}
		putObject(v.obj)
		return true
	case v.typ == TypeArray:
		v.arr.refcount--
		if v.arr.refcount > 0 {
			return false
		}
		for _, e := range v.arr.elements {
			e.Unref()
		}
		putArray(v.arr)
		return true
	default:
		return true
	}
}

// Set installs value under name in object, replacing and releasing any
// prior value with that name. Returns InvalidArg if v is not an
// Object.
func (v Value) Set(table *Table, name string, value Value) error {
	if v.typ != TypeObject || v.obj == nil {
		return errors.NewInvalidArgError("set requires an object value", "type", v.typ)
	}
	if table == nil {
		table = v.obj.table
	}
	id := table.Intern(name)
	old, existed := v.obj.set(id, value)
	if existed {
		old.Unref()
		table.Release(name)
	}
	return nil
}

// Get returns the member named name from object v, or false if no
// such member exists. A lookup for a symbol that has never been
// interned in table always misses without scanning v's members.
func (v Value) Get(table *Table, name string) (Value, bool, error) {
	if v.typ != TypeObject || v.obj == nil {
		return Value{}, false, errors.NewInvalidArgError("get requires an object value", "type", v.typ)
	}
	if table == nil {
		table = v.obj.table
	}
	sym, ok := table.LookupByName(name)
	if !ok {
		return Value{}, false, nil
	}
	val, found := v.obj.get(sym.ID)
	return val, found, nil
}

// Del removes the member named name from object v, releasing its
// symbol reference and unref'ing its value. Returns InvalidArg if v is
// not an Object.
func (v Value) Del(table *Table, name string) error {
	if v.typ != TypeObject || v.obj == nil {
		return errors.NewInvalidArgError("del requires an object value", "type", v.typ)
	}
	if table == nil {
		table = v.obj.table
	}
	sym, ok := table.LookupByName(name)
	if !ok {
		return nil
	}
	if old, found := v.obj.del(sym.ID); found {
		old.Unref()
		table.Release(name)
	}
	return nil
}

// Len reports the member/element count of an Object or Array value.
func (v Value) Len() (int, error) {
	switch v.typ {
	case TypeObject:
		return len(v.obj.members), nil
	case TypeArray:
		return v.arr.len(), nil
	default:
		return 0, errors.NewInvalidArgError("len requires an object or array value", "type", v.typ)
	}
}

// Append adds value to the end of array v.
func (v Value) Append(value Value) error {
	if v.typ != TypeArray || v.arr == nil {
		return errors.NewInvalidArgError("append requires an array value", "type", v.typ)
	}
	v.arr.append(value)
	return nil
}

// At returns the element at index i of array v.
func (v Value) At(i int) (Value, bool, error) {
	if v.typ != TypeArray || v.arr == nil {
		return Value{}, false, errors.NewInvalidArgError("at requires an array value", "type", v.typ)
	}
	val, ok := v.arr.at(i)
	return val, ok, nil
}

// Stats reports the member count and the raw Bloom mask for an Object
// value, supporting testable property 3 without white-box access.
func (v Value) Stats() (ObjectStats, error) {
	if v.typ != TypeObject || v.obj == nil {
		return ObjectStats{}, errors.NewInvalidArgError("stats requires an object value", "type", v.typ)
	}
	return ObjectStats{Members: len(v.obj.members), BloomMask: v.obj.blmmask}, nil
}

// ObjectStats summarizes an Object's member/mask state.
type ObjectStats struct {
	Members   int
	BloomMask uint32
}
