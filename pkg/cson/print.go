// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package cson

import (
	"strconv"
	"strings"
)

// PrintStyle controls WriteTo's whitespace.
type PrintStyle int

const (
	// Compact emits no whitespace between tokens.
	Compact PrintStyle = iota
	// Pretty emits a space after ':' and ',' for readability.
	Pretty
)

// WriteTo renders v as JSON-like text into a strings.Builder, using
// table to resolve object member symbol ids back to names.
//
// This is pretty-printing only (spec §1 Non-goals: "full JSON text
// parsing/serialization"); there is no corresponding ParseString. The
// original overloaded printf's %p with a custom "CSON" format
// specifier (design note 9); this method is the Go replacement —
// an explicit writer method, no runtime format-verb registration.
func (v Value) WriteTo(b *strings.Builder, table *Table, style PrintStyle) {
	switch v.typ {
	case TypeNull:
		b.WriteString("null")
	case TypeFalse:
		b.WriteString("false")
	case TypeTrue:
		b.WriteString("true")
	case TypeString:
		s, _ := v.AsString()
		b.WriteString(strconv.Quote(s))
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		b.WriteString(strconv.FormatInt(v.intValue(), 10))
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		b.WriteString(strconv.FormatUint(v.uintValue(), 10))
	case TypeDouble:
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case TypeObject:
		v.writeObject(b, table, style)
	case TypeArray:
		v.writeArray(b, table, style)
	}
}

func (v Value) writeObject(b *strings.Builder, table *Table, style PrintStyle) {
	b.WriteByte('{')
	for i, m := range v.obj.members {
		if i > 0 {
			b.WriteByte(',')
			if style == Pretty {
				b.WriteByte(' ')
			}
		}
		name, ok := table.LookupByID(m.SymbolID)
		if !ok {
			name = "?"
		}
		b.WriteString(strconv.Quote(name))
		b.WriteByte(':')
		if style == Pretty {
			b.WriteByte(' ')
		}
		m.Value.WriteTo(b, table, style)
	}
	b.WriteByte('}')
}

func (v Value) writeArray(b *strings.Builder, table *Table, style PrintStyle) {
	b.WriteByte('[')
	for i, e := range v.arr.elements {
		if i > 0 {
			b.WriteByte(',')
			if style == Pretty {
				b.WriteByte(' ')
			}
		}
		e.WriteTo(b, table, style)
	}
	b.WriteByte(']')
}

// String renders v using Pretty style and v's own object's table,
// falling back to the process-wide Default table for every other
// value; objects nested in an array are printed through Default.
func (v Value) String() string {
	table := Default
	if v.typ == TypeObject && v.obj != nil {
		table = v.obj.table
	}
	var b strings.Builder
	v.WriteTo(&b, table, Pretty)
	return b.String()
}
