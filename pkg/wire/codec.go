// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"math"

	"github.com/murphyproxy/resource-proxy/pkg/errors"
)

// Field is one decoded (tag, type, payload) triple. Exactly one of the
// typed payload fields is meaningful, selected by Type.
type Field struct {
	Tag    Tag
	Type   FieldType
	U      uint64
	S      int64
	F      float64
	Str    string
	Strs   []string
	B      bool
}

// Encoder appends tagged fields to an in-memory byte buffer. There is
// no schema validation at this layer (spec §4.C "agnostic to message
// semantics"); pkg/wire/builder.go layers the schema-driven shape on
// top for callers that want fail-fast construction.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 128)}
}

func (e *Encoder) header(tag Tag, typ FieldType) {
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[0:2], uint16(tag))
	binary.BigEndian.PutUint16(hdr[2:4], uint16(typ))
	e.buf = append(e.buf, hdr[:]...)
}

// U8 appends a u8-typed field.
func (e *Encoder) U8(tag Tag, v uint8) *Encoder {
	e.header(tag, TypeU8)
	e.buf = append(e.buf, v)
	return e
}

// U16 appends a u16-typed field.
func (e *Encoder) U16(tag Tag, v uint16) *Encoder {
	e.header(tag, TypeU16)
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return e
}

// U32 appends a u32-typed field.
func (e *Encoder) U32(tag Tag, v uint32) *Encoder {
	e.header(tag, TypeU32)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return e
}

// S16 appends an s16-typed field.
func (e *Encoder) S16(tag Tag, v int16) *Encoder {
	e.header(tag, TypeS16)
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	e.buf = append(e.buf, b[:]...)
	return e
}

// S32 appends an s32-typed field.
func (e *Encoder) S32(tag Tag, v int32) *Encoder {
	e.header(tag, TypeS32)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	e.buf = append(e.buf, b[:]...)
	return e
}

// Double appends a double-typed field.
func (e *Encoder) Double(tag Tag, v float64) *Encoder {
	e.header(tag, TypeDouble)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	e.buf = append(e.buf, b[:]...)
	return e
}

// Bool appends a bool-typed field.
func (e *Encoder) Bool(tag Tag, v bool) *Encoder {
	e.header(tag, TypeBool)
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
	return e
}

// String appends a string-typed field, length-prefixed by a u32 byte
// count.
func (e *Encoder) String(tag Tag, v string) *Encoder {
	e.header(tag, TypeString)
	e.appendString(v)
	return e
}

func (e *Encoder) appendString(v string) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(v)))
	e.buf = append(e.buf, lenBuf[:]...)
	e.buf = append(e.buf, v...)
}

// ArrayOfString appends an array-of-string field: a u32 element count
// followed by each length-prefixed string.
func (e *Encoder) ArrayOfString(tag Tag, vs []string) *Encoder {
	e.header(tag, TypeArrayOfString)
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(vs)))
	e.buf = append(e.buf, countBuf[:]...)
	for _, v := range vs {
		e.appendString(v)
	}
	return e
}

// End appends the MESSAGE_END marker.
func (e *Encoder) End() *Encoder {
	e.header(TagMessageEnd, TypeEnd)
	return e
}

// Bytes returns the encoded message.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Decoder iterates the tagged fields of a previously encoded message.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps buf for sequential field iteration.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Next decodes the next field, or reports ok=false once MESSAGE_END is
// reached (MESSAGE_END itself is not returned as a Field). A truncated
// or malformed buffer returns a Protocol error.
func (d *Decoder) Next() (Field, bool, error) {
	if d.pos+4 > len(d.buf) {
		if d.pos == len(d.buf) {
			return Field{}, false, errors.NewProtocolError("wire: message missing MESSAGE_END terminator")
		}
		return Field{}, false, errors.NewProtocolError("wire: truncated field header")
	}

	tag := Tag(binary.BigEndian.Uint16(d.buf[d.pos : d.pos+2]))
	typ := FieldType(binary.BigEndian.Uint16(d.buf[d.pos+2 : d.pos+4]))
	d.pos += 4

	if tag == TagMessageEnd {
		return Field{}, false, nil
	}

	switch typ {
	case TypeU8:
		v, err := d.readByte()
		if err != nil {
			return Field{}, false, err
		}
		return Field{Tag: tag, Type: typ, U: uint64(v)}, true, nil
	case TypeU16:
		v, err := d.readU16()
		if err != nil {
			return Field{}, false, err
		}
		return Field{Tag: tag, Type: typ, U: uint64(v)}, true, nil
	case TypeU32:
		v, err := d.readU32()
		if err != nil {
			return Field{}, false, err
		}
		return Field{Tag: tag, Type: typ, U: uint64(v)}, true, nil
	case TypeS16:
		v, err := d.readU16()
		if err != nil {
			return Field{}, false, err
		}
		return Field{Tag: tag, Type: typ, S: int64(int16(v))}, true, nil
	case TypeS32:
		v, err := d.readU32()
		if err != nil {
			return Field{}, false, err
		}
		return Field{Tag: tag, Type: typ, S: int64(int32(v))}, true, nil
	case TypeDouble:
		v, err := d.readU64()
		if err != nil {
			return Field{}, false, err
		}
		return Field{Tag: tag, Type: typ, F: math.Float64frombits(v)}, true, nil
	case TypeBool:
		v, err := d.readByte()
		if err != nil {
			return Field{}, false, err
		}
		return Field{Tag: tag, Type: typ, B: v != 0}, true, nil
	case TypeString:
		s, err := d.readString()
		if err != nil {
			return Field{}, false, err
		}
		return Field{Tag: tag, Type: typ, Str: s}, true, nil
	case TypeArrayOfString:
		count, err := d.readU32()
		if err != nil {
			return Field{}, false, err
		}
		strs := make([]string, 0, count)
		for i := uint32(0); i < count; i++ {
			s, err := d.readString()
			if err != nil {
				return Field{}, false, err
			}
			strs = append(strs, s)
		}
		return Field{Tag: tag, Type: typ, Strs: strs}, true, nil
	default:
		return Field{}, false, errors.NewProtocolError("wire: unknown field type")
	}
}

func (d *Decoder) readByte() (byte, error) {
	if d.pos+1 > len(d.buf) {
		return 0, errors.NewProtocolError("wire: truncated u8 payload")
	}
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}

func (d *Decoder) readU16() (uint16, error) {
	if d.pos+2 > len(d.buf) {
		return 0, errors.NewProtocolError("wire: truncated u16 payload")
	}
	v := binary.BigEndian.Uint16(d.buf[d.pos : d.pos+2])
	d.pos += 2
	return v, nil
}

func (d *Decoder) readU32() (uint32, error) {
	if d.pos+4 > len(d.buf) {
		return 0, errors.NewProtocolError("wire: truncated u32 payload")
	}
	v := binary.BigEndian.Uint32(d.buf[d.pos : d.pos+4])
	d.pos += 4
	return v, nil
}

func (d *Decoder) readU64() (uint64, error) {
	if d.pos+8 > len(d.buf) {
		return 0, errors.NewProtocolError("wire: truncated u64 payload")
	}
	v := binary.BigEndian.Uint64(d.buf[d.pos : d.pos+8])
	d.pos += 8
	return v, nil
}

func (d *Decoder) readString() (string, error) {
	n, err := d.readU32()
	if err != nil {
		return "", err
	}
	if d.pos+int(n) > len(d.buf) {
		return "", errors.NewProtocolError("wire: truncated string payload")
	}
	s := string(d.buf[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}
