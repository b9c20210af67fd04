// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package cson

import (
	"math"
	"strconv"

	"github.com/murphyproxy/resource-proxy/pkg/errors"
)

// AsString returns v's value rendered as a string. Scalars convert to
// their usual textual form; Object/Array are not supported here (use
// WriteTo/String for those).
func (v Value) AsString() (string, error) {
	switch v.typ {
	case TypeNull:
		return "null", nil
	case TypeFalse:
		return "false", nil
	case TypeTrue:
		return "true", nil
	case TypeString:
		if v.compact {
			return string(v.bytes), nil
		}
		return *v.str, nil
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return strconv.FormatInt(v.intValue(), 10), nil
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return strconv.FormatUint(v.uintValue(), 10), nil
	case TypeDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64), nil
	default:
		return "", errors.NewInvalidArgError("as_string not supported for type", "type", v.typ)
	}
}

// AsBool coerces v to a boolean. Null and False are false; True is
// true; non-zero numbers are true; strings are parsed with
// strconv.ParseBool ("1", "t", "true", "0", "f", "false" and their
// upper- and title-case forms), returning InvalidArg otherwise.
func (v Value) AsBool() (bool, error) {
	switch v.typ {
	case TypeNull, TypeFalse:
		return false, nil
	case TypeTrue:
		return true, nil
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return v.intValue() != 0, nil
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return v.uintValue() != 0, nil
	case TypeDouble:
		return v.f != 0, nil
	case TypeString:
		s, _ := v.AsString()
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, errors.NewInvalidArgError("as_bool: string does not parse as boolean", "value", s)
		}
		return b, nil
	default:
		return false, errors.NewInvalidArgError("as_bool not supported for type", "type", v.typ)
	}
}

// intValue returns the raw signed payload; compact and boxed integers
// share the same field, only the tag differs.
func (v Value) intValue() int64 { return v.i }

// uintValue returns the raw unsigned payload.
func (v Value) uintValue() uint64 { return v.u }

func (v Value) numericInt64() (int64, error) {
	switch v.typ {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return v.intValue(), nil
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		u := v.uintValue()
		if u > math.MaxInt64 {
			return math.MaxInt64, nil
		}
		return int64(u), nil
	case TypeDouble:
		return int64(v.f), nil
	case TypeString:
		s, _ := v.AsString()
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, errors.NewInvalidArgError("string does not parse as integer", "value", s)
		}
		return n, nil
	case TypeTrue:
		return 1, nil
	case TypeFalse, TypeNull:
		return 0, nil
	default:
		return 0, errors.NewInvalidArgError("value is not numeric", "type", v.typ)
	}
}

func (v Value) numericUint64() (uint64, error) {
	switch v.typ {
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return v.uintValue(), nil
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		i := v.intValue()
		if i < 0 {
			return 0, nil
		}
		return uint64(i), nil
	case TypeDouble:
		if v.f < 0 {
			return 0, nil
		}
		return uint64(v.f), nil
	case TypeString:
		s, _ := v.AsString()
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, errors.NewInvalidArgError("string does not parse as unsigned integer", "value", s)
		}
		return n, nil
	case TypeTrue:
		return 1, nil
	case TypeFalse, TypeNull:
		return 0, nil
	default:
		return 0, errors.NewInvalidArgError("value is not numeric", "type", v.typ)
	}
}

// AsI8 coerces v to int8, saturating at the type's bounds.
func (v Value) AsI8() (int8, error) {
	n, err := v.numericInt64()
	if err != nil {
		return 0, err
	}
	return saturateToInt8(n), nil
}

// AsI16 coerces v to int16, saturating at the type's bounds.
func (v Value) AsI16() (int16, error) {
	n, err := v.numericInt64()
	if err != nil {
		return 0, err
	}
	return saturateToInt16(n), nil
}

// AsI32 coerces v to int32, saturating at the type's bounds.
func (v Value) AsI32() (int32, error) {
	n, err := v.numericInt64()
	if err != nil {
		return 0, err
	}
	return saturateToInt32(n), nil
}

// AsI64 coerces v to int64. Unsigned values above math.MaxInt64
// saturate to math.MaxInt64.
func (v Value) AsI64() (int64, error) {
	return v.numericInt64()
}

// AsU8 coerces v to uint8, saturating at the type's bounds.
func (v Value) AsU8() (uint8, error) {
	n, err := v.numericUint64()
	if err != nil {
		return 0, err
	}
	return saturateToUint8(n), nil
}

// AsU16 coerces v to uint16, saturating at the type's bounds.
func (v Value) AsU16() (uint16, error) {
	n, err := v.numericUint64()
	if err != nil {
		return 0, err
	}
	return saturateToUint16(n), nil
}

// AsU32 coerces v to uint32, saturating at the type's bounds.
//
// Resolves spec §9 Open Question 3: the original's
// mrp_cson_uint32_value delegated to the signed int64 path, so a
// negative signed source sign-extended into a huge unsigned value
// before the UINT32_MAX clamp — confirmed an oversight (uint8/16/64 all
// delegate to the unsigned path). This implementation saturates
// directly against the unsigned 32-bit range without ever widening
// through a signed intermediate.
func (v Value) AsU32() (uint32, error) {
	n, err := v.numericUint64()
	if err != nil {
		return 0, err
	}
	return saturateToUint32(n), nil
}

// AsU64 coerces v to uint64. Negative signed values saturate to 0.
func (v Value) AsU64() (uint64, error) {
	return v.numericUint64()
}

// AsF64 coerces v to float64.
func (v Value) AsF64() (float64, error) {
	switch v.typ {
	case TypeDouble:
		return v.f, nil
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return float64(v.intValue()), nil
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return float64(v.uintValue()), nil
	case TypeString:
		s, _ := v.AsString()
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errors.NewInvalidArgError("string does not parse as float", "value", s)
		}
		return f, nil
	case TypeTrue:
		return 1, nil
	case TypeFalse, TypeNull:
		return 0, nil
	default:
		return 0, errors.NewInvalidArgError("value is not numeric", "type", v.typ)
	}
}
