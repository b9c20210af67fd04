// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package wire

import "github.com/murphyproxy/resource-proxy/pkg/errors"

// The Fetch* helpers require a specific (tag, type) pair and return a
// Protocol error on mismatch, so decode-side parsers can fail fast
// with readable code instead of hand-checking Field.Tag/Type at every
// call site (spec §4.C "typed accessors that require a specific
// expected tag and type").

// FetchU32 decodes the next field, requiring it to be (tag, u32).
func FetchU32(d *Decoder, tag Tag) (uint32, error) {
	f, ok, err := d.Next()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.NewProtocolError("wire: expected " + tag.String() + ", got MESSAGE_END")
	}
	if f.Tag != tag || f.Type != TypeU32 {
		return 0, errors.NewProtocolError("wire: expected " + tag.String() + "/u32, got " + f.Tag.String())
	}
	return uint32(f.U), nil
}

// FetchU16 decodes the next field, requiring it to be (tag, u16).
func FetchU16(d *Decoder, tag Tag) (uint16, error) {
	f, ok, err := d.Next()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.NewProtocolError("wire: expected " + tag.String() + ", got MESSAGE_END")
	}
	if f.Tag != tag || f.Type != TypeU16 {
		return 0, errors.NewProtocolError("wire: expected " + tag.String() + "/u16, got " + f.Tag.String())
	}
	return uint16(f.U), nil
}

// FetchS16 decodes the next field, requiring it to be (tag, s16).
func FetchS16(d *Decoder, tag Tag) (int16, error) {
	f, ok, err := d.Next()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.NewProtocolError("wire: expected " + tag.String() + ", got MESSAGE_END")
	}
	if f.Tag != tag || f.Type != TypeS16 {
		return 0, errors.NewProtocolError("wire: expected " + tag.String() + "/s16, got " + f.Tag.String())
	}
	return int16(f.S), nil
}

// FetchS32 decodes the next field, requiring it to be (tag, s32).
func FetchS32(d *Decoder, tag Tag) (int32, error) {
	f, ok, err := d.Next()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.NewProtocolError("wire: expected " + tag.String() + ", got MESSAGE_END")
	}
	if f.Tag != tag || f.Type != TypeS32 {
		return 0, errors.NewProtocolError("wire: expected " + tag.String() + "/s32, got " + f.Tag.String())
	}
	return int32(f.S), nil
}

// FetchString decodes the next field, requiring it to be (tag, string).
func FetchString(d *Decoder, tag Tag) (string, error) {
	f, ok, err := d.Next()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.NewProtocolError("wire: expected " + tag.String() + ", got MESSAGE_END")
	}
	if f.Tag != tag || f.Type != TypeString {
		return "", errors.NewProtocolError("wire: expected " + tag.String() + "/string, got " + f.Tag.String())
	}
	return f.Str, nil
}

// FetchArrayOfString decodes the next field, requiring it to be (tag,
// array-of-string).
func FetchArrayOfString(d *Decoder, tag Tag) ([]string, error) {
	f, ok, err := d.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewProtocolError("wire: expected " + tag.String() + ", got MESSAGE_END")
	}
	if f.Tag != tag || f.Type != TypeArrayOfString {
		return nil, errors.NewProtocolError("wire: expected " + tag.String() + "/array-of-string, got " + f.Tag.String())
	}
	return f.Strs, nil
}

// FetchDouble decodes the next field, requiring it to be (tag, double).
func FetchDouble(d *Decoder, tag Tag) (float64, error) {
	f, ok, err := d.Next()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.NewProtocolError("wire: expected " + tag.String() + ", got MESSAGE_END")
	}
	if f.Tag != tag || f.Type != TypeDouble {
		return 0, errors.NewProtocolError("wire: expected " + tag.String() + "/double, got " + f.Tag.String())
	}
	return f.F, nil
}
