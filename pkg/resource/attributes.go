// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"golang.org/x/text/cases"

	"github.com/murphyproxy/resource-proxy/pkg/errors"
)

var fold = cases.Fold()

func foldName(s string) string {
	return fold.String(s)
}

// Attribute is a tagged (type, value) pair carrying a name, the
// client-visible value of one resource attribute.
type Attribute struct {
	Name  string
	Type  AttrType
	Str   string
	Int   int32
	Uint  uint32
	Float float64

	// fromEvent marks an attribute as having arrived via a server
	// RESOURCES_EVENT rather than local mutation (spec §4.E "Attribute
	// writeback policy"): such updates must never be re-sent to the
	// server.
	fromEvent bool
}

// Resource is one resource held by a resource set: its schema plus its
// live attribute values.
type Resource struct {
	Def    ResourceDef
	RsetID uint32
	Shared bool
	Attrs  []Attribute
}

// SetAttribute writes value into the attribute named name, validating
// it against the resource's AttrDef.Access (the WRITE bit is
// required) and matching by case-insensitive name (spec §4.D).
// Setting an attribute the server pushed via an event still replaces
// the stored value but callers driving that path use SetFromEvent
// instead so the writeback suppression flag is set correctly.
func (r *Resource) SetAttribute(name string, value Attribute) error {
	return r.setAttribute(name, value, false)
}

// SetFromEvent installs an attribute value received in a
// RESOURCES_EVENT message. It bypasses the WRITE-access check (the
// server is authoritative) and marks the attribute so it is never
// echoed back in a future client-initiated write.
func (r *Resource) SetFromEvent(name string, value Attribute) error {
	value.fromEvent = true
	return r.setAttribute(name, value, true)
}

func (r *Resource) setAttribute(name string, value Attribute, fromServer bool) error {
	folded := foldName(name)

	var def *AttrDef
	for i := range r.Def.AttrDefs {
		if foldName(r.Def.AttrDefs[i].Name) == folded {
			def = &r.Def.AttrDefs[i]
			break
		}
	}
	if def == nil {
		return errors.NewNotFoundError("attribute " + name)
	}
	if !fromServer && def.Access&AccessWrite == 0 {
		return errors.NewInvalidArgError("attribute is not writable", "name", name)
	}

	for i := range r.Attrs {
		if foldName(r.Attrs[i].Name) == folded {
			original := r.Attrs[i].Name
			value.Name = original
			r.Attrs[i] = value
			return nil
		}
	}
	value.Name = name
	r.Attrs = append(r.Attrs, value)
	return nil
}

// Attribute returns the live value of the attribute named name,
// matching case-insensitively.
func (r *Resource) Attribute(name string) (Attribute, bool) {
	folded := foldName(name)
	for _, a := range r.Attrs {
		if foldName(a.Name) == folded {
			return a, true
		}
	}
	return Attribute{}, false
}
