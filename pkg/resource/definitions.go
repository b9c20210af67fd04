// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

// Package resource holds the local, read-only mirror of the master's
// resource definitions, application classes and zone, populated by
// the initial query handshake (spec §4.D). Nothing here mutates these
// tables after Model.PopulateResources/PopulateClasses: writes only ever touch a live
// Resource's Attribute values (attributes.go), never the schema.
package resource

import (
	"strings"
	"sync"

	"github.com/murphyproxy/resource-proxy/pkg/errors"
)

// AttrAccess is the read/write permission a client has on an attribute.
type AttrAccess int

const (
	AccessRead AttrAccess = 1 << iota
	AccessWrite
)

// AttrType is the scalar type of an attribute's default/value.
type AttrType int

const (
	AttrTypeString AttrType = iota
	AttrTypeInt
	AttrTypeUint
	AttrTypeFloat
)

// AttrDef describes one resource attribute's schema.
type AttrDef struct {
	Name    string
	Type    AttrType
	Default Attribute
	Access  AttrAccess
}

// ResourceDef is the master's schema for one nameable resource.
type ResourceDef struct {
	ID        uint32
	Name      string
	Shareable bool
	AttrDefs  []AttrDef
}

// AppClass is a named application class; priority arbitration happens
// server-side (spec §3).
type AppClass struct {
	Name string
}

// Model is the read-only local mirror of resource definitions,
// application classes and the proxy's own zone, populated once by the
// QUERY_RESOURCES/QUERY_CLASSES handshake.
type Model struct {
	mu             sync.RWMutex
	zone           string
	defs           []ResourceDef
	byName         map[string]*ResourceDef
	classes        []AppClass
	resourcesReady bool
	classesReady   bool
}

// NewModel creates an empty Model for the given zone. The proxy
// exports exactly its configured zone (spec §4.D "proxy exports
// exactly its configured zone").
func NewModel(zone string) *Model {
	return &Model{zone: zone, byName: make(map[string]*ResourceDef)}
}

// PopulateResources installs the resource definitions received from a
// QUERY_RESOURCES reply. Safe to call once; a second call replaces the
// prior definitions (used by tests and reconnect scenarios alike).
func (m *Model) PopulateResources(defs []ResourceDef) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.defs = defs
	m.byName = make(map[string]*ResourceDef, len(defs))
	for i := range m.defs {
		m.byName[strings.ToLower(m.defs[i].Name)] = &m.defs[i]
	}
	m.resourcesReady = true
}

// PopulateClasses installs the application class list received from a
// QUERY_CLASSES reply.
func (m *Model) PopulateClasses(classes []AppClass) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes = classes
	m.classesReady = true
}

// ClassNames returns the known application class names.
func (m *Model) ClassNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.classes))
	for i, c := range m.classes {
		names[i] = c.Name
	}
	return names
}

// ZoneNames returns exactly this proxy's configured zone, matching
// spec §4.D.
func (m *Model) ZoneNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.zone == "" {
		return nil
	}
	return []string{m.zone}
}

// ResourceNames returns every known resource's name.
func (m *Model) ResourceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.defs))
	for i, d := range m.defs {
		names[i] = d.Name
	}
	return names
}

// ResourceByName looks up a resource definition by name, matching
// case-insensitively the same way attribute lookups do (attributes.go).
func (m *Model) ResourceByName(name string) (ResourceDef, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def, ok := m.byName[strings.ToLower(name)]
	if !ok {
		return ResourceDef{}, false
	}
	return *def, true
}

// ReadAllAttributes returns every attribute definition for the
// resource identified by id, or NotFound if no such resource exists.
func (m *Model) ReadAllAttributes(id uint32) ([]AttrDef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.defs {
		if d.ID == id {
			out := make([]AttrDef, len(d.AttrDefs))
			copy(out, d.AttrDefs)
			return out, nil
		}
	}
	return nil, errors.NewNotFoundError("resource id")
}

// Ready reports whether both halves of the handshake (resources and
// classes) have completed — spec §5 "neither implies the other".
func (m *Model) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resourcesReady && m.classesReady
}
