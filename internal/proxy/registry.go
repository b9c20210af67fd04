// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"sync"

	"github.com/murphyproxy/resource-proxy/pkg/errors"
	"github.com/murphyproxy/resource-proxy/pkg/resource"
)

// Registry owns every proxy Set created by any client and the four
// intersecting index tables spec §4.F requires: client→sets,
// local-id→set, seqno→set, resource-set(server)-id→set, plus a
// name→attribute-defs lookup filled from the QUERY_RESOURCES reply.
// Modeled on original_source's
// resource_proxy_global_context_t hash-table fields (client.h);
// generalized from the teacher's single-map BaseManager pattern
// (internal/managers/base) to four maps over one value type.
type Registry struct {
	mu sync.Mutex

	byClient map[string][]*Set
	byLocal  map[uint32]*Set
	bySeqno  map[uint32]*Set
	byServer map[uint32]*Set

	attrDefsByResourceName map[string][]resource.AttrDef

	nextLocalID uint32
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byClient:               make(map[string][]*Set),
		byLocal:                make(map[uint32]*Set),
		bySeqno:                make(map[uint32]*Set),
		byServer:               make(map[uint32]*Set),
		attrDefsByResourceName: make(map[string][]resource.AttrDef),
		nextLocalID:            1,
	}
}

// CreateSet allocates a new proxy Set owned by clientID with a fresh,
// monotonically increasing local id, and indexes it by client and by
// local id.
func (r *Registry) CreateSet(clientID, class, zone string) *Set {
	r.mu.Lock()
	defer r.mu.Unlock()

	localID := r.nextLocalID
	r.nextLocalID++

	s := newSet(clientID, localID, class, zone)
	r.byClient[clientID] = append(r.byClient[clientID], s)
	r.byLocal[localID] = s
	return s
}

// IndexSeqno associates seqno with s, used to route the reply that
// will eventually carry that sequence number back to s.
func (r *Registry) IndexSeqno(seqno uint32, s *Set) {
	s.SetLastSeqno(seqno)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySeqno[seqno] = s
}

// UnindexSeqno removes a seqno→Set mapping once the matching reply has
// been processed, so the map doesn't grow unbounded across a long
// session.
func (r *Registry) UnindexSeqno(seqno uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bySeqno, seqno)
}

// IndexServerID associates the master's assigned resource-set id with
// s, once CREATE_RESP confirms it.
func (r *Registry) IndexServerID(serverID uint32, s *Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byServer[serverID] = s
}

// LookupBySeqno finds the Set a SEQUENCE_NO reply should be routed to.
func (r *Registry) LookupBySeqno(seqno uint32) (*Set, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.bySeqno[seqno]
	return s, ok
}

// LookupByServerID finds the Set an unsolicited RESOURCES_EVENT's
// RESOURCE_SET_ID should be routed to.
func (r *Registry) LookupByServerID(serverID uint32) (*Set, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byServer[serverID]
	return s, ok
}

// LookupByLocalID finds the Set by its client-facing local id.
func (r *Registry) LookupByLocalID(localID uint32) (*Set, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byLocal[localID]
	return s, ok
}

// SetAttrDefs records the attribute definitions advertised for a
// resource name, populated by the QUERY_RESOURCES handshake reply.
func (r *Registry) SetAttrDefs(resourceName string, defs []resource.AttrDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attrDefsByResourceName[resourceName] = defs
}

// AttrDefsFor returns the attribute definitions known for a resource
// name, or NotFound if the handshake hasn't described it.
func (r *Registry) AttrDefsFor(resourceName string) ([]resource.AttrDef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defs, ok := r.attrDefsByResourceName[resourceName]
	if !ok {
		return nil, errors.NewNotFoundError("attribute definitions for resource " + resourceName)
	}
	return defs, nil
}

// DestroySet removes s from every index that references it. Safe to
// call even if s was never fully indexed (e.g. it failed during
// Creating and never got a server id).
func (r *Registry) DestroySet(s *Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeSetLocked(s)
}

func (r *Registry) removeSetLocked(s *Set) {
	localID := s.LocalID()
	serverID := s.ServerID()
	lastSeqno := s.LastSeqno()
	clientID := s.ClientID()

	delete(r.byLocal, localID)
	if serverID != 0 {
		delete(r.byServer, serverID)
	}
	if lastSeqno != 0 {
		delete(r.bySeqno, lastSeqno)
	}

	sets := r.byClient[clientID]
	for i, candidate := range sets {
		if candidate == s {
			r.byClient[clientID] = append(sets[:i], sets[i+1:]...)
			break
		}
	}
	if len(r.byClient[clientID]) == 0 {
		delete(r.byClient, clientID)
	}
}

// AllSets returns a snapshot of every Set the registry currently
// tracks, across every client. Used by pkg/debug's /resourcesets
// introspection endpoint.
func (r *Registry) AllSets() []*Set {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Set, 0, len(r.byLocal))
	for _, s := range r.byLocal {
		out = append(out, s)
	}
	return out
}

// SetsForClient returns every Set currently owned by clientID.
func (r *Registry) SetsForClient(clientID string) []*Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	sets := r.byClient[clientID]
	out := make([]*Set, len(sets))
	copy(out, sets)
	return out
}

// DestroyClient walks every resource set clientID owns, removing each
// from all four proxy indexes and freeing its queued operations
// (spec §4.F). destroyWire is invoked once per initialized set so the
// caller can still send a server-side DESTROY for each; sets that
// never completed their create handshake are simply dropped.
func (r *Registry) DestroyClient(clientID string, destroyWire func(*Set)) {
	r.mu.Lock()
	sets := append([]*Set(nil), r.byClient[clientID]...)
	r.mu.Unlock()

	for _, s := range sets {
		if s.forceDestroy() && destroyWire != nil {
			destroyWire(s)
		}
		r.DestroySet(s)
	}
}
