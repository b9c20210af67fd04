// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"sync"

	"github.com/murphyproxy/resource-proxy/pkg/notify"
	"github.com/murphyproxy/resource-proxy/pkg/resource"
)

// State is one state of a proxy set's per-set state machine (spec
// §4.E's state table).
type State int

const (
	StateFresh State = iota
	StateCreating
	StateIdle
	StateAcquiring
	StateReleasing
	StateTerminal
)

// String names a State for diagnostics.
func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateCreating:
		return "creating"
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateReleasing:
		return "releasing"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// ResourceSet is the client-visible half of a proxy set: the fields a
// caller or event callback actually observes (spec §3 "Resource Set").
type ResourceSet struct {
	LocalID     uint32
	AutoRelease bool
	DontWait    bool
	Priority    uint32
	Resources   []resource.Resource
	GrantMask   uint32
	AdviceMask  uint32
}

// Set is one proxy resource set: the client-visible ResourceSet plus
// the server-id tracking, single-flight gate and operation queue that
// make up the internal half (spec §3 "Proxy Resource Set").
//
// Spec §5 models a single-threaded cooperative core, but this
// implementation genuinely has two goroutines touching a Set: the
// Dispatcher's receive loop (internal/proxy/dispatch.go's
// handleCreateReply/handleEvent) applies server-driven transitions,
// while a caller goroutine independently calls
// ResourceClient.Acquire/Release/Destroy. mu serializes every read and
// write of the fields below so that guarantee holds in practice, not
// just in the design narrative. Methods that need to invoke the
// caller's EventCB or send a wire message never do so while holding
// mu — both can reenter this package (an EventCB that calls Acquire
// synchronously, a send that blocks on transport I/O) — instead they
// return what the caller should do next and the caller acts on it
// after mu is released.
type Set struct {
	mu sync.Mutex

	rs ResourceSet

	clientID  string
	serverID  uint32
	class     string
	zone      string
	lastSeqno uint32

	inProgress     bool
	current        Op
	queue          opQueue
	initialized    bool
	pendingDestroy bool
	createFailed   bool

	state State

	// eventCB is invoked with the request id captured at enqueue time
	// whenever an operation on this set completes (spec §4.E).
	eventCB func(notify.Event)
}

func newSet(clientID string, localID uint32, class, zone string) *Set {
	return &Set{
		rs:       ResourceSet{LocalID: localID},
		clientID: clientID,
		class:    class,
		zone:     zone,
		state:    StateFresh,
	}
}

// State reports the set's current state machine state.
func (s *Set) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ServerID reports the master-assigned resource-set id, or 0 if the
// create handshake hasn't completed yet.
func (s *Set) ServerID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverID
}

// ClientID reports the id of the resource client that owns this set.
func (s *Set) ClientID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientID
}

// LocalID reports this set's client-facing local id.
func (s *Set) LocalID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rs.LocalID
}

// LastSeqno reports the most recent outgoing sequence number assigned
// to a request on this set.
func (s *Set) LastSeqno() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeqno
}

// SetLastSeqno records the sequence number of the request most
// recently sent for this set, so the eventual reply can be routed
// back here (Registry.IndexSeqno).
func (s *Set) SetLastSeqno(seqno uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeqno = seqno
}

// Initialized reports whether the create handshake has completed.
func (s *Set) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// InProgress reports whether an operation is currently in flight on
// this set (spec §4.E "at most one request-in-flight per proxy set").
func (s *Set) InProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inProgress
}

// SetEventCB installs or replaces the callback invoked when an
// operation on this set completes.
func (s *Set) SetEventCB(cb func(notify.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventCB = cb
}

// Configure installs the per-set request parameters and event
// callback once, right after Registry.CreateSet, before the create
// request is dispatched.
func (s *Set) Configure(autoRelease, dontWait bool, priority uint32, eventCB func(notify.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rs.AutoRelease = autoRelease
	s.rs.DontWait = dontWait
	s.rs.Priority = priority
	s.eventCB = eventCB
}

// CreateParams reports the fields a CREATE_RESOURCE_SET message is
// built from.
func (s *Set) CreateParams() (class, zone string, autoRelease, dontWait bool, priority uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.class, s.zone, s.rs.AutoRelease, s.rs.DontWait, s.rs.Priority
}

// SetResources installs the resolved resource list for this set,
// built once while a CREATE_RESOURCE_SET request is being dispatched.
func (s *Set) SetResources(resources []resource.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rs.Resources = resources
}

// ApplyResourceAttribute installs an attribute value pushed by a
// RESOURCES_EVENT message onto the named resource held by this set,
// matching resourceName against each Resource's definition name.
// Unknown resource names are ignored: the server may describe
// resources this proxy set didn't request.
func (s *Set) ApplyResourceAttribute(resourceName, attrName string, value resource.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rs.Resources {
		if s.rs.Resources[i].Def.Name == resourceName {
			_ = s.rs.Resources[i].SetFromEvent(attrName, value)
			return
		}
	}
}

// Snapshot returns a race-free, point-in-time copy of this set's
// client-visible state, for read-only introspection (pkg/debug).
func (s *Set) Snapshot() SetSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	resources := make([]resource.Resource, len(s.rs.Resources))
	copy(resources, s.rs.Resources)

	return SetSnapshot{
		LocalID:     s.rs.LocalID,
		ServerID:    s.serverID,
		ClientID:    s.clientID,
		Class:       s.class,
		Zone:        s.zone,
		State:       s.state,
		GrantMask:   s.rs.GrantMask,
		AdviceMask:  s.rs.AdviceMask,
		Resources:   resources,
		AutoRelease: s.rs.AutoRelease,
	}
}

// SetSnapshot is a race-free copy of a Set's client-visible fields.
type SetSnapshot struct {
	LocalID     uint32
	ServerID    uint32
	ClientID    string
	Class       string
	Zone        string
	State       State
	GrantMask   uint32
	AdviceMask  uint32
	Resources   []resource.Resource
	AutoRelease bool
}

// submit enqueues an operation on s. If nothing is currently in
// flight, it returns (op, true) and the caller must dispatch op on the
// wire; otherwise op is appended to the FIFO queue and the caller has
// nothing further to do (spec §4.E "at most one request-in-flight per
// proxy set").
func (s *Set) submit(kind OpKind, requestID uint32) (op Op, dispatchNow bool) {
	entry := Op{Kind: kind, RequestID: requestID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inProgress {
		s.queue.push(entry)
		return Op{}, false
	}
	s.beginDispatchLocked(entry)
	return entry, true
}

// beginDispatchLocked marks op as the in-flight request and updates
// the state machine accordingly. Callers must hold mu.
func (s *Set) beginDispatchLocked(op Op) {
	s.inProgress = true
	s.current = op
	switch op.Kind {
	case OpCreate:
		s.state = StateCreating
	case OpAcquire:
		s.state = StateAcquiring
	case OpRelease:
		s.state = StateReleasing
	}
}

// drainNextLocked marks the in-flight operation complete and, if
// another op is queued behind it, begins dispatching it, returning it
// for the caller to send once mu is released. Callers must hold mu.
func (s *Set) drainNextLocked() (next Op, ok bool) {
	s.inProgress = false
	next, ok = s.queue.pop()
	if !ok {
		s.state = StateIdle
		return Op{}, false
	}
	s.beginDispatchLocked(next)
	return next, true
}

// onCreateOK records the server-assigned id and transitions Fresh/
// Creating → Idle, or, if destroy was requested while the create was
// in flight, straight to Terminal (destroyNow=true, in which case the
// caller must still send DESTROY and remove s from the registry).
// Otherwise, if an op was queued behind the create, it's returned for
// the caller to dispatch.
func (s *Set) onCreateOK(serverID uint32) (next Op, hasNext, destroyNow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.serverID = serverID
	s.initialized = true
	if s.pendingDestroy {
		s.state = StateTerminal
		s.inProgress = false
		s.queue.drain()
		return Op{}, false, true
	}
	next, hasNext = s.drainNextLocked()
	return next, hasNext, false
}

// onCreateFailed marks the set Terminal and returns the request id
// and event callback the caller should invoke with a synthesized
// failure event (spec §7 "surface via callback with error"). Every
// other operation still queued behind the failed create is discarded
// without a callback once the caller removes s from the registry
// (Registry.DestroySet never drains with synthesized events — see
// spec §7's "silently discarded" alternative).
func (s *Set) onCreateFailed() (requestID uint32, cb func(notify.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createFailed = true
	s.state = StateTerminal
	s.inProgress = false
	return s.current.RequestID, s.eventCB
}

// onGrantEvent applies a grant/advice update arriving while Acquiring,
// returning the event to fire (with the request id captured when the
// acquire was enqueued) and, if another op was queued, the next op to
// dispatch.
func (s *Set) onGrantEvent(grant, advice uint32) (ev notify.Event, cb func(notify.Event), next Op, hasNext bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rs.GrantMask = grant
	s.rs.AdviceMask = advice
	ev = notify.Event{RequestID: s.current.RequestID, ResourceSetID: s.serverID, Type: notify.EventGrant, GrantMask: grant, AdviceMask: advice}
	cb = s.eventCB
	next, hasNext = s.drainNextLocked()
	return
}

// onReleaseEvent applies a release confirmation arriving while
// Releasing, mirroring onGrantEvent.
func (s *Set) onReleaseEvent(grant, advice uint32) (ev notify.Event, cb func(notify.Event), next Op, hasNext bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rs.GrantMask = grant
	s.rs.AdviceMask = advice
	ev = notify.Event{RequestID: s.current.RequestID, ResourceSetID: s.serverID, Type: notify.EventRelease, GrantMask: grant, AdviceMask: advice}
	cb = s.eventCB
	next, hasNext = s.drainNextLocked()
	return
}

// bindServerID implements the "wildcard binding" self-heal: an
// event's resource_set_id is trusted and written into the proxy if
// ServerID was still zero, covering the race where the event arrives
// before the create-response handler runs (spec §4.E).
func (s *Set) bindServerID(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.serverID == 0 {
		s.serverID = id
	}
}

// requestDestroy marks the set for destruction. If the create
// handshake hasn't completed yet, the DESTROY message is deferred
// until it does (pendingDestroy, resolved by onCreateOK); otherwise it
// reports that the caller should send DESTROY immediately and the
// queued operations are dropped without firing their callbacks
// (spec §5).
func (s *Set) requestDestroy() (sendNow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		s.pendingDestroy = true
		return false
	}
	s.state = StateTerminal
	s.queue.drain()
	return true
}

// forceDestroy unconditionally transitions the set to Terminal and
// drains its queue, regardless of whether the create handshake ever
// completed, reporting whether a DESTROY should still be sent to the
// server. Used by Registry.DestroyClient, which tears down every set
// a client owns in one pass rather than waiting on each one's own
// create handshake (spec §4.F).
func (s *Set) forceDestroy() (sendWire bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateTerminal
	s.pendingDestroy = false
	s.queue.drain()
	return s.initialized
}
