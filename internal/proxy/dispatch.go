// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/murphyproxy/resource-proxy/pkg/errors"
	"github.com/murphyproxy/resource-proxy/pkg/logging"
	"github.com/murphyproxy/resource-proxy/pkg/metrics"
	"github.com/murphyproxy/resource-proxy/pkg/notify"
	"github.com/murphyproxy/resource-proxy/pkg/resource"
	"github.com/murphyproxy/resource-proxy/pkg/transport"
	"github.com/murphyproxy/resource-proxy/pkg/wire"
)

// Dispatcher owns the transport, the outgoing sequence-number
// counter, and the loop that decodes inbound frames and drives each
// proxy Set's state machine. Its loop shape (goroutine + select over
// ctx.Done()/channel) is adapted from the teacher's pkg/watch poll
// loop, generalized from time.Ticker-driven polling to channel-driven
// push dispatch, since this protocol is server-push, not client-poll.
type Dispatcher struct {
	transport transport.Transport
	registry  *Registry
	model     *resource.Model
	notifier  *notify.Notifier
	logger    logging.Logger
	metrics   metrics.Collector

	defaultZone string

	seqno       atomic.Uint32
	readyOnce   atomic.Bool
	resourcesOK atomic.Bool
	classesOK   atomic.Bool
}

// NewDispatcher creates a Dispatcher over an already-constructed
// transport. Callers must call Run to start the receive loop and
// SendHandshake to kick off the QUERY_RESOURCES/QUERY_CLASSES
// handshake (spec §5 "Initial handshake").
func NewDispatcher(t transport.Transport, registry *Registry, model *resource.Model, notifier *notify.Notifier, logger logging.Logger, collector metrics.Collector, defaultZone string) *Dispatcher {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	d := &Dispatcher{
		transport:   t,
		registry:    registry,
		model:       model,
		notifier:    notifier,
		logger:      logger,
		metrics:     collector,
		defaultZone: defaultZone,
	}
	return d
}

func (d *Dispatcher) nextSeqno() uint32 {
	return d.seqno.Add(1)
}

// SendHandshake sends QUERY_CLASSES and QUERY_RESOURCES with distinct
// sequence numbers (spec §8 scenario 6).
func (d *Dispatcher) SendHandshake(ctx context.Context) error {
	classesSeq := d.nextSeqno()
	resourcesSeq := d.nextSeqno()

	classesMsg := wire.NewMessage(classesSeq, wire.ReqQueryClasses).End()
	if err := d.transport.Send(ctx, classesMsg); err != nil {
		return errors.NewIOError("sending QUERY_CLASSES", err)
	}
	d.metrics.RecordDispatch("QUERY_CLASSES")

	resourcesMsg := wire.NewMessage(resourcesSeq, wire.ReqQueryResources).End()
	if err := d.transport.Send(ctx, resourcesMsg); err != nil {
		return errors.NewIOError("sending QUERY_RESOURCES", err)
	}
	d.metrics.RecordDispatch("QUERY_RESOURCES")
	return nil
}

// Run reads frames off the transport until ctx is canceled or the
// transport closes, decoding and routing each one.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := d.transport.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.LogError(d.logger, err, "transport receive")
			d.notifier.NotifyDisconnected()
			return
		}
		d.handleFrame(frame)
	}
}

func (d *Dispatcher) handleFrame(frame []byte) {
	dec := wire.NewDecoder(frame)

	seqno, err := wire.FetchU32(dec, wire.TagSequenceNo)
	if err != nil {
		d.protocolError(err)
		return
	}
	reqTypeRaw, err := wire.FetchU16(dec, wire.TagRequestType)
	if err != nil {
		d.protocolError(err)
		return
	}
	reqType := wire.RequestType(reqTypeRaw)

	switch reqType {
	case wire.ReqQueryClasses:
		d.handleClassesReply(dec)
	case wire.ReqQueryResources:
		d.handleResourcesReply(dec)
	case wire.ReqCreateResourceSet:
		d.handleCreateReply(seqno, dec)
	case wire.ReqResourcesEvent:
		d.handleEvent(dec)
	default:
		// Acquire/Release/Destroy carry no distinct reply shape beyond
		// the RESOURCES_EVENT that follows them; an unexpected
		// REQUEST_TYPE here is a protocol error per spec §7.
		d.protocolError(errors.NewProtocolError("unexpected REQUEST_TYPE in reply"))
	}
}

// protocolError implements spec §7's "Protocol errors during event
// decoding are logged and ignored — the event is dropped; the state
// machine does not advance."
func (d *Dispatcher) protocolError(err error) {
	logging.LogError(d.logger, err, "decode wire frame")
}

func (d *Dispatcher) handleClassesReply(dec *wire.Decoder) {
	status, err := wire.FetchS16(dec, wire.TagRequestStatus)
	if err != nil {
		d.protocolError(err)
		return
	}
	if status != 0 {
		d.protocolError(errors.NewProtocolError("QUERY_CLASSES reply carried a non-zero status"))
		return
	}
	names, err := wire.FetchArrayOfString(dec, wire.TagClassName)
	if err != nil {
		d.protocolError(err)
		return
	}

	classes := make([]resource.AppClass, len(names))
	for i, n := range names {
		classes[i] = resource.AppClass{Name: n}
	}
	d.model.PopulateClasses(classes)
	d.classesOK.Store(true)
	d.maybeReady()
}

func (d *Dispatcher) handleResourcesReply(dec *wire.Decoder) {
	var defs []resource.ResourceDef
	var current *resource.ResourceDef
	var nextID uint32 = 1

	for {
		f, ok, err := dec.Next()
		if err != nil {
			d.protocolError(err)
			return
		}
		if !ok {
			break
		}
		switch f.Tag {
		case wire.TagResourceName:
			defs = append(defs, resource.ResourceDef{ID: nextID, Name: f.Str})
			current = &defs[len(defs)-1]
			nextID++
		case wire.TagAttributeName:
			if current == nil {
				continue
			}
			valueField, ok, err := dec.Next()
			if err != nil {
				d.protocolError(err)
				return
			}
			if !ok {
				return
			}
			current.AttrDefs = append(current.AttrDefs, attrDefFromField(f.Str, valueField))
		}
	}

	d.model.PopulateResources(defs)
	for _, def := range defs {
		d.registry.SetAttrDefs(def.Name, def.AttrDefs)
	}
	d.resourcesOK.Store(true)
	d.maybeReady()
}

// attrDefFromField infers an AttrDef's type from the ATTRIBUTE_VALUE
// payload that accompanied it in the QUERY_RESOURCES reply, and grants
// both read and write access by default — the handshake reply carries
// no separate access-bits field (spec §6 doesn't define one), so this
// mirrors the original's behavior of treating server-advertised
// attributes as read/write unless a later event narrows them.
func attrDefFromField(name string, value wire.Field) resource.AttrDef {
	def := resource.AttrDef{Name: name, Access: resource.AccessRead | resource.AccessWrite}
	switch value.Type {
	case wire.TypeString:
		def.Type = resource.AttrTypeString
		def.Default = resource.Attribute{Name: name, Type: resource.AttrTypeString, Str: value.Str}
	case wire.TypeS32:
		def.Type = resource.AttrTypeInt
		def.Default = resource.Attribute{Name: name, Type: resource.AttrTypeInt, Int: int32(value.S)}
	case wire.TypeU32:
		def.Type = resource.AttrTypeUint
		def.Default = resource.Attribute{Name: name, Type: resource.AttrTypeUint, Uint: uint32(value.U)}
	case wire.TypeDouble:
		def.Type = resource.AttrTypeFloat
		def.Default = resource.Attribute{Name: name, Type: resource.AttrTypeFloat, Float: value.F}
	}
	return def
}

// maybeReady logs once both halves of the handshake have landed (spec
// §4.D/§5 "neither implies the other"). There is no dedicated
// notify.EventType for handshake completion: callers observe readiness
// by polling resource.Model.Ready, the same way original_source's
// callers poll the context's "up" flag rather than waiting on an event.
func (d *Dispatcher) maybeReady() {
	if d.resourcesOK.Load() && d.classesOK.Load() && d.readyOnce.CompareAndSwap(false, true) {
		d.logger.Info("resource proxy handshake complete")
	}
}

func (d *Dispatcher) handleCreateReply(seqno uint32, dec *wire.Decoder) {
	s, ok := d.registry.LookupBySeqno(seqno)
	if !ok {
		d.protocolError(errors.NewProtocolError("CREATE_RESOURCE_SET reply for unknown seqno"))
		return
	}
	d.registry.UnindexSeqno(seqno)

	status, err := wire.FetchS16(dec, wire.TagRequestStatus)
	if err != nil {
		d.protocolError(err)
		return
	}

	if status != 0 {
		wireErr := errors.NewErrorFromWireStatus("create resource set", status)
		reqID, cb := s.onCreateFailed()
		ev := notify.Event{RequestID: reqID, Type: notify.EventCreateFailed, Time: time.Now(), Err: wireErr}
		if cb != nil {
			cb(ev)
		}
		d.notifier.Emit(ev)
		d.registry.DestroySet(s)
		return
	}

	serverID, err := wire.FetchU32(dec, wire.TagResourceSetID)
	if err != nil {
		d.protocolError(err)
		return
	}

	d.registry.IndexServerID(serverID, s)
	next, hasNext, destroyNow := s.onCreateOK(serverID)
	switch {
	case destroyNow:
		d.sendDestroyWire(s)
		d.registry.DestroySet(s)
	case hasNext:
		d.send(s, next)
	}
}

func (d *Dispatcher) handleEvent(dec *wire.Decoder) {
	serverID, err := wire.FetchU32(dec, wire.TagResourceSetID)
	if err != nil {
		d.protocolError(err)
		return
	}
	stateRaw, err := wire.FetchU16(dec, wire.TagResourceState)
	if err != nil {
		d.protocolError(err)
		return
	}
	grant, err := wire.FetchU32(dec, wire.TagResourceGrant)
	if err != nil {
		d.protocolError(err)
		return
	}
	advice, err := wire.FetchU32(dec, wire.TagResourceAdvice)
	if err != nil {
		d.protocolError(err)
		return
	}

	s, ok := d.registry.LookupByServerID(serverID)
	if !ok {
		d.protocolError(errors.NewProtocolError("RESOURCES_EVENT for unknown resource set"))
		return
	}
	s.bindServerID(serverID)
	d.applyEventAttributes(s, dec)

	var ev notify.Event
	var cb func(notify.Event)
	var next Op
	var hasNext bool
	switch wire.ResourceState(stateRaw) {
	case wire.StateRelease:
		ev, cb, next, hasNext = s.onReleaseEvent(grant, advice)
	default:
		ev, cb, next, hasNext = s.onGrantEvent(grant, advice)
	}
	ev.Time = time.Now()
	if cb != nil {
		cb(ev)
	}
	d.notifier.Emit(ev)
	if hasNext {
		d.send(s, next)
	}
}

func (d *Dispatcher) applyEventAttributes(s *Set, dec *wire.Decoder) {
	var currentName string
	for {
		f, ok, err := dec.Next()
		if err != nil {
			d.protocolError(err)
			return
		}
		if !ok {
			return
		}
		switch f.Tag {
		case wire.TagResourceID:
			// RESOURCE_ID precedes RESOURCE_NAME; the name is what we
			// match against s's resources.
			continue
		case wire.TagResourceName:
			currentName = f.Str
		case wire.TagAttributeName:
			if currentName == "" {
				continue
			}
			valueField, ok, err := dec.Next()
			if err != nil {
				d.protocolError(err)
				return
			}
			if !ok {
				return
			}
			def := attrDefFromField(f.Str, valueField)
			s.ApplyResourceAttribute(currentName, f.Str, def.Default)
		}
	}
}

// requestCreate enqueues (or, if nothing else is in flight, begins
// dispatching) the CREATE_RESOURCE_SET op for s.
func (d *Dispatcher) requestCreate(s *Set, resourceNames []string, requestID uint32) {
	if op, dispatchNow := s.submit(OpCreate, requestID); dispatchNow {
		d.sendCreate(s, op, resourceNames)
	}
}

// sendCreate builds and transmits the CREATE_RESOURCE_SET message for
// s once it has won the single-flight gate.
func (d *Dispatcher) sendCreate(s *Set, op Op, resourceNames []string) {
	seqno := d.nextSeqno()
	d.registry.IndexSeqno(seqno, s)

	class, zone, autoRelease, dontWait, priority := s.CreateParams()

	var flags wire.ResourceSetFlag
	if autoRelease {
		flags |= wire.ResourceSetFlagAutoRelease
	}
	if dontWait {
		flags |= wire.ResourceSetFlagDontWait
	}

	b := wire.NewMessage(seqno, wire.ReqCreateResourceSet).
		ResourceFlags(uint32(flags)).
		ResourcePriority(priority).
		ClassName(class).
		ZoneName(zone)

	resources := make([]resource.Resource, 0, len(resourceNames))
	for _, name := range resourceNames {
		def, _ := d.model.ResourceByName(name)
		resources = append(resources, resource.Resource{Def: def})

		var resFlags wire.ResourceFlag
		if def.Shareable {
			resFlags |= wire.ResourceFlagShared
		}
		b = b.ResourceName(name).ResourceFlags(uint32(resFlags)).SectionEnd()
	}
	s.SetResources(resources)

	frame := b.End()
	d.sendRaw(s, frame, "CREATE_RESOURCE_SET")
}

func (d *Dispatcher) requestAcquire(s *Set, requestID uint32) {
	if op, dispatchNow := s.submit(OpAcquire, requestID); dispatchNow {
		d.send(s, op)
	}
}

func (d *Dispatcher) requestRelease(s *Set, requestID uint32) {
	if op, dispatchNow := s.submit(OpRelease, requestID); dispatchNow {
		d.send(s, op)
	}
}

// send builds the wire message for a dispatched (non-create) op and
// transmits it.
func (d *Dispatcher) send(s *Set, op Op) {
	seqno := d.nextSeqno()

	var reqType wire.RequestType
	switch op.Kind {
	case OpAcquire:
		reqType = wire.ReqAcquireResourceSet
	case OpRelease:
		reqType = wire.ReqReleaseResourceSet
	default:
		d.protocolError(errors.NewProtocolError("send: unsupported op kind"))
		return
	}

	frame := wire.NewMessage(seqno, reqType).
		ResourceSetID(s.ServerID()).
		End()
	d.sendRaw(s, frame, reqType.String())
}

func (d *Dispatcher) requestDestroy(s *Set) {
	if s.requestDestroy() {
		d.sendDestroyWire(s)
		d.registry.DestroySet(s)
	}
}

// sendDestroyWire transmits DESTROY_RESOURCE_SET for an already-
// initialized set. There is no reply shape for destroy in spec §6: it
// is fire-and-forget from the proxy's perspective.
func (d *Dispatcher) sendDestroyWire(s *Set) {
	seqno := d.nextSeqno()
	frame := wire.NewMessage(seqno, wire.ReqDestroyResourceSet).
		ResourceSetID(s.ServerID()).
		End()
	d.sendRaw(s, frame, "DESTROY_RESOURCE_SET")
}

func (d *Dispatcher) sendRaw(s *Set, frame []byte, label string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.transport.Send(ctx, frame); err != nil {
		logging.LogError(d.logger, err, "send "+label)
		d.metrics.RecordError(label, err)
		return
	}
	d.metrics.RecordDispatch(label)
}
