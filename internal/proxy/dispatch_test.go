// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murphyproxy/resource-proxy/pkg/logging"
	"github.com/murphyproxy/resource-proxy/pkg/metrics"
	"github.com/murphyproxy/resource-proxy/pkg/notify"
	"github.com/murphyproxy/resource-proxy/pkg/resource"
	"github.com/murphyproxy/resource-proxy/pkg/transport"
	"github.com/murphyproxy/resource-proxy/pkg/wire"
)

// fakeTransport is an in-memory transport.Transport standing in for
// the master daemon: Send records every outgoing frame, and frames
// pushed via push() are what Receive hands back, the way the deleted
// REST mock server used to stand in for a real SLURM endpoint.
type fakeTransport struct {
	mu       sync.Mutex
	sent     [][]byte
	incoming chan []byte
	closed   bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{incoming: make(chan []byte, 16)}
}

func (f *fakeTransport) Dial(ctx context.Context) error { return nil }

func (f *fakeTransport) Send(ctx context.Context, frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return transport.ErrClosed
	}
	f.sent = append(f.sent, append([]byte(nil), frame...))
	return nil
}

func (f *fakeTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame, ok := <-f.incoming:
		if !ok {
			return nil, transport.ErrClosed
		}
		return frame, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.incoming)
	}
	return nil
}

func (f *fakeTransport) push(frame []byte) { f.incoming <- frame }

func (f *fakeTransport) sentFrames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeTransport) lastSent() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

// frameHeader decodes just the SEQUENCE_NO/REQUEST_TYPE every frame
// leads with.
func frameHeader(t *testing.T, frame []byte) (uint32, wire.RequestType) {
	t.Helper()
	dec := wire.NewDecoder(frame)
	seqno, err := wire.FetchU32(dec, wire.TagSequenceNo)
	require.NoError(t, err)
	reqType, err := wire.FetchU16(dec, wire.TagRequestType)
	require.NoError(t, err)
	return seqno, wire.RequestType(reqType)
}

func newTestDispatcher(t *testing.T, tr transport.Transport) (*Dispatcher, *Registry, *resource.Model, *notify.Notifier) {
	t.Helper()
	registry := NewRegistry()
	model := resource.NewModel("zone0")
	notifier := notify.New()
	d := NewDispatcher(tr, registry, model, notifier, logging.NoOpLogger{}, metrics.NoOpCollector{}, "zone0")
	return d, registry, model, notifier
}

func TestSendHandshake_SendsClassesThenResourcesWithDistinctSeqnos(t *testing.T) {
	tr := newFakeTransport()
	d, _, _, _ := newTestDispatcher(t, tr)

	require.NoError(t, d.SendHandshake(context.Background()))

	frames := tr.sentFrames()
	require.Len(t, frames, 2)

	seq1, type1 := frameHeader(t, frames[0])
	seq2, type2 := frameHeader(t, frames[1])

	assert.Equal(t, wire.ReqQueryClasses, type1)
	assert.Equal(t, wire.ReqQueryResources, type2)
	assert.NotEqual(t, seq1, seq2)
}

func TestHandleFrame_HandshakeRepliesPopulateModelAndReady(t *testing.T) {
	tr := newFakeTransport()
	d, _, model, _ := newTestDispatcher(t, tr)

	assert.False(t, model.Ready())

	classesReply := wire.NewMessage(1, wire.ReqQueryClasses).
		Status(0).
		ClassNames([]string{"player", "navigator"}).
		End()
	d.handleFrame(classesReply)
	assert.False(t, model.Ready(), "resources half hasn't landed yet")

	resourcesReply := wire.NewMessage(2, wire.ReqQueryResources).
		Status(0).
		ResourceName("audio_playback").
		AttributeString("role", "music").
		End()
	d.handleFrame(resourcesReply)

	assert.True(t, model.Ready())
	assert.ElementsMatch(t, []string{"player", "navigator"}, model.ClassNames())
	assert.ElementsMatch(t, []string{"audio_playback"}, model.ResourceNames())

	def, ok := model.ResourceByName("audio_playback")
	require.True(t, ok)
	require.Len(t, def.AttrDefs, 1)
	assert.Equal(t, "role", def.AttrDefs[0].Name)
	assert.Equal(t, resource.AttrTypeString, def.AttrDefs[0].Type)
}

func TestHandleFrame_MultipleResourcesInOneReply(t *testing.T) {
	tr := newFakeTransport()
	d, _, model, _ := newTestDispatcher(t, tr)

	resourcesReply := wire.NewMessage(1, wire.ReqQueryResources).
		Status(0).
		ResourceName("audio_playback").
		AttributeString("role", "music").
		ResourceName("audio_recording").
		AttributeU32("channels", 2).
		End()
	d.handleFrame(resourcesReply)

	assert.ElementsMatch(t, []string{"audio_playback", "audio_recording"}, model.ResourceNames())
	rec, ok := model.ResourceByName("audio_recording")
	require.True(t, ok)
	require.Len(t, rec.AttrDefs, 1)
	assert.Equal(t, "channels", rec.AttrDefs[0].Name)
	assert.Equal(t, resource.AttrTypeUint, rec.AttrDefs[0].Type)
}

func TestCreateSet_SuccessTransitionsFreshToIdle(t *testing.T) {
	tr := newFakeTransport()
	d, registry, model, _ := newTestDispatcher(t, tr)
	model.PopulateResources([]resource.ResourceDef{{ID: 1, Name: "audio_playback"}})

	rc := NewClient(registry, d, "player-app")

	var events []notify.Event
	set, err := rc.CreateSet("player", "", []string{"audio_playback"}, false, false, 0, 7, func(ev notify.Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	assert.Equal(t, StateCreating, set.State())

	frame := tr.lastSent()
	seqno, reqType := frameHeader(t, frame)
	assert.Equal(t, wire.ReqCreateResourceSet, reqType)

	reply := wire.NewMessage(seqno, wire.ReqCreateResourceSet).
		Status(0).
		ResourceSetID(42).
		End()
	d.handleFrame(reply)

	assert.Equal(t, StateIdle, set.State())
	assert.Equal(t, uint32(42), set.ServerID())
	assert.True(t, set.Initialized())
	assert.Empty(t, events, "create completion has no dedicated event type")

	found, ok := registry.LookupByServerID(42)
	require.True(t, ok)
	assert.Same(t, set, found)
}

func TestCreateSet_FailureMarksTerminalAndFiresCallback(t *testing.T) {
	tr := newFakeTransport()
	d, registry, model, _ := newTestDispatcher(t, tr)
	model.PopulateResources([]resource.ResourceDef{{ID: 1, Name: "audio_playback"}})

	rc := NewClient(registry, d, "player-app")

	var events []notify.Event
	set, err := rc.CreateSet("player", "", []string{"audio_playback"}, false, false, 0, 9, func(ev notify.Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	frame := tr.lastSent()
	seqno, _ := frameHeader(t, frame)

	reply := wire.NewMessage(seqno, wire.ReqCreateResourceSet).Status(-1).End()
	d.handleFrame(reply)

	assert.Equal(t, StateTerminal, set.State())
	require.Len(t, events, 1)
	assert.Equal(t, uint32(9), events[0].RequestID)
	assert.Equal(t, notify.EventCreateFailed, events[0].Type)
	require.Error(t, events[0].Err)

	_, ok := registry.LookupByLocalID(set.LocalID())
	assert.False(t, ok, "failed set is removed from the registry")
}

func TestAcquireQueuedWhileCreatingDrainsAfterCreateOK(t *testing.T) {
	tr := newFakeTransport()
	d, registry, model, _ := newTestDispatcher(t, tr)
	model.PopulateResources([]resource.ResourceDef{{ID: 1, Name: "audio_playback"}})

	rc := NewClient(registry, d, "player-app")
	set, err := rc.CreateSet("player", "", []string{"audio_playback"}, false, false, 0, 1, nil)
	require.NoError(t, err)

	require.NoError(t, rc.Acquire(set, 2))
	assert.True(t, set.InProgress(), "acquire enqueued behind the in-flight create")
	assert.Equal(t, StateCreating, set.State(), "acquire must not jump the queue ahead of create")

	createFrame := tr.lastSent()
	seqno, _ := frameHeader(t, createFrame)
	d.handleFrame(wire.NewMessage(seqno, wire.ReqCreateResourceSet).Status(0).ResourceSetID(5).End())

	assert.Equal(t, StateAcquiring, set.State(), "queued acquire dispatched once create completed")
	acquireFrame := tr.lastSent()
	_, acquireType := frameHeader(t, acquireFrame)
	assert.Equal(t, wire.ReqAcquireResourceSet, acquireType)
}

func TestHandleEvent_GrantTransitionsAcquiringToIdleWithOriginalRequestID(t *testing.T) {
	tr := newFakeTransport()
	d, registry, model, _ := newTestDispatcher(t, tr)
	model.PopulateResources([]resource.ResourceDef{{ID: 1, Name: "audio_playback"}})

	rc := NewClient(registry, d, "player-app")
	set, err := rc.CreateSet("player", "", []string{"audio_playback"}, false, false, 0, 1, nil)
	require.NoError(t, err)
	createFrame := tr.lastSent()
	seqno, _ := frameHeader(t, createFrame)
	d.handleFrame(wire.NewMessage(seqno, wire.ReqCreateResourceSet).Status(0).ResourceSetID(11).End())

	var events []notify.Event
	set.SetEventCB(func(ev notify.Event) { events = append(events, ev) })

	require.NoError(t, rc.Acquire(set, 77))

	event := wire.NewMessage(99, wire.ReqResourcesEvent).
		ResourceSetID(11).
		ResourceState(wire.StateAcquire).
		ResourceGrant(0x1).
		ResourceAdvice(0x0).
		End()
	d.handleFrame(event)

	assert.Equal(t, StateIdle, set.State())
	require.Len(t, events, 1)
	assert.Equal(t, uint32(77), events[0].RequestID)
	assert.Equal(t, notify.EventGrant, events[0].Type)
	assert.Equal(t, uint32(0x1), events[0].GrantMask)
}

func TestHandleEvent_UnknownServerIDIsProtocolErrorNotPanic(t *testing.T) {
	tr := newFakeTransport()
	d, _, _, _ := newTestDispatcher(t, tr)

	event := wire.NewMessage(1, wire.ReqResourcesEvent).
		ResourceSetID(404).
		ResourceState(wire.StateAcquire).
		ResourceGrant(0).
		ResourceAdvice(0).
		End()

	assert.NotPanics(t, func() { d.handleFrame(event) })
}

func TestDestroy_BeforeCreateCompletesIsDeferred(t *testing.T) {
	tr := newFakeTransport()
	d, registry, model, _ := newTestDispatcher(t, tr)
	model.PopulateResources([]resource.ResourceDef{{ID: 1, Name: "audio_playback"}})

	rc := NewClient(registry, d, "player-app")
	set, err := rc.CreateSet("player", "", []string{"audio_playback"}, false, false, 0, 1, nil)
	require.NoError(t, err)

	require.NoError(t, rc.Destroy(set))
	sentBeforeCreateOK := len(tr.sentFrames())

	createFrame := tr.sentFrames()[0]
	seqno, _ := frameHeader(t, createFrame)
	d.handleFrame(wire.NewMessage(seqno, wire.ReqCreateResourceSet).Status(0).ResourceSetID(3).End())

	assert.Equal(t, StateTerminal, set.State())
	assert.Greater(t, len(tr.sentFrames()), sentBeforeCreateOK, "deferred DESTROY is sent once the set initializes")
	_, ok := registry.LookupByLocalID(set.LocalID())
	assert.False(t, ok)
}

func TestRun_TransportErrorNotifiesDisconnected(t *testing.T) {
	tr := newFakeTransport()
	d, _, _, notifier := newTestDispatcher(t, tr)

	ch, err := notifier.Watch(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	require.NoError(t, tr.Close())

	select {
	case ev := <-ch:
		assert.Equal(t, notify.EventDisconnected, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("NotifyDisconnected was not observed")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after transport closed")
	}
}

func TestBindServerID_OnlyFillsZeroValue(t *testing.T) {
	s := newSet("client", 1, "player", "zone0")
	s.bindServerID(5)
	assert.Equal(t, uint32(5), s.ServerID())

	s.bindServerID(9)
	assert.Equal(t, uint32(5), s.ServerID(), "an already-bound server id is never overwritten")
}
