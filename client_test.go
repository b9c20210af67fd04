// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package murphyproxy

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murphyproxy/resource-proxy/pkg/transport"
	"github.com/murphyproxy/resource-proxy/pkg/wire"
)

// fakeTransport is a minimal in-memory transport.Transport, standing
// in for a dialed connection to the murphy master so NewClient can be
// exercised without a real socket.
type fakeTransport struct {
	mu       sync.Mutex
	dialed   bool
	closed   bool
	sent     [][]byte
	incoming chan []byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{incoming: make(chan []byte, 16)}
}

func (f *fakeTransport) Dial(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dialed = true
	return nil
}

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

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestNewClient_DialsAndSendsHandshake(t *testing.T) {
	tr := newFakeTransport()
	client, err := NewClient(context.Background(),
		WithMasterAddress("tcp:localhost:4000"),
		WithTransport(tr),
	)
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, tr.dialed)
	assert.Equal(t, 2, tr.sentCount(), "QUERY_CLASSES and QUERY_RESOURCES are sent up front")
	assert.False(t, client.Ready(), "no replies have arrived yet")
}

func TestNewClient_InvalidConfigIsRejected(t *testing.T) {
	_, err := NewClient(context.Background(), WithMasterAddress(""))
	assert.Error(t, err)
}

func TestClient_BecomesReadyOnceHandshakeReplies(t *testing.T) {
	tr := newFakeTransport()
	client, err := NewClient(context.Background(),
		WithMasterAddress("tcp:localhost:4000"),
		WithTransport(tr),
	)
	require.NoError(t, err)
	defer client.Close()

	tr.incoming <- wire.NewMessage(1, wire.ReqQueryClasses).
		Status(0).
		ClassNames([]string{"player"}).
		End()
	tr.incoming <- wire.NewMessage(2, wire.ReqQueryResources).
		Status(0).
		ResourceName("audio_playback").
		End()

	require.Eventually(t, client.Ready, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"player"}, client.ClassNames())
	assert.Equal(t, []string{"audio_playback"}, client.ResourceNames())
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	tr := newFakeTransport()
	client, err := NewClient(context.Background(),
		WithMasterAddress("tcp:localhost:4000"),
		WithTransport(tr),
	)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}

func TestClient_WatchReceivesDisconnectedOnTransportClosure(t *testing.T) {
	tr := newFakeTransport()
	client, err := NewClient(context.Background(),
		WithMasterAddress("tcp:localhost:4000"),
		WithTransport(tr),
	)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := client.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, tr.Close())

	select {
	case ev := <-events:
		assert.Equal(t, EventDisconnected, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch channel never observed disconnect")
	}
}

func TestClient_DebugServerReportsStatus(t *testing.T) {
	tr := newFakeTransport()
	client, err := NewClient(context.Background(),
		WithMasterAddress("tcp:localhost:4000"),
		WithTransport(tr),
	)
	require.NoError(t, err)
	defer client.Close()

	srv := client.DebugServer()
	require.NotNil(t, srv)
	require.NotNil(t, srv.Handler())
}
