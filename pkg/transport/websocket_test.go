// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murphyproxy/resource-proxy/pkg/retry"
)

// newEchoServer starts a WebSocket server that echoes every binary
// message it receives back to the client, standing in for the master
// daemon in these tests.
func newEchoServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType == websocket.BinaryMessage {
				if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
					return
				}
			}
		}
	}))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/murphy"
	return srv, wsURL
}

func TestWebSocketTransport_DialSendReceive(t *testing.T) {
	srv, wsURL := newEchoServer(t)
	defer srv.Close()

	tr := New(Config{
		MasterAddress: wsURL,
		DialTimeout:   time.Second,
		Backoff:       retry.NewConstantBackoff(10*time.Millisecond, 3),
	})
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, tr.Dial(ctx))

	frame := []byte{0x01, 0x02, 0x03}
	require.NoError(t, tr.Send(ctx, frame))

	got, err := tr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, frame, got)
}

func TestWebSocketTransport_CloseBeforeDialIsNoop(t *testing.T) {
	tr := New(Config{MasterAddress: "tcp:localhost:1"})
	assert.NoError(t, tr.Close())
}

func TestWebSocketTransport_SendAfterCloseErrors(t *testing.T) {
	srv, wsURL := newEchoServer(t)
	defer srv.Close()

	tr := New(Config{
		MasterAddress: wsURL,
		DialTimeout:   time.Second,
		Backoff:       retry.NewConstantBackoff(10*time.Millisecond, 1),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, tr.Dial(ctx))
	require.NoError(t, tr.Close())

	err := tr.Send(ctx, []byte{0x01})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWebSocketTransport_OnDisconnectFiresOnServerClose(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/murphy"

	disconnected := make(chan struct{})
	tr := New(Config{
		MasterAddress: wsURL,
		DialTimeout:   time.Second,
		Backoff:       retry.NewConstantBackoff(10*time.Millisecond, 1),
		OnDisconnect:  func() { close(disconnected) },
	})
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, tr.Dial(ctx))

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("OnDisconnect was not called")
	}
}

func TestResolveWebSocketURL(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "tcp:localhost:4000", want: "ws://localhost:4000/murphy"},
		{in: "ws://localhost:4000/murphy", want: "ws://localhost:4000/murphy"},
		{in: "", wantErr: true},
		{in: "unix:/tmp/murphy.sock", wantErr: true},
		{in: "tcp:", wantErr: true},
	}

	for _, c := range cases {
		got, err := resolveWebSocketURL(c.in)
		if c.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}
