// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

// Package transport provides the client's connection to the murphy
// master daemon: the external collaborator referenced but not
// specified by the core (§1, §6). The wire codec (pkg/wire) stays
// transport-agnostic; this package supplies the concrete byte pipe.
package transport

import (
	"context"
	"errors"
)

// ErrClosed is returned by Send/Receive once Close has been called.
var ErrClosed = errors.New("transport: closed")

// Transport moves already-encoded TLV frames to and from the master.
// It owns exactly one suspension point per spec §5: the transport
// send/receive boundary. Dial may be called again after Close to
// reconnect; implementations are not required to be reusable after a
// Receive error other than via a fresh Dial.
type Transport interface {
	// Dial establishes the connection, retrying per the supplied
	// backoff policy until it succeeds or ctx is done.
	Dial(ctx context.Context) error

	// Send writes one complete frame. Frames are never fragmented or
	// merged; each call corresponds to exactly one wire message.
	Send(ctx context.Context, frame []byte) error

	// Receive blocks until one complete frame arrives, ctx is done, or
	// the transport is closed.
	Receive(ctx context.Context) ([]byte, error)

	// Close releases the underlying connection. Safe to call more than
	// once.
	Close() error
}

// DisconnectFunc is invoked once when a previously dialed transport's
// connection is lost through a read or keepalive-ping error; an
// explicit Close does not invoke it. It is the transport's half of the core's closed_evt → Disconnected
// notification path (§5); pkg/notify.Notifier.NotifyDisconnected is a
// typical DisconnectFunc target.
type DisconnectFunc func()
