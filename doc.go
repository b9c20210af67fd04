// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

/*
Package murphyproxy is a Go client for the Murphy resource proxy
protocol: a stateful bridge between local application resource
clients and a remote policy master, mediating exclusive and shared
access to named, shareable resources across application classes and
zones.

# Overview

The proxy speaks a length-tagged binary protocol to the master (see
pkg/wire), tracks every resource set it creates through a small state
machine (internal/proxy), and exposes a CSON-style reference-counted
value container (pkg/cson) for symbol-interned, Bloom-accelerated
attribute payloads. This package wires those pieces into a single
client handle plus functional options, the way the teacher's
client.go/client_options.go pair do.

# Basic usage

	client, err := murphyproxy.NewClient(ctx,
	    murphyproxy.WithMasterAddress("ws://master.example.com:8700"),
	    murphyproxy.WithZone("zone0"),
	)
	if err != nil {
	    log.Fatal(err)
	}
	defer client.Close()

	rc := client.NewResourceClient("player")
	events := make(chan murphyproxy.Event, 8)
	set, err := rc.CreateSet("player", "", []string{"audio_playback"}, false, false, 0, 1,
	    func(ev murphyproxy.Event) { events <- ev })
	if err != nil {
	    log.Fatal(err)
	}
	_ = rc.Acquire(set, 2)
	ev := <-events // EventGrant, RequestID == 2

# Environment variables

  - MURPHY_MASTER_ADDR: default master address
  - MURPHY_ZONE: default zone name
  - MURPHY_DEBUG: sets Config.Debug; log output does not depend on it

# Thread safety

Client, ResourceClient and ResourceSet handles are safe for concurrent
use; the dispatcher's single receive loop serializes all server-driven
state transitions.
*/
package murphyproxy
