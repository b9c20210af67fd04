// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"github.com/google/uuid"

	"github.com/murphyproxy/resource-proxy/pkg/errors"
	"github.com/murphyproxy/resource-proxy/pkg/notify"
)

// Client is one local "resource client" record: the unique owner of
// zero or more proxy Sets. Each Client gets a uuid.New() identity
// (spec §4.F "client uniquely owns its resource-client record"); the
// id is used purely for registry lookups and pkg/debug introspection
// — the wire protocol's own correlation key stays the spec'd u32
// sequence number (UUIDs never appear on the wire).
type Client struct {
	ID         string
	Name       string
	registry   *Registry
	dispatcher *Dispatcher
}

// NewClient registers a new resource client against registry, sending
// its requests through dispatcher.
func NewClient(registry *Registry, dispatcher *Dispatcher, name string) *Client {
	return &Client{
		ID:         uuid.NewString(),
		Name:       name,
		registry:   registry,
		dispatcher: dispatcher,
	}
}

// CreateSet creates a new proxy resource set under this client,
// requesting class/zone and the named resources from the master. It
// returns immediately (spec §5 "Suspension points": the call doesn't
// block on the wire round-trip); eventCB is invoked later, from the
// dispatcher's receive loop, once the server responds.
func (c *Client) CreateSet(class, zone string, resourceNames []string, autoRelease, dontWait bool, priority, requestID uint32, eventCB func(notify.Event)) (*Set, error) {
	if class == "" {
		return nil, errors.NewInvalidArgError("class is required", "class", class)
	}
	if zone == "" {
		zone = c.dispatcher.defaultZone
	}

	s := c.registry.CreateSet(c.ID, class, zone)
	s.Configure(autoRelease, dontWait, priority, eventCB)

	c.dispatcher.requestCreate(s, resourceNames, requestID)
	return s, nil
}

// Acquire enqueues an ACQUIRE operation on s. The callback registered
// at CreateSet time is fired with requestID once the server grants or
// denies the request.
func (c *Client) Acquire(s *Set, requestID uint32) error {
	if s.State() == StateTerminal {
		return errors.NewInvalidArgError("resource set is destroyed", "local_id", s.LocalID())
	}
	c.dispatcher.requestAcquire(s, requestID)
	return nil
}

// Release enqueues a RELEASE operation on s.
func (c *Client) Release(s *Set, requestID uint32) error {
	if s.State() == StateTerminal {
		return errors.NewInvalidArgError("resource set is destroyed", "local_id", s.LocalID())
	}
	c.dispatcher.requestRelease(s, requestID)
	return nil
}

// Destroy tears down s: sends DESTROY to the master if the set
// finished its create handshake, or defers it until that handshake
// completes, then removes s from every registry index (spec §4.E
// "destroy" row).
func (c *Client) Destroy(s *Set) error {
	c.dispatcher.requestDestroy(s)
	return nil
}

// DestroyAll tears down every resource set this client owns, per spec
// §4.F "destroy_client walks all resource sets the client owns".
func (c *Client) DestroyAll() {
	c.registry.DestroyClient(c.ID, func(s *Set) {
		c.dispatcher.sendDestroyWire(s)
	})
}
