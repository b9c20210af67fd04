// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

// This file re-exports the internal/proxy and pkg/notify types callers
// actually touch, the way the teacher's interfaces.go re-exports
// pkg/types as aliases rather than duplicating struct definitions.
package murphyproxy

import (
	"github.com/murphyproxy/resource-proxy/internal/proxy"
	"github.com/murphyproxy/resource-proxy/pkg/notify"
)

// ResourceClient is one local resource client: the owner of zero or
// more resource sets, created via Client.NewResourceClient.
type ResourceClient = proxy.Client

// ResourceSet is a single proxy-tracked resource set returned by
// ResourceClient.CreateSet.
type ResourceSet = proxy.Set

// SetState is the resource set lifecycle state spec §4.E describes.
type SetState = proxy.State

const (
	SetStateFresh     = proxy.StateFresh
	SetStateCreating  = proxy.StateCreating
	SetStateIdle      = proxy.StateIdle
	SetStateAcquiring = proxy.StateAcquiring
	SetStateReleasing = proxy.StateReleasing
	SetStateTerminal  = proxy.StateTerminal
)

// Event is delivered to a resource set's registered callback, or read
// from the channel returned by Client.Watch.
type Event = notify.Event

// EventType distinguishes the kinds of Event a Client delivers.
type EventType = notify.EventType

const (
	EventGrant        = notify.EventGrant
	EventRelease      = notify.EventRelease
	EventCreateFailed = notify.EventCreateFailed
	EventDisconnected = notify.EventDisconnected
)
