// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package murphyproxy

import (
	"context"
	"fmt"
	"sync"

	"github.com/murphyproxy/resource-proxy/internal/proxy"
	"github.com/murphyproxy/resource-proxy/pkg/cson"
	"github.com/murphyproxy/resource-proxy/pkg/debug"
	"github.com/murphyproxy/resource-proxy/pkg/logging"
	"github.com/murphyproxy/resource-proxy/pkg/metrics"
	"github.com/murphyproxy/resource-proxy/pkg/notify"
	"github.com/murphyproxy/resource-proxy/pkg/resource"
	"github.com/murphyproxy/resource-proxy/pkg/transport"
)

// Client is a connected resource proxy client: one transport
// connection to the murphy master, the shared resource/class model it
// populates, and the registry + dispatcher every ResourceClient
// created from it shares.
type Client struct {
	logger    logging.Logger
	collector metrics.Collector

	transport  transport.Transport
	registry   *proxy.Registry
	model      *resource.Model
	notifier   *notify.Notifier
	dispatcher *proxy.Dispatcher
	symbols    *cson.Table

	runCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewClient dials the murphy master and performs the initial
// QUERY_CLASSES/QUERY_RESOURCES handshake, returning once the
// transport connection is established (not once the handshake reply
// arrives — that happens asynchronously and is observed by polling
// Client.Ready, per spec §5's suspension-point discipline).
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("murphyproxy: applying option: %w", err)
		}
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("murphyproxy: invalid configuration: %w", err)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	collector := o.collector
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}

	t := o.transport
	if t == nil {
		t = transport.New(transport.Config{
			MasterAddress: o.cfg.MasterAddress,
			DialTimeout:   o.cfg.DialTimeout,
			Backoff:       o.backoff,
			Logger:        logger,
		})
	}

	if err := t.Dial(ctx); err != nil {
		return nil, fmt.Errorf("murphyproxy: dial master: %w", err)
	}

	registry := proxy.NewRegistry()
	model := resource.NewModel(o.cfg.Zone)
	notifier := notify.New()
	dispatcher := proxy.NewDispatcher(t, registry, model, notifier, logger, collector, o.cfg.Zone)

	runCtx, cancel := context.WithCancel(context.Background())
	go dispatcher.Run(runCtx)

	c := &Client{
		logger:     logger,
		collector:  collector,
		transport:  t,
		registry:   registry,
		model:      model,
		notifier:   notifier,
		dispatcher: dispatcher,
		symbols:    cson.NewTableWithLogger(logger),
		runCancel:  cancel,
	}

	if err := dispatcher.SendHandshake(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("murphyproxy: initial handshake: %w", err)
	}

	return c, nil
}

// NewResourceClient registers a new local resource client under this
// connection, identified to the proxy's own debug surface by name.
func (c *Client) NewResourceClient(name string) *ResourceClient {
	return proxy.NewClient(c.registry, c.dispatcher, name)
}

// Ready reports whether both halves of the initial handshake have
// completed (spec §5 "neither implies the other").
func (c *Client) Ready() bool {
	return c.model.Ready()
}

// ClassNames returns the application class names the master
// advertised.
func (c *Client) ClassNames() []string { return c.model.ClassNames() }

// ZoneNames returns this proxy's own configured zone.
func (c *Client) ZoneNames() []string { return c.model.ZoneNames() }

// ResourceNames returns the resource names the master advertised.
func (c *Client) ResourceNames() []string { return c.model.ResourceNames() }

// Watch returns a channel of Events for every resource set created
// through this connection, closed when ctx is canceled or the client
// is closed.
func (c *Client) Watch(ctx context.Context) (<-chan Event, error) {
	return c.notifier.Watch(ctx)
}

// DebugServer returns a debug.Server exposing /status, /resourcesets
// and /symbols for this connection (spec §1/§4 "Debug introspection
// endpoint"). Callers mount DebugServer().Handler() themselves, e.g.
// via http.ListenAndServe.
func (c *Client) DebugServer() *debug.Server {
	return debug.NewServer(c.registry, c.model, c.symbols, c.collector)
}

// Close tears down the dispatcher loop, the notifier and the
// underlying transport. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.runCancel()
	c.notifier.Close()
	return c.transport.Close()
}
