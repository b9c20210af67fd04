// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package murphyproxy

import (
	"time"

	"github.com/murphyproxy/resource-proxy/pkg/config"
	"github.com/murphyproxy/resource-proxy/pkg/logging"
	"github.com/murphyproxy/resource-proxy/pkg/metrics"
	"github.com/murphyproxy/resource-proxy/pkg/retry"
	"github.com/murphyproxy/resource-proxy/pkg/transport"
)

// options collects every knob NewClient accepts. It plays the role the
// teacher's factory.ClientFactory does, simplified to a single struct
// since this domain has no multi-version client factory to build
// (DESIGN.md "root package murphyproxy").
type options struct {
	cfg       *config.Config
	transport transport.Transport
	backoff   retry.BackoffStrategy
	logger    logging.Logger
	collector metrics.Collector
}

// Option configures a Client constructed by NewClient.
type Option func(*options) error

func defaultOptions() *options {
	return &options{cfg: config.NewDefault()}
}

// WithMasterAddress sets the address the transport dials to reach the
// murphy master daemon, overriding MURPHY_MASTER_ADDR.
func WithMasterAddress(address string) Option {
	return func(o *options) error {
		o.cfg.MasterAddress = address
		return nil
	}
}

// WithZone sets the default zone name used for resource sets that
// don't specify one explicitly, overriding MURPHY_ZONE.
func WithZone(zone string) Option {
	return func(o *options) error {
		o.cfg.Zone = zone
		return nil
	}
}

// WithDialTimeout bounds the initial transport connection attempt.
func WithDialTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		o.cfg.DialTimeout = timeout
		return nil
	}
}

// WithReconnectBackoff sets Config.ReconnectBackoffMin/Max, which
// Validate checks. The client does not redial after the transport
// drops, and nothing reads these values.
func WithReconnectBackoff(min, max time.Duration) Option {
	return func(o *options) error {
		o.cfg.ReconnectBackoffMin = min
		o.cfg.ReconnectBackoffMax = max
		return nil
	}
}

// WithBackoffStrategy overrides the retry.BackoffStrategy used for
// dial attempts, in place of the default exponential backoff.
func WithBackoffStrategy(backoff retry.BackoffStrategy) Option {
	return func(o *options) error {
		o.backoff = backoff
		return nil
	}
}

// WithTransport overrides the transport the client dials through,
// bypassing the built-in WebSocket transport entirely. Tests use this
// to substitute a fake transport.Transport.
func WithTransport(t transport.Transport) Option {
	return func(o *options) error {
		o.transport = t
		return nil
	}
}

// WithLogger sets a custom structured logger for the client.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithMetricsCollector sets a custom metrics collector for the client.
func WithMetricsCollector(collector metrics.Collector) Option {
	return func(o *options) error {
		o.collector = collector
		return nil
	}
}

// WithDebug sets Config.Debug, overriding MURPHY_DEBUG. The client does
// not read the flag; log output depends only on the Logger set with
// WithLogger.
func WithDebug(enabled bool) Option {
	return func(o *options) error {
		o.cfg.Debug = enabled
		return nil
	}
}

// WithConfig replaces the client's configuration outright, bypassing
// environment-variable defaults entirely.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		o.cfg = cfg
		return nil
	}
}
