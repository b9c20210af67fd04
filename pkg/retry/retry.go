// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"
	stderrors "errors"
	"net"
)

// IsRetryableDialError reports whether a failed dial attempt to the
// master should be retried. Context cancellation and deadline expiry are
// never retryable; everything else coming out of net.Dial is presumed
// transient.
func IsRetryableDialError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	select {
	case <-ctx.Done():
		return false
	default:
	}

	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	return true
}

// DialWithBackoff attempts dial repeatedly using backoff until it
// succeeds, the context is done, or backoff gives up. It governs only the
// transport connection attempt — in-flight
// requests are never retried, they stay queued FIFO on their resource set.
func DialWithBackoff(ctx context.Context, backoff BackoffStrategy, dial func(context.Context) error) error {
	return Retry(ctx, backoff, func() error {
		return dial(ctx)
	})
}
