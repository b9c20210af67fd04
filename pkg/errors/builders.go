// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"context"
	stderrors "errors"
	"net"
	"net/url"
	"strings"
)

// WrapError converts a generic error into a structured ProxyError. If err is
// already a *ProxyError it is returned unchanged.
func WrapError(err error) *ProxyError {
	if err == nil {
		return nil
	}

	var proxyErr *ProxyError
	if stderrors.As(err, &proxyErr) {
		return proxyErr
	}

	if stderrors.Is(err, context.Canceled) {
		return NewProxyErrorWithCause(ErrorCodeContextCanceled, "operation was canceled", err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewProxyErrorWithCause(ErrorCodeDeadlineExceeded, "operation timed out", err)
	}

	if netErr := classifyNetworkError(err); netErr != nil {
		return netErr
	}

	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		return classifyURLError(urlErr)
	}

	return NewProxyErrorWithCause(ErrorCodeUnknown, err.Error(), err)
}

// classifyNetworkError identifies transport-level failures and wraps them
// as Io errors. Dial failures, resets and timeouts on the transport
// connection all surface this way regardless of which concrete transport
// is in use.
func classifyNetworkError(err error) *ProxyError {
	if err == nil {
		return nil
	}

	// context errors also satisfy net.Error with Timeout() == true, so they
	// must be checked first.
	if stderrors.Is(err, context.Canceled) {
		return NewProxyErrorWithCause(ErrorCodeContextCanceled, "operation was canceled", err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewProxyErrorWithCause(ErrorCodeDeadlineExceeded, "operation deadline exceeded", err)
	}

	errStr := err.Error()

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewIOError("network operation timed out", err)
		}
		if strings.Contains(errStr, "connection reset") ||
			strings.Contains(errStr, "broken pipe") ||
			strings.Contains(errStr, "network is unreachable") {
			return NewIOError("transport connection lost", err)
		}
	}

	switch {
	case strings.Contains(errStr, "connection refused"):
		return NewIOError("connection refused by master", err)
	case strings.Contains(errStr, "no such host"):
		return NewIOError("master address could not be resolved", err)
	case strings.Contains(errStr, "timeout"):
		return NewIOError("network timeout", err)
	case strings.Contains(errStr, "tls"), strings.Contains(errStr, "certificate"):
		return NewIOError("tls handshake failed", err)
	}

	var opErr *net.OpError
	if stderrors.As(err, &opErr) {
		return NewIOError("network operation failed: "+opErr.Op, err)
	}

	return nil
}

// classifyURLError handles errors surfaced through net/url, which the
// websocket dial path wraps request errors in.
func classifyURLError(urlErr *url.Error) *ProxyError {
	if stderrors.Is(urlErr.Err, context.Canceled) {
		return NewProxyErrorWithCause(ErrorCodeContextCanceled, "operation was canceled", urlErr)
	}
	if stderrors.Is(urlErr.Err, context.DeadlineExceeded) {
		return NewProxyErrorWithCause(ErrorCodeDeadlineExceeded, "operation deadline exceeded", urlErr)
	}

	if netErr := classifyNetworkError(urlErr.Err); netErr != nil {
		return netErr
	}

	return NewIOError("dial failed: "+urlErr.Op, urlErr)
}
