// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrMissingMasterAddress is returned when the master address is not set.
	ErrMissingMasterAddress = errors.New("master address is required")

	// ErrInvalidTimeout is returned when the dial timeout is invalid.
	ErrInvalidTimeout = errors.New("dial timeout must be greater than 0")

	// ErrInvalidBackoff is returned when the reconnect backoff bounds are
	// invalid.
	ErrInvalidBackoff = errors.New("reconnect backoff min must be positive and not exceed max")
)
