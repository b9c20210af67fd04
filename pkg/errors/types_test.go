// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProxyError_SetsCategoryAndTimestamp(t *testing.T) {
	err := NewProxyError(ErrorCodeNotFound, "symbol not found")

	assert.Equal(t, ErrorCodeNotFound, err.Code)
	assert.Equal(t, CategoryNotFound, err.Category)
	assert.False(t, err.Timestamp.IsZero())
	assert.False(t, err.Retryable)
}

func TestProxyError_Error_IncludesDetails(t *testing.T) {
	err := NewInvalidArgError("wrong type for attribute", "priority", "not-a-number")

	assert.Contains(t, err.Error(), "[INVALID_ARG]")
	assert.Contains(t, err.Error(), "priority=not-a-number")
}

func TestProxyError_Error_OmitsDetailsWhenEmpty(t *testing.T) {
	err := NewOutOfRangeError("compact encoding overflow")

	assert.Equal(t, "[OUT_OF_RANGE] compact encoding overflow", err.Error())
}

func TestProxyError_Unwrap(t *testing.T) {
	cause := assert.AnError
	err := NewIOError("transport closed", cause)

	assert.ErrorIs(t, err, cause)
}

func TestProxyError_Is_MatchesByCode(t *testing.T) {
	a := NewNotFoundError("resource set 3")
	b := NewNotFoundError("resource set 7")

	assert.True(t, a.Is(b))
	assert.False(t, a.Is(NewAlreadyExistsError("resource set 3")))
}

func TestIsRetryable_OnlyIOIsRetryable(t *testing.T) {
	assert.True(t, NewIOError("dropped", nil).IsRetryable())
	assert.False(t, NewProtocolError("bad tag").IsRetryable())
	assert.False(t, NewNotFoundError("class gpu").IsRetryable())
}

func TestCategoryFor_AllErrorCodes(t *testing.T) {
	cases := map[ErrorCode]ErrorCategory{
		ErrorCodeNotFound:         CategoryNotFound,
		ErrorCodeAlreadyExists:    CategoryConflict,
		ErrorCodeInvalidArg:       CategoryInvalid,
		ErrorCodeOutOfRange:       CategoryInvalid,
		ErrorCodeOverflow:         CategoryInvalid,
		ErrorCodeOutOfMemory:      CategoryMemory,
		ErrorCodeIO:               CategoryIO,
		ErrorCodeProtocol:         CategoryProtocol,
		ErrorCodeContextCanceled:  CategoryContext,
		ErrorCodeDeadlineExceeded: CategoryContext,
		ErrorCodeUnknown:          CategoryUnknown,
	}

	for code, want := range cases {
		assert.Equal(t, want, categoryFor(code), "code %s", code)
	}
}
