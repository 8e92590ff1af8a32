package analyzer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderError_Error(t *testing.T) {
	err := NewError(ErrUnauthorized, "bad key").WithProvider("openai").WithHTTPStatus(401)
	assert.Equal(t, "openai: [unauthorized] bad key", err.Error())
	assert.Equal(t, "[parse_error] oops", NewError(ErrParseError, "oops").Error())
}

func TestProviderError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("dial: %w", context.DeadlineExceeded)
	err := NewError(ErrTransportError, "timeout").WithCause(cause)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	wrapped := fmt.Errorf("analyze: %w", err)
	pe, ok := AsProviderError(wrapped)
	require.True(t, ok)
	assert.Same(t, err, pe)
	assert.Equal(t, ErrTransportError, KindOf(wrapped))
}

func TestProviderError_Classes(t *testing.T) {
	tests := []struct {
		kind      ErrorKind
		retryable bool
		config    bool
	}{
		{ErrNotConfigured, false, true},
		{ErrVisionUnsupported, false, true},
		{ErrInvalidRequest, false, false},
		{ErrEmptyResponse, false, false},
		{ErrParseError, false, false},
		{ErrTransportError, true, false},
		{ErrUnauthorized, false, false},
		{ErrRateLimited, true, false},
		{ErrServiceUnavailable, true, false},
		{ErrUnknownAPIError, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := NewError(tt.kind, "m")
			assert.Equal(t, tt.retryable, err.Retryable())
			assert.Equal(t, tt.retryable, IsRetryable(err))
			assert.Equal(t, tt.config, err.IsConfigError())
		})
	}
}

func TestKindOf_NonProviderError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.False(t, IsRetryable(errors.New("plain")))
}
