package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsKind(t *testing.T) {
	err := Clone(ErrNotFound, "company not found")

	assert.Equal(t, "company not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, Is(err, ErrNotFound))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWrapAsKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := WrapAs(cause, ErrServiceUnavailable, "")

	assert.Equal(t, ErrServiceUnavailable.Message, err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp: refused")
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("handler: %w", Clone(ErrOTPExpired, ""))
	got := FromError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, "OTP_EXPIRED", got.Code)

	plain := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
}

func TestIsComparesCodes(t *testing.T) {
	assert.False(t, Is(ErrTokenExpired, ErrTokenInvalid))
	assert.False(t, Is(errors.New("x"), ErrTokenInvalid))
	assert.False(t, Is(ErrTokenInvalid, nil))
}
