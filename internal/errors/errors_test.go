package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappedErrorMatchesSentinel(t *testing.T) {
	t.Parallel()

	wrapped := WrapError(ErrTokenError, errors.New("signature invalid"))
	assert.ErrorIs(t, wrapped, ErrTokenError)
	assert.NotErrorIs(t, wrapped, ErrTokenNotFound)

	withMsg := WithMessage(ErrValidation, "invalid folder path")
	assert.ErrorIs(t, withMsg, ErrValidation)
	assert.Equal(t, "invalid folder path", GetErrorMessage(withMsg))
}

func TestToHTTPStatus(t *testing.T) {
	t.Parallel()

	cases := map[error]int{
		ErrValidation:         http.StatusBadRequest,
		ErrBadRequest:         http.StatusBadRequest,
		ErrEmailExists:        http.StatusBadRequest,
		ErrUnauthorized:       http.StatusUnauthorized,
		ErrInvalidCredentials: http.StatusUnauthorized,
		ErrTokenError:         http.StatusUnauthorized,
		ErrTokenNotFound:      http.StatusUnauthorized,
		ErrRefreshExpired:     http.StatusUnauthorized,
		ErrTokenReuseDetected: http.StatusUnauthorized,
		ErrIncorrectPassword:  http.StatusUnauthorized,
		ErrSignupDisabled:     http.StatusForbidden,
		ErrForbidden:          http.StatusForbidden,
		ErrNotFound:           http.StatusNotFound,
		ErrStorage:            http.StatusInternalServerError,
		ErrInternal:           http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(err), "error %v", err)
	}

	assert.Equal(t, http.StatusOK, ToHTTPStatus(nil))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(errors.New("plain")))
}

func TestTokenErrorsShareGenericMessage(t *testing.T) {
	t.Parallel()

	// Distinct codes for the caller's state machine, one indistinct
	// message on the wire.
	assert.Equal(t, GetErrorMessage(ErrTokenError), GetErrorMessage(ErrTokenNotFound))
	assert.Equal(t, GetErrorMessage(ErrTokenError), GetErrorMessage(ErrTokenReuseDetected))

	// Wrapped internals never leak the cause.
	wrapped := WrapError(ErrInternal, errors.New("pq: connection refused"))
	assert.Equal(t, "internal server error", GetErrorMessage(wrapped))
}
