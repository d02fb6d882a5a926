package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThroughTyped(t *testing.T) {
	err := NewRateLimited("slow down")
	domainErr := ToDomainError(err)
	require.Equal(t, CodeRateLimited, domainErr.Code)
	require.Equal(t, http.StatusTooManyRequests, domainErr.HTTPStatus)
}

func TestToDomainErrorWrapsUntyped(t *testing.T) {
	domainErr := ToDomainError(errors.New("boom"))
	require.Equal(t, CodeInternal, domainErr.Code)
	require.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	require.EqualError(t, domainErr.Err, "boom")
}

func TestToDomainErrorUnwrapsWrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", NewInvalidCredential())
	domainErr := ToDomainError(wrapped)
	require.Equal(t, CodeInvalidCredential, domainErr.Code)
}

func TestCodeOfAndHasCode(t *testing.T) {
	require.Equal(t, "", CodeOf(nil))
	require.Equal(t, CodeNotFound, CodeOf(NewNotFound("thing", nil)))
	require.Equal(t, CodeInternal, CodeOf(errors.New("x")))

	require.True(t, HasCode(NewSessionActive(), CodeSessionActive))
	require.False(t, HasCode(NewSessionActive(), CodeNotFound))
	require.False(t, HasCode(nil, CodeNotFound))
}

func TestStatusMapping(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"not found":          {NewNotFound("x", nil), http.StatusNotFound},
		"inactive":           {NewInactive("x"), http.StatusForbidden},
		"invalid credential": {NewInvalidCredential(), http.StatusUnauthorized},
		"not authorized":     {NewNotAuthorized("x"), http.StatusForbidden},
		"rate limited":       {NewRateLimited("x"), http.StatusTooManyRequests},
		"validation":         {NewValidationError("x", nil), http.StatusBadRequest},
		"connection":         {NewConnectionError(errors.New("down")), http.StatusBadGateway},
		"permission denied":  {NewPermissionDenied("x"), http.StatusForbidden},
		"session active":     {NewSessionActive(), http.StatusConflict},
		"unauthorized":       {NewUnauthorized("x"), http.StatusUnauthorized},
	}

	for name, tc := range cases {
		require.Equal(t, tc.status, ToDomainError(tc.err).HTTPStatus, name)
	}
}
