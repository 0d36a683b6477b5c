package domain_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		err    *domain.Error
		status int
		kind   string
	}{
		{domain.Unauthorized("You need to log in!"), http.StatusUnauthorized, "unauthorized"},
		{domain.NotFound("Unknown user"), http.StatusNotFound, "not_found"},
		{domain.BadRequest("%s should be a string", "manga"), http.StatusBadRequest, "bad_request"},
		{domain.TooLarge("payload too large"), http.StatusRequestEntityTooLarge, "too_large"},
		{domain.Timeout("body read timed out"), http.StatusRequestTimeout, "timeout"},
		{domain.Internal("cannot get server info", errors.New("poisoned")), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			require.Equal(t, tt.status, tt.err.Kind.Status())
			require.Equal(t, tt.kind, tt.err.Kind.String())
		})
	}
}

func TestMessages(t *testing.T) {
	require.Equal(t, "manga should be a string", domain.BadRequest("%s should be a string", "manga").Message)

	cause := errors.New("lock poisoned")
	e := domain.Internal("cannot get server info", cause)
	require.Equal(t, "cannot get server info: lock poisoned", e.Message)
	require.ErrorIs(t, e, cause)
}

func TestAsAndKindOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", domain.NotFound("Unknown user"))
	require.Equal(t, domain.KindNotFound, domain.KindOf(wrapped))
	require.Equal(t, "Unknown user", domain.As(wrapped).Message)

	plain := errors.New("disk on fire")
	require.Equal(t, domain.KindInternal, domain.KindOf(plain))
	require.Equal(t, domain.KindInternal, domain.As(plain).Kind)
	require.ErrorIs(t, domain.As(plain), plain)
}
