package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginThenUpdate(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/login", `{"login":"b","password":"b"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = f.post("/update", `{"manga":"m","source":"s","chapter":1}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{
		{"wrong password", `{"login":"a","password":"b"}`, http.StatusUnauthorized, "invalid login or password"},
		{"unknown login", `{"login":"nobody","password":"a"}`, http.StatusUnauthorized, "invalid login or password"},
		{"missing password", `{"login":"a"}`, http.StatusBadRequest, "mandatory"},
		{"not json", `login=a&password=a`, http.StatusBadRequest, "Expected JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.post("/login", tt.body, nil)

			require.Equal(t, tt.wantCode, rec.Code)
			require.Contains(t, rec.Body.String(), tt.wantBody)
			require.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestLoginRateLimited(t *testing.T) {
	f := newFixture(t)

	codes := make([]int, 0, 8)
	for range 8 {
		codes = append(codes, f.post("/login", `{"login":"a","password":"wrong"}`, nil).Code)
	}
	require.Contains(t, codes, http.StatusTooManyRequests)

	// Another login from the same address has its own bucket.
	rec := f.post("/login", `{"login":"c","password":"c"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/logout", "", f.cookiesFor(t, "a"))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Negative(t, cookies[0].MaxAge)

	// Logging out without a session is fine too.
	rec = f.post("/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginPoisonedState(t *testing.T) {
	f := newFixture(t)
	f.poison(t)

	rec := f.post("/login", `{"login":"a","password":"a"}`, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "cannot get server info")
	require.Empty(t, rec.Result().Cookies())
}
