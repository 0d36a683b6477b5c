package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/readprogress/internal/progress/state"
	"github.com/aussiebroadwan/readprogress/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	cfg := *defaultConfig()
	cfg.Master.Password = "admin"
	cfg.Session.Secret = testSecret
	cfg.Security.PepperFile = filepath.Join(t.TempDir(), "pepper")
	cfg.Seed = DefaultSeeds()
	cfg.Log.Level = "error"
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestApplicationEndToEnd(t *testing.T) {
	for _, driver := range []string{"memory", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Store.Driver = driver
			cfg.Store.Path = filepath.Join(t.TempDir(), "progress.db")

			application, err := New(cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = application.db.Close() })

			require.Equal(t, "0.0.0.0:2345", application.server.Addr)
			require.Equal(t, 5*time.Second, application.server.ReadHeaderTimeout)

			h := application.Handler()

			login := httptest.NewRecorder()
			h.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"login":"d","password":"d"}`)))
			require.Equal(t, http.StatusOK, login.Code)

			req := httptest.NewRequest(http.MethodPost, "/update",
				strings.NewReader(`{"manga":"One Piece","source":"mangadex","chapter":5}`))
			for _, c := range login.Result().Cookies() {
				req.AddCookie(c)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, "OK", rec.Body.String())
		})
	}
}

func TestNewFailsOnUnopenableStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = filepath.Join(t.TempDir(), "missing", "dir", "progress.db")

	_, err := New(cfg)
	require.Error(t, err)
}

func TestMasterPasswordIsHashed(t *testing.T) {
	application, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	hash, err := state.With(context.Background(), application.state, func(s *state.Server) (string, error) {
		return s.MasterPasswordHash, nil
	})
	require.NoError(t, err)
	require.NotEqual(t, "admin", hash)
	require.NoError(t, cryptox.VerifyPassword("admin", hash))
}
