package http_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	phttp "github.com/aussiebroadwan/readprogress/internal/progress/http"
	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/aussiebroadwan/readprogress/internal/progress/service"
	"github.com/aussiebroadwan/readprogress/internal/progress/session"
	"github.com/aussiebroadwan/readprogress/internal/progress/state"
	"github.com/aussiebroadwan/readprogress/internal/progress/store"
	"github.com/aussiebroadwan/readprogress/internal/progress/store/drivers/memory"
	"github.com/aussiebroadwan/readprogress/pkg/cryptox"
	"github.com/aussiebroadwan/readprogress/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "progress-http")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	// Tests hammer /update from a single identity.
	httpx.ModerateLimit = httpx.RateLimitConfig{RequestsPerWindow: 100000, Window: time.Minute, Burst: 100000}

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type fixture struct {
	router   *phttp.Router
	store    *memory.Store
	state    *state.Container
	sessions *session.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := memory.NewStore()
	_, err := store.Seed(context.Background(), st.Identities(), []domain.Seed{
		{ID: "a", Login: "a", Password: "a"},
		{ID: "b", Login: "b", Password: "b"},
		{ID: "c", Login: "c", Password: "c"},
	})
	require.NoError(t, err)

	c := state.NewContainer(&state.Server{Identities: st.Identities(), Port: 2345, MasterLogin: "admin"})
	mgr := session.NewManager(session.Config{
		Secret:     []byte(strings.Repeat("s", 32)),
		CookieName: "progress-session",
		MaxAge:     time.Hour,
	})

	r := phttp.NewRouter("test", st, c, mgr, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.ProgressService = &service.ProgressService{}
	r.SessionService = &service.SessionService{State: c}
	r.BodyTimeout = time.Second
	r.ApplyRoutes()

	return &fixture{router: r, store: st, state: c, sessions: mgr}
}

// cookiesFor returns a signed session cookie claiming id.
func (f *fixture) cookiesFor(t *testing.T, id string) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, f.sessions.Establish(rec, httptest.NewRequest(http.MethodGet, "/", nil), id))
	return rec.Result().Cookies()
}

func (f *fixture) do(method, path string, body io.Reader, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) post(path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return f.do(http.MethodPost, path, strings.NewReader(body), cookies)
}

// poison panics inside an exclusive section.
func (f *fixture) poison(t *testing.T) {
	t.Helper()
	_, err := state.With(context.Background(), f.state, func(*state.Server) (struct{}, error) {
		panic("boom")
	})
	require.Error(t, err)
	require.True(t, f.state.Poisoned())
}
