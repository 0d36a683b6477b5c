package session

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/readprogress/pkg/slogx"
	"github.com/gorilla/sessions"
)

type Config struct {
	Secret     []byte        // signing key, at least 32 bytes
	CookieName string        // e.g. "progress-session"
	Secure     bool          // false keeps the cookie usable over plain HTTP
	MaxAge     time.Duration // cookie and signature lifetime
}

// Manager reads and writes the signed session cookie.
type Manager struct {
	store sessions.Store
	name  string
}

func NewManager(cfg Config) *Manager {
	cs := sessions.NewCookieStore(cfg.Secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	cs.MaxAge(int(cfg.MaxAge.Seconds()))

	return &Manager{store: cs, name: cfg.CookieName}
}

// Load returns the session state carried by r. Cookies that fail signature
// checks or decoding are treated as no session at all.
func (m *Manager) Load(r *http.Request) State {
	s, err := m.store.Get(r, m.name)
	if err != nil {
		slogx.FromContext(r.Context()).Debug("discarding unreadable session cookie", "err", err)
		return values(nil)
	}
	return Values(s)
}

// Establish stores the identity claim in the session cookie.
func (m *Manager) Establish(w http.ResponseWriter, r *http.Request, id string) error {
	s := m.get(r)
	s.Values[Key] = id
	return s.Save(r, w)
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	delete(s.Values, Key)
	s.Options.MaxAge = -1
	return s.Save(r, w)
}

func (m *Manager) get(r *http.Request) *sessions.Session {
	// On a decode error gorilla still hands back a fresh session.
	s, _ := m.store.Get(r, m.name)
	if s == nil {
		s = sessions.NewSession(m.store, m.name)
		s.Options = &sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
	}
	return s
}

type values map[any]any

// Values adapts a gorilla session to State.
func Values(s *sessions.Session) State {
	if s == nil {
		return values(nil)
	}
	return values(s.Values)
}

func (v values) String(key string) (string, bool) {
	raw, ok := v[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
