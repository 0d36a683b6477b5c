package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/readprogress/internal/progress/metrics"
	"github.com/aussiebroadwan/readprogress/internal/progress/service"
	"github.com/aussiebroadwan/readprogress/internal/progress/session"
	"github.com/aussiebroadwan/readprogress/internal/progress/state"
	"github.com/aussiebroadwan/readprogress/internal/progress/store"
	"github.com/aussiebroadwan/readprogress/pkg/httpx"
	"github.com/aussiebroadwan/readprogress/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	state    *state.Container
	sessions *session.Manager

	ProgressService *service.ProgressService
	SessionService  *service.SessionService

	MaxBodyBytes int64
	BodyTimeout  time.Duration
}

func NewRouter(
	buildVersion string,
	st store.Store,
	c *state.Container,
	sessions *session.Manager,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		state:        c,
		sessions:     sessions,
		MaxBodyBytes: 4096,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerProgress()
	r.registerSessions()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// claimOrIP keys authenticated traffic by identity and everything else by
// client address.
func (r *Router) claimOrIP(req *http.Request) string {
	if id, err := session.Claim(r.sessions.Load(req)); err == nil {
		return "id:" + id
	}
	return "ip:" + httpx.IPKeyExtractor(req)
}

func (r *Router) registerProgress() {
	h := &UpdateHandler{
		Sessions:        r.sessions,
		State:           r.state,
		ProgressService: r.ProgressService,
		MaxBodyBytes:    r.MaxBodyBytes,
		BodyTimeout:     r.BodyTimeout,
	}

	r.Mux.Handle("POST /update",
		httpx.Chain(h,
			metrics.Instrument("update"),
			httpx.RateLimitMiddleware(httpx.ModerateLimit, r.claimOrIP),
		),
	)
}

func (r *Router) registerSessions() {
	login := &LoginHandler{
		Sessions:       r.sessions,
		SessionService: r.SessionService,
		MaxBodyBytes:   r.MaxBodyBytes,
	}

	// One bucket per client address and submitted login.
	r.Mux.Handle("POST /login",
		httpx.Chain(login,
			metrics.Instrument("login"),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "login", r.MaxBodyBytes),
		),
	)

	r.Mux.Handle("POST /logout",
		httpx.Chain(&LogoutHandler{Sessions: r.sessions},
			metrics.Instrument("logout"),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.state),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
