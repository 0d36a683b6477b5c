package http

import (
	"io"
	"net/http"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/aussiebroadwan/readprogress/internal/progress/service"
	"github.com/aussiebroadwan/readprogress/internal/progress/session"
	"github.com/aussiebroadwan/readprogress/pkg/httpx"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginHandler serves POST /login and establishes the session claim used by
// /update.
type LoginHandler struct {
	Sessions       *session.Manager
	SessionService *service.SessionService
	MaxBodyBytes   int64
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.MaxBodyBytes))
	if err != nil {
		writeError(w, r, domain.BadRequest("cannot read body: %v", err))
		return
	}

	var req loginRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, r, domain.BadRequest("Expected JSON: %v", err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, domain.BadRequest("'login' and 'password' are mandatory"))
		return
	}

	ident, err := h.SessionService.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Sessions.Establish(w, r, ident.ID); err != nil {
		writeError(w, r, domain.Internal("cannot store session", err))
		return
	}

	httpx.WriteText(w, http.StatusOK, "OK")
}

// LogoutHandler serves POST /logout. It always succeeds, with or without a
// session.
type LogoutHandler struct {
	Sessions *session.Manager
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Clear(w, r); err != nil {
		writeError(w, r, domain.Internal("cannot clear session", err))
		return
	}
	httpx.WriteText(w, http.StatusOK, "OK")
}
