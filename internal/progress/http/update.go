package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/aussiebroadwan/readprogress/internal/progress/metrics"
	"github.com/aussiebroadwan/readprogress/internal/progress/payload"
	"github.com/aussiebroadwan/readprogress/internal/progress/service"
	"github.com/aussiebroadwan/readprogress/internal/progress/session"
	"github.com/aussiebroadwan/readprogress/internal/progress/state"
	"github.com/aussiebroadwan/readprogress/pkg/httpx"
	"github.com/aussiebroadwan/readprogress/pkg/slogx"
)

// UpdateHandler serves POST /update.
//
// The caller is authenticated from the session cookie before the body is
// read. Only the identity lookup runs under the state lock.
type UpdateHandler struct {
	Sessions        *session.Manager
	State           *state.Container
	ProgressService *service.ProgressService

	MaxBodyBytes int64
	BodyTimeout  time.Duration
}

func (h *UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.serve(w, r); err != nil {
		metrics.RecordUpdate(err)
		writeError(w, r, err)
		return
	}
	httpx.WriteText(w, http.StatusOK, "OK")
}

func (h *UpdateHandler) serve(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	ident, err := h.authenticate(r)
	if err != nil {
		return err
	}

	raw, err := h.readBody(w, r)
	if err != nil {
		return err
	}

	update, err := payload.Parse(raw)
	if err != nil {
		return err
	}

	return h.ProgressService.Record(ctx, ident, update)
}

func (h *UpdateHandler) authenticate(r *http.Request) (domain.Identity, error) {
	ctx := r.Context()

	id, err := session.Claim(h.Sessions.Load(r))
	if err != nil {
		return domain.Identity{}, err
	}

	return state.With(ctx, h.State, func(s *state.Server) (domain.Identity, error) {
		return session.Lookup(ctx, id, s.Identities)
	})
}

func (h *UpdateHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	rc := http.NewResponseController(w)
	deadline := false
	if h.BodyTimeout > 0 {
		err := rc.SetReadDeadline(time.Now().Add(h.BodyTimeout))
		switch {
		case err == nil:
			deadline = true
		case !errors.Is(err, http.ErrNotSupported):
			slogx.FromContext(r.Context()).Debug("cannot set body read deadline", "err", err)
		}
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.MaxBodyBytes))
	if err == nil {
		if deadline {
			_ = rc.SetReadDeadline(time.Time{})
		}
		return raw, nil
	}

	// The rest of the body is never read, so the connection can not be
	// reused. Closing it also stops net/http from draining the body after
	// the handler returns.
	w.Header().Set("Connection", "close")

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return nil, domain.TooLarge(fmt.Sprintf("body larger than %d bytes", tooLarge.Limit))
	case errors.Is(err, os.ErrDeadlineExceeded):
		return nil, domain.Timeout("timed out reading body")
	default:
		return nil, domain.BadRequest("cannot read body: %v", err)
	}
}
