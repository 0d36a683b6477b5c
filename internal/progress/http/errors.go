package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/aussiebroadwan/readprogress/pkg/httpx"
	"github.com/aussiebroadwan/readprogress/pkg/slogx"
)

// writeError answers with the status of err's kind and its client message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := domain.As(err)
	log := slogx.FromContext(r.Context())

	if e.Kind == domain.KindInternal {
		log.Error("request failed", slog.Any("err", err))
	} else {
		log.Info("request rejected",
			slog.String("kind", e.Kind.String()),
			slog.String("reason", e.Message),
		)
	}

	httpx.WriteText(w, e.Kind.Status(), e.Message)
}
