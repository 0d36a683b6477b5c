package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/aussiebroadwan/readprogress/internal/progress/metrics"
	"github.com/aussiebroadwan/readprogress/pkg/slogx"
)

// ProgressService is the terminal step of an update. Updates are traced and
// counted; nothing is persisted.
type ProgressService struct{}

// Record accepts a validated update on behalf of an authenticated identity.
func (s *ProgressService) Record(ctx context.Context, ident domain.Identity, u domain.ProgressUpdate) error {
	slogx.FromContext(ctx).Info("update accepted",
		slog.String("user_id", ident.ID),
		slog.String("login", ident.Login),
		slog.String("manga", u.Manga),
		slog.String("source", u.Source),
		slog.Any("chapter", u.Chapter),
		slog.Any("page", u.Page),
	)
	metrics.RecordUpdate(nil)
	return nil
}
