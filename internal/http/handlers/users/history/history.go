// Package history отдаёт историю просмотров пользователя.
package history

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/videotube/internal/apperror"
	"github.com/magabrotheeeer/videotube/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videotube/internal/http/response"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
	"github.com/magabrotheeeer/videotube/internal/models"
)

// Service разворачивает историю просмотров в список видео.
type Service interface {
	GetWatchHistory(ctx context.Context, userUID string) ([]models.WatchedVideo, error)
}

// Handler обработчик GET /history.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История просмотров
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.WatchedVideo}
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /users/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.history"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user missing in context")
		response.Error(w, r, apperror.Unauthorized("Unauthorized request"))
		return
	}

	videos, err := h.service.GetWatchHistory(r.Context(), user.UUID)
	if err != nil {
		log.Error("failed to get watch history", sl.Err(err))
		response.Error(w, r, err)
		return
	}

	log.Debug("watch history fetched", slog.Int("count", len(videos)))
	response.OK(w, r, http.StatusOK, videos, "Watch history fetched successfully")
}
