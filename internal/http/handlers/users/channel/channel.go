// Package channel отдаёт профиль канала со статистикой подписок.
package channel

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/videotube/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videotube/internal/http/response"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
	"github.com/magabrotheeeer/videotube/internal/models"
)

// Service собирает профиль канала.
type Service interface {
	GetChannelProfile(ctx context.Context, username, viewerUID string) (*models.ChannelProfile, error)
}

// Handler обработчик GET /c/{username}. Аутентификация необязательна,
// без неё isSubscribed всегда false.
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
// @Summary Профиль канала
// @Tags Users
// @Produce  json
// @Param username path string true "Имя пользователя канала"
// @Success 200 {object} response.Response{data=models.ChannelProfile}
// @Failure 400 {object} response.ErrorResponse "Пустое имя"
// @Failure 404 {object} response.ErrorResponse "Канал не найден"
// @Router /users/c/{username} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.channel"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var viewerUID string
	if viewer, ok := middlewarectx.UserFromContext(r.Context()); ok {
		viewerUID = viewer.UUID
	}

	profile, err := h.service.GetChannelProfile(r.Context(), chi.URLParam(r, "username"), viewerUID)
	if err != nil {
		log.Error("failed to get channel profile", sl.Err(err))
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, http.StatusOK, profile, "User channel fetched successfully")
}
