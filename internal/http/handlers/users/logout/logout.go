// Package logout завершает сессию пользователя.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/videotube/internal/apperror"
	"github.com/magabrotheeeer/videotube/internal/http/cookies"
	"github.com/magabrotheeeer/videotube/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videotube/internal/http/response"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
)

// Service сбрасывает refresh-токен пользователя.
type Service interface {
	Logout(ctx context.Context, userUID string) error
}

// Handler обработчик POST /logout.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Сбрасывает сохранённый refresh-токен и удаляет cookie сессии.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Router /users/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.logout"

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

	if err := h.service.Logout(r.Context(), user.UUID); err != nil {
		log.Error("logout failed", sl.Err(err))
		response.Error(w, r, err)
		return
	}

	cookies.ClearTokens(w)
	response.OK(w, r, http.StatusOK, struct{}{}, "User logged out")
}
