// Package current возвращает аутентифицированного пользователя.
package current

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/videotube/internal/apperror"
	"github.com/magabrotheeeer/videotube/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videotube/internal/http/response"
)

// Handler обработчик GET /current-user. В базу не обращается.
type Handler struct {
	log *slog.Logger
}

// New создаёт обработчик.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.SanitizedUser}
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Router /users/current-user [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		h.log.Error("user missing in context",
			slog.String("op", "handlers.users.current"),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		response.Error(w, r, apperror.Unauthorized("Unauthorized request"))
		return
	}
	response.OK(w, r, http.StatusOK, user, "Current user fetched successfully")
}
