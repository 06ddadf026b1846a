// Package updatedetails меняет имя и почту пользователя.
package updatedetails

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/videotube/internal/apperror"
	"github.com/magabrotheeeer/videotube/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videotube/internal/http/response"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
	"github.com/magabrotheeeer/videotube/internal/models"
)

// Request новые значения полей профиля.
type Request struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// Service обновляет данные профиля.
type Service interface {
	UpdateAccountDetails(ctx context.Context, userUID, fullName, email string) (*models.SanitizedUser, error)
}

// Handler обработчик PATCH /update-account.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновление данных профиля
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Имя и почта"
// @Success 200 {object} response.Response{data=models.SanitizedUser}
// @Failure 400 {object} response.ErrorResponse "Не заполнены поля"
// @Failure 409 {object} response.ErrorResponse "Почта уже занята"
// @Router /users/update-account [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.updatedetails"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		response.Error(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	updated, err := h.service.UpdateAccountDetails(r.Context(), user.UUID, req.FullName, req.Email)
	if err != nil {
		log.Error("failed to update account details", sl.Err(err))
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, http.StatusOK, updated, "Account details updated successfully")
}
