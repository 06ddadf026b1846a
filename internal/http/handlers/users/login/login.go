// Package login обрабатывает вход пользователя по имени или почте.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/videotube/internal/apperror"
	"github.com/magabrotheeeer/videotube/internal/http/cookies"
	"github.com/magabrotheeeer/videotube/internal/http/response"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
	"github.com/magabrotheeeer/videotube/internal/models"
	services "github.com/magabrotheeeer/videotube/internal/services/users"
)

// Request учётные данные. Достаточно одного из username и email.
type Request struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

// Data тело успешного ответа.
type Data struct {
	User         *models.SanitizedUser `json:"user"`
	AccessToken  string                `json:"accessToken"`
	RefreshToken string                `json:"refreshToken"`
}

// Service выполняет вход.
type Service interface {
	Login(ctx context.Context, in services.LoginInput) (*models.SanitizedUser, models.TokenPair, error)
}

// Handler обработчик POST /login.
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
// @Summary Вход пользователя
// @Description Проверяет пароль, выставляет cookie accessToken и refreshToken и возвращает их в теле.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response{data=Data}
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	user, pair, err := h.service.Login(r.Context(), services.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		log.Error("login failed", sl.Err(err))
		response.Error(w, r, err)
		return
	}

	log.Info("user logged in", slog.String("user_uid", user.UUID))
	cookies.SetTokens(w, pair)
	response.OK(w, r, http.StatusOK, Data{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged in successfully")
}
