// Package register обрабатывает регистрацию пользователя через multipart-форму.
package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/videotube/internal/apperror"
	"github.com/magabrotheeeer/videotube/internal/http/response"
	"github.com/magabrotheeeer/videotube/internal/http/upload"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
	"github.com/magabrotheeeer/videotube/internal/models"
	services "github.com/magabrotheeeer/videotube/internal/services/users"
)

// Service регистрирует пользователя.
type Service interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.SanitizedUser, error)
}

// Handler обработчик POST /register.
type Handler struct {
	log       *slog.Logger
	service   Service
	tempDir   string
	maxUpload int64
}

// New создаёт обработчик. Файлы формы сохраняются в tempDir, тело больше maxUpload байт отклоняется.
func New(log *slog.Logger, service Service, tempDir string, maxUpload int64) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		tempDir:   tempDir,
		maxUpload: maxUpload,
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт пользователя. Аватар обязателен, обложка нет. Имя пользователя приводится к нижнему регистру.
// @Tags Users
// @Accept  multipart/form-data
// @Produce  json
// @Param fullName formData string true "Полное имя"
// @Param email formData string true "Почта"
// @Param username formData string true "Имя пользователя"
// @Param password formData string true "Пароль"
// @Param avatar formData file true "Аватар"
// @Param coverImage formData file false "Обложка канала"
// @Success 201 {object} response.Response{data=models.SanitizedUser}
// @Failure 400 {object} response.ErrorResponse "Не заполнены поля или нет аватара"
// @Failure 409 {object} response.ErrorResponse "Пользователь уже существует"
// @Failure 413 {object} response.ErrorResponse "Слишком большой запрос"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	staged, err := upload.Stage(w, r, h.tempDir, h.maxUpload, string(models.ImageAvatar), string(models.ImageCover))
	if err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		if errors.Is(err, upload.ErrTooLarge) {
			response.Error(w, r, apperror.TooLarge("Request body is too large"))
			return
		}
		if errors.Is(err, upload.ErrNotMultipart) {
			response.Error(w, r, apperror.Validation("Request must be multipart/form-data"))
			return
		}
		response.Error(w, r, apperror.Validation("Invalid form data"))
		return
	}
	defer staged.Cleanup()

	user, err := h.service.Register(r.Context(), services.RegisterInput{
		FullName:       r.FormValue("fullName"),
		Email:          r.FormValue("email"),
		Username:       r.FormValue("username"),
		Password:       r.FormValue("password"),
		AvatarPath:     staged.Get(string(models.ImageAvatar)),
		CoverImagePath: staged.Get(string(models.ImageCover)),
	})
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		response.Error(w, r, err)
		return
	}

	log.Info("user registered", slog.String("user_uid", user.UUID))
	response.OK(w, r, http.StatusCreated, user, "User registered successfully")
}
