// Package updateimage заменяет аватар или обложку канала пользователя.
package updateimage

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/videotube/internal/apperror"
	"github.com/magabrotheeeer/videotube/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videotube/internal/http/response"
	"github.com/magabrotheeeer/videotube/internal/http/upload"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
	"github.com/magabrotheeeer/videotube/internal/models"
)

// Service загружает новое изображение и сохраняет ссылку на него.
type Service interface {
	UpdateImage(ctx context.Context, userUID string, kind models.ImageKind, localPath string) (*models.SanitizedUser, error)
}

// Handler обработчик PATCH /avatar и PATCH /cover-image.
// Поле формы совпадает с kind.
type Handler struct {
	log       *slog.Logger
	service   Service
	kind      models.ImageKind
	tempDir   string
	maxUpload int64
}

// New создаёт обработчик для изображения kind.
func New(log *slog.Logger, service Service, kind models.ImageKind, tempDir string, maxUpload int64) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		kind:      kind,
		tempDir:   tempDir,
		maxUpload: maxUpload,
	}
}

// ServeHTTP godoc
// @Summary Обновление аватара или обложки
// @Description Поле формы avatar для /avatar и coverImage для /cover-image.
// @Tags Users
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.SanitizedUser}
// @Failure 400 {object} response.ErrorResponse "Нет файла или загрузка не удалась"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 413 {object} response.ErrorResponse "Слишком большой запрос"
// @Router /users/avatar [patch]
// @Router /users/cover-image [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.updateimage"

	log := h.log.With(
		slog.String("op", op),
		slog.String("kind", string(h.kind)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user missing in context")
		response.Error(w, r, apperror.Unauthorized("Unauthorized request"))
		return
	}

	staged, err := upload.Stage(w, r, h.tempDir, h.maxUpload, string(h.kind))
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

	updated, err := h.service.UpdateImage(r.Context(), user.UUID, h.kind, staged.Get(string(h.kind)))
	if err != nil {
		log.Error("failed to update image", sl.Err(err))
		response.Error(w, r, err)
		return
	}

	msg := "Avatar updated successfully"
	if h.kind == models.ImageCover {
		msg = "Cover image updated successfully"
	}
	response.OK(w, r, http.StatusOK, updated, msg)
}
