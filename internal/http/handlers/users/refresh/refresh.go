// Package refresh выдаёт новую пару токенов по refresh-токену.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/videotube/internal/apperror"
	"github.com/magabrotheeeer/videotube/internal/http/cookies"
	"github.com/magabrotheeeer/videotube/internal/http/response"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
	"github.com/magabrotheeeer/videotube/internal/models"
)

// Request необязательное тело запроса, если токен не передан в cookie.
type Request struct {
	RefreshToken string `json:"refreshToken"`
}

// Service ротирует refresh-токен.
type Service interface {
	RefreshAccessToken(ctx context.Context, incoming string) (models.TokenPair, error)
}

// Handler обработчик POST /refresh-token.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обновление access-токена
// @Description Принимает refresh-токен из cookie или тела, выдаёт новую пару и обновляет cookie. Каждый refresh-токен действует один раз.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request false "Refresh-токен, если нет cookie"
// @Success 200 {object} response.Response{data=models.TokenPair}
// @Failure 401 {object} response.ErrorResponse "Токен отсутствует, недействителен или уже использован"
// @Router /users/refresh-token [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	incoming := cookies.Read(r, cookies.RefreshToken)
	if incoming == "" && r.Body != nil {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			log.Error("failed to decode request body", sl.Err(err))
			response.Error(w, r, apperror.Validation("invalid request body"))
			return
		}
		incoming = req.RefreshToken
	}

	pair, err := h.service.RefreshAccessToken(r.Context(), incoming)
	if err != nil {
		log.Error("refresh failed", sl.Err(err))
		response.Error(w, r, err)
		return
	}

	cookies.SetTokens(w, pair)
	response.OK(w, r, http.StatusOK, pair, "Access token refreshed")
}
