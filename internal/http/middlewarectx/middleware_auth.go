// Package middlewarectx содержит HTTP middleware аутентификации и ограничения частоты запросов.
//
// AuthMiddleware берёт access-токен из cookie accessToken или заголовка
// Authorization: Bearer, проверяет его и кладёт пользователя без секретных
// полей в контекст запроса. В случае ошибки возвращает 401.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/videotube/internal/http/cookies"
	"github.com/magabrotheeeer/videotube/internal/http/response"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
	"github.com/magabrotheeeer/videotube/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User ключ аутентифицированного пользователя в контексте.
const User Key = "user"

// Authenticator проверяет access-токен и возвращает пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.SanitizedUser, error)
}

// AuthMiddleware пропускает запрос дальше только с действительным access-токеном.
func AuthMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AuthMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			user, err := auth.Authenticate(r.Context(), ExtractToken(r))
			if err != nil {
				log.Info("request rejected", sl.Err(err))
				response.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuthMiddleware добавляет пользователя в контекст, если токен действителен,
// и никогда не отклоняет запрос.
func OptionalAuthMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				log.Debug("optional authentication skipped",
					slog.String("request_id", middleware.GetReqID(r.Context())), sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// ExtractToken возвращает access-токен из cookie или заголовка Authorization.
func ExtractToken(r *http.Request) string {
	if token := cookies.Read(r, cookies.AccessToken); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// WithUser кладёт пользователя в контекст.
func WithUser(ctx context.Context, user *models.SanitizedUser) context.Context {
	return context.WithValue(ctx, User, user)
}

// UserFromContext достаёт пользователя, положенного AuthMiddleware.
func UserFromContext(ctx context.Context) (*models.SanitizedUser, bool) {
	user, ok := ctx.Value(User).(*models.SanitizedUser)
	return user, ok && user != nil
}
