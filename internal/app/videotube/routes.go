package videotube

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/videotube/docs"
	"github.com/magabrotheeeer/videotube/internal/http/handlers/health"
	"github.com/magabrotheeeer/videotube/internal/http/handlers/users/changepassword"
	"github.com/magabrotheeeer/videotube/internal/http/handlers/users/channel"
	"github.com/magabrotheeeer/videotube/internal/http/handlers/users/current"
	"github.com/magabrotheeeer/videotube/internal/http/handlers/users/history"
	"github.com/magabrotheeeer/videotube/internal/http/handlers/users/login"
	"github.com/magabrotheeeer/videotube/internal/http/handlers/users/logout"
	"github.com/magabrotheeeer/videotube/internal/http/handlers/users/refresh"
	"github.com/magabrotheeeer/videotube/internal/http/handlers/users/register"
	"github.com/magabrotheeeer/videotube/internal/http/handlers/users/updatedetails"
	"github.com/magabrotheeeer/videotube/internal/http/handlers/users/updateimage"
	"github.com/magabrotheeeer/videotube/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videotube/internal/models"
	services "github.com/magabrotheeeer/videotube/internal/services/users"
)

// UserService объединяет операции, которые нужны обработчикам /users.
type UserService interface {
	register.Service
	login.Service
	logout.Service
	refresh.Service
	changepassword.Service
	updatedetails.Service
	updateimage.Service
	channel.Service
	history.Service
	middlewarectx.Authenticator
}

var _ UserService = (*services.UserService)(nil)

// Deps зависимости роутера.
type Deps struct {
	Logger      *slog.Logger
	Users       UserService
	Metrics     interface{ Middleware(http.Handler) http.Handler }
	Limiter     *middlewarectx.IPRateLimiter
	DB          health.Pinger
	Cache       health.Pinger
	TempDir     string
	MaxFormSize int64
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		d.Metrics.Middleware,
	)

	r.Route("/api/v1/users", func(r chi.Router) {
		// Открытые конечные точки с ограничением частоты
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(d.Limiter, logger))
			r.Post("/register", register.New(logger, d.Users, d.TempDir, d.MaxFormSize).ServeHTTP)
			r.Post("/login", login.New(logger, d.Users).ServeHTTP)
			r.Post("/refresh-token", refresh.New(logger, d.Users).ServeHTTP)
		})

		// Профиль канала доступен без входа
		r.With(middlewarectx.OptionalAuthMiddleware(d.Users, logger)).
			Get("/c/{username}", channel.New(logger, d.Users).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(d.Users, logger))
			r.Post("/logout", logout.New(logger, d.Users).ServeHTTP)
			r.Post("/change-password", changepassword.New(logger, d.Users).ServeHTTP)
			r.Get("/current-user", current.New(logger).ServeHTTP)
			r.Patch("/update-account", updatedetails.New(logger, d.Users).ServeHTTP)
			r.Patch("/avatar", updateimage.New(logger, d.Users, models.ImageAvatar, d.TempDir, d.MaxFormSize).ServeHTTP)
			r.Patch("/cover-image", updateimage.New(logger, d.Users, models.ImageCover, d.TempDir, d.MaxFormSize).ServeHTTP)
			r.Get("/history", history.New(logger, d.Users).ServeHTTP)
		})
	})

	r.Get("/healthz", health.New(logger, map[string]health.Pinger{
		"postgres": d.DB,
		"redis":    d.Cache,
	}).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
