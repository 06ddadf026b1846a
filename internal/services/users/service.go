// Package services содержит бизнес-логику учётных записей видеоплатформы:
// регистрацию, вход, ротацию refresh-токенов, изменение профиля и
// чтение read-моделей (профиль канала и история просмотров).
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/videotube/internal/events"
	"github.com/magabrotheeeer/videotube/internal/lib/jwt"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
	"github.com/magabrotheeeer/videotube/internal/models"
)

// UserRepository определяет методы хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	SetRefreshToken(ctx context.Context, userUID, token string) error
	// RotateRefreshToken заменяет oldToken на newToken и возвращает false,
	// если сохранённый токен уже другой.
	RotateRefreshToken(ctx context.Context, userUID, oldToken, newToken string) (bool, error)
	ClearRefreshToken(ctx context.Context, userUID string) error
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
	UpdateAccountDetails(ctx context.Context, userUID, fullName, email string) (*models.User, error)
	UpdateImage(ctx context.Context, userUID string, kind models.ImageKind, url string) (*models.User, error)
	GetChannelProfile(ctx context.Context, username, viewerUID string) (*models.ChannelProfile, error)
	GetWatchHistory(ctx context.Context, userUID string) ([]models.WatchedVideo, error)
}

// MediaUploader загружает файлы во внешнее хранилище медиа.
type MediaUploader interface {
	// Upload загружает файл и удаляет его локальную копию.
	Upload(ctx context.Context, localPath string) (string, error)
	Delete(ctx context.Context, url string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// EventPublisher публикует события аккаунта.
type EventPublisher interface {
	Publish(ctx context.Context, event events.AccountEvent) error
}

// AuthRecorder считает события аутентификации.
type AuthRecorder interface {
	AuthEvent(event string)
}

// Options настраивает необязательное поведение сервиса.
type Options struct {
	// ProfileTTL время жизни профиля канала в кеше, 0 отключает кеш.
	ProfileTTL time.Duration
	// CleanupReplacedMedia включает удаление старого изображения после замены.
	CleanupReplacedMedia bool
}

// UserService реализует операции над учётными записями.
type UserService struct {
	log      *slog.Logger
	users    UserRepository
	tokens   jwt.Maker
	media    MediaUploader
	cache    Cache
	events   EventPublisher
	recorder AuthRecorder
	opts     Options
	now      func() time.Time
}

// NewUserService создает новый экземпляр UserService. cache, publisher и recorder могут быть nil.
func NewUserService(
	log *slog.Logger,
	users UserRepository,
	tokens jwt.Maker,
	media MediaUploader,
	cache Cache,
	publisher EventPublisher,
	recorder AuthRecorder,
	opts Options,
) *UserService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &UserService{
		log:      log,
		users:    users,
		tokens:   tokens,
		media:    media,
		cache:    cache,
		events:   publisher,
		recorder: recorder,
		opts:     opts,
		now:      time.Now,
	}
}

type noopRecorder struct{}

func (noopRecorder) AuthEvent(string) {}

func (s *UserService) publish(ctx context.Context, kind string, user *models.User) {
	event := events.AccountEvent{
		Type:       kind,
		UserUID:    user.UUID,
		Username:   user.Username,
		Email:      user.Email,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish account event",
			slog.String("event", kind),
			slog.String("user_uid", user.UUID),
			sl.Err(err))
	}
}
