package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/videotube/internal/apperror"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
	"github.com/magabrotheeeer/videotube/internal/models"
	"github.com/magabrotheeeer/videotube/internal/storage"
)

const anonymousViewer = "anonymous"

// UpdateAccountDetails меняет имя и почту пользователя.
func (s *UserService) UpdateAccountDetails(ctx context.Context, userUID, fullName, email string) (*models.SanitizedUser, error) {
	const op = "services.UpdateAccountDetails"

	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return nil, apperror.Validation(msgFieldsRequired)
	}

	user, err := s.users.UpdateAccountDetails(ctx, userUID, fullName, email)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUserExists):
			return nil, apperror.Conflict("Email is already in use")
		case errors.Is(err, storage.ErrUserNotFound):
			return nil, apperror.NotFound(msgUserDoesNotExist)
		default:
			return nil, apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
		}
	}

	s.invalidateProfile(ctx, user)
	return user.Sanitize(), nil
}

// UpdateImage загружает новый аватар или обложку и сохраняет ссылку на них.
func (s *UserService) UpdateImage(ctx context.Context, userUID string, kind models.ImageKind, localPath string) (*models.SanitizedUser, error) {
	const op = "services.UpdateImage"

	label := imageLabel(kind)
	if label == "" {
		return nil, apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: unknown image kind %q", op, kind))
	}
	if strings.TrimSpace(localPath) == "" {
		return nil, apperror.Validation(label + " file is missing")
	}

	current, err := s.users.GetUserByID(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperror.NotFound(msgUserDoesNotExist)
		}
		return nil, apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}

	url, err := s.media.Upload(ctx, localPath)
	if err == nil && url == "" {
		err = errEmptyMediaURL
	}
	if err != nil {
		return nil, apperror.Upload("Error while uploading "+strings.ToLower(label), fmt.Errorf("%s: %w", op, err))
	}

	updated, err := s.users.UpdateImage(ctx, userUID, kind, url)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperror.NotFound(msgUserDoesNotExist)
		}
		return nil, apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}

	if s.opts.CleanupReplacedMedia {
		old := current.Avatar
		if kind == models.ImageCover {
			old = current.CoverImage
		}
		if old != "" && old != url {
			if err := s.media.Delete(ctx, old); err != nil {
				s.log.Warn("failed to delete replaced media",
					slog.String("user_uid", userUID), slog.String("url", old), sl.Err(err))
			}
		}
	}

	s.invalidateProfile(ctx, updated)
	return updated.Sanitize(), nil
}

// GetChannelProfile возвращает профиль канала со статистикой подписок.
// viewerUID пуст для анонимного запроса.
func (s *UserService) GetChannelProfile(ctx context.Context, username, viewerUID string) (*models.ChannelProfile, error) {
	const op = "services.GetChannelProfile"

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperror.Validation("Username is missing")
	}

	key := profileKey(username, viewerUID)
	if s.profileCacheEnabled() {
		var cached models.ChannelProfile
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("channel profile cache read failed", slog.String("key", key), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	profile, err := s.users.GetChannelProfile(ctx, username, viewerUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperror.NotFound("Channel does not exist")
		}
		return nil, apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}

	if s.profileCacheEnabled() {
		if err := s.cache.Set(ctx, key, profile, s.opts.ProfileTTL); err != nil {
			s.log.Warn("channel profile cache write failed", slog.String("key", key), sl.Err(err))
		}
	}
	return profile, nil
}

// GetWatchHistory возвращает просмотренные видео в порядке истории.
func (s *UserService) GetWatchHistory(ctx context.Context, userUID string) ([]models.WatchedVideo, error) {
	const op = "services.GetWatchHistory"

	videos, err := s.users.GetWatchHistory(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperror.NotFound(msgUserDoesNotExist)
		}
		return nil, apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}
	if videos == nil {
		videos = []models.WatchedVideo{}
	}
	return videos, nil
}

func (s *UserService) profileCacheEnabled() bool {
	return s.cache != nil && s.opts.ProfileTTL > 0
}

// invalidateProfile сбрасывает анонимный профиль канала и профиль, увиденный самим владельцем.
// Остальные варианты истекают по TTL.
func (s *UserService) invalidateProfile(ctx context.Context, user *models.User) {
	if !s.profileCacheEnabled() {
		return
	}
	keys := []string{profileKey(user.Username, ""), profileKey(user.Username, user.UUID)}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("channel profile cache invalidation failed", slog.String("username", user.Username), sl.Err(err))
	}
}

func profileKey(username, viewerUID string) string {
	if viewerUID == "" {
		viewerUID = anonymousViewer
	}
	return "channel:" + username + ":" + viewerUID
}

func imageLabel(kind models.ImageKind) string {
	switch kind {
	case models.ImageAvatar:
		return "Avatar"
	case models.ImageCover:
		return "Cover image"
	default:
		return ""
	}
}
