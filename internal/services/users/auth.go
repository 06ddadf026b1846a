package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/videotube/internal/apperror"
	"github.com/magabrotheeeer/videotube/internal/events"
	"github.com/magabrotheeeer/videotube/internal/lib/password"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
	"github.com/magabrotheeeer/videotube/internal/metrics"
	"github.com/magabrotheeeer/videotube/internal/models"
	"github.com/magabrotheeeer/videotube/internal/storage"
)

const (
	msgTokensFailed     = "Something went wrong while generating refresh and access tokens"
	msgRegisterFailed   = "Something went wrong while registering the user"
	msgInvalidRefresh   = "Invalid refresh token"
	msgRefreshUsed      = "Refresh token is expired or used"
	msgInvalidAccess    = "Invalid Access Token"
	msgUnauthorized     = "Unauthorized request"
	msgUserDoesNotExist = "User does not exist"
	msgFieldsRequired   = "All fields are required"
	msgStoreUnavailable = "Something went wrong, please try again later"
)

var errEmptyMediaURL = errors.New("media host returned empty url")

// RegisterInput данные формы регистрации. Пути указывают на файлы во временном каталоге.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// LoginInput учётные данные для входа. Достаточно одного из Username и Email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Register создаёт пользователя, загружает аватар и необязательную обложку.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.SanitizedUser, error) {
	const op = "services.Register"

	fullName := strings.TrimSpace(in.FullName)
	email := strings.TrimSpace(in.Email)
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperror.Validation(msgFieldsRequired)
	}

	if strings.TrimSpace(in.AvatarPath) == "" {
		return nil, apperror.Validation("Avatar file is required")
	}

	_, err := s.users.FindUserByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("User with email or username already exists")
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}

	avatarURL, err := s.media.Upload(ctx, in.AvatarPath)
	if err == nil && avatarURL == "" {
		err = errEmptyMediaURL
	}
	if err != nil {
		return nil, apperror.Upload("Error while uploading avatar", fmt.Errorf("%s: %w", op, err))
	}

	var coverURL string
	if strings.TrimSpace(in.CoverImagePath) != "" {
		coverURL, err = s.media.Upload(ctx, in.CoverImagePath)
		if err != nil {
			s.log.Warn("cover image upload failed, registering without it",
				slog.String("username", username), sl.Err(err))
			coverURL = ""
		}
	}

	hash, err := password.GetHash(in.Password)
	if err != nil {
		return nil, apperror.Internal(msgRegisterFailed, fmt.Errorf("%s: %w", op, err))
	}

	uid, err := s.users.CreateUser(ctx, models.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatarURL,
		CoverImage:   coverURL,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, apperror.Conflict("User with email or username already exists")
		}
		return nil, apperror.Internal(msgRegisterFailed, fmt.Errorf("%s: %w", op, err))
	}

	created, err := s.users.GetUserByID(ctx, uid)
	if err != nil {
		return nil, apperror.Internal(msgRegisterFailed, fmt.Errorf("%s: %w", op, err))
	}

	s.log.Info("user registered", slog.String("user_uid", created.UUID), slog.String("username", created.Username))
	s.recorder.AuthEvent(metrics.EventRegistered)
	s.publish(ctx, events.UserRegistered, created)

	return created.Sanitize(), nil
}

// Login проверяет пароль и выдаёт новую пару токенов.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.SanitizedUser, models.TokenPair, error) {
	const op = "services.Login"

	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)
	if username == "" && email == "" {
		return nil, models.TokenPair{}, apperror.Validation("Username or email is required")
	}

	user, err := s.users.FindUserByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, models.TokenPair{}, apperror.NotFound(msgUserDoesNotExist)
		}
		return nil, models.TokenPair{}, apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}

	if !password.Matches(user.PasswordHash, in.Password) {
		s.recorder.AuthEvent(metrics.EventLoginFailed)
		return nil, models.TokenPair{}, apperror.Unauthorized("Invalid user credentials")
	}

	pair, err := s.mintTokens(user)
	if err != nil {
		return nil, models.TokenPair{}, apperror.Internal(msgTokensFailed, fmt.Errorf("%s: %w", op, err))
	}
	if err := s.users.SetRefreshToken(ctx, user.UUID, pair.RefreshToken); err != nil {
		return nil, models.TokenPair{}, apperror.Internal(msgTokensFailed, fmt.Errorf("%s: %w", op, err))
	}

	s.recorder.AuthEvent(metrics.EventLogin)
	return user.Sanitize(), pair, nil
}

// Logout сбрасывает сохранённый refresh-токен пользователя.
func (s *UserService) Logout(ctx context.Context, userUID string) error {
	const op = "services.Logout"

	err := s.users.ClearRefreshToken(ctx, userUID)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}
	s.recorder.AuthEvent(metrics.EventLogout)
	return nil
}

// RefreshAccessToken обменивает действующий refresh-токен на новую пару.
// Каждый refresh-токен принимается ровно один раз.
func (s *UserService) RefreshAccessToken(ctx context.Context, incoming string) (models.TokenPair, error) {
	const op = "services.RefreshAccessToken"

	if incoming == "" {
		return models.TokenPair{}, apperror.Unauthorized(msgUnauthorized)
	}

	claims, err := s.tokens.ParseRefreshToken(incoming)
	if err != nil {
		s.recorder.AuthEvent(metrics.EventRefreshRejected)
		return models.TokenPair{}, apperror.Unauthorized(msgInvalidRefresh)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.recorder.AuthEvent(metrics.EventRefreshRejected)
			return models.TokenPair{}, apperror.Unauthorized(msgInvalidRefresh)
		}
		return models.TokenPair{}, apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}

	if user.RefreshToken == nil || *user.RefreshToken != incoming {
		s.log.Warn("refresh token reuse detected", slog.String("user_uid", user.UUID))
		s.recorder.AuthEvent(metrics.EventRefreshRejected)
		return models.TokenPair{}, apperror.Unauthorized(msgRefreshUsed)
	}

	pair, err := s.mintTokens(user)
	if err != nil {
		return models.TokenPair{}, apperror.Internal(msgTokensFailed, fmt.Errorf("%s: %w", op, err))
	}

	rotated, err := s.users.RotateRefreshToken(ctx, user.UUID, incoming, pair.RefreshToken)
	if err != nil {
		return models.TokenPair{}, apperror.Internal(msgTokensFailed, fmt.Errorf("%s: %w", op, err))
	}
	if !rotated {
		s.log.Warn("concurrent refresh lost the race", slog.String("user_uid", user.UUID))
		s.recorder.AuthEvent(metrics.EventRefreshRejected)
		return models.TokenPair{}, apperror.Unauthorized(msgRefreshUsed)
	}

	s.recorder.AuthEvent(metrics.EventRefresh)
	return pair, nil
}

// ChangePassword проверяет старый пароль и сохраняет хэш нового.
func (s *UserService) ChangePassword(ctx context.Context, userUID, oldPassword, newPassword string) error {
	const op = "services.ChangePassword"

	if oldPassword == "" || strings.TrimSpace(newPassword) == "" {
		return apperror.Validation(msgFieldsRequired)
	}

	user, err := s.users.GetUserByID(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperror.NotFound(msgUserDoesNotExist)
		}
		return apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}

	if !password.Matches(user.PasswordHash, oldPassword) {
		return apperror.Unauthorized("Incorrect password")
	}

	hash, err := password.GetHash(newPassword)
	if err != nil {
		return apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}
	if err := s.users.UpdatePassword(ctx, user.UUID, hash); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperror.NotFound(msgUserDoesNotExist)
		}
		return apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}

	s.recorder.AuthEvent(metrics.EventPasswordChanged)
	s.publish(ctx, events.UserPasswordChanged, user)
	return nil
}

// Authenticate проверяет access-токен и возвращает пользователя без секретных полей.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.SanitizedUser, error) {
	const op = "services.Authenticate"

	if accessToken == "" {
		return nil, apperror.Unauthorized(msgUnauthorized)
	}

	claims, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return nil, apperror.Unauthorized(msgInvalidAccess)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperror.Unauthorized(msgInvalidAccess)
		}
		return nil, apperror.Internal(msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}
	return user.Sanitize(), nil
}

func (s *UserService) mintTokens(user *models.User) (models.TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user.UUID, user.Email, user.Username, user.FullName)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.UUID)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
