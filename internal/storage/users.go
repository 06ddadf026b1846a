package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/videotube/internal/models"
)

const userColumns = `uid, username, email, full_name, avatar, cover_image, password_hash,
	refresh_token, COALESCE(array_to_string(watch_history, ','), ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var refreshToken sql.NullString
	var history string
	if err := row.Scan(&u.UUID, &u.Username, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage,
		&u.PasswordHash, &refreshToken, &history, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if refreshToken.Valid {
		u.RefreshToken = &refreshToken.String
	}
	u.WatchHistory = []string{}
	if history != "" {
		u.WatchHistory = strings.Split(history, ",")
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его UID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"

	var newID string
	query := `INSERT INTO users (username, email, full_name, avatar, cover_image, password_hash)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, user.Avatar, user.CoverImage,
		user.PasswordHash).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, translate(err))
	}
	return newID, nil
}

// GetUserByID возвращает пользователя по UID.
func (s *Storage) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByID"

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1`, userUID)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return u, nil
}

// FindUserByUsernameOrEmail ищет пользователя, у которого совпадает username или email.
// Пустые аргументы в поиске не участвуют.
func (s *Storage) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	const op = "storage.FindUserByUsernameOrEmail"

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
			  ORDER BY created_at
			  LIMIT 1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return u, nil
}

// SetRefreshToken безусловно записывает refresh-токен пользователя.
func (s *Storage) SetRefreshToken(ctx context.Context, userUID, token string) error {
	const op = "storage.SetRefreshToken"
	return s.execAffectingUser(ctx, op,
		`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE uid = $1`, userUID, token)
}

// RotateRefreshToken заменяет refresh-токен, только если сохранённое значение равно oldToken.
// Возвращает false, если токен уже был заменён или сброшен.
func (s *Storage) RotateRefreshToken(ctx context.Context, userUID, oldToken, newToken string) (bool, error) {
	const op = "storage.RotateRefreshToken"

	res, err := s.DB.ExecContext(ctx, `
		UPDATE users SET refresh_token = $3, updated_at = NOW()
		WHERE uid = $1 AND refresh_token = $2`, userUID, oldToken, newToken)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// ClearRefreshToken сбрасывает refresh-токен (logout).
func (s *Storage) ClearRefreshToken(ctx context.Context, userUID string) error {
	const op = "storage.ClearRefreshToken"
	return s.execAffectingUser(ctx, op,
		`UPDATE users SET refresh_token = NULL, updated_at = NOW() WHERE uid = $1`, userUID)
}

// UpdatePassword сохраняет новый хеш пароля.
func (s *Storage) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePassword"
	if passwordHash == "" {
		return fmt.Errorf("%s: empty password hash", op)
	}
	return s.execAffectingUser(ctx, op,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE uid = $1`, userUID, passwordHash)
}

// UpdateAccountDetails обновляет полное имя и email, возвращает обновлённого пользователя.
func (s *Storage) UpdateAccountDetails(ctx context.Context, userUID, fullName, email string) (*models.User, error) {
	const op = "storage.UpdateAccountDetails"

	row := s.DB.QueryRowContext(ctx, `
		UPDATE users SET full_name = $2, email = $3, updated_at = NOW()
		WHERE uid = $1
		RETURNING `+userColumns, userUID, fullName, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return u, nil
}

// UpdateImage записывает URL аватара или обложки, возвращает обновлённого пользователя.
func (s *Storage) UpdateImage(ctx context.Context, userUID string, kind models.ImageKind, url string) (*models.User, error) {
	const op = "storage.UpdateImage"

	var column string
	switch kind {
	case models.ImageAvatar:
		column = "avatar"
	case models.ImageCover:
		column = "cover_image"
	default:
		return nil, fmt.Errorf("%s: unknown image kind %q", op, kind)
	}

	row := s.DB.QueryRowContext(ctx, `
		UPDATE users SET `+column+` = $2, updated_at = NOW()
		WHERE uid = $1
		RETURNING `+userColumns, userUID, url)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return u, nil
}

func (s *Storage) execAffectingUser(ctx context.Context, op, query string, args ...any) error {
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}
