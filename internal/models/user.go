// Package models содержит доменную модель пользователя видеоплатформы,
// включающую данные учётной записи, медиа, сессию и историю просмотров.
// Структуры используются в бизнес‑логике, хранилище и при формировании ответов.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID         string    // Уникальный идентификатор пользователя
	Username     string    // Имя пользователя (уникальное, в нижнем регистре)
	Email        string    // Электронная почта (уникальная)
	FullName     string    // Полное имя
	Avatar       string    // URL аватара, обязателен
	CoverImage   string    // URL обложки канала, может быть пустым
	PasswordHash string    // Хэш пароля, наружу не отдаётся
	RefreshToken *string   // Последний выданный refresh-токен, nil после logout
	WatchHistory []string  // Идентификаторы просмотренных видео в порядке просмотра
	CreatedAt    time.Time // Дата создания
	UpdatedAt    time.Time // Дата последнего изменения
}

// SanitizedUser представление пользователя без пароля и refresh-токена.
// Только этот тип попадает в JSON-ответы.
type SanitizedUser struct {
	UUID         string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	WatchHistory []string  `json:"watchHistory"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sanitize возвращает копию пользователя без секретных полей.
func (u *User) Sanitize() *SanitizedUser {
	history := u.WatchHistory
	if history == nil {
		history = []string{}
	}
	return &SanitizedUser{
		UUID:         u.UUID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		WatchHistory: history,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// ImageKind определяет, какое изображение профиля обновляется.
type ImageKind string

const (
	// ImageAvatar аватар пользователя.
	ImageAvatar ImageKind = "avatar"
	// ImageCover обложка канала.
	ImageCover ImageKind = "coverImage"
)

// TokenPair пара токенов, выдаваемая при входе и обновлении сессии.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
