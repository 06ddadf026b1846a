// Package jwt реализует выпуск и проверку пары JWT токенов сессии.
//
// Access-токен короткоживущий и несёт данные пользователя, refresh-токен
// живёт дольше, хранится на стороне сервера и используется только для
// выпуска новой пары. Токены подписываются разными секретами.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга токенов сессии.
type Maker interface {
	GenerateAccessToken(userUID, email, username, fullName string) (string, error)
	GenerateRefreshToken(userUID string) (string, error)
	ParseAccessToken(tokenStr string) (*AccessClaims, error)
	ParseRefreshToken(tokenStr string) (*RefreshClaims, error)
}

// MakerImpl реализует Maker на HS256 с раздельными секретами и TTL.
type MakerImpl struct {
	accessSecret  string
	accessTTL     time.Duration
	refreshSecret string
	refreshTTL    time.Duration
}

// NewJWTMaker создаёт новый экземпляр MakerImpl.
func NewJWTMaker(accessSecret string, accessTTL time.Duration, refreshSecret string, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		accessSecret:  accessSecret,
		accessTTL:     accessTTL,
		refreshSecret: refreshSecret,
		refreshTTL:    refreshTTL,
	}
}
