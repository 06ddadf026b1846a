package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken возвращается, если подпись, срок действия или формат токена неверны.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims данные пользователя внутри access-токена.
type AccessClaims struct {
	UserUID  string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims содержимое refresh-токена, только идентификатор пользователя.
type RefreshClaims struct {
	UserUID string `json:"_id"`
	jwt.RegisteredClaims
}

// registered заполняет стандартные поля. Случайный jti гарантирует,
// что два токена, выпущенные в одну секунду, различаются.
func registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// GenerateAccessToken подписывает access-токен секретом доступа.
func (j *MakerImpl) GenerateAccessToken(userUID, email, username, fullName string) (string, error) {
	const op = "jwt.GenerateAccessToken"
	claims := AccessClaims{
		UserUID:          userUID,
		Email:            email,
		Username:         username,
		FullName:         fullName,
		RegisteredClaims: registered(userUID, j.accessTTL),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.accessSecret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// GenerateRefreshToken подписывает refresh-токен отдельным секретом.
func (j *MakerImpl) GenerateRefreshToken(userUID string) (string, error) {
	const op = "jwt.GenerateRefreshToken"
	claims := RefreshClaims{
		UserUID:          userUID,
		RegisteredClaims: registered(userUID, j.refreshTTL),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.refreshSecret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ParseAccessToken проверяет подпись и срок действия access-токена.
func (j *MakerImpl) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	const op = "jwt.ParseAccessToken"
	claims := &AccessClaims{}
	if err := parse(tokenStr, claims, j.accessSecret); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// ParseRefreshToken проверяет подпись и срок действия refresh-токена.
func (j *MakerImpl) ParseRefreshToken(tokenStr string) (*RefreshClaims, error) {
	const op = "jwt.ParseRefreshToken"
	claims := &RefreshClaims{}
	if err := parse(tokenStr, claims, j.refreshSecret); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.UserUID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}

func parse(tokenStr string, claims jwt.Claims, secret string) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
