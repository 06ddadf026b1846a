// Package cookies выставляет и сбрасывает cookie сессии.
package cookies

import (
	"net/http"
	"time"

	"github.com/magabrotheeeer/videotube/internal/models"
)

// Имена cookie с токенами.
const (
	AccessToken  = "accessToken"
	RefreshToken = "refreshToken"
)

// SetTokens записывает оба токена в cookie с флагами HttpOnly и Secure.
func SetTokens(w http.ResponseWriter, pair models.TokenPair) {
	set(w, AccessToken, pair.AccessToken)
	set(w, RefreshToken, pair.RefreshToken)
}

// ClearTokens удаляет оба cookie.
func ClearTokens(w http.ResponseWriter) {
	expire(w, AccessToken)
	expire(w, RefreshToken)
}

// Read возвращает значение cookie или пустую строку.
func Read(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func set(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
}

func expire(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	})
}
