// Package middleware содержит HTTP middleware сервиса учёта выплат.
package middleware

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const identityKey contextKey = "identity"

// accessTokenCookie задаёт cookie, в котором провайдер идентификации хранит токен сессии.
const accessTokenCookie = "access_token"

// Claims содержит утверждения токена сессии. Subject содержит идентификатор пользователя.
type Claims struct {
	Name         string         `json:"name,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// DisplayName возвращает имя пользователя из user_metadata.name или name.
func (c *Claims) DisplayName() string {
	if n, ok := c.UserMetadata["name"].(string); ok && strings.TrimSpace(n) != "" {
		return n
	}
	return c.Name
}

// Identity описывает проверенную личность вызывающего пользователя.
type Identity struct {
	UserID uuid.UUID
	Name   string
}

// AuthMiddleware проверяет токен сессии, подписанный HS256.
type AuthMiddleware struct {
	secretKey []byte
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware с указанным секретным ключом.
// При пустом ключе генерируется случайный, и все внешние токены отвергаются.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &AuthMiddleware{
		secretKey: key,
	}
}

// Middleware проверяет токен из заголовка Authorization или cookie access_token
// и добавляет личность пользователя в контекст запроса.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			writeUnauthorized(w)
			return
		}

		id, err := a.ParseToken(token)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// ParseToken проверяет подпись и срок действия токена и извлекает личность пользователя.
func (a *AuthMiddleware) ParseToken(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return a.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("parse subject: %w", err)
	}

	return Identity{UserID: userID, Name: claims.DisplayName()}, nil
}

// IssueToken выпускает токен сессии для пользователя.
func (a *AuthMiddleware) IssueToken(userID uuid.UUID, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserMetadata: map[string]any{"name": name},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secretKey)
}

// GetIdentityFromContext извлекает личность пользователя из контекста запроса.
func GetIdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// GetUserIDFromContext извлекает идентификатор пользователя из контекста запроса.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := GetIdentityFromContext(ctx)
	return id.UserID, ok
}

// WithIdentity возвращает контекст с личностью пользователя.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
