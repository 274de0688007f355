// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// CustomClaims расширяет стандартные claims JWT, добавляя email, роль и тип токена.
//
// Методы GenerateAccessToken, GenerateRefreshToken и ParseToken реализуют
// создание и валидацию пары токенов доступа.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Типы выпускаемых токенов.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
// UserUID лежит в Subject, уникальный идентификатор токена — в ID (jti),
// по нему refresh-токены попадают в чёрный список при выходе.
type CustomClaims struct {
	Email                string `json:"email"`      // Электронная почта пользователя
	Role                 string `json:"role"`       // Роль пользователя
	TokenType            string `json:"token_type"` // Тип токена, access или refresh
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// GenerateAccessToken создает access-токен с заданными uid, email и role,
// подписывая его секретным ключом. Время жизни определяется полем accessTTL.
func (j *MakerImpl) GenerateAccessToken(uid, email, role string) (string, error) {
	return j.generate(uid, email, role, TokenTypeAccess, j.accessTTL)
}

// GenerateRefreshToken создает refresh-токен. Время жизни определяется
// полем refreshTTL.
func (j *MakerImpl) GenerateRefreshToken(uid, email, role string) (string, error) {
	return j.generate(uid, email, role, TokenTypeRefresh, j.refreshTTL)
}

func (j *MakerImpl) generate(uid, email, role, tokenType string, ttl time.Duration) (string, error) {
	claims := CustomClaims{
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и валидность,
// возвращает CustomClaims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
