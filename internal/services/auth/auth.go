// Package services содержит логику бизнес-уровня для работы с пользователями
// и аутентификацией: регистрация, вход, обновление и отзыв токенов.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/online-class-book/internal/lib/jwt"
	"github.com/magabrotheeeer/online-class-book/internal/lib/password"
	"github.com/magabrotheeeer/online-class-book/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя вместе с профилем преподавателя.
	CreateUser(ctx context.Context, user models.User) error
	// FindTakenContacts проверяет занятость email и телефона.
	FindTakenContacts(ctx context.Context, email, phone string) (emailTaken, phoneTaken bool, err error)
	// GetUserByEmail возвращает пользователя по email или ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenBlacklist описывает чёрный список отозванных refresh-токенов.
type TokenBlacklist interface {
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// LoginResult — результат успешного входа: пара токенов и данные пользователя.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	UserDetails  models.PublicUser
}

// AuthService отвечает за регистрацию, авторизацию и жизненный цикл токенов.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	blacklist TokenBlacklist
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, blacklist TokenBlacklist) *AuthService {
	return &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		blacklist: blacklist,
	}
}

// Register создает нового пользователя. Ошибки полей (занятые email и телефон,
// неверный формат телефона, отсутствующий предмет у преподавателя)
// накапливаются и возвращаются все сразу как models.FieldErrors.
func (s *AuthService) Register(ctx context.Context, req models.DummyUser) error {
	fieldErrs := models.FieldErrors{}

	if !isDigits(req.Phone) {
		fieldErrs.Add("phone", "Phone number must contain only digits.")
	} else if len(req.Phone) != 10 {
		fieldErrs.Add("phone", "Phone number must be exactly 10 digits long.")
	}
	if req.Role == models.RoleTeacher && req.Subject == "" {
		fieldErrs.Add("subject", "Missing Subject Details.")
	}

	emailTaken, phoneTaken, err := s.users.FindTakenContacts(ctx, req.Email, req.Phone)
	if err != nil {
		return err
	}
	if emailTaken {
		fieldErrs.Add("email", "user with this email already exists.")
	}
	if phoneTaken {
		fieldErrs.Add("phone", "user with this phone already exists.")
	}
	if len(fieldErrs) > 0 {
		return fieldErrs
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return err
	}
	user := models.User{
		UID:          uuid.NewString(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Age:          req.Age,
		Role:         req.Role,
		PasswordHash: hashed,
	}
	if req.Role == models.RoleTeacher {
		user.Subject = &req.Subject
	}
	return s.users.CreateUser(ctx, user)
}

// Login проверяет пароль пользователя и выпускает пару access/refresh токенов.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	access, err := s.jwtMaker.GenerateAccessToken(user.UID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user.UID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		UserDetails:  user.Public(),
	}, nil
}

// Refresh проверяет refresh-токен и выпускает новый access-токен.
// Отозванные (из чёрного списка) и истёкшие токены отклоняются одинаково.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return "", err
	}
	revoked, err := s.blacklist.Exists(ctx, blacklistKey(claims.ID))
	if err != nil {
		return "", err
	}
	if revoked {
		return "", models.ErrInvalidRefreshToken
	}
	return s.jwtMaker.GenerateAccessToken(claims.Subject, claims.Email, claims.Role)
}

// Logout помещает refresh-токен в чёрный список до момента его истечения.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return models.ErrInvalidRefreshToken
	}
	return s.blacklist.Set(ctx, blacklistKey(claims.ID), "revoked", ttl)
}

func (s *AuthService) parseRefresh(refreshToken string) (*jwt.CustomClaims, error) {
	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil {
		return nil, models.ErrInvalidRefreshToken
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, models.ErrInvalidRefreshToken
	}
	return claims, nil
}

func blacklistKey(jti string) string {
	return fmt.Sprintf("blacklist:%s", jti)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
