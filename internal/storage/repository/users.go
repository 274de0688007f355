package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/online-class-book/internal/models"
)

// CreateUser сохраняет нового пользователя. Для преподавателя в той же
// транзакции создаётся профиль с предметом, так что у каждого преподавателя
// профиль существует ровно один.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO users (uid, email, first_name, last_name, phone, age, role, password_hash)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, query,
		user.UID, user.Email, user.FirstName, user.LastName, user.Phone,
		user.Age, user.Role, user.PasswordHash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if user.Role == models.RoleTeacher {
		query = `INSERT INTO teacher_profiles (user_uid, subject) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, query, user.UID, user.Subject); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindTakenContacts проверяет занятость email и телефона. Обе проверки
// выполняются одним запросом, чтобы регистрация могла сообщить обе ошибки
// одновременно.
func (s *Storage) FindTakenContacts(ctx context.Context, email, phone string) (emailTaken, phoneTaken bool, err error) {
	const op = "storage.FindTakenContacts"
	select {
	case <-ctx.Done():
		return false, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      EXISTS (SELECT 1 FROM users WHERE email = $1),
			      EXISTS (SELECT 1 FROM users WHERE phone = $2)`
	if err := s.DB.QueryRowContext(ctx, query, email, phone).Scan(&emailTaken, &phoneTaken); err != nil {
		return false, false, fmt.Errorf("%s: %w", op, err)
	}
	return emailTaken, phoneTaken, nil
}

// GetUserByEmail возвращает пользователя по email вместе с предметом
// преподавателя, если тот есть.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.uid, u.email, u.first_name, u.last_name, u.phone, u.age,
			      u.role, u.password_hash, tp.subject, u.created_at
			  FROM users u
			  LEFT JOIN teacher_profiles tp ON tp.user_uid = u.uid
			  WHERE u.email = $1`
	u := &models.User{}
	var subject sql.NullString
	row := s.DB.QueryRowContext(ctx, query, email)
	if err := row.Scan(&u.UID, &u.Email, &u.FirstName, &u.LastName, &u.Phone,
		&u.Age, &u.Role, &u.PasswordHash, &subject, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if subject.Valid {
		u.Subject = &subject.String
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.uid, u.email, u.first_name, u.last_name, u.phone, u.age,
			      u.role, u.password_hash, tp.subject, u.created_at
			  FROM users u
			  LEFT JOIN teacher_profiles tp ON tp.user_uid = u.uid
			  WHERE u.uid = $1`
	u := &models.User{}
	var subject sql.NullString
	row := s.DB.QueryRowContext(ctx, query, uid)
	if err := row.Scan(&u.UID, &u.Email, &u.FirstName, &u.LastName, &u.Phone,
		&u.Age, &u.Role, &u.PasswordHash, &subject, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if subject.Valid {
		u.Subject = &subject.String
	}
	return u, nil
}
