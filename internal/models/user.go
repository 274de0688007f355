// Package models содержит доменные структуры онлайн-записи на занятия:
// пользователей, слоты доступности преподавателей и бронирования,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Роли пользователей. Роль назначается при регистрации и не меняется.
const (
	RoleStudent = "Student"
	RoleTeacher = "Teacher"
)

// User представляет зарегистрированного пользователя системы.
// Subject заполняется только для преподавателей (профиль один-к-одному).
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта (уникальная)
	FirstName    string    // Имя
	LastName     string    // Фамилия
	Phone        string    // Телефон, ровно 10 цифр (уникальный)
	Age          int       // Возраст
	Role         string    // Роль пользователя, Student или Teacher
	PasswordHash string    // Хэш пароля пользователя
	Subject      *string   // Предмет преподавателя, nil для студентов
	CreatedAt    time.Time // Дата создания учётной записи
}

// PublicUser содержит поля пользователя, безопасные для выдачи наружу.
// Пароль и его хэш сюда не попадают никогда.
type PublicUser struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Age       int    `json:"age"`
	Role      string `json:"role"`
}

// Public возвращает представление пользователя без пароля.
func (u *User) Public() PublicUser {
	return PublicUser{
		UID:       u.UID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Age:       u.Age,
		Role:      u.Role,
	}
}

// DummyUser используется для приёма данных регистрации из JSON-запроса
// до их валидации и преобразования в User.
type DummyUser struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Age       int    `json:"age" validate:"required,gt=0"`
	Role      string `json:"role" validate:"required,oneof=Student Teacher"`
	Password  string `json:"password" validate:"required,min=6"`
	Subject   string `json:"subject,omitempty" validate:"omitempty"`
}
