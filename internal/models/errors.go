package models

import (
	"errors"
	"sort"
	"strings"
)

// Доменные ошибки. Хранилище и сервисы возвращают их как сентинелы,
// HTTP-обработчики сопоставляют через errors.Is с кодами и сообщениями ответов.
var (
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials — неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRefreshToken — refresh-токен невалиден, истёк или отозван.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

	// ErrSlotInvalidRange — начало слота не раньше его конца.
	ErrSlotInvalidRange = errors.New("start time must be earlier than end time")
	// ErrSlotInvalidGranularity — время слота не кратно часу.
	ErrSlotInvalidGranularity = errors.New("time must be on the hour")
	// ErrSlotNotFuture — дата слота не в будущем.
	ErrSlotNotFuture = errors.New("slots must be scheduled for future dates")
	// ErrSlotOverlap — слот пересекается с существующим слотом преподавателя.
	ErrSlotOverlap = errors.New("slot overlaps with an existing slot")

	// ErrSlotNotFound — слот с указанным идентификатором не существует.
	ErrSlotNotFound = errors.New("the slot does not exist")
	// ErrBookingSameTeacherDay — у студента уже есть бронирование этого
	// преподавателя на ту же дату.
	ErrBookingSameTeacherDay = errors.New("already booked a slot with this teacher for the same date")
	// ErrBookingTimeConflict — у студента уже есть бронирование на
	// пересекающееся время.
	ErrBookingTimeConflict = errors.New("already booked a slot for this time range")
)

// FieldErrors накапливает ошибки валидации по полям запроса.
// Ключ — имя поля, значение — список сообщений. Формат повторяет
// структуру msg в ответе регистрации.
type FieldErrors map[string][]string

// Add добавляет сообщение об ошибке для поля.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Error собирает все сообщения в одну строку в стабильном порядке полей.
func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var msgs []string
	for _, field := range fields {
		for _, msg := range f[field] {
			msgs = append(msgs, field+": "+msg)
		}
	}
	return strings.Join(msgs, ", ")
}
