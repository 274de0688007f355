package models

import "time"

// Booking представляет бронирование студентом одного слота преподавателя.
// Один слот могут бронировать несколько студентов, ограничение вместимости
// не накладывается.
type Booking struct {
	ID         int64     // Уникальный идентификатор бронирования
	StudentUID string    // Студент, создавший бронирование
	SlotID     int64     // Забронированный слот
	CreatedAt  time.Time // Дата создания бронирования
}

// BookingSlot — бронирование вместе с полным слотом и данными преподавателя.
type BookingSlot struct {
	Booking
	Slot SlotTeacher
}

// BookingView — представление бронирования в JSON-ответе.
type BookingView struct {
	ID        int64             `json:"id"`
	Slot      AvailableSlotView `json:"slot"`
	CreatedAt string            `json:"created_at"`
}

// View форматирует бронирование для выдачи наружу.
func (b *BookingSlot) View() BookingView {
	return BookingView{
		ID:        b.ID,
		Slot:      b.Slot.View(),
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}

// BookingEvent — событие о созданном бронировании для публикации в очередь.
type BookingEvent struct {
	BookingID    int64     `json:"booking_id"`
	StudentUID   string    `json:"student_uid"`
	StudentEmail string    `json:"student_email"`
	TeacherUID   string    `json:"teacher_uid"`
	TeacherEmail string    `json:"teacher_email"`
	SlotID       int64     `json:"slot_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}
