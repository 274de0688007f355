package models

import "time"

// TimeLayout — формат времени слота во внешнем API.
const TimeLayout = "2006-01-02 15:04"

// DateLayout — формат параметра date в запросах.
const DateLayout = "2006-01-02"

// Slot представляет окно доступности преподавателя [StartTime, EndTime).
// Время всегда кратно часу, минуты равны нулю.
type Slot struct {
	ID         int64     // Уникальный идентификатор слота
	TeacherUID string    // Преподаватель, которому принадлежит слот
	StartTime  time.Time // Начало окна
	EndTime    time.Time // Конец окна
	CreatedAt  time.Time // Дата создания слота
}

// DummySlot используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Slot. Даты приходят в виде строк,
// чтобы их можно было валидировать и парсить вручную.
type DummySlot struct {
	StartTime string `json:"start_time" validate:"required"` // Начало в формате 2006-01-02 15:04
	EndTime   string `json:"end_time" validate:"required"`   // Конец в формате 2006-01-02 15:04
}

// SlotTeacher — слот вместе с публичными данными владельца и его предметом.
// Используется при выдаче слотов студентам и при бронировании.
type SlotTeacher struct {
	Slot
	Teacher PublicUser
	Subject string
}

// SlotView — представление слота в JSON-ответе.
type SlotView struct {
	ID        int64  `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	CreatedAt string `json:"created_at"`
}

// View форматирует слот для выдачи наружу.
func (s *Slot) View() SlotView {
	return SlotView{
		ID:        s.ID,
		StartTime: s.StartTime.Format(TimeLayout),
		EndTime:   s.EndTime.Format(TimeLayout),
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}

// TeacherSlotView — слот владельца со списком записавшихся студентов.
type TeacherSlotView struct {
	SlotView
	BookedStudents []PublicUser `json:"booked_students"`
}

// AvailableSlotView — слот с данными преподавателя для выдачи студентам.
type AvailableSlotView struct {
	SlotView
	Teacher PublicUser `json:"teacher"`
	Subject string     `json:"subject"`
}

// View форматирует слот с преподавателем для выдачи наружу.
func (s *SlotTeacher) View() AvailableSlotView {
	return AvailableSlotView{
		SlotView: s.Slot.View(),
		Teacher:  s.Teacher,
		Subject:  s.Subject,
	}
}
