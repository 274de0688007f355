// Package services содержит бизнес-логику бронирования слотов студентами:
// проверку конфликтов при создании и выборку своих бронирований.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/online-class-book/internal/lib/clock"
	"github.com/magabrotheeeer/online-class-book/internal/lib/sl"
	"github.com/magabrotheeeer/online-class-book/internal/lib/timerange"
	"github.com/magabrotheeeer/online-class-book/internal/models"
)

// BookingRepository определяет методы для работы с бронированиями в хранилище.
type BookingRepository interface {
	// GetSlotWithTeacher возвращает слот с данными преподавателя или ErrSlotNotFound.
	GetSlotWithTeacher(ctx context.Context, id int64) (*models.SlotTeacher, error)
	// ListBookingsByStudent возвращает все бронирования студента со слотами.
	ListBookingsByStudent(ctx context.Context, studentUID string) ([]*models.BookingSlot, error)
	// CreateBooking вставляет бронирование, повторяя проверки конфликтов в транзакции.
	CreateBooking(ctx context.Context, studentUID string, slot models.Slot) (int64, time.Time, error)
	// ListStudentBookings возвращает будущие бронирования студента с пагинацией.
	ListStudentBookings(ctx context.Context, studentUID string, after time.Time, date *time.Time, limit, offset int) ([]*models.BookingSlot, error)
	// CountStudentBookings считает будущие бронирования студента.
	CountStudentBookings(ctx context.Context, studentUID string, after time.Time, date *time.Time) (int, error)
}

// EventPublisher публикует события о созданных бронированиях.
type EventPublisher interface {
	BookingCreated(event models.BookingEvent) error
}

// BookingService реализует бизнес-логику бронирований.
// events может быть nil — тогда события не публикуются.
type BookingService struct {
	repo   BookingRepository
	events EventPublisher
	clk    clock.Clock
	log    *slog.Logger
}

// NewBookingService создает новый экземпляр BookingService.
func NewBookingService(repo BookingRepository, events EventPublisher, clk clock.Clock, log *slog.Logger) *BookingService {
	return &BookingService{
		repo:   repo,
		events: events,
		clk:    clk,
		log:    log,
	}
}

// Create бронирует слот для студента. Порядок проверок: слот существует,
// нет бронирования того же преподавателя на ту же дату, нет бронирования
// на пересекающееся время у любого преподавателя. Вместимость слота
// не проверяется: несколько студентов могут бронировать один слот.
func (s *BookingService) Create(ctx context.Context, studentUID, studentEmail string, slotID int64) (*models.BookingView, error) {
	slot, err := s.repo.GetSlotWithTeacher(ctx, slotID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListBookingsByStudent(ctx, studentUID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if other.Slot.TeacherUID == slot.TeacherUID &&
			timerange.SameDate(other.Slot.StartTime, slot.StartTime) {
			return nil, models.ErrBookingSameTeacherDay
		}
	}
	for _, other := range existing {
		if timerange.Overlaps(other.Slot.StartTime, other.Slot.EndTime, slot.StartTime, slot.EndTime) {
			return nil, models.ErrBookingTimeConflict
		}
	}

	id, createdAt, err := s.repo.CreateBooking(ctx, studentUID, slot.Slot)
	if err != nil {
		return nil, err
	}

	s.log.Info("created new booking",
		slog.Int64("id", id),
		slog.Int64("slot_id", slotID),
		slog.String("student_uid", studentUID))

	if s.events != nil {
		event := models.BookingEvent{
			BookingID:    id,
			StudentUID:   studentUID,
			StudentEmail: studentEmail,
			TeacherUID:   slot.TeacherUID,
			TeacherEmail: slot.Teacher.Email,
			SlotID:       slot.ID,
			StartTime:    slot.StartTime,
			EndTime:      slot.EndTime,
		}
		if err := s.events.BookingCreated(event); err != nil {
			s.log.Warn("failed to publish booking event", sl.Err(err))
		}
	}

	booking := models.BookingSlot{
		Booking: models.Booking{
			ID:         id,
			StudentUID: studentUID,
			SlotID:     slot.ID,
			CreatedAt:  createdAt,
		},
		Slot: *slot,
	}
	view := booking.View()
	return &view, nil
}

// List возвращает будущие бронирования студента с общим количеством
// для пагинации.
func (s *BookingService) List(ctx context.Context, studentUID string, date *time.Time, limit, offset int) ([]models.BookingView, int, error) {
	now := s.clk.Now()
	bookings, err := s.repo.ListStudentBookings(ctx, studentUID, now, date, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.CountStudentBookings(ctx, studentUID, now, date)
	if err != nil {
		return nil, 0, err
	}

	views := make([]models.BookingView, 0, len(bookings))
	for _, booking := range bookings {
		views = append(views, booking.View())
	}
	return views, count, nil
}
