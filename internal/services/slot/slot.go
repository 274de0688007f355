// Package services содержит бизнес-логику слотов доступности преподавателей:
// проверку создаваемого слота и выборки для владельца и студентов.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/online-class-book/internal/lib/clock"
	"github.com/magabrotheeeer/online-class-book/internal/lib/timerange"
	"github.com/magabrotheeeer/online-class-book/internal/models"
)

// SlotRepository определяет методы для работы со слотами в хранилище.
type SlotRepository interface {
	// CreateSlot вставляет слот, повторяя проверку пересечения в транзакции.
	CreateSlot(ctx context.Context, slot models.Slot) (int64, time.Time, error)
	// ListSlotsByTeacher возвращает все слоты преподавателя.
	ListSlotsByTeacher(ctx context.Context, teacherUID string) ([]*models.Slot, error)
	// ListTeacherSlots возвращает будущие слоты преподавателя с пагинацией.
	ListTeacherSlots(ctx context.Context, teacherUID string, after time.Time, date *time.Time, limit, offset int) ([]*models.Slot, error)
	// CountTeacherSlots считает будущие слоты преподавателя.
	CountTeacherSlots(ctx context.Context, teacherUID string, after time.Time, date *time.Time) (int, error)
	// ListAvailableSlots возвращает будущие слоты всех преподавателей.
	ListAvailableSlots(ctx context.Context, after time.Time, subject *string, date *time.Time, limit, offset int) ([]*models.SlotTeacher, error)
	// CountAvailableSlots считает будущие слоты всех преподавателей.
	CountAvailableSlots(ctx context.Context, after time.Time, subject *string, date *time.Time) (int, error)
	// ListSlotStudents возвращает записавшихся студентов по слотам.
	ListSlotStudents(ctx context.Context, slotIDs []int64) (map[int64][]models.PublicUser, error)
}

// SlotService реализует бизнес-логику работы со слотами.
type SlotService struct {
	repo SlotRepository
	clk  clock.Clock
	log  *slog.Logger
}

// NewSlotService создает новый экземпляр SlotService.
func NewSlotService(repo SlotRepository, clk clock.Clock, log *slog.Logger) *SlotService {
	return &SlotService{
		repo: repo,
		clk:  clk,
		log:  log,
	}
}

// Create проверяет и сохраняет новый слот преподавателя. Правила применяются
// по порядку, первая нарушенная определяет ошибку: начало раньше конца,
// кратность часу, дата строго в будущем, отсутствие пересечения с
// существующими слотами этого преподавателя.
func (s *SlotService) Create(ctx context.Context, teacherUID string, req models.DummySlot) (*models.SlotView, error) {
	startTime, endTime, err := parseSlotTimes(req)
	if err != nil {
		return nil, err
	}

	if !startTime.Before(endTime) {
		return nil, models.ErrSlotInvalidRange
	}
	if !timerange.OnTheHour(startTime) || !timerange.OnTheHour(endTime) {
		return nil, models.ErrSlotInvalidGranularity
	}
	now := s.clk.Now()
	if !timerange.DateAfter(startTime, now) || !timerange.DateAfter(endTime, now) {
		return nil, models.ErrSlotNotFuture
	}

	existing, err := s.repo.ListSlotsByTeacher(ctx, teacherUID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if timerange.Overlaps(startTime, endTime, other.StartTime, other.EndTime) {
			return nil, models.ErrSlotOverlap
		}
	}

	slot := models.Slot{
		TeacherUID: teacherUID,
		StartTime:  startTime,
		EndTime:    endTime,
	}
	id, createdAt, err := s.repo.CreateSlot(ctx, slot)
	if err != nil {
		return nil, err
	}
	slot.ID = id
	slot.CreatedAt = createdAt

	s.log.Info("created new slot", slog.Int64("id", id), slog.String("teacher_uid", teacherUID))

	view := slot.View()
	return &view, nil
}

// ListOwn возвращает будущие слоты преподавателя со списками записавшихся
// студентов и общим количеством для пагинации.
func (s *SlotService) ListOwn(ctx context.Context, teacherUID string, date *time.Time, limit, offset int) ([]models.TeacherSlotView, int, error) {
	now := s.clk.Now()
	slots, err := s.repo.ListTeacherSlots(ctx, teacherUID, now, date, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.CountTeacherSlots(ctx, teacherUID, now, date)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]int64, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.ID)
	}
	students, err := s.repo.ListSlotStudents(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	views := make([]models.TeacherSlotView, 0, len(slots))
	for _, slot := range slots {
		booked := students[slot.ID]
		if booked == nil {
			booked = []models.PublicUser{}
		}
		views = append(views, models.TeacherSlotView{
			SlotView:       slot.View(),
			BookedStudents: booked,
		})
	}
	return views, count, nil
}

// Browse возвращает будущие слоты всех преподавателей для студентов,
// с фильтрами по предмету и дате и общим количеством для пагинации.
func (s *SlotService) Browse(ctx context.Context, subject *string, date *time.Time, limit, offset int) ([]models.AvailableSlotView, int, error) {
	now := s.clk.Now()
	slots, err := s.repo.ListAvailableSlots(ctx, now, subject, date, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.CountAvailableSlots(ctx, now, subject, date)
	if err != nil {
		return nil, 0, err
	}

	views := make([]models.AvailableSlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, slot.View())
	}
	return views, count, nil
}

func parseSlotTimes(req models.DummySlot) (time.Time, time.Time, error) {
	fieldErrs := models.FieldErrors{}
	startTime, err := time.Parse(models.TimeLayout, req.StartTime)
	if err != nil {
		fieldErrs.Add("start_time", "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DD hh:mm.")
	}
	endTime, err := time.Parse(models.TimeLayout, req.EndTime)
	if err != nil {
		fieldErrs.Add("end_time", "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DD hh:mm.")
	}
	if len(fieldErrs) > 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid slot times: %w", fieldErrs)
	}
	return startTime, endTime, nil
}
