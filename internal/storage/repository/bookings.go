package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/online-class-book/internal/models"
)

// CreateBooking вставляет бронирование и возвращает его ID и время создания.
// Проверки конфликтов повторяются внутри транзакции под advisory-блокировкой
// по студенту: два конкурентных запроса одного студента сериализуются,
// и второй получает соответствующую доменную ошибку.
func (s *Storage) CreateBooking(ctx context.Context, studentUID string, slot models.Slot) (int64, time.Time, error) {
	const op = "storage.CreateBooking"
	select {
	case <-ctx.Done():
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, studentUID); err != nil {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	var sameTeacherDay bool
	query := `SELECT EXISTS (
			      SELECT 1
			      FROM slot_bookings b
			      JOIN availability_slots s ON s.id = b.slot_id
			      WHERE b.student_uid = $1
			        AND s.teacher_uid = $2
			        AND s.start_time::date = $3::date)`
	if err := tx.QueryRowContext(ctx, query,
		studentUID, slot.TeacherUID, slot.StartTime).Scan(&sameTeacherDay); err != nil {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	if sameTeacherDay {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, models.ErrBookingSameTeacherDay)
	}

	var timeConflict bool
	query = `SELECT EXISTS (
			     SELECT 1
			     FROM slot_bookings b
			     JOIN availability_slots s ON s.id = b.slot_id
			     WHERE b.student_uid = $1
			       AND s.start_time < $3
			       AND s.end_time > $2)`
	if err := tx.QueryRowContext(ctx, query,
		studentUID, slot.StartTime, slot.EndTime).Scan(&timeConflict); err != nil {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	if timeConflict {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, models.ErrBookingTimeConflict)
	}

	var newID int64
	var createdAt time.Time
	query = `INSERT INTO slot_bookings (student_uid, slot_id)
			 VALUES ($1, $2)
			 RETURNING id, created_at`
	if err := tx.QueryRowContext(ctx, query, studentUID, slot.ID).Scan(&newID, &createdAt); err != nil {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return newID, createdAt, nil
}

// ListBookingsByStudent возвращает все бронирования студента со слотами.
// Используется проверками конфликтов при создании нового бронирования.
func (s *Storage) ListBookingsByStudent(ctx context.Context, studentUID string) ([]*models.BookingSlot, error) {
	const op = "storage.ListBookingsByStudent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT b.id, b.student_uid, b.slot_id, b.created_at,
			      s.id, s.teacher_uid, s.start_time, s.end_time, s.created_at
			  FROM slot_bookings b
			  JOIN availability_slots s ON s.id = b.slot_id
			  WHERE b.student_uid = $1
			  ORDER BY s.start_time`
	rows, err := s.DB.QueryContext(ctx, query, studentUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.BookingSlot
	for rows.Next() {
		var item models.BookingSlot
		if err := rows.Scan(&item.ID, &item.StudentUID, &item.SlotID, &item.CreatedAt,
			&item.Slot.ID, &item.Slot.TeacherUID, &item.Slot.StartTime,
			&item.Slot.EndTime, &item.Slot.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListStudentBookings возвращает будущие бронирования студента
// (start_time слота > after) с полным слотом и данными преподавателя,
// опционально за конкретную дату, по возрастанию start_time с пагинацией.
func (s *Storage) ListStudentBookings(ctx context.Context, studentUID string, after time.Time, date *time.Time, limit, offset int) ([]*models.BookingSlot, error) {
	const op = "storage.ListStudentBookings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT b.id, b.student_uid, b.slot_id, b.created_at,
			      s.id, s.teacher_uid, s.start_time, s.end_time, s.created_at,
			      u.uid, u.email, u.first_name, u.last_name, u.phone, u.age, u.role,
			      tp.subject
			  FROM slot_bookings b
			  JOIN availability_slots s ON s.id = b.slot_id
			  JOIN users u ON u.uid = s.teacher_uid
			  JOIN teacher_profiles tp ON tp.user_uid = s.teacher_uid
			  WHERE b.student_uid = $1
			    AND s.start_time > $2
			    AND ($3::date IS NULL OR s.start_time::date = $3)
			  ORDER BY s.start_time
			  LIMIT $4 OFFSET $5`
	rows, err := s.DB.QueryContext(ctx, query, studentUID, after, date, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.BookingSlot
	for rows.Next() {
		var item models.BookingSlot
		if err := rows.Scan(&item.ID, &item.StudentUID, &item.SlotID, &item.CreatedAt,
			&item.Slot.ID, &item.Slot.TeacherUID, &item.Slot.StartTime,
			&item.Slot.EndTime, &item.Slot.CreatedAt,
			&item.Slot.Teacher.UID, &item.Slot.Teacher.Email,
			&item.Slot.Teacher.FirstName, &item.Slot.Teacher.LastName,
			&item.Slot.Teacher.Phone, &item.Slot.Teacher.Age,
			&item.Slot.Teacher.Role, &item.Slot.Subject); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountStudentBookings считает будущие бронирования студента под те же
// фильтры, что и ListStudentBookings.
func (s *Storage) CountStudentBookings(ctx context.Context, studentUID string, after time.Time, date *time.Time) (int, error) {
	const op = "storage.CountStudentBookings"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*)
			  FROM slot_bookings b
			  JOIN availability_slots s ON s.id = b.slot_id
			  WHERE b.student_uid = $1
			    AND s.start_time > $2
			    AND ($3::date IS NULL OR s.start_time::date = $3)`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, studentUID, after, date).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
