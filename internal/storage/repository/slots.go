package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/online-class-book/internal/models"
)

// CreateSlot вставляет новый слот преподавателя и возвращает его ID и время
// создания. Проверка пересечения повторяется внутри транзакции под
// advisory-блокировкой по преподавателю: два конкурентных запроса одного
// преподавателя сериализуются, и второй получает ErrSlotOverlap.
func (s *Storage) CreateSlot(ctx context.Context, slot models.Slot) (int64, time.Time, error) {
	const op = "storage.CreateSlot"
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
		`SELECT pg_advisory_xact_lock(hashtext($1))`, slot.TeacherUID); err != nil {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	var overlaps bool
	query := `SELECT EXISTS (
			      SELECT 1 FROM availability_slots
			      WHERE teacher_uid = $1
			        AND start_time < $3
			        AND end_time > $2)`
	if err := tx.QueryRowContext(ctx, query,
		slot.TeacherUID, slot.StartTime, slot.EndTime).Scan(&overlaps); err != nil {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	if overlaps {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, models.ErrSlotOverlap)
	}

	var newID int64
	var createdAt time.Time
	query = `INSERT INTO availability_slots (teacher_uid, start_time, end_time)
			 VALUES ($1, $2, $3)
			 RETURNING id, created_at`
	if err := tx.QueryRowContext(ctx, query,
		slot.TeacherUID, slot.StartTime, slot.EndTime).Scan(&newID, &createdAt); err != nil {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return newID, createdAt, nil
}

// ListSlotsByTeacher возвращает все слоты преподавателя. Используется
// проверкой пересечения при создании нового слота.
func (s *Storage) ListSlotsByTeacher(ctx context.Context, teacherUID string) ([]*models.Slot, error) {
	const op = "storage.ListSlotsByTeacher"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, teacher_uid, start_time, end_time, created_at
			  FROM availability_slots
			  WHERE teacher_uid = $1
			  ORDER BY start_time`
	rows, err := s.DB.QueryContext(ctx, query, teacherUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Slot
	for rows.Next() {
		var item models.Slot
		if err := rows.Scan(&item.ID, &item.TeacherUID, &item.StartTime,
			&item.EndTime, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListTeacherSlots возвращает будущие слоты преподавателя (start_time > after),
// опционально за конкретную дату, по возрастанию start_time с пагинацией.
func (s *Storage) ListTeacherSlots(ctx context.Context, teacherUID string, after time.Time, date *time.Time, limit, offset int) ([]*models.Slot, error) {
	const op = "storage.ListTeacherSlots"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, teacher_uid, start_time, end_time, created_at
			  FROM availability_slots
			  WHERE teacher_uid = $1
			    AND start_time > $2
			    AND ($3::date IS NULL OR start_time::date = $3)
			  ORDER BY start_time
			  LIMIT $4 OFFSET $5`
	rows, err := s.DB.QueryContext(ctx, query, teacherUID, after, date, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Slot
	for rows.Next() {
		var item models.Slot
		if err := rows.Scan(&item.ID, &item.TeacherUID, &item.StartTime,
			&item.EndTime, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountTeacherSlots считает будущие слоты преподавателя под те же фильтры,
// что и ListTeacherSlots.
func (s *Storage) CountTeacherSlots(ctx context.Context, teacherUID string, after time.Time, date *time.Time) (int, error) {
	const op = "storage.CountTeacherSlots"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*)
			  FROM availability_slots
			  WHERE teacher_uid = $1
			    AND start_time > $2
			    AND ($3::date IS NULL OR start_time::date = $3)`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, teacherUID, after, date).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListAvailableSlots возвращает будущие слоты всех преподавателей с данными
// владельца. Фильтр по предмету — подстрока без учёта регистра, по дате —
// точное совпадение календарной даты начала.
func (s *Storage) ListAvailableSlots(ctx context.Context, after time.Time, subject *string, date *time.Time, limit, offset int) ([]*models.SlotTeacher, error) {
	const op = "storage.ListAvailableSlots"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.teacher_uid, s.start_time, s.end_time, s.created_at,
			      u.uid, u.email, u.first_name, u.last_name, u.phone, u.age, u.role,
			      tp.subject
			  FROM availability_slots s
			  JOIN users u ON u.uid = s.teacher_uid
			  JOIN teacher_profiles tp ON tp.user_uid = s.teacher_uid
			  WHERE s.start_time > $1
			    AND ($2::text IS NULL OR tp.subject ILIKE '%' || $2 || '%')
			    AND ($3::date IS NULL OR s.start_time::date = $3)
			  ORDER BY s.start_time
			  LIMIT $4 OFFSET $5`
	rows, err := s.DB.QueryContext(ctx, query, after, subject, date, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SlotTeacher
	for rows.Next() {
		var item models.SlotTeacher
		if err := rows.Scan(&item.ID, &item.TeacherUID, &item.StartTime,
			&item.EndTime, &item.CreatedAt,
			&item.Teacher.UID, &item.Teacher.Email, &item.Teacher.FirstName,
			&item.Teacher.LastName, &item.Teacher.Phone, &item.Teacher.Age,
			&item.Teacher.Role, &item.Subject); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountAvailableSlots считает будущие слоты под те же фильтры,
// что и ListAvailableSlots.
func (s *Storage) CountAvailableSlots(ctx context.Context, after time.Time, subject *string, date *time.Time) (int, error) {
	const op = "storage.CountAvailableSlots"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*)
			  FROM availability_slots s
			  JOIN teacher_profiles tp ON tp.user_uid = s.teacher_uid
			  WHERE s.start_time > $1
			    AND ($2::text IS NULL OR tp.subject ILIKE '%' || $2 || '%')
			    AND ($3::date IS NULL OR s.start_time::date = $3)`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, after, subject, date).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// GetSlotWithTeacher возвращает слот по ID вместе с данными преподавателя.
func (s *Storage) GetSlotWithTeacher(ctx context.Context, id int64) (*models.SlotTeacher, error) {
	const op = "storage.GetSlotWithTeacher"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.teacher_uid, s.start_time, s.end_time, s.created_at,
			      u.uid, u.email, u.first_name, u.last_name, u.phone, u.age, u.role,
			      tp.subject
			  FROM availability_slots s
			  JOIN users u ON u.uid = s.teacher_uid
			  JOIN teacher_profiles tp ON tp.user_uid = s.teacher_uid
			  WHERE s.id = $1`
	var item models.SlotTeacher
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&item.ID, &item.TeacherUID, &item.StartTime,
		&item.EndTime, &item.CreatedAt,
		&item.Teacher.UID, &item.Teacher.Email, &item.Teacher.FirstName,
		&item.Teacher.LastName, &item.Teacher.Phone, &item.Teacher.Age,
		&item.Teacher.Role, &item.Subject); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrSlotNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}

// ListSlotStudents возвращает записавшихся студентов для каждого слота
// из slotIDs. Слоты без бронирований в результат не попадают.
func (s *Storage) ListSlotStudents(ctx context.Context, slotIDs []int64) (map[int64][]models.PublicUser, error) {
	const op = "storage.ListSlotStudents"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if len(slotIDs) == 0 {
		return map[int64][]models.PublicUser{}, nil
	}

	query := `SELECT b.slot_id, u.uid, u.email, u.first_name, u.last_name,
			      u.phone, u.age, u.role
			  FROM slot_bookings b
			  JOIN users u ON u.uid = b.student_uid
			  WHERE b.slot_id = ANY($1)
			  ORDER BY b.created_at`
	rows, err := s.DB.QueryContext(ctx, query, slotIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[int64][]models.PublicUser)
	for rows.Next() {
		var slotID int64
		var student models.PublicUser
		if err := rows.Scan(&slotID, &student.UID, &student.Email,
			&student.FirstName, &student.LastName, &student.Phone,
			&student.Age, &student.Role); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[slotID] = append(result[slotID], student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
