package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/online-class-book/internal/models"
)

func futureTime(days, hour int) time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).
		AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour)
}

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	subject := "Mathematics"

	t.Run("create teacher with profile", func(t *testing.T) {
		teacher := models.User{
			UID:          uuid.NewString(),
			Email:        "anna@example.com",
			FirstName:    "Anna",
			LastName:     "Ivanova",
			Phone:        "9261234567",
			Age:          35,
			Role:         models.RoleTeacher,
			PasswordHash: "hashedpassword",
			Subject:      &subject,
		}
		require.NoError(t, storage.CreateUser(ctx, teacher))

		got, err := storage.GetUserByEmail(ctx, "anna@example.com")
		require.NoError(t, err)
		assert.Equal(t, teacher.UID, got.UID)
		assert.Equal(t, models.RoleTeacher, got.Role)
		require.NotNil(t, got.Subject)
		assert.Equal(t, "Mathematics", *got.Subject)
	})

	t.Run("create student without profile", func(t *testing.T) {
		student := models.User{
			UID:          uuid.NewString(),
			Email:        "ivan@example.com",
			FirstName:    "Ivan",
			LastName:     "Petrov",
			Phone:        "9267654321",
			Age:          20,
			Role:         models.RoleStudent,
			PasswordHash: "hashedpassword",
		}
		require.NoError(t, storage.CreateUser(ctx, student))

		got, err := storage.GetUserByEmail(ctx, "ivan@example.com")
		require.NoError(t, err)
		assert.Nil(t, got.Subject)
	})

	t.Run("unknown email gives ErrUserNotFound", func(t *testing.T) {
		_, err := storage.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("find taken contacts", func(t *testing.T) {
		emailTaken, phoneTaken, err := storage.FindTakenContacts(ctx, "anna@example.com", "0000000000")
		require.NoError(t, err)
		assert.True(t, emailTaken)
		assert.False(t, phoneTaken)

		emailTaken, phoneTaken, err = storage.FindTakenContacts(ctx, "new@example.com", "9267654321")
		require.NoError(t, err)
		assert.False(t, emailTaken)
		assert.True(t, phoneTaken)
	})
}

func TestStorage_Slots(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	teacherUID := factory.CreateTeacher(t, "anna@example.com", "9261234567", "Mathematics")

	t.Run("create slot and list it back", func(t *testing.T) {
		slot := models.Slot{
			TeacherUID: teacherUID,
			StartTime:  futureTime(2, 10),
			EndTime:    futureTime(2, 12),
		}
		id, createdAt, err := storage.CreateSlot(ctx, slot)
		require.NoError(t, err)
		assert.Greater(t, id, int64(0))
		assert.False(t, createdAt.IsZero())

		slots, err := storage.ListSlotsByTeacher(ctx, teacherUID)
		require.NoError(t, err)
		require.Len(t, slots, 1)
		assert.Equal(t, id, slots[0].ID)
	})

	t.Run("overlapping insert rejected in transaction", func(t *testing.T) {
		slot := models.Slot{
			TeacherUID: teacherUID,
			StartTime:  futureTime(2, 11),
			EndTime:    futureTime(2, 13),
		}
		_, _, err := storage.CreateSlot(ctx, slot)
		assert.ErrorIs(t, err, models.ErrSlotOverlap)
	})

	t.Run("adjacent insert allowed", func(t *testing.T) {
		slot := models.Slot{
			TeacherUID: teacherUID,
			StartTime:  futureTime(2, 12),
			EndTime:    futureTime(2, 13),
		}
		_, _, err := storage.CreateSlot(ctx, slot)
		assert.NoError(t, err)
	})

	t.Run("list teacher slots filters past and by date", func(t *testing.T) {
		// Слот в прошлом не должен попадать в выдачу.
		factory.CreateSlot(t, teacherUID, futureTime(-2, 10), futureTime(-2, 11))

		now := time.Now().UTC()
		slots, err := storage.ListTeacherSlots(ctx, teacherUID, now, nil, 10, 0)
		require.NoError(t, err)
		assert.Len(t, slots, 2)

		count, err := storage.CountTeacherSlots(ctx, teacherUID, now, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		date := futureTime(3, 0)
		slots, err = storage.ListTeacherSlots(ctx, teacherUID, now, &date, 10, 0)
		require.NoError(t, err)
		assert.Len(t, slots, 0)
	})

	t.Run("available slots join teacher and filter by subject", func(t *testing.T) {
		otherUID := factory.CreateTeacher(t, "boris@example.com", "9260000001", "Physics")
		factory.CreateSlot(t, otherUID, futureTime(3, 10), futureTime(3, 11))

		now := time.Now().UTC()
		all, err := storage.ListAvailableSlots(ctx, now, nil, nil, 10, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		subject := "phys"
		filtered, err := storage.ListAvailableSlots(ctx, now, &subject, nil, 10, 0)
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, "Physics", filtered[0].Subject)
		assert.Equal(t, "boris@example.com", filtered[0].Teacher.Email)

		count, err := storage.CountAvailableSlots(ctx, now, &subject, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("get slot with teacher", func(t *testing.T) {
		id := factory.CreateSlot(t, teacherUID, futureTime(5, 10), futureTime(5, 11))

		got, err := storage.GetSlotWithTeacher(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, teacherUID, got.TeacherUID)
		assert.Equal(t, "Mathematics", got.Subject)

		_, err = storage.GetSlotWithTeacher(ctx, 99999)
		assert.ErrorIs(t, err, models.ErrSlotNotFound)
	})

	t.Run("list slot students", func(t *testing.T) {
		slotID := factory.CreateSlot(t, teacherUID, futureTime(6, 10), futureTime(6, 11))
		studentUID := factory.CreateStudent(t, "ivan@example.com", "9267654321")
		factory.CreateBooking(t, studentUID, slotID)

		students, err := storage.ListSlotStudents(ctx, []int64{slotID})
		require.NoError(t, err)
		require.Len(t, students[slotID], 1)
		assert.Equal(t, studentUID, students[slotID][0].UID)

		empty, err := storage.ListSlotStudents(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestStorage_Bookings(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	teacherUID := factory.CreateTeacher(t, "anna@example.com", "9261234567", "Mathematics")
	otherTeacherUID := factory.CreateTeacher(t, "boris@example.com", "9260000001", "Physics")
	studentUID := factory.CreateStudent(t, "ivan@example.com", "9267654321")

	slotID := factory.CreateSlot(t, teacherUID, futureTime(2, 10), futureTime(2, 12))
	slot := models.Slot{
		ID:         slotID,
		TeacherUID: teacherUID,
		StartTime:  futureTime(2, 10),
		EndTime:    futureTime(2, 12),
	}

	t.Run("create booking", func(t *testing.T) {
		id, createdAt, err := storage.CreateBooking(ctx, studentUID, slot)
		require.NoError(t, err)
		assert.Greater(t, id, int64(0))
		assert.False(t, createdAt.IsZero())
	})

	t.Run("same teacher same date rejected in transaction", func(t *testing.T) {
		laterID := factory.CreateSlot(t, teacherUID, futureTime(2, 15), futureTime(2, 16))
		later := models.Slot{
			ID:         laterID,
			TeacherUID: teacherUID,
			StartTime:  futureTime(2, 15),
			EndTime:    futureTime(2, 16),
		}
		_, _, err := storage.CreateBooking(ctx, studentUID, later)
		assert.ErrorIs(t, err, models.ErrBookingSameTeacherDay)
	})

	t.Run("time conflict with other teacher rejected in transaction", func(t *testing.T) {
		conflictID := factory.CreateSlot(t, otherTeacherUID, futureTime(2, 11), futureTime(2, 13))
		conflict := models.Slot{
			ID:         conflictID,
			TeacherUID: otherTeacherUID,
			StartTime:  futureTime(2, 11),
			EndTime:    futureTime(2, 13),
		}
		_, _, err := storage.CreateBooking(ctx, studentUID, conflict)
		assert.ErrorIs(t, err, models.ErrBookingTimeConflict)
	})

	t.Run("other teacher other day allowed", func(t *testing.T) {
		okID := factory.CreateSlot(t, otherTeacherUID, futureTime(3, 10), futureTime(3, 11))
		ok := models.Slot{
			ID:         okID,
			TeacherUID: otherTeacherUID,
			StartTime:  futureTime(3, 10),
			EndTime:    futureTime(3, 11),
		}
		_, _, err := storage.CreateBooking(ctx, studentUID, ok)
		assert.NoError(t, err)
	})

	t.Run("second student can book the same slot", func(t *testing.T) {
		otherStudentUID := factory.CreateStudent(t, "maria@example.com", "9269999999")
		_, _, err := storage.CreateBooking(ctx, otherStudentUID, slot)
		assert.NoError(t, err)
	})

	t.Run("list student bookings with teacher data", func(t *testing.T) {
		now := time.Now().UTC()
		bookings, err := storage.ListStudentBookings(ctx, studentUID, now, nil, 10, 0)
		require.NoError(t, err)
		require.Len(t, bookings, 2)
		assert.Equal(t, "anna@example.com", bookings[0].Slot.Teacher.Email)
		assert.Equal(t, "Mathematics", bookings[0].Slot.Subject)

		count, err := storage.CountStudentBookings(ctx, studentUID, now, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		all, err := storage.ListBookingsByStudent(ctx, studentUID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}
