package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/online-class-book/internal/lib/clock"
	"github.com/magabrotheeeer/online-class-book/internal/models"
)

type BookingRepoMock struct{ mock.Mock }

func (m *BookingRepoMock) GetSlotWithTeacher(ctx context.Context, id int64) (*models.SlotTeacher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SlotTeacher), args.Error(1)
}

func (m *BookingRepoMock) ListBookingsByStudent(ctx context.Context, studentUID string) ([]*models.BookingSlot, error) {
	args := m.Called(ctx, studentUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingSlot), args.Error(1)
}

func (m *BookingRepoMock) CreateBooking(ctx context.Context, studentUID string, slot models.Slot) (int64, time.Time, error) {
	args := m.Called(ctx, studentUID, slot)
	return args.Get(0).(int64), args.Get(1).(time.Time), args.Error(2)
}

func (m *BookingRepoMock) ListStudentBookings(ctx context.Context, studentUID string, after time.Time, date *time.Time, limit, offset int) ([]*models.BookingSlot, error) {
	args := m.Called(ctx, studentUID, after, date, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingSlot), args.Error(1)
}

func (m *BookingRepoMock) CountStudentBookings(ctx context.Context, studentUID string, after time.Time, date *time.Time) (int, error) {
	args := m.Called(ctx, studentUID, after, date)
	return args.Int(0), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) BookingCreated(event models.BookingEvent) error {
	return m.Called(event).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var testNow = time.Date(2026, time.September, 10, 12, 0, 0, 0, time.UTC)

func targetSlot() *models.SlotTeacher {
	return &models.SlotTeacher{
		Slot: models.Slot{
			ID:         5,
			TeacherUID: "teacher-1",
			StartTime:  time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2026, time.September, 12, 12, 0, 0, 0, time.UTC),
		},
		Teacher: models.PublicUser{UID: "teacher-1", Email: "t1@example.com"},
		Subject: "Mathematics",
	}
}

func bookingOf(teacherUID string, start, end time.Time) *models.BookingSlot {
	return &models.BookingSlot{
		Booking: models.Booking{ID: 1, StudentUID: "student-1", SlotID: 99},
		Slot: models.SlotTeacher{
			Slot: models.Slot{ID: 99, TeacherUID: teacherUID, StartTime: start, EndTime: end},
		},
	}
}

func TestBookingService_Create(t *testing.T) {
	const studentUID = "student-1"

	tests := []struct {
		name       string
		setupMocks func(r *BookingRepoMock)
		wantErr    error
		wantID     int64
	}{
		{
			name: "success booking",
			setupMocks: func(r *BookingRepoMock) {
				r.On("GetSlotWithTeacher", mock.Anything, int64(5)).Return(targetSlot(), nil).Once()
				r.On("ListBookingsByStudent", mock.Anything, studentUID).
					Return([]*models.BookingSlot{}, nil).Once()
				r.On("CreateBooking", mock.Anything, studentUID, targetSlot().Slot).
					Return(int64(11), testNow, nil).Once()
			},
			wantID: 11,
		},
		{
			name: "slot does not exist",
			setupMocks: func(r *BookingRepoMock) {
				r.On("GetSlotWithTeacher", mock.Anything, int64(5)).
					Return(nil, models.ErrSlotNotFound).Once()
			},
			wantErr: models.ErrSlotNotFound,
		},
		{
			name: "same teacher same date rejected",
			setupMocks: func(r *BookingRepoMock) {
				r.On("GetSlotWithTeacher", mock.Anything, int64(5)).Return(targetSlot(), nil).Once()
				r.On("ListBookingsByStudent", mock.Anything, studentUID).
					Return([]*models.BookingSlot{
						// Другое время, но тот же преподаватель и та же дата.
						bookingOf("teacher-1",
							time.Date(2026, time.September, 12, 15, 0, 0, 0, time.UTC),
							time.Date(2026, time.September, 12, 16, 0, 0, 0, time.UTC)),
					}, nil).Once()
			},
			wantErr: models.ErrBookingSameTeacherDay,
		},
		{
			name: "time overlap with other teacher rejected",
			setupMocks: func(r *BookingRepoMock) {
				r.On("GetSlotWithTeacher", mock.Anything, int64(5)).Return(targetSlot(), nil).Once()
				r.On("ListBookingsByStudent", mock.Anything, studentUID).
					Return([]*models.BookingSlot{
						bookingOf("teacher-2",
							time.Date(2026, time.September, 12, 11, 0, 0, 0, time.UTC),
							time.Date(2026, time.September, 12, 13, 0, 0, 0, time.UTC)),
					}, nil).Once()
			},
			wantErr: models.ErrBookingTimeConflict,
		},
		{
			name: "adjacent booking with other teacher allowed",
			setupMocks: func(r *BookingRepoMock) {
				r.On("GetSlotWithTeacher", mock.Anything, int64(5)).Return(targetSlot(), nil).Once()
				r.On("ListBookingsByStudent", mock.Anything, studentUID).
					Return([]*models.BookingSlot{
						bookingOf("teacher-2",
							time.Date(2026, time.September, 12, 12, 0, 0, 0, time.UTC),
							time.Date(2026, time.September, 12, 13, 0, 0, 0, time.UTC)),
					}, nil).Once()
				r.On("CreateBooking", mock.Anything, studentUID, targetSlot().Slot).
					Return(int64(12), testNow, nil).Once()
			},
			wantID: 12,
		},
		{
			name: "same teacher other date overlap check still applies",
			setupMocks: func(r *BookingRepoMock) {
				r.On("GetSlotWithTeacher", mock.Anything, int64(5)).Return(targetSlot(), nil).Once()
				r.On("ListBookingsByStudent", mock.Anything, studentUID).
					Return([]*models.BookingSlot{
						bookingOf("teacher-1",
							time.Date(2026, time.September, 13, 10, 0, 0, 0, time.UTC),
							time.Date(2026, time.September, 13, 12, 0, 0, 0, time.UTC)),
					}, nil).Once()
				r.On("CreateBooking", mock.Anything, studentUID, targetSlot().Slot).
					Return(int64(13), testNow, nil).Once()
			},
			wantID: 13,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(BookingRepoMock)
			tt.setupMocks(repo)
			svc := NewBookingService(repo, nil, clock.Fixed(testNow), newNoopLogger())

			view, err := svc.Create(context.Background(), studentUID, "s1@example.com", 5)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, view)
			} else {
				require.NoError(t, err)
				require.NotNil(t, view)
				assert.Equal(t, tt.wantID, view.ID)
				assert.Equal(t, "Mathematics", view.Slot.Subject)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestBookingService_Create_PublishesEvent(t *testing.T) {
	repo := new(BookingRepoMock)
	repo.On("GetSlotWithTeacher", mock.Anything, int64(5)).Return(targetSlot(), nil).Once()
	repo.On("ListBookingsByStudent", mock.Anything, "student-1").
		Return([]*models.BookingSlot{}, nil).Once()
	repo.On("CreateBooking", mock.Anything, "student-1", targetSlot().Slot).
		Return(int64(11), testNow, nil).Once()

	publisher := new(PublisherMock)
	publisher.On("BookingCreated", mock.MatchedBy(func(e models.BookingEvent) bool {
		return e.BookingID == 11 && e.StudentEmail == "s1@example.com" &&
			e.TeacherEmail == "t1@example.com" && e.SlotID == 5
	})).Return(nil).Once()

	svc := NewBookingService(repo, publisher, clock.Fixed(testNow), newNoopLogger())
	_, err := svc.Create(context.Background(), "student-1", "s1@example.com", 5)

	require.NoError(t, err)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestBookingService_Create_PublishErrorDoesNotFail(t *testing.T) {
	repo := new(BookingRepoMock)
	repo.On("GetSlotWithTeacher", mock.Anything, int64(5)).Return(targetSlot(), nil).Once()
	repo.On("ListBookingsByStudent", mock.Anything, "student-1").
		Return([]*models.BookingSlot{}, nil).Once()
	repo.On("CreateBooking", mock.Anything, "student-1", targetSlot().Slot).
		Return(int64(11), testNow, nil).Once()

	publisher := new(PublisherMock)
	publisher.On("BookingCreated", mock.Anything).Return(errors.New("amqp down")).Once()

	svc := NewBookingService(repo, publisher, clock.Fixed(testNow), newNoopLogger())
	view, err := svc.Create(context.Background(), "student-1", "s1@example.com", 5)

	require.NoError(t, err)
	assert.NotNil(t, view)
	publisher.AssertExpectations(t)
}

func TestBookingService_List(t *testing.T) {
	bookings := []*models.BookingSlot{
		{
			Booking: models.Booking{ID: 1, StudentUID: "student-1", SlotID: 5, CreatedAt: testNow},
			Slot:    *targetSlot(),
		},
	}

	repo := new(BookingRepoMock)
	repo.On("ListStudentBookings", mock.Anything, "student-1", testNow, (*time.Time)(nil), 10, 0).
		Return(bookings, nil).Once()
	repo.On("CountStudentBookings", mock.Anything, "student-1", testNow, (*time.Time)(nil)).
		Return(1, nil).Once()

	svc := NewBookingService(repo, nil, clock.Fixed(testNow), newNoopLogger())
	views, count, err := svc.List(context.Background(), "student-1", nil, 10, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, views, 1)
	assert.Equal(t, int64(1), views[0].ID)
	assert.Equal(t, "t1@example.com", views[0].Slot.Teacher.Email)
	repo.AssertExpectations(t)
}
