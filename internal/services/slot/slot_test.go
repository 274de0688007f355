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

type SlotRepoMock struct{ mock.Mock }

func (m *SlotRepoMock) CreateSlot(ctx context.Context, slot models.Slot) (int64, time.Time, error) {
	args := m.Called(ctx, slot)
	return args.Get(0).(int64), args.Get(1).(time.Time), args.Error(2)
}

func (m *SlotRepoMock) ListSlotsByTeacher(ctx context.Context, teacherUID string) ([]*models.Slot, error) {
	args := m.Called(ctx, teacherUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Slot), args.Error(1)
}

func (m *SlotRepoMock) ListTeacherSlots(ctx context.Context, teacherUID string, after time.Time, date *time.Time, limit, offset int) ([]*models.Slot, error) {
	args := m.Called(ctx, teacherUID, after, date, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Slot), args.Error(1)
}

func (m *SlotRepoMock) CountTeacherSlots(ctx context.Context, teacherUID string, after time.Time, date *time.Time) (int, error) {
	args := m.Called(ctx, teacherUID, after, date)
	return args.Int(0), args.Error(1)
}

func (m *SlotRepoMock) ListAvailableSlots(ctx context.Context, after time.Time, subject *string, date *time.Time, limit, offset int) ([]*models.SlotTeacher, error) {
	args := m.Called(ctx, after, subject, date, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SlotTeacher), args.Error(1)
}

func (m *SlotRepoMock) CountAvailableSlots(ctx context.Context, after time.Time, subject *string, date *time.Time) (int, error) {
	args := m.Called(ctx, after, subject, date)
	return args.Int(0), args.Error(1)
}

func (m *SlotRepoMock) ListSlotStudents(ctx context.Context, slotIDs []int64) (map[int64][]models.PublicUser, error) {
	args := m.Called(ctx, slotIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]models.PublicUser), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// Часы зафиксированы на 2026-09-10 12:00, будущие даты отсчитываются от них.
var testNow = time.Date(2026, time.September, 10, 12, 0, 0, 0, time.UTC)

func TestSlotService_Create(t *testing.T) {
	const teacherUID = "teacher-1"

	existing := []*models.Slot{
		{
			ID:         7,
			TeacherUID: teacherUID,
			StartTime:  time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2026, time.September, 12, 12, 0, 0, 0, time.UTC),
		},
	}

	tests := []struct {
		name       string
		req        models.DummySlot
		setupMocks func(r *SlotRepoMock)
		wantErr    error
		wantFields []string
		wantID     int64
	}{
		{
			name: "success create",
			req:  models.DummySlot{StartTime: "2026-09-12 14:00", EndTime: "2026-09-12 16:00"},
			setupMocks: func(r *SlotRepoMock) {
				r.On("ListSlotsByTeacher", mock.Anything, teacherUID).Return(existing, nil).Once()
				r.On("CreateSlot", mock.Anything, mock.MatchedBy(func(s models.Slot) bool {
					return s.TeacherUID == teacherUID &&
						s.StartTime.Equal(time.Date(2026, time.September, 12, 14, 0, 0, 0, time.UTC))
				})).Return(int64(42), testNow, nil).Once()
			},
			wantID: 42,
		},
		{
			name: "adjacent slot is allowed",
			req:  models.DummySlot{StartTime: "2026-09-12 12:00", EndTime: "2026-09-12 13:00"},
			setupMocks: func(r *SlotRepoMock) {
				r.On("ListSlotsByTeacher", mock.Anything, teacherUID).Return(existing, nil).Once()
				r.On("CreateSlot", mock.Anything, mock.Anything).Return(int64(43), testNow, nil).Once()
			},
			wantID: 43,
		},
		{
			name:       "unparsable times return field errors",
			req:        models.DummySlot{StartTime: "12-09-2026 14:00", EndTime: "garbage"},
			wantFields: []string{"start_time", "end_time"},
		},
		{
			name:    "start after end",
			req:     models.DummySlot{StartTime: "2026-09-12 16:00", EndTime: "2026-09-12 14:00"},
			wantErr: models.ErrSlotInvalidRange,
		},
		{
			name:    "start equal to end",
			req:     models.DummySlot{StartTime: "2026-09-12 14:00", EndTime: "2026-09-12 14:00"},
			wantErr: models.ErrSlotInvalidRange,
		},
		{
			name:    "minutes not on the hour",
			req:     models.DummySlot{StartTime: "2026-09-12 14:30", EndTime: "2026-09-12 16:00"},
			wantErr: models.ErrSlotInvalidGranularity,
		},
		{
			name:    "today is not a future date",
			req:     models.DummySlot{StartTime: "2026-09-10 14:00", EndTime: "2026-09-10 16:00"},
			wantErr: models.ErrSlotNotFuture,
		},
		{
			name:    "past date rejected",
			req:     models.DummySlot{StartTime: "2026-09-01 14:00", EndTime: "2026-09-01 16:00"},
			wantErr: models.ErrSlotNotFuture,
		},
		{
			name: "overlap with existing slot",
			req:  models.DummySlot{StartTime: "2026-09-12 11:00", EndTime: "2026-09-12 13:00"},
			setupMocks: func(r *SlotRepoMock) {
				r.On("ListSlotsByTeacher", mock.Anything, teacherUID).Return(existing, nil).Once()
			},
			wantErr: models.ErrSlotOverlap,
		},
		{
			name: "range check wins over granularity",
			req:  models.DummySlot{StartTime: "2026-09-12 16:30", EndTime: "2026-09-12 14:30"},
			// Начало позже конца и минуты некратны часу, но первая
			// нарушенная проверка определяет ошибку.
			wantErr: models.ErrSlotInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(SlotRepoMock)
			if tt.setupMocks != nil {
				tt.setupMocks(repo)
			}
			svc := NewSlotService(repo, clock.Fixed(testNow), newNoopLogger())

			view, err := svc.Create(context.Background(), teacherUID, tt.req)

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, view)
			case len(tt.wantFields) > 0:
				var fieldErrs models.FieldErrors
				require.ErrorAs(t, err, &fieldErrs)
				for _, field := range tt.wantFields {
					assert.Contains(t, fieldErrs, field)
				}
			default:
				require.NoError(t, err)
				require.NotNil(t, view)
				assert.Equal(t, tt.wantID, view.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestSlotService_ListOwn(t *testing.T) {
	const teacherUID = "teacher-1"

	slots := []*models.Slot{
		{ID: 1, TeacherUID: teacherUID,
			StartTime: time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, time.September, 12, 11, 0, 0, 0, time.UTC)},
		{ID: 2, TeacherUID: teacherUID,
			StartTime: time.Date(2026, time.September, 13, 10, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, time.September, 13, 11, 0, 0, 0, time.UTC)},
	}
	students := map[int64][]models.PublicUser{
		1: {{UID: "student-1", Email: "s1@example.com"}},
	}

	repo := new(SlotRepoMock)
	repo.On("ListTeacherSlots", mock.Anything, teacherUID, testNow, (*time.Time)(nil), 10, 0).
		Return(slots, nil).Once()
	repo.On("CountTeacherSlots", mock.Anything, teacherUID, testNow, (*time.Time)(nil)).
		Return(12, nil).Once()
	repo.On("ListSlotStudents", mock.Anything, []int64{1, 2}).Return(students, nil).Once()

	svc := NewSlotService(repo, clock.Fixed(testNow), newNoopLogger())
	views, count, err := svc.ListOwn(context.Background(), teacherUID, nil, 10, 0)

	require.NoError(t, err)
	assert.Equal(t, 12, count)
	require.Len(t, views, 2)
	assert.Len(t, views[0].BookedStudents, 1)
	// Слот без бронирований отдаёт пустой список, а не null.
	assert.NotNil(t, views[1].BookedStudents)
	assert.Len(t, views[1].BookedStudents, 0)
	repo.AssertExpectations(t)
}

func TestSlotService_Browse(t *testing.T) {
	subject := "math"
	slots := []*models.SlotTeacher{
		{
			Slot: models.Slot{ID: 1, TeacherUID: "teacher-1",
				StartTime: time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC),
				EndTime:   time.Date(2026, time.September, 12, 11, 0, 0, 0, time.UTC)},
			Teacher: models.PublicUser{UID: "teacher-1", Email: "t1@example.com"},
			Subject: "Mathematics",
		},
	}

	repo := new(SlotRepoMock)
	repo.On("ListAvailableSlots", mock.Anything, testNow, &subject, (*time.Time)(nil), 10, 0).
		Return(slots, nil).Once()
	repo.On("CountAvailableSlots", mock.Anything, testNow, &subject, (*time.Time)(nil)).
		Return(1, nil).Once()

	svc := NewSlotService(repo, clock.Fixed(testNow), newNoopLogger())
	views, count, err := svc.Browse(context.Background(), &subject, nil, 10, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, views, 1)
	assert.Equal(t, "Mathematics", views[0].Subject)
	assert.Equal(t, "t1@example.com", views[0].Teacher.Email)
	repo.AssertExpectations(t)
}

func TestSlotService_Create_RepoError(t *testing.T) {
	repo := new(SlotRepoMock)
	repo.On("ListSlotsByTeacher", mock.Anything, "teacher-1").
		Return(nil, errors.New("db down")).Once()

	svc := NewSlotService(repo, clock.Fixed(testNow), newNoopLogger())
	_, err := svc.Create(context.Background(), "teacher-1",
		models.DummySlot{StartTime: "2026-09-12 14:00", EndTime: "2026-09-12 16:00"})

	assert.Error(t, err)
	repo.AssertExpectations(t)
}
