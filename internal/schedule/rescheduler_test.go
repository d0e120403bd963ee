package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hvac-dispatch-backend/internal/model"
	"hvac-dispatch-backend/internal/store"
)

// mockReschedulerStore is a mock implementation of the ReschedulerStore interface.
type mockReschedulerStore struct {
	OrderByIDFunc           func(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error)
	UpdateOrderScheduleFunc func(ctx context.Context, orderID uuid.UUID, upd store.ScheduleUpdate) error
}

func (m *mockReschedulerStore) OrderByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
	return m.OrderByIDFunc(ctx, id)
}

func (m *mockReschedulerStore) UpdateOrderSchedule(ctx context.Context, orderID uuid.UUID, upd store.ScheduleUpdate) error {
	return m.UpdateOrderScheduleFunc(ctx, orderID, upd)
}

type recordingNotifier struct {
	orderIDs []uuid.UUID
	messages []string
}

func (r *recordingNotifier) OrderRescheduled(orderID uuid.UUID, message string) {
	r.orderIDs = append(r.orderIDs, orderID)
	r.messages = append(r.messages, message)
}

func emptyDetector() *Detector {
	return NewDetector(fixedStore(nil), "09:00", 120)
}

func TestRescheduler_MultiDayShiftPreservesSpan(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	order := &model.ServiceOrder{
		ID:               uuid.New(),
		OrderNumber:      "SO-200",
		Status:           model.StatusScheduled,
		ScheduledDate:    &start,
		ScheduledTime:    strptr("08:00"),
		EstimatedEndDate: &end,
		EstimatedEndTime: strptr("17:00"),
	}

	var persisted *store.ScheduleUpdate
	mockStore := &mockReschedulerStore{
		OrderByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
			return order, nil
		},
		UpdateOrderScheduleFunc: func(ctx context.Context, orderID uuid.UUID, upd store.ScheduleUpdate) error {
			persisted = &upd
			return nil
		},
	}

	notifier := &recordingNotifier{}
	rescheduler := NewRescheduler(mockStore, emptyDetector(), notifier)

	newStart := time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC)
	err := rescheduler.MoveEvent(context.Background(), adminViewer(), order.ID, newStart, newStart)
	require.NoError(t, err)
	require.NotNil(t, persisted)

	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), persisted.ScheduledDate)
	assert.Equal(t, "08:00", persisted.ScheduledTime)
	require.NotNil(t, persisted.EstimatedEndDate)
	assert.Equal(t, time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC), *persisted.EstimatedEndDate,
		"the two-day span is preserved under a pure date translation")
	require.NotNil(t, persisted.EstimatedEndTime)
	assert.Equal(t, "17:00", *persisted.EstimatedEndTime, "the original end time is carried forward")

	require.Len(t, notifier.orderIDs, 1)
	assert.Equal(t, order.ID, notifier.orderIDs[0])
}

func TestRescheduler_ZeroDayDeltaKeepsEndDate(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	order := &model.ServiceOrder{
		ID:               uuid.New(),
		OrderNumber:      "SO-201",
		Status:           model.StatusScheduled,
		ScheduledDate:    &start,
		ScheduledTime:    strptr("08:00"),
		EstimatedEndDate: &end,
	}

	var persisted *store.ScheduleUpdate
	mockStore := &mockReschedulerStore{
		OrderByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
			return order, nil
		},
		UpdateOrderScheduleFunc: func(ctx context.Context, orderID uuid.UUID, upd store.ScheduleUpdate) error {
			persisted = &upd
			return nil
		},
	}

	rescheduler := NewRescheduler(mockStore, emptyDetector(), nil)

	// Same day, different time: no date translation, end date untouched.
	newStart := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	err := rescheduler.MoveEvent(context.Background(), adminViewer(), order.ID, newStart, newStart)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "13:00", persisted.ScheduledTime)
	require.NotNil(t, persisted.EstimatedEndDate)
	assert.Equal(t, end, *persisted.EstimatedEndDate)
}

func TestRescheduler_ConflictAbortsWithoutPersisting(t *testing.T) {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	technicianID := uuid.New()

	order := &model.ServiceOrder{
		ID:                uuid.New(),
		OrderNumber:       "SO-202",
		Status:            model.StatusScheduled,
		ScheduledDate:     &day,
		ScheduledTime:     strptr("08:00"),
		EstimatedDuration: 120,
		Assignments:       []model.Assignment{{TechnicianID: technicianID, Role: model.AssignmentRolePrimary}},
	}

	persistCalls := 0
	mockStore := &mockReschedulerStore{
		OrderByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
			return order, nil
		},
		UpdateOrderScheduleFunc: func(ctx context.Context, orderID uuid.UUID, upd store.ScheduleUpdate) error {
			persistCalls++
			return nil
		},
	}

	// The technician already has 09:00-11:00 booked.
	detector := NewDetector(fixedStore([]model.Assignment{timedAssignment(day, "09:00", 120)}), "09:00", 120)
	rescheduler := NewRescheduler(mockStore, detector, nil)

	newStart := day.Add(10 * time.Hour)
	err := rescheduler.MoveEvent(context.Background(), adminViewer(), order.ID, newStart, newStart.Add(2*time.Hour))

	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.True(t, conflictErr.Result.HasConflict)
	assert.Len(t, conflictErr.Result.Collisions, 1)
	assert.Equal(t, 0, persistCalls, "a conflicting move must not reach the store")
}

func TestRescheduler_ExcludesTheMovedOrder(t *testing.T) {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	technicianID := uuid.New()

	order := &model.ServiceOrder{
		ID:                uuid.New(),
		OrderNumber:       "SO-203",
		Status:            model.StatusScheduled,
		ScheduledDate:     &day,
		ScheduledTime:     strptr("09:00"),
		EstimatedDuration: 120,
		Assignments:       []model.Assignment{{TechnicianID: technicianID, Role: model.AssignmentRolePrimary}},
	}

	mockStore := &mockReschedulerStore{
		OrderByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
			return order, nil
		},
		UpdateOrderScheduleFunc: func(ctx context.Context, orderID uuid.UUID, upd store.ScheduleUpdate) error {
			return nil
		},
	}

	var gotExclude uuid.UUID
	conflictStore := &mockConflictStore{
		AssignmentsOnDateFunc: func(ctx context.Context, tid uuid.UUID, date time.Time, excludeOrderID uuid.UUID) ([]model.Assignment, error) {
			gotExclude = excludeOrderID
			return nil, nil
		},
	}

	rescheduler := NewRescheduler(mockStore, NewDetector(conflictStore, "09:00", 120), nil)

	newStart := day.Add(11 * time.Hour)
	err := rescheduler.MoveEvent(context.Background(), adminViewer(), order.ID, newStart, newStart.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, order.ID, gotExclude)
}

func TestRescheduler_PartnerViewersAreRejected(t *testing.T) {
	loads := 0
	mockStore := &mockReschedulerStore{
		OrderByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
			loads++
			return nil, nil
		},
		UpdateOrderScheduleFunc: func(ctx context.Context, orderID uuid.UUID, upd store.ScheduleUpdate) error {
			t.Fatal("must not persist")
			return nil
		},
	}

	rescheduler := NewRescheduler(mockStore, emptyDetector(), nil)

	now := time.Now().UTC()
	err := rescheduler.MoveEvent(context.Background(), Viewer{Role: RolePartner, ID: uuid.New()}, uuid.New(), now, now)
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, 0, loads, "the gate rejects before touching the store")
}
