package kanban

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hvac-dispatch-backend/internal/model"
)

// mockPipelineStore is a mock implementation of the PipelineStore interface.
type mockPipelineStore struct {
	BoardOrdersFunc       func(ctx context.Context) ([]model.ServiceOrder, error)
	UpdateOrderStatusFunc func(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error
}

func (m *mockPipelineStore) BoardOrders(ctx context.Context) ([]model.ServiceOrder, error) {
	return m.BoardOrdersFunc(ctx)
}

func (m *mockPipelineStore) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
	return m.UpdateOrderStatusFunc(ctx, orderID, status)
}

type recordingNotifier struct {
	successes []string
	failures  []string
}

func (r *recordingNotifier) Success(msg string) { r.successes = append(r.successes, msg) }
func (r *recordingNotifier) Failure(msg string) { r.failures = append(r.failures, msg) }

func boardOrder(num string, status model.OrderStatus) model.ServiceOrder {
	return model.ServiceOrder{
		ID:          uuid.New(),
		OrderNumber: num,
		Status:      status,
	}
}

// elapsedTimer elapses any requested settle delay immediately and records
// the duration asked for.
func elapsedTimer(recorded *time.Duration) func(time.Duration) <-chan time.Time {
	return func(d time.Duration) <-chan time.Time {
		*recorded = d
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
}

func TestPipeline_MoveToSameColumnIsNoop(t *testing.T) {
	order := boardOrder("SO-300", model.StatusListing)

	writes := 0
	store := &mockPipelineStore{
		BoardOrdersFunc: func(ctx context.Context) ([]model.ServiceOrder, error) {
			return []model.ServiceOrder{order}, nil
		},
		UpdateOrderStatusFunc: func(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
			writes++
			return nil
		},
	}

	notifier := &recordingNotifier{}
	pipeline := NewPipeline(store, notifier, nil, time.Second)
	require.NoError(t, pipeline.Refresh(context.Background()))

	move, err := pipeline.MoveCard(order.ID, model.StatusListing)
	require.NoError(t, err)
	assert.Nil(t, move, "same-column drop is a no-op")
	assert.Equal(t, 0, writes, "a no-op issues no network call")
	assert.Empty(t, notifier.successes)
	assert.Equal(t, StateSynced, pipeline.State())
	assert.Equal(t, model.StatusListing, pipeline.Orders()[0].Status)
}

func TestPipeline_OptimisticRevertOnFailure(t *testing.T) {
	order := boardOrder("SO-301", model.StatusListing)

	store := &mockPipelineStore{
		BoardOrdersFunc: func(ctx context.Context) ([]model.ServiceOrder, error) {
			return []model.ServiceOrder{order}, nil
		},
		UpdateOrderStatusFunc: func(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
			return errors.New("store rejected the write")
		},
	}

	notifier := &recordingNotifier{}
	pipeline := NewPipeline(store, notifier, nil, time.Second)
	require.NoError(t, pipeline.Refresh(context.Background()))

	move, err := pipeline.MoveCard(order.ID, model.StatusScheduled)
	require.NoError(t, err)
	require.NotNil(t, move)

	// The optimistic mutation and its success toast happen before the
	// network call resolves.
	assert.Equal(t, model.StatusScheduled, pipeline.Orders()[0].Status)
	assert.Len(t, notifier.successes, 1)
	assert.Equal(t, StateOptimisticPending, pipeline.State())

	pipeline.Persist(context.Background(), move)

	// The final observed list equals the pre-move server snapshot.
	assert.Equal(t, model.StatusListing, pipeline.Orders()[0].Status)
	assert.Equal(t, StateSynced, pipeline.State())
	assert.Len(t, notifier.failures, 1)
}

func TestPipeline_SettleThenReconcileOnSuccess(t *testing.T) {
	order := boardOrder("SO-302", model.StatusListing)

	// After the write, the server snapshot carries a side effect the
	// optimistic list could not know about.
	serverAfterWrite := order
	serverAfterWrite.Status = model.StatusScheduled
	serverAfterWrite.Title = "updated by a store trigger"

	fetches := 0
	store := &mockPipelineStore{
		BoardOrdersFunc: func(ctx context.Context) ([]model.ServiceOrder, error) {
			fetches++
			if fetches == 1 {
				return []model.ServiceOrder{order}, nil
			}
			return []model.ServiceOrder{serverAfterWrite}, nil
		},
		UpdateOrderStatusFunc: func(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
			return nil
		},
	}

	notifier := &recordingNotifier{}
	settle := 3 * time.Second
	pipeline := NewPipeline(store, notifier, nil, settle)

	var waited time.Duration
	pipeline.newTimer = elapsedTimer(&waited)

	require.NoError(t, pipeline.Refresh(context.Background()))

	move, err := pipeline.MoveCard(order.ID, model.StatusScheduled)
	require.NoError(t, err)
	require.NotNil(t, move)

	pipeline.Persist(context.Background(), move)

	assert.Equal(t, settle, waited, "the settle delay is the configured one")
	assert.Equal(t, 2, fetches, "reconciliation re-fetches rather than trusting the optimistic list")
	assert.Equal(t, StateSynced, pipeline.State())

	final := pipeline.Orders()
	require.Len(t, final, 1)
	assert.Equal(t, "updated by a store trigger", final[0].Title, "server-side side effects become visible")
}

type recordingPusher struct {
	orderIDs []uuid.UUID
	messages []string
}

func (r *recordingPusher) OrderStatusChanged(orderID uuid.UUID, message string) {
	r.orderIDs = append(r.orderIDs, orderID)
	r.messages = append(r.messages, message)
}

func TestPipeline_PushesOnConfirmedStatusChange(t *testing.T) {
	order := boardOrder("SO-303", model.StatusListing)

	store := &mockPipelineStore{
		BoardOrdersFunc: func(ctx context.Context) ([]model.ServiceOrder, error) {
			return []model.ServiceOrder{order}, nil
		},
		UpdateOrderStatusFunc: func(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
			return nil
		},
	}

	pusher := &recordingPusher{}
	pipeline := NewPipeline(store, &recordingNotifier{}, pusher, time.Second)
	var waited time.Duration
	pipeline.newTimer = elapsedTimer(&waited)
	require.NoError(t, pipeline.Refresh(context.Background()))

	move, err := pipeline.MoveCard(order.ID, model.StatusScheduled)
	require.NoError(t, err)
	require.NotNil(t, move)
	assert.Empty(t, pusher.orderIDs, "the optimistic half pushes nothing")

	pipeline.Persist(context.Background(), move)

	require.Len(t, pusher.orderIDs, 1, "a confirmed write pushes exactly once")
	assert.Equal(t, order.ID, pusher.orderIDs[0])
	assert.Equal(t, "Order SO-303 moved to scheduled", pusher.messages[0])
}

func TestPipeline_NoPushWhenPersistFails(t *testing.T) {
	order := boardOrder("SO-304", model.StatusListing)

	store := &mockPipelineStore{
		BoardOrdersFunc: func(ctx context.Context) ([]model.ServiceOrder, error) {
			return []model.ServiceOrder{order}, nil
		},
		UpdateOrderStatusFunc: func(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
			return errors.New("store rejected the write")
		},
	}

	pusher := &recordingPusher{}
	pipeline := NewPipeline(store, &recordingNotifier{}, pusher, time.Second)
	require.NoError(t, pipeline.Refresh(context.Background()))

	move, err := pipeline.MoveCard(order.ID, model.StatusScheduled)
	require.NoError(t, err)
	pipeline.Persist(context.Background(), move)

	assert.Empty(t, pusher.orderIDs, "a rejected write pushes nothing")
}

func TestPipeline_FailedReconcilePromotesConfirmedList(t *testing.T) {
	order := boardOrder("SO-305", model.StatusListing)

	fetches := 0
	store := &mockPipelineStore{
		BoardOrdersFunc: func(ctx context.Context) ([]model.ServiceOrder, error) {
			fetches++
			if fetches == 1 {
				return []model.ServiceOrder{order}, nil
			}
			return nil, errors.New("store is unreachable")
		},
		UpdateOrderStatusFunc: func(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
			if status == model.StatusCompleted {
				return errors.New("store rejected the write")
			}
			return nil
		},
	}

	pipeline := NewPipeline(store, &recordingNotifier{}, nil, time.Second)
	var waited time.Duration
	pipeline.newTimer = elapsedTimer(&waited)
	require.NoError(t, pipeline.Refresh(context.Background()))

	move, err := pipeline.MoveCard(order.ID, model.StatusScheduled)
	require.NoError(t, err)
	pipeline.Persist(context.Background(), move)

	assert.Equal(t, StateSynced, pipeline.State())
	assert.Equal(t, model.StatusScheduled, pipeline.Orders()[0].Status,
		"the confirmed write survives the failed re-fetch")

	// The confirmed list became the snapshot: a later failed move reverts to
	// it, not to the pre-move state.
	move, err = pipeline.MoveCard(order.ID, model.StatusCompleted)
	require.NoError(t, err)
	pipeline.Persist(context.Background(), move)

	assert.Equal(t, model.StatusScheduled, pipeline.Orders()[0].Status)
	assert.Equal(t, StateSynced, pipeline.State())
}

func TestPipeline_MoveUnknownOrderFails(t *testing.T) {
	store := &mockPipelineStore{
		BoardOrdersFunc: func(ctx context.Context) ([]model.ServiceOrder, error) {
			return nil, nil
		},
	}

	pipeline := NewPipeline(store, &recordingNotifier{}, nil, time.Second)
	require.NoError(t, pipeline.Refresh(context.Background()))

	_, err := pipeline.MoveCard(uuid.New(), model.StatusScheduled)
	assert.Error(t, err)

	_, err = pipeline.MoveCard(uuid.New(), model.OrderStatus("shipped"))
	assert.Error(t, err, "unknown target statuses are rejected")
}
