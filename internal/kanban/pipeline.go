package kanban

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"hvac-dispatch-backend/internal/model"
)

// SyncState tracks where the board's in-memory order list stands relative
// to the store.
type SyncState int

const (
	// StateSynced: the list is the last known server snapshot.
	StateSynced SyncState = iota
	// StateOptimisticPending: a local move was applied, persistence is in
	// flight.
	StateOptimisticPending
	// StateReconciling: persistence succeeded; waiting out the settle delay
	// before trusting a fresh re-fetch over the optimistic list.
	StateReconciling
)

func (s SyncState) String() string {
	switch s {
	case StateSynced:
		return "synced"
	case StateOptimisticPending:
		return "optimistic_pending"
	case StateReconciling:
		return "reconciling"
	}
	return "unknown"
}

// PipelineStore is the slice of the data store the pipeline uses.
type PipelineStore interface {
	BoardOrders(ctx context.Context) ([]model.ServiceOrder, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error
}

// Notifier surfaces move outcomes to the user.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// LogNotifier writes move outcomes to the process log.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) { log.Printf("board: %s", msg) }
func (LogNotifier) Failure(msg string) { log.Printf("board: FAILED: %s", msg) }

// StatusNotifier is told about confirmed status writes so followers of the
// order's technicians can be pushed a notification. It is only invoked after
// the store accepted the write, never for the optimistic half.
type StatusNotifier interface {
	OrderStatusChanged(orderID uuid.UUID, message string)
}

// Move is a pending card move produced by the optimistic step and consumed
// by Persist.
type Move struct {
	OrderID     uuid.UUID
	OrderNumber string
	Target      model.OrderStatus
	Previous    model.OrderStatus
}

// Pipeline manages the status pipeline for one board session. Moves mutate
// the in-memory list immediately and persist in the background; a failed
// write discards the optimistic list for the last server snapshot, and a
// successful one re-fetches after the settle delay so server-side side
// effects become visible without racing the write.
type Pipeline struct {
	store       PipelineStore
	notifier    Notifier
	pusher      StatusNotifier
	settleDelay time.Duration
	// newTimer is injectable so tests can elapse the settle delay
	// deterministically.
	newTimer func(time.Duration) <-chan time.Time

	mu       sync.Mutex
	snapshot []model.ServiceOrder
	orders   []model.ServiceOrder
	state    SyncState
}

// NewPipeline creates a pipeline. notifier may be nil, in which case
// outcomes go to the log; pusher may be nil, in which case confirmed status
// changes are not pushed.
func NewPipeline(store PipelineStore, notifier Notifier, pusher StatusNotifier, settleDelay time.Duration) *Pipeline {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Pipeline{
		store:       store,
		notifier:    notifier,
		pusher:      pusher,
		settleDelay: settleDelay,
		newTimer: func(d time.Duration) <-chan time.Time {
			return time.After(d)
		},
	}
}

// Refresh replaces both the snapshot and the visible list with the store's
// current truth. The list is always replaced wholesale, never patched.
func (p *Pipeline) Refresh(ctx context.Context) error {
	fetched, err := p.store.BoardOrders(ctx)
	if err != nil {
		return fmt.Errorf("board refresh failed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = fetched
	p.orders = fetched
	p.state = StateSynced
	return nil
}

// Orders returns a copy of the currently visible order list.
func (p *Pipeline) Orders() []model.ServiceOrder {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.ServiceOrder, len(p.orders))
	copy(out, p.orders)
	return out
}

// State returns the pipeline's sync state.
func (p *Pipeline) State() SyncState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// MoveCard applies the optimistic half of a card move: the local list is
// rewritten with the new status and a success notification is shown before
// any network call. Dropping a card on its current column is a no-op and
// returns (nil, nil). The returned Move must be handed to Persist.
func (p *Pipeline) MoveCard(orderID uuid.UUID, target model.OrderStatus) (*Move, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("invalid target status %q", target)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	idx := -1
	for i := range p.orders {
		if p.orders[i].ID == orderID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("order %s is not on the board", orderID)
	}

	current := p.orders[idx].Status
	if current == target {
		return nil, nil
	}

	rewritten := make([]model.ServiceOrder, len(p.orders))
	copy(rewritten, p.orders)
	rewritten[idx].Status = target

	p.orders = rewritten
	p.state = StateOptimisticPending

	move := &Move{
		OrderID:     orderID,
		OrderNumber: p.orders[idx].OrderNumber,
		Target:      target,
		Previous:    current,
	}
	p.notifier.Success(fmt.Sprintf("Order %s moved to %s", move.OrderNumber, target))
	return move, nil
}

// Persist runs the background half of a move: the status write, then either
// the revert path or the settle-and-reconcile path. It blocks until the
// pipeline is synced again, so callers run it in a goroutine.
func (p *Pipeline) Persist(ctx context.Context, m *Move) {
	if m == nil {
		return
	}

	if err := p.store.UpdateOrderStatus(ctx, m.OrderID, m.Target); err != nil {
		p.persistFailed(m, err)
		return
	}
	p.persistSucceeded(ctx, m)
}

// persistFailed discards the optimistic list for the last server snapshot.
func (p *Pipeline) persistFailed(m *Move, err error) {
	p.mu.Lock()
	restored := make([]model.ServiceOrder, len(p.snapshot))
	copy(restored, p.snapshot)
	p.orders = restored
	p.state = StateSynced
	p.mu.Unlock()

	p.notifier.Failure(fmt.Sprintf("Could not move order %s to %s: %v", m.OrderNumber, m.Target, err))
}

// persistSucceeded pushes the confirmed change, waits out the settle delay,
// then replaces the optimistic list with a fresh server snapshot.
func (p *Pipeline) persistSucceeded(ctx context.Context, m *Move) {
	p.mu.Lock()
	p.state = StateReconciling
	p.mu.Unlock()

	if p.pusher != nil {
		p.pusher.OrderStatusChanged(m.OrderID, fmt.Sprintf("Order %s moved to %s", m.OrderNumber, m.Target))
	}

	select {
	case <-p.newTimer(p.settleDelay):
	case <-ctx.Done():
		return
	}

	if err := p.Refresh(ctx); err != nil {
		// The store accepted the write, so the optimistic list is promoted to
		// the snapshot until the next successful refresh.
		log.Printf("Warning: reconcile re-fetch after moving order %s failed: %v", m.OrderNumber, err)
		p.mu.Lock()
		p.snapshot = p.orders
		p.state = StateSynced
		p.mu.Unlock()
	}
}
