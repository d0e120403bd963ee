package kanban

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Manager hands out per-session boards. Each browser session gets its own
// pipeline (its own snapshot and optimistic overlay), held in a TTL cache
// so abandoned sessions fall away.
type Manager struct {
	store       PipelineStore
	notifier    Notifier
	pusher      StatusNotifier
	settleDelay time.Duration
	pageSize    int

	mu       sync.Mutex
	sessions *cache.Cache
}

// NewManager creates a board manager backed by the given session cache.
// pusher receives confirmed status changes from every session's pipeline.
func NewManager(store PipelineStore, notifier Notifier, pusher StatusNotifier, sessions *cache.Cache, settleDelay time.Duration, pageSize int) *Manager {
	return &Manager{
		store:       store,
		notifier:    notifier,
		pusher:      pusher,
		settleDelay: settleDelay,
		pageSize:    pageSize,
		sessions:    sessions,
	}
}

// Board returns the session's board for the given month, creating and
// loading it on first use. An existing board keeps its optimistic state; a
// month change resets its reveal counters.
func (m *Manager) Board(ctx context.Context, sessionID string, month time.Time) (*Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, found := m.sessions.Get(sessionID); found {
		board := v.(*Board)
		board.SetMonth(month)
		return board, nil
	}

	pipeline := NewPipeline(m.store, m.notifier, m.pusher, m.settleDelay)
	if err := pipeline.Refresh(ctx); err != nil {
		return nil, err
	}

	board := NewBoard(pipeline, m.pageSize, month)
	m.sessions.SetDefault(sessionID, board)
	return board, nil
}
