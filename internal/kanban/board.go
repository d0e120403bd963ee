package kanban

import (
	"sync"
	"time"

	"hvac-dispatch-backend/internal/model"
	"hvac-dispatch-backend/internal/parse"
)

// Column is one rendered kanban column: the cards revealed so far plus the
// total behind the fold.
type Column struct {
	Status  model.OrderStatus    `json:"status"`
	Cards   []model.ServiceOrder `json:"cards"`
	Total   int                  `json:"total"`
	Visible int                  `json:"visible"`
}

// Board groups a pipeline's orders into the fixed status columns for one
// selected month. Each column reveals a bounded number of already-fetched
// cards; expanding reveals more locally, no query is issued. The reveal
// counters reset whenever the selected month changes.
type Board struct {
	pipeline *Pipeline
	pageSize int

	mu      sync.Mutex
	month   time.Time // first day of the selected month
	visible map[model.OrderStatus]int
}

// NewBoard creates a board over the pipeline for the given month.
func NewBoard(p *Pipeline, pageSize int, month time.Time) *Board {
	if pageSize <= 0 {
		pageSize = 10
	}
	b := &Board{
		pipeline: p,
		pageSize: pageSize,
	}
	b.setMonthLocked(month)
	return b
}

// Pipeline returns the board's underlying status pipeline.
func (b *Board) Pipeline() *Pipeline {
	return b.pipeline
}

// SetMonth switches the month filter. Changing months resets every
// column's visible count to its default.
func (b *Board) SetMonth(month time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	first, _ := parse.MonthRange(month)
	if first.Equal(b.month) {
		return
	}
	b.setMonthLocked(month)
}

func (b *Board) setMonthLocked(month time.Time) {
	first, _ := parse.MonthRange(month)
	b.month = first
	b.visible = make(map[model.OrderStatus]int, len(model.PipelineStatuses))
	for _, status := range model.PipelineStatuses {
		b.visible[status] = b.pageSize
	}
}

// Expand reveals one more page of already-fetched cards in a column.
func (b *Board) Expand(status model.OrderStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.visible[status]; ok {
		b.visible[status] += b.pageSize
	}
}

// Columns renders the board: orders scheduled in the selected month plus
// all unscheduled orders, grouped into the fixed column order and sliced to
// each column's visible count.
func (b *Board) Columns() []Column {
	orders := b.pipeline.Orders()

	b.mu.Lock()
	defer b.mu.Unlock()

	from, to := parse.MonthRange(b.month)
	grouped := make(map[model.OrderStatus][]model.ServiceOrder, len(model.PipelineStatuses))
	for i := range orders {
		o := orders[i]
		if o.ScheduledDate != nil {
			day := parse.DayOf(*o.ScheduledDate)
			if day.Before(from) || !day.Before(to) {
				continue
			}
		}
		grouped[o.Status] = append(grouped[o.Status], o)
	}

	columns := make([]Column, 0, len(model.PipelineStatuses))
	for _, status := range model.PipelineStatuses {
		cards := grouped[status]
		visible := b.visible[status]
		shown := cards
		if len(shown) > visible {
			shown = shown[:visible]
		}
		columns = append(columns, Column{
			Status:  status,
			Cards:   shown,
			Total:   len(cards),
			Visible: visible,
		})
	}
	return columns
}
