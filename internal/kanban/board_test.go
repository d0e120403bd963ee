package kanban

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hvac-dispatch-backend/internal/model"
)

func scheduledBoardOrder(num string, status model.OrderStatus, day time.Time) model.ServiceOrder {
	o := boardOrder(num, status)
	o.ScheduledDate = &day
	return o
}

func staticPipeline(t *testing.T, orders []model.ServiceOrder) *Pipeline {
	t.Helper()
	store := &mockPipelineStore{
		BoardOrdersFunc: func(ctx context.Context) ([]model.ServiceOrder, error) {
			return orders, nil
		},
	}
	p := NewPipeline(store, &recordingNotifier{}, nil, time.Second)
	require.NoError(t, p.Refresh(context.Background()))
	return p
}

func columnFor(t *testing.T, columns []Column, status model.OrderStatus) Column {
	t.Helper()
	for _, c := range columns {
		if c.Status == status {
			return c
		}
	}
	t.Fatalf("no column for status %s", status)
	return Column{}
}

func TestBoard_MonthFilter(t *testing.T) {
	june := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	inMonth := scheduledBoardOrder("SO-400", model.StatusScheduled, time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC))
	otherMonth := scheduledBoardOrder("SO-401", model.StatusScheduled, time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC))
	unscheduled := boardOrder("SO-402", model.StatusListing)

	board := NewBoard(staticPipeline(t, []model.ServiceOrder{inMonth, otherMonth, unscheduled}), 10, june)
	columns := board.Columns()

	assert.Len(t, columns, len(model.PipelineStatuses), "every pipeline status gets a column even when empty")

	scheduled := columnFor(t, columns, model.StatusScheduled)
	require.Len(t, scheduled.Cards, 1, "orders scheduled outside the month are hidden")
	assert.Equal(t, "SO-400", scheduled.Cards[0].OrderNumber)

	listing := columnFor(t, columns, model.StatusListing)
	require.Len(t, listing.Cards, 1, "unscheduled orders show in every month")
	assert.Equal(t, "SO-402", listing.Cards[0].OrderNumber)
}

func TestBoard_ExpandRevealsWithoutRefetch(t *testing.T) {
	june := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	orders := make([]model.ServiceOrder, 0, 5)
	for i := 0; i < 5; i++ {
		orders = append(orders, boardOrder(fmt.Sprintf("SO-41%d", i), model.StatusListing))
	}

	fetches := 0
	store := &mockPipelineStore{
		BoardOrdersFunc: func(ctx context.Context) ([]model.ServiceOrder, error) {
			fetches++
			return orders, nil
		},
	}
	pipeline := NewPipeline(store, &recordingNotifier{}, nil, time.Second)
	require.NoError(t, pipeline.Refresh(context.Background()))

	board := NewBoard(pipeline, 2, june)

	listing := columnFor(t, board.Columns(), model.StatusListing)
	assert.Len(t, listing.Cards, 2)
	assert.Equal(t, 5, listing.Total, "the count behind the fold is still reported")

	board.Expand(model.StatusListing)
	listing = columnFor(t, board.Columns(), model.StatusListing)
	assert.Len(t, listing.Cards, 4)

	board.Expand(model.StatusListing)
	listing = columnFor(t, board.Columns(), model.StatusListing)
	assert.Len(t, listing.Cards, 5, "revealing past the end shows everything")

	assert.Equal(t, 1, fetches, "expanding reveals already-fetched cards only")
}

func TestBoard_MonthChangeResetsReveal(t *testing.T) {
	june := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	july := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	orders := []model.ServiceOrder{
		boardOrder("SO-420", model.StatusListing),
		boardOrder("SO-421", model.StatusListing),
		boardOrder("SO-422", model.StatusListing),
	}

	board := NewBoard(staticPipeline(t, orders), 2, june)
	board.Expand(model.StatusListing)
	assert.Len(t, columnFor(t, board.Columns(), model.StatusListing).Cards, 3)

	// Re-selecting the same month keeps the expanded reveal.
	board.SetMonth(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC))
	assert.Len(t, columnFor(t, board.Columns(), model.StatusListing).Cards, 3)

	board.SetMonth(july)
	assert.Len(t, columnFor(t, board.Columns(), model.StatusListing).Cards, 2,
		"switching months resets every column to the default page")
}
