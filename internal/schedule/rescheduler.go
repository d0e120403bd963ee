package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hvac-dispatch-backend/internal/model"
	"hvac-dispatch-backend/internal/parse"
	"hvac-dispatch-backend/internal/store"
)

// ErrForbidden rejects a reschedule from a viewer without drag permission.
var ErrForbidden = errors.New("viewer is not allowed to reschedule orders")

// ReschedulerStore is the slice of the data store the rescheduler touches.
type ReschedulerStore interface {
	OrderByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error)
	UpdateOrderSchedule(ctx context.Context, orderID uuid.UUID, upd store.ScheduleUpdate) error
}

// MoveNotifier is told about successfully persisted moves so assigned
// technicians can be pushed a notification.
type MoveNotifier interface {
	OrderRescheduled(orderID uuid.UUID, message string)
}

// Rescheduler orchestrates a drag-and-drop move: permission gate, conflict
// gate for timed moves, persistence, proportional end-date shift.
type Rescheduler struct {
	store    ReschedulerStore
	detector *Detector
	notifier MoveNotifier
}

// NewRescheduler creates a rescheduler. notifier may be nil.
func NewRescheduler(s ReschedulerStore, d *Detector, notifier MoveNotifier) *Rescheduler {
	return &Rescheduler{store: s, detector: d, notifier: notifier}
}

// MoveEvent applies a drag of the order to [newStart, newEnd). Timed moves
// are conflict-checked against every assigned technician and abort with a
// *ConflictError on overlap; multi-day moves are pure date-range shifts and
// skip the timed gate. Nothing is persisted on failure.
func (r *Rescheduler) MoveEvent(ctx context.Context, viewer Viewer, orderID uuid.UUID, newStart, newEnd time.Time) error {
	if !viewer.CanReschedule() {
		return ErrForbidden
	}

	order, err := r.store.OrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.MultiDay() {
		duration := int(newEnd.Sub(newStart).Minutes())
		if duration <= 0 {
			duration = order.EstimatedDuration
		}
		if err := r.checkAssignedTechnicians(ctx, order, newStart, duration); err != nil {
			return err
		}
	}

	upd := store.ScheduleUpdate{
		ScheduledDate:    parse.DayOf(newStart),
		ScheduledTime:    parse.FormatClock(parse.MinutesOfDay(newStart)),
		EstimatedEndDate: order.EstimatedEndDate,
		EstimatedEndTime: order.EstimatedEndTime,
	}

	// A pure date translation keeps the order's day span: the end date moves
	// by the same delta and the original end time is carried forward.
	if order.EstimatedEndDate != nil && order.ScheduledDate != nil {
		if delta := parse.DaysBetween(*order.ScheduledDate, newStart); delta != 0 {
			shifted := order.EstimatedEndDate.AddDate(0, 0, delta)
			upd.EstimatedEndDate = &shifted
		}
	}

	if err := r.store.UpdateOrderSchedule(ctx, orderID, upd); err != nil {
		return fmt.Errorf("failed to persist reschedule: %w", err)
	}

	if r.notifier != nil {
		r.notifier.OrderRescheduled(orderID, fmt.Sprintf(
			"Order %s rescheduled to %s %s",
			order.OrderNumber,
			upd.ScheduledDate.Format("2006-01-02"),
			upd.ScheduledTime,
		))
	}
	return nil
}

func (r *Rescheduler) checkAssignedTechnicians(ctx context.Context, order *model.ServiceOrder, newStart time.Time, durationMinutes int) error {
	startMinutes := parse.MinutesOfDay(newStart)

	var collisions []Collision
	for i := range order.Assignments {
		result, err := r.detector.Check(ctx, order.Assignments[i].TechnicianID, newStart, startMinutes, durationMinutes, order.ID)
		if err != nil {
			return err
		}
		collisions = append(collisions, result.Collisions...)
	}

	if len(collisions) > 0 {
		return &ConflictError{Result: ConflictCheckResult{
			HasConflict: true,
			Collisions:  collisions,
		}}
	}
	return nil
}
