package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hvac-dispatch-backend/internal/model"
	"hvac-dispatch-backend/internal/parse"
)

// Collision describes one assignment overlapping a proposed window.
type Collision struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	StartMinutes int       `json:"start_minutes"`
	EndMinutes   int       `json:"end_minutes"`
}

// ConflictCheckResult is the transient answer to a single
// (technician, proposed window, excluded order) query.
type ConflictCheckResult struct {
	HasConflict bool        `json:"has_conflict"`
	Collisions  []Collision `json:"collisions"`
}

// ConflictError aborts a timed move that overlaps existing assignments.
type ConflictError struct {
	Result ConflictCheckResult
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict: %d overlapping assignment(s)", len(e.Result.Collisions))
}

// ConflictStore is the slice of the data store the detector reads.
type ConflictStore interface {
	AssignmentsOnDate(ctx context.Context, technicianID uuid.UUID, date time.Time, excludeOrderID uuid.UUID) ([]model.Assignment, error)
}

// Detector checks a candidate time window against a technician's existing
// assignments on the same day.
type Detector struct {
	store           ConflictStore
	defaultDuration int
	defaultStart    int
}

// NewDetector creates a detector. defaultStartTime ("HH:MM") and
// defaultDurationMinutes fill in assignments whose orders carry no explicit
// time or duration.
func NewDetector(store ConflictStore, defaultStartTime string, defaultDurationMinutes int) *Detector {
	start, err := parse.Clock(defaultStartTime)
	if err != nil {
		start = 9 * 60
	}
	if defaultDurationMinutes <= 0 {
		defaultDurationMinutes = 120
	}
	return &Detector{
		store:           store,
		defaultDuration: defaultDurationMinutes,
		defaultStart:    start,
	}
}

// Check fetches the technician's assignments on the candidate date (the
// moved order excluded) and tests each timed window for overlap with
// [startMinutes, startMinutes+durationMinutes). Multi-day orders never enter
// the timed check: their moves are pure date-range shifts.
func (d *Detector) Check(ctx context.Context, technicianID uuid.UUID, date time.Time, startMinutes, durationMinutes int, excludeOrderID uuid.UUID) (ConflictCheckResult, error) {
	if durationMinutes <= 0 {
		durationMinutes = d.defaultDuration
	}
	candidateStart := startMinutes
	candidateEnd := startMinutes + durationMinutes

	assignments, err := d.store.AssignmentsOnDate(ctx, technicianID, date, excludeOrderID)
	if err != nil {
		return ConflictCheckResult{}, fmt.Errorf("conflict check failed: %w", err)
	}

	var collisions []Collision
	for i := range assignments {
		a := &assignments[i]
		if a.Order.MultiDay() {
			continue
		}

		start, end := d.window(&a.Order)
		if overlaps(candidateStart, candidateEnd, start, end) {
			collisions = append(collisions, Collision{
				AssignmentID: a.ID,
				OrderID:      a.OrderID,
				OrderNumber:  a.Order.OrderNumber,
				StartMinutes: start,
				EndMinutes:   end,
			})
		}
	}

	return ConflictCheckResult{
		HasConflict: len(collisions) > 0,
		Collisions:  collisions,
	}, nil
}

// window computes an order's timed window in minutes since midnight,
// falling back to the configured defaults.
func (d *Detector) window(order *model.ServiceOrder) (int, int) {
	start := d.defaultStart
	if order.ScheduledTime != nil {
		if m, err := parse.Clock(*order.ScheduledTime); err == nil {
			start = m
		}
	}
	duration := order.EstimatedDuration
	if duration <= 0 {
		duration = d.defaultDuration
	}
	return start, start + duration
}

// overlaps tests two half-open minute intervals. Back-to-back windows
// (end of one equals start of the other) do not overlap.
func overlaps(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}
