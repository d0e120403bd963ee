package schedule

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"hvac-dispatch-backend/internal/holiday"
	"hvac-dispatch-backend/internal/model"
	"hvac-dispatch-backend/internal/parse"
)

// ResourceKind tags what a calendar event was projected from.
type ResourceKind string

const (
	ResourceOrder   ResourceKind = "order"
	ResourceHoliday ResourceKind = "holiday"
)

// EventResource is the payload a calendar event carries for rendering and
// drag gating.
type EventResource struct {
	Kind           ResourceKind        `json:"kind"`
	OrderID        uuid.UUID           `json:"order_id,omitempty"`
	OrderNumber    string              `json:"order_number,omitempty"`
	Status         model.OrderStatus   `json:"status,omitempty"`
	Priority       model.OrderPriority `json:"priority,omitempty"`
	TechnicianName string              `json:"technician_name,omitempty"`
	ClientName     string              `json:"client_name,omitempty"`
	Location       string              `json:"location,omitempty"`
	OwnedByViewer  bool                `json:"owned_by_viewer"`
	Draggable      bool                `json:"draggable"`
}

// CalendarEvent is a derived, ephemeral projection of an order or a public
// holiday. It is rebuilt on every data refresh and never persisted.
type CalendarEvent struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	AllDay   bool          `json:"all_day"`
	Resource EventResource `json:"resource"`
}

// Projector converts orders, assignments and holidays into calendar events.
type Projector struct {
	// DefaultDuration is applied to timed events without an explicit end,
	// in minutes.
	DefaultDuration int
}

// NewProjector creates a projector with the given default event duration.
func NewProjector(defaultDurationMinutes int) *Projector {
	if defaultDurationMinutes <= 0 {
		defaultDurationMinutes = 120
	}
	return &Projector{DefaultDuration: defaultDurationMinutes}
}

// Project builds the event list for one calendar render. Orders must already
// be the schedulable set with a non-nil scheduled date. A single order that
// fails to project is skipped; holidays are unioned in regardless of the
// technician filter. Every call produces a fresh slice.
func (p *Projector) Project(orders []model.ServiceOrder, holidays []holiday.Holiday, viewer Viewer, technicianFilter *uuid.UUID) []CalendarEvent {
	policy := PolicyFor(viewer)
	events := make([]CalendarEvent, 0, len(orders)+len(holidays))

	for i := range orders {
		order := &orders[i]
		if technicianFilter != nil && !assignedTo(order, *technicianFilter) {
			continue
		}

		ev, err := p.projectOrder(order, viewer, policy)
		if err != nil {
			log.Printf("Warning: skipping event projection for order %s: %v", order.OrderNumber, err)
			continue
		}
		events = append(events, ev)
	}

	for _, h := range holidays {
		events = append(events, holidayEvent(h))
	}

	return events
}

func (p *Projector) projectOrder(order *model.ServiceOrder, viewer Viewer, policy MaskingPolicy) (CalendarEvent, error) {
	if order.ScheduledDate == nil {
		return CalendarEvent{}, fmt.Errorf("order has no scheduled date")
	}
	day := parse.DayOf(*order.ScheduledDate)

	var start, end time.Time
	allDay := order.MultiDay()
	if allDay {
		// Multi-day blocks ignore time-of-day and span whole days,
		// end-exclusive.
		start = day
		end = parse.DayOf(*order.EstimatedEndDate).AddDate(0, 0, 1)
	} else {
		startMinutes := 0
		if order.ScheduledTime != nil {
			m, err := parse.Clock(*order.ScheduledTime)
			if err != nil {
				return CalendarEvent{}, err
			}
			startMinutes = m
		}
		start = day.Add(time.Duration(startMinutes) * time.Minute)

		switch {
		case order.EstimatedEndTime != nil:
			endMinutes, err := parse.Clock(*order.EstimatedEndTime)
			if err != nil {
				return CalendarEvent{}, err
			}
			end = day.Add(time.Duration(endMinutes) * time.Minute)
		case order.EstimatedDuration > 0:
			end = start.Add(time.Duration(order.EstimatedDuration) * time.Minute)
		default:
			end = start.Add(time.Duration(p.DefaultDuration) * time.Minute)
		}
		if !end.After(start) {
			end = start.Add(time.Duration(p.DefaultDuration) * time.Minute)
		}
	}

	owned := policy.Owns(order)
	resource := EventResource{
		Kind:          ResourceOrder,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		Priority:      order.Priority,
		ClientName:    order.Client.Name,
		Location:      order.Client.Address,
		OwnedByViewer: owned,
		Draggable:     viewer.CanReschedule(),
	}
	if pic := order.PrimaryTechnician(); pic != nil {
		resource.TechnicianName = pic.DisplayName
	}

	ev := CalendarEvent{
		ID:       order.ID.String(),
		Title:    fmt.Sprintf("%s %s", order.OrderNumber, order.Title),
		Start:    start,
		End:      end,
		AllDay:   allDay,
		Resource: resource,
	}
	policy.Apply(&ev)
	return ev, nil
}

func holidayEvent(h holiday.Holiday) CalendarEvent {
	day := parse.DayOf(h.Date)
	return CalendarEvent{
		ID:     "holiday-" + day.Format("2006-01-02"),
		Title:  h.Name,
		Start:  day,
		End:    day.AddDate(0, 0, 1),
		AllDay: true,
		Resource: EventResource{
			Kind:      ResourceHoliday,
			Draggable: false,
		},
	}
}

func assignedTo(order *model.ServiceOrder, technicianID uuid.UUID) bool {
	for i := range order.Assignments {
		if order.Assignments[i].TechnicianID == technicianID {
			return true
		}
	}
	return false
}
