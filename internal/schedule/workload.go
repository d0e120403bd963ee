package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"hvac-dispatch-backend/internal/model"
)

// Band classifies a technician's monthly utilization. It is presentation
// only: the conflict detector never consults it.
type Band string

const (
	BandOverloaded Band = "overloaded"
	BandBusy       Band = "busy"
	BandAvailable  Band = "available"
)

// WorkloadSummary is the derived per-technician statistic for one month.
type WorkloadSummary struct {
	TechnicianID   uuid.UUID `json:"technician_id"`
	TechnicianName string    `json:"technician_name"`
	OrderCount     int       `json:"order_count"`
	TotalHours     float64   `json:"total_hours"`
	Utilization    float64   `json:"utilization"`
	Band           Band      `json:"band"`
}

// ComputeWorkload sums order count and scheduled hours per technician over
// [from, to). Each order counts once per technician even when the
// assignment rows are duplicated in the input. capacityHours is the
// monthly capacity the utilization is measured against.
func ComputeWorkload(assignments []model.Assignment, from, to time.Time, capacityHours float64, defaultDurationMinutes int) []WorkloadSummary {
	if capacityHours <= 0 {
		capacityHours = 176
	}
	if defaultDurationMinutes <= 0 {
		defaultDurationMinutes = 120
	}

	type bucket struct {
		name   string
		orders map[uuid.UUID]struct{}
		hours  float64
	}
	buckets := make(map[uuid.UUID]*bucket)

	for i := range assignments {
		a := &assignments[i]
		order := &a.Order
		if order.ScheduledDate == nil {
			continue
		}
		if order.ScheduledDate.Before(from) || !order.ScheduledDate.Before(to) {
			continue
		}

		b, ok := buckets[a.TechnicianID]
		if !ok {
			b = &bucket{
				name:   a.Technician.DisplayName,
				orders: make(map[uuid.UUID]struct{}),
			}
			buckets[a.TechnicianID] = b
		}
		if _, seen := b.orders[order.ID]; seen {
			continue
		}
		b.orders[order.ID] = struct{}{}

		duration := order.EstimatedDuration
		if duration <= 0 {
			duration = defaultDurationMinutes
		}
		b.hours += float64(duration) / 60
	}

	summaries := make([]WorkloadSummary, 0, len(buckets))
	for id, b := range buckets {
		utilization := b.hours / capacityHours * 100
		summaries = append(summaries, WorkloadSummary{
			TechnicianID:   id,
			TechnicianName: b.name,
			OrderCount:     len(b.orders),
			TotalHours:     b.hours,
			Utilization:    utilization,
			Band:           bandFor(utilization),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TechnicianName != summaries[j].TechnicianName {
			return summaries[i].TechnicianName < summaries[j].TechnicianName
		}
		return summaries[i].TechnicianID.String() < summaries[j].TechnicianID.String()
	})
	return summaries
}

func bandFor(utilization float64) Band {
	switch {
	case utilization > 90:
		return BandOverloaded
	case utilization > 70:
		return BandBusy
	default:
		return BandAvailable
	}
}
