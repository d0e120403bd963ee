package store

import "time"

// ScheduleUpdate carries the schedule fields written by a reschedule.
// Nil end fields clear nothing: they are written as-is, so a caller that
// wants to keep an order's end date must copy it over.
type ScheduleUpdate struct {
	ScheduledDate    time.Time
	ScheduledTime    string
	EstimatedEndDate *time.Time
	EstimatedEndTime *string
}
