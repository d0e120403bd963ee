package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the kanban pipeline status of a service order.
type OrderStatus string

const (
	StatusListing    OrderStatus = "listing"
	StatusScheduled  OrderStatus = "scheduled"
	StatusInProgress OrderStatus = "in_progress"
	StatusPending    OrderStatus = "pending"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// PipelineStatuses is the fixed kanban column order.
var PipelineStatuses = []OrderStatus{
	StatusListing,
	StatusScheduled,
	StatusInProgress,
	StatusPending,
	StatusCompleted,
	StatusCancelled,
}

// Valid reports whether s is one of the six pipeline statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range PipelineStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Schedulable reports whether an order in this status is expected to carry
// a scheduled date.
func (s OrderStatus) Schedulable() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusPending, StatusCompleted:
		return true
	}
	return false
}

// OrderPriority is the urgency of a service order.
type OrderPriority string

const (
	PriorityLow    OrderPriority = "low"
	PriorityMedium OrderPriority = "medium"
	PriorityHigh   OrderPriority = "high"
	PriorityUrgent OrderPriority = "urgent"
)

// ServiceOrder represents a unit of field work (installation, repair,
// maintenance visit). Schedule fields are split into a calendar date and a
// wall-clock time the way the dispatch board edits them.
type ServiceOrder struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey"`
	OrderNumber string        `gorm:"uniqueIndex;size:32;not null"`
	Title       string        `gorm:"size:256;not null"`
	Description string        `gorm:"size:2048"`
	Status      OrderStatus   `gorm:"size:32;not null;index"`
	Priority    OrderPriority `gorm:"size:16;not null;default:'medium'"`

	ScheduledDate    *time.Time `gorm:"type:date;index"`
	ScheduledTime    *string    `gorm:"size:8"` // "15:04"
	EstimatedEndDate *time.Time `gorm:"type:date"`
	EstimatedEndTime *string    `gorm:"size:8"`
	// Estimated on-site duration in minutes; 0 means unset.
	EstimatedDuration int `gorm:"not null;default:0"`

	ClientID  uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Client      Client       `gorm:"constraint:OnDelete:CASCADE"`
	Assignments []Assignment `gorm:"foreignKey:OrderID"`
}

// MultiDay reports whether the order spans more than one calendar day, which
// makes its projection an all-day block and exempts it from the timed
// conflict check.
func (o *ServiceOrder) MultiDay() bool {
	if o.ScheduledDate == nil || o.EstimatedEndDate == nil {
		return false
	}
	sy, sm, sd := o.ScheduledDate.Date()
	ey, em, ed := o.EstimatedEndDate.Date()
	return sy != ey || sm != em || sd != ed
}

// PrimaryTechnician returns the technician holding the primary assignment
// (the PIC), or nil when none is loaded.
func (o *ServiceOrder) PrimaryTechnician() *Technician {
	for i := range o.Assignments {
		if o.Assignments[i].Role == AssignmentRolePrimary {
			return &o.Assignments[i].Technician
		}
	}
	return nil
}
