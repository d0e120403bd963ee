package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentRole distinguishes the single person-in-charge from assistants.
type AssignmentRole string

const (
	AssignmentRolePrimary   AssignmentRole = "primary"
	AssignmentRoleAssistant AssignmentRole = "assistant"
)

// Assignment links a service order to a technician. Each order has exactly
// one primary assignment; an order never lists the same technician twice.
type Assignment struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_assignment_order_tech"`
	TechnicianID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_assignment_order_tech"`
	Role         AssignmentRole `gorm:"size:16;not null;default:'assistant'"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`

	// Associations
	Order      ServiceOrder `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Technician Technician   `gorm:"foreignKey:TechnicianID;constraint:OnDelete:CASCADE"`
}
