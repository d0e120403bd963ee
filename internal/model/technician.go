package model

import (
	"time"

	"github.com/google/uuid"
)

// Technician represents a field technician who can be assigned to orders.
type Technician struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	DisplayName string    `gorm:"size:256;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	// Associations
	Assignments []Assignment `gorm:"foreignKey:TechnicianID"`
}
