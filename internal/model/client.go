package model

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a customer whose property receives service.
// ReferredByID links the client to the sales partner who brought them in;
// it drives event masking for partner viewers.
type Client struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name         string     `gorm:"size:256;not null"`
	Address      string     `gorm:"size:512"`
	ReferredByID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}
