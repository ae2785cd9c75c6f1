package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a shop client. Document (CPF/CNPJ) is unique.
type Customer struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"index;not null"`
	Document     string    `gorm:"uniqueIndex;not null"`
	Email        *string
	Phone        *string
	Address      *string
	VehiclePlate *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
