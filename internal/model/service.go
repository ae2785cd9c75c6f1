package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is a catalog entry (alignment, balancing, tire change).
type Service struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Description      string    `gorm:"index;not null"`
	EstimatedMinutes *int
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
