package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MovementIn  = "in"
	MovementOut = "out"
)

// InventoryMovement is an append-only stock entry. Quantity is always
// positive; MovementType decides the sign applied to the product.
type InventoryMovement struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index"`
	MovementType string    `gorm:"type:varchar(3);not null"`
	Quantity     int       `gorm:"not null;check:quantity > 0"`
	Notes        string
	CreatedBy    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt    time.Time `gorm:"index"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (m *InventoryMovement) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}

// Delta is the signed stock change of the movement.
func (m *InventoryMovement) Delta() int {
	if m.MovementType == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}
