package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a stock item (tires, valves, wheel weights...).
// CurrentStock changes only through inventory movements.
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Description  string    `gorm:"index;not null"`
	Barcode      *string   `gorm:"uniqueIndex"`
	Brand        string    `gorm:"not null"`
	Model        *string   `gorm:"column:model"`
	Supplier     *string
	CostPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CurrentStock int             `gorm:"not null;default:0;check:current_stock >= 0"`
	MinStock     int             `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// IsLowStock reports whether the product is at or below its minimum.
func (p *Product) IsLowStock() bool { return p.CurrentStock <= p.MinStock }
