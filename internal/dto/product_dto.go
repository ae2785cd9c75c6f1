package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateProductRequest.CurrentStock is recorded as an initial "in" movement.
type CreateProductRequest struct {
	Description  string          `json:"description"   validate:"required,min=3,max=200"`
	Barcode      *string         `json:"barcode"       validate:"omitempty,max=50"`
	Brand        string          `json:"brand"         validate:"required,min=2,max=100"`
	Model        *string         `json:"model"         validate:"omitempty,max=100"`
	Supplier     *string         `json:"supplier"      validate:"omitempty,max=150"`
	CostPrice    decimal.Decimal `json:"cost_price"    validate:"gte=0.01,cents"`
	SalePrice    decimal.Decimal `json:"sale_price"    validate:"gte=0.01,cents"`
	CurrentStock int             `json:"current_stock" validate:"min=0"`
	MinStock     int             `json:"min_stock"     validate:"min=0"`
}

// UpdateProductRequest never touches stock; use inventory movements.
type UpdateProductRequest struct {
	Description string          `json:"description" validate:"required,min=3,max=200"`
	Barcode     *string         `json:"barcode"     validate:"omitempty,max=50"`
	Brand       string          `json:"brand"       validate:"required,min=2,max=100"`
	Model       *string         `json:"model"       validate:"omitempty,max=100"`
	Supplier    *string         `json:"supplier"    validate:"omitempty,max=150"`
	CostPrice   decimal.Decimal `json:"cost_price"  validate:"gte=0.01,cents"`
	SalePrice   decimal.Decimal `json:"sale_price"  validate:"gte=0.01,cents"`
	MinStock    int             `json:"min_stock"   validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	Barcode      *string         `json:"barcode"`
	Brand        string          `json:"brand"`
	Model        *string         `json:"model"`
	Supplier     *string         `json:"supplier"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	CurrentStock int             `json:"current_stock"`
	MinStock     int             `json:"min_stock"`
	LowStock     bool            `json:"low_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
