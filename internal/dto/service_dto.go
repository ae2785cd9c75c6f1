package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceRequest creates or replaces a catalog service. EstimatedTime accepts
// "HH:MM", "HH:MM:SS" or a Go duration such as "1h30m".
type ServiceRequest struct {
	Description   string          `json:"description"    validate:"required,min=3,max=200"`
	EstimatedTime *string         `json:"estimated_time" validate:"omitempty,max=20"`
	Price         decimal.Decimal `json:"price"          validate:"gte=0.01,cents"`
}

type ServiceResponse struct {
	ID               string          `json:"id"`
	Description      string          `json:"description"`
	EstimatedMinutes *int            `json:"estimated_minutes"`
	EstimatedTime    *string         `json:"estimated_time"` // "1h 30min"
	Price            decimal.Decimal `json:"price"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
