package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// OrderItemRequest references a catalog service or a product. Description
// comes from the catalog; Price defaults to the catalog price when omitted.
type OrderItemRequest struct {
	Kind     string           `json:"kind"     validate:"required,oneof=service product"`
	ID       string           `json:"id"       validate:"required,uuid"`
	Price    *decimal.Decimal `json:"price"    validate:"omitempty,gte=0,cents"`
	Quantity int              `json:"quantity" validate:"omitempty,min=1"`
}

type CreateServiceOrderRequest struct {
	CustomerID   string             `json:"customer_id"   validate:"required,uuid"`
	VehiclePlate string             `json:"vehicle_plate" validate:"max=10"`
	Observations string             `json:"observations"  validate:"max=2000"`
	Items        []OrderItemRequest `json:"items"         validate:"dive"`
}

type UpdateServiceOrderRequest struct {
	VehiclePlate string             `json:"vehicle_plate" validate:"max=10"`
	Observations string             `json:"observations"  validate:"max=2000"`
	Items        []OrderItemRequest `json:"items"         validate:"dive"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress completed cancelled"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ServiceOrderFilter struct {
	Status     string `form:"status"      validate:"omitempty,oneof=open in_progress completed cancelled"`
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
	Pagination
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type StatusOption struct {
	Status string `json:"status"`
	Label  string `json:"label"`
}

type OrderItemResponse struct {
	Kind        string          `json:"kind"`
	ID          string          `json:"id"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type ServiceOrderResponse struct {
	ID           string              `json:"id"`
	Number       int64               `json:"number"`
	CustomerID   string              `json:"customer_id"`
	CustomerName string              `json:"customer_name"`
	VehiclePlate string              `json:"vehicle_plate"`
	Status       string              `json:"status"`
	StatusLabel  string              `json:"status_label"`
	Observations string              `json:"observations"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Items        []OrderItemResponse `json:"items"`
	NextStatuses []StatusOption      `json:"next_statuses"`
	CreatedBy    string              `json:"created_by"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type ServiceOrderListResponse struct {
	Data       []ServiceOrderResponse `json:"data"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}
