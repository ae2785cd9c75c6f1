package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateMovementRequest struct {
	ProductID    string `json:"product_id"    validate:"required,uuid"`
	MovementType string `json:"movement_type" validate:"required,oneof=in out"`
	Quantity     int    `json:"quantity"      validate:"required,min=1"`
	Notes        string `json:"notes"         validate:"max=500"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type MovementFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Type      string `form:"type"       validate:"omitempty,oneof=in out"`
	Pagination
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovementResponse struct {
	ID                 string    `json:"id"`
	ProductID          string    `json:"product_id"`
	ProductDescription string    `json:"product_description"`
	MovementType       string    `json:"movement_type"`
	Quantity           int       `json:"quantity"`
	Notes              string    `json:"notes"`
	CreatedBy          string    `json:"created_by"`
	CreatedAt          time.Time `json:"created_at"`
	// StockAfter is only set on the create response.
	StockAfter *int `json:"stock_after,omitempty"`
}

type MovementListResponse struct {
	Data       []MovementResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
