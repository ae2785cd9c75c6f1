package dto

import "time"

// CustomerRequest is used for both create and full update.
type CustomerRequest struct {
	Name         string  `json:"name"          validate:"required,min=3,max=150"`
	Document     string  `json:"document"      validate:"required,min=3,max=20"`
	Email        *string `json:"email"         validate:"omitempty,email,max=150"`
	Phone        *string `json:"phone"         validate:"omitempty,max=30"`
	Address      *string `json:"address"       validate:"omitempty,max=255"`
	VehiclePlate *string `json:"vehicle_plate" validate:"omitempty,max=10"`
}

type CustomerResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Document     string    `json:"document"`
	Email        *string   `json:"email"`
	Phone        *string   `json:"phone"`
	Address      *string   `json:"address"`
	VehiclePlate *string   `json:"vehicle_plate"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
