// Package serviceorder is the service order engine: the status lifecycle,
// the line item collection and the Order aggregate that keeps its total in
// sync with its lines. It has no persistence concerns.
package serviceorder

import (
	"strings"
	"time"

	"tireshop/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a service order aggregate. Number is assigned by the store.
type Order struct {
	ID           uuid.UUID
	Number       int64
	CustomerID   uuid.UUID
	VehiclePlate string
	Status       Status
	Observations string
	Items        Items
	TotalAmount  decimal.Decimal
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New validates the draft and returns an open order with its total computed.
// An empty item list is a validation failure at creation time.
func New(customerID uuid.UUID, vehiclePlate string, items []Item, observations string, actorID uuid.UUID) (*Order, error) {
	verr := newValidationError()
	if customerID == uuid.Nil {
		verr.add("customer_id", "required")
	}
	if actorID == uuid.Nil {
		verr.add("created_by", "required")
	}
	if len(items) == 0 {
		verr.add("items", "min=1")
	}
	lines := Items(append([]Item(nil), items...))
	lines.validate(verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	o := &Order{
		ID:           uuid.New(),
		CustomerID:   customerID,
		VehiclePlate: normalizePlate(vehiclePlate),
		Status:       InitialStatus,
		Observations: strings.TrimSpace(observations),
		Items:        lines,
		CreatedBy:    actorID,
	}
	o.RecomputeTotal()
	return o, nil
}

// Update replaces the mutable header fields and the whole item list.
// Status, Number and CreatedBy are untouched. Terminal orders cannot be edited.
func (o *Order) Update(vehiclePlate string, items []Item, observations string) error {
	if o.Status.IsTerminal() {
		return &TransitionError{From: o.Status, To: o.Status}
	}
	if len(items) == 0 {
		return ErrEmptyOrder
	}
	verr := newValidationError()
	lines := Items(append([]Item(nil), items...))
	lines.validate(verr)
	if err := verr.orNil(); err != nil {
		return err
	}

	o.VehiclePlate = normalizePlate(vehiclePlate)
	o.Observations = strings.TrimSpace(observations)
	o.Items = lines
	o.RecomputeTotal()
	return nil
}

// ChangeStatus moves the order to target. On failure the order is unchanged;
// on success Status is the only field mutated.
func (o *Order) ChangeStatus(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return &TransitionError{From: o.Status, To: target}
	}
	o.Status = target
	return nil
}

// RecomputeTotal sets TotalAmount to the item total rounded to cents.
func (o *Order) RecomputeTotal() {
	o.TotalAmount = money.Round(o.Items.Total())
}

func normalizePlate(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}
