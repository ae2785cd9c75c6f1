package serviceorder

import (
	"fmt"

	"tireshop/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemKind discriminates the two line item variants.
type ItemKind string

const (
	KindService ItemKind = "service"
	KindProduct ItemKind = "product"
)

// Item is one line of a service order. RefID points at the catalog service
// or the product depending on Kind. Services always have Quantity 1.
type Item struct {
	Kind        ItemKind
	RefID       uuid.UUID
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// ServiceItem builds a service line.
func ServiceItem(serviceID uuid.UUID, description string, price decimal.Decimal) Item {
	return Item{Kind: KindService, RefID: serviceID, Description: description, UnitPrice: price, Quantity: 1}
}

// ProductItem builds a product line.
func ProductItem(productID uuid.UUID, description string, unitPrice decimal.Decimal, quantity int) Item {
	return Item{Kind: KindProduct, RefID: productID, Description: description, UnitPrice: unitPrice, Quantity: quantity}
}

// Subtotal is UnitPrice × Quantity, unrounded.
func (it Item) Subtotal() decimal.Decimal {
	return money.LineSubtotal(it.UnitPrice, it.Quantity)
}

func (it Item) validate(prefix string, verr *ValidationError) {
	switch it.Kind {
	case KindService:
		if it.Quantity != 1 {
			verr.add(prefix+".quantity", "eq=1")
		}
	case KindProduct:
		if it.Quantity < 1 {
			verr.add(prefix+".quantity", "min=1")
		}
	default:
		verr.add(prefix+".kind", "oneof=service product")
	}
	if it.RefID == uuid.Nil {
		verr.add(prefix+".id", "required")
	}
	switch {
	case it.UnitPrice.IsNegative():
		verr.add(prefix+".price", "min=0")
	case !money.IsCents(it.UnitPrice):
		verr.add(prefix+".price", "cents")
	}
}

// Items is the ordered line collection of an order. Duplicates are allowed:
// the same product may appear on several lines.
type Items []Item

// Add appends a line.
func (c *Items) Add(it Item) {
	*c = append(*c, it)
}

// Remove deletes the line at index. An invalid index leaves c untouched.
func (c *Items) Remove(index int) error {
	if index < 0 || index >= len(*c) {
		return fmt.Errorf("%w: %d (itens: %d)", ErrIndexOutOfRange, index, len(*c))
	}
	*c = append((*c)[:index:index], (*c)[index+1:]...)
	return nil
}

// Total sums every line subtotal without intermediate rounding.
func (c Items) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Len returns the number of lines.
func (c Items) Len() int { return len(c) }

// Products returns the product lines in collection order.
func (c Items) Products() []Item { return c.ofKind(KindProduct) }

// Services returns the service lines in collection order.
func (c Items) Services() []Item { return c.ofKind(KindService) }

func (c Items) ofKind(kind ItemKind) []Item {
	out := make([]Item, 0, len(c))
	for _, it := range c {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

func (c Items) validate(verr *ValidationError) {
	for i, it := range c {
		it.validate(fmt.Sprintf("items[%d]", i), verr)
	}
}
