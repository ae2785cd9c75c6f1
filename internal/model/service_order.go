package model

import (
	"sort"
	"time"

	"tireshop/internal/money"
	"tireshop/internal/serviceorder"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ServiceOrder is the persisted header of a service order. Its lines live in
// two child tables; Position keeps the combined order of the lines.
type ServiceOrder struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Number       int64     `gorm:"uniqueIndex;not null"`
	CustomerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	VehiclePlate string
	Status       string `gorm:"type:varchar(20);not null;index"`
	Observations string
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedBy    uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt    time.Time       `gorm:"index"`
	UpdatedAt    time.Time

	Customer *Customer             `gorm:"foreignKey:CustomerID"`
	Products []ServiceOrderProduct `gorm:"foreignKey:ServiceOrderID;constraint:OnDelete:CASCADE"`
	Services []ServiceOrderService `gorm:"foreignKey:ServiceOrderID;constraint:OnDelete:CASCADE"`
}

func (o *ServiceOrder) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

type ServiceOrderProduct struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ServiceOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description    string          `gorm:"not null"`
	Quantity       int             `gorm:"not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Position       int             `gorm:"not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (p *ServiceOrderProduct) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

type ServiceOrderService struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ServiceOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description    string          `gorm:"not null"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Position       int             `gorm:"not null"`
}

func (s *ServiceOrderService) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// NewServiceOrder maps a domain order onto its header and child rows.
func NewServiceOrder(o *serviceorder.Order) *ServiceOrder {
	m := &ServiceOrder{
		ID:           o.ID,
		Number:       o.Number,
		CustomerID:   o.CustomerID,
		VehiclePlate: o.VehiclePlate,
		Status:       string(o.Status),
		Observations: o.Observations,
		TotalAmount:  o.TotalAmount,
		CreatedBy:    o.CreatedBy,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	m.Products, m.Services = ItemRows(o.ID, o.Items)
	return m
}

// ItemRows splits the ordered item collection into the two child tables.
func ItemRows(orderID uuid.UUID, items serviceorder.Items) ([]ServiceOrderProduct, []ServiceOrderService) {
	var products []ServiceOrderProduct
	var services []ServiceOrderService
	for i, it := range items {
		switch it.Kind {
		case serviceorder.KindProduct:
			products = append(products, ServiceOrderProduct{
				ServiceOrderID: orderID,
				ProductID:      it.RefID,
				Description:    it.Description,
				Quantity:       it.Quantity,
				UnitPrice:      it.UnitPrice,
				TotalPrice:     money.Round(it.Subtotal()),
				Position:       i,
			})
		case serviceorder.KindService:
			services = append(services, ServiceOrderService{
				ServiceOrderID: orderID,
				ServiceID:      it.RefID,
				Description:    it.Description,
				Price:          it.UnitPrice,
				Position:       i,
			})
		}
	}
	return products, services
}

// Domain rebuilds the aggregate, merging both child tables by Position.
func (m *ServiceOrder) Domain() *serviceorder.Order {
	type positioned struct {
		pos  int
		item serviceorder.Item
	}
	lines := make([]positioned, 0, len(m.Products)+len(m.Services))
	for _, p := range m.Products {
		lines = append(lines, positioned{p.Position, serviceorder.ProductItem(p.ProductID, p.Description, p.UnitPrice, p.Quantity)})
	}
	for _, s := range m.Services {
		lines = append(lines, positioned{s.Position, serviceorder.ServiceItem(s.ServiceID, s.Description, s.Price)})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].pos < lines[j].pos })

	items := make(serviceorder.Items, len(lines))
	for i, l := range lines {
		items[i] = l.item
	}
	return &serviceorder.Order{
		ID:           m.ID,
		Number:       m.Number,
		CustomerID:   m.CustomerID,
		VehiclePlate: m.VehiclePlate,
		Status:       serviceorder.Status(m.Status),
		Observations: m.Observations,
		Items:        items,
		TotalAmount:  m.TotalAmount,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
