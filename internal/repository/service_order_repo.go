package repository

import (
	"context"
	"time"

	"tireshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceOrderFilter defines filters for listing orders.
type ServiceOrderFilter struct {
	Status     string
	CustomerID *uuid.UUID
	Offset     int
	Limit      int
}

type ServiceOrderRepository interface {
	// NextNumber draws the next display number inside tx.
	NextNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	// CreateTx inserts the header and both child tables.
	CreateTx(tx *gorm.DB, o *model.ServiceOrder) error
	// ReplaceTx rewrites plate, observations and total, then replaces every
	// child row. Only orders whose status is in editable are touched;
	// ErrNoRowsAffected otherwise.
	ReplaceTx(tx *gorm.DB, o *model.ServiceOrder, editable []string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error)
	List(ctx context.Context, filter ServiceOrderFilter) ([]model.ServiceOrder, int64, error)
	// UpdateStatus sets status to `to` only when the current status is one of
	// from. ErrNoRowsAffected means the guard did not match.
	UpdateStatus(ctx context.Context, id uuid.UUID, to string, from []string) error

	DB() *gorm.DB
}

type serviceOrderRepo struct{ db *gorm.DB }

func NewServiceOrderRepository(db *gorm.DB) ServiceOrderRepository {
	return &serviceOrderRepo{db: db}
}

func (r *serviceOrderRepo) DB() *gorm.DB { return r.db }

func (r *serviceOrderRepo) NextNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	q := "SELECT nextval('service_orders_number_seq')"
	if tx.Dialector.Name() != "postgres" {
		// no sequences; the write lock of the surrounding tx serializes this
		q = "SELECT COALESCE(MAX(number), 0) + 1 FROM service_orders"
	}
	err := tx.WithContext(ctx).Raw(q).Scan(&n).Error
	return n, err
}

func (r *serviceOrderRepo) CreateTx(tx *gorm.DB, o *model.ServiceOrder) error {
	return tx.Omit("Customer").Create(o).Error
}

func (r *serviceOrderRepo) ReplaceTx(tx *gorm.DB, o *model.ServiceOrder, editable []string) error {
	res := tx.Model(&model.ServiceOrder{}).
		Where("id = ? AND status IN ?", o.ID, editable).
		Updates(map[string]interface{}{
			"vehicle_plate": o.VehiclePlate,
			"observations":  o.Observations,
			"total_amount":  o.TotalAmount,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	if err := tx.Where("service_order_id = ?", o.ID).Delete(&model.ServiceOrderProduct{}).Error; err != nil {
		return err
	}
	if err := tx.Where("service_order_id = ?", o.ID).Delete(&model.ServiceOrderService{}).Error; err != nil {
		return err
	}
	if len(o.Products) > 0 {
		if err := tx.Omit("Product").Create(&o.Products).Error; err != nil {
			return err
		}
	}
	if len(o.Services) > 0 {
		if err := tx.Create(&o.Services).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *serviceOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
	var o model.ServiceOrder
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Services", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *serviceOrderRepo) List(ctx context.Context, filter ServiceOrderFilter) ([]model.ServiceOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ServiceOrder{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var orders []model.ServiceOrder
	err := q.Preload("Customer").
		Preload("Products").
		Preload("Services").
		Order("number DESC").
		Offset(filter.Offset).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *serviceOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, to string, from []string) error {
	if len(from) == 0 {
		return ErrNoRowsAffected
	}
	res := r.db.WithContext(ctx).Model(&model.ServiceOrder{}).
		Where("id = ? AND status IN ?", id, from).
		UpdateColumn("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
