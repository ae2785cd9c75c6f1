package repository

import (
	"context"
	"time"

	"tireshop/internal/dto"
	"tireshop/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Only completed orders count as revenue.
const statusCompleted = "completed"

type Totals struct {
	Revenue   decimal.Decimal
	Orders    int64
	Products  int64
	Customers int64
	LowStock  int64
}

type OrderAmount struct {
	CreatedAt   time.Time
	TotalAmount decimal.Decimal
}

type RevenueSummary struct {
	Revenue decimal.Decimal
	Orders  int64
}

type RecentOrderRow struct {
	Number       int64
	CustomerName string
	TotalAmount  decimal.Decimal
	Status       string
	CreatedAt    time.Time
}

type ProductRevenueRow struct {
	Description  string
	QuantitySold int64
	TotalRevenue decimal.Decimal
	TotalCost    decimal.Decimal
}

type StatusCountRow struct {
	Status      string
	Count       int64
	TotalAmount decimal.Decimal
}

// ReportRepository runs the read-only aggregate queries behind the
// dashboard and financial reports. Ranges are half-open: [from, to).
type ReportRepository interface {
	Totals(ctx context.Context) (*Totals, error)
	CompletedOrderAmounts(ctx context.Context, from, to time.Time) ([]OrderAmount, error)
	TopProducts(ctx context.Context, limit int) ([]dto.TopProduct, error)
	TopServices(ctx context.Context, limit int) ([]dto.TopService, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrderRow, error)
	CompletedSummary(ctx context.Context, from, to time.Time) (*RevenueSummary, error)
	ServiceRevenue(ctx context.Context, from, to time.Time) ([]dto.ServiceRevenue, error)
	ProductRevenue(ctx context.Context, from, to time.Time) ([]ProductRevenueRow, error)
	StatusSummary(ctx context.Context, from, to time.Time) ([]StatusCountRow, error)
	OrdersInRange(ctx context.Context, from, to time.Time) ([]model.ServiceOrder, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) Totals(ctx context.Context) (*Totals, error) {
	db := r.db.WithContext(ctx)
	var t Totals
	if err := db.Model(&model.ServiceOrder{}).
		Where("status = ?", statusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&t.Revenue).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.ServiceOrder{}).Count(&t.Orders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Count(&t.Products).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Customer{}).Count(&t.Customers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("current_stock <= min_stock").Count(&t.LowStock).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *reportRepo) CompletedOrderAmounts(ctx context.Context, from, to time.Time) ([]OrderAmount, error) {
	var rows []OrderAmount
	err := r.db.WithContext(ctx).Model(&model.ServiceOrder{}).
		Select("created_at, total_amount").
		Where("status = ? AND created_at >= ? AND created_at < ?", statusCompleted, from, to).
		Order("created_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) TopProducts(ctx context.Context, limit int) ([]dto.TopProduct, error) {
	var rows []dto.TopProduct
	err := r.db.WithContext(ctx).Raw(`
SELECT p.description AS description,
       COALESCE(SUM(sop.quantity), 0)    AS total_sold,
       COALESCE(SUM(sop.total_price), 0) AS total_revenue
FROM service_order_products sop
JOIN service_orders so ON so.id = sop.service_order_id
JOIN products p ON p.id = sop.product_id
WHERE so.status = ?
GROUP BY p.id, p.description
ORDER BY total_sold DESC, total_revenue DESC
LIMIT ?`, statusCompleted, limit).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) TopServices(ctx context.Context, limit int) ([]dto.TopService, error) {
	var rows []dto.TopService
	err := r.db.WithContext(ctx).Raw(`
SELECT s.description AS description,
       COUNT(*)                    AS total_count,
       COALESCE(SUM(sos.price), 0) AS total_revenue
FROM service_order_services sos
JOIN service_orders so ON so.id = sos.service_order_id
JOIN services s ON s.id = sos.service_id
WHERE so.status = ?
GROUP BY s.id, s.description
ORDER BY total_count DESC, total_revenue DESC
LIMIT ?`, statusCompleted, limit).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) RecentOrders(ctx context.Context, limit int) ([]RecentOrderRow, error) {
	var rows []RecentOrderRow
	err := r.db.WithContext(ctx).Raw(`
SELECT so.number AS number,
       c.name AS customer_name,
       so.total_amount AS total_amount,
       so.status AS status,
       so.created_at AS created_at
FROM service_orders so
JOIN customers c ON c.id = so.customer_id
ORDER BY so.created_at DESC, so.number DESC
LIMIT ?`, limit).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) CompletedSummary(ctx context.Context, from, to time.Time) (*RevenueSummary, error) {
	var s RevenueSummary
	err := r.db.WithContext(ctx).Raw(`
SELECT COALESCE(SUM(total_amount), 0) AS revenue,
       COUNT(*) AS orders
FROM service_orders
WHERE status = ? AND created_at >= ? AND created_at < ?`, statusCompleted, from, to).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *reportRepo) ServiceRevenue(ctx context.Context, from, to time.Time) ([]dto.ServiceRevenue, error) {
	var rows []dto.ServiceRevenue
	err := r.db.WithContext(ctx).Raw(`
SELECT sos.description AS description,
       COUNT(*) AS service_count,
       COALESCE(SUM(sos.price), 0) AS total_revenue
FROM service_order_services sos
JOIN service_orders so ON so.id = sos.service_order_id
WHERE so.status = ? AND so.created_at >= ? AND so.created_at < ?
GROUP BY sos.description
ORDER BY total_revenue DESC, description ASC`, statusCompleted, from, to).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) ProductRevenue(ctx context.Context, from, to time.Time) ([]ProductRevenueRow, error) {
	var rows []ProductRevenueRow
	err := r.db.WithContext(ctx).Raw(`
SELECT sop.description AS description,
       COALESCE(SUM(sop.quantity), 0) AS quantity_sold,
       COALESCE(SUM(sop.total_price), 0) AS total_revenue,
       COALESCE(SUM(sop.quantity * p.cost_price), 0) AS total_cost
FROM service_order_products sop
JOIN service_orders so ON so.id = sop.service_order_id
JOIN products p ON p.id = sop.product_id
WHERE so.status = ? AND so.created_at >= ? AND so.created_at < ?
GROUP BY sop.description
ORDER BY total_revenue DESC, description ASC`, statusCompleted, from, to).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) StatusSummary(ctx context.Context, from, to time.Time) ([]StatusCountRow, error) {
	var rows []StatusCountRow
	err := r.db.WithContext(ctx).Raw(`
SELECT status AS status,
       COUNT(*) AS count,
       COALESCE(SUM(total_amount), 0) AS total_amount
FROM service_orders
WHERE created_at >= ? AND created_at < ?
GROUP BY status`, from, to).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) OrdersInRange(ctx context.Context, from, to time.Time) ([]model.ServiceOrder, error) {
	var orders []model.ServiceOrder
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Services", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}
