package repository

import (
	"context"

	"tireshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var productSearchCols = []string{"description", "barcode", "brand", "model", "supplier"}

// ProductRepository defines the data access contract for products.
// current_stock is written only by AdjustStockTx.
type ProductRepository interface {
	CreateTx(tx *gorm.DB, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	List(ctx context.Context, search string) ([]model.Product, error)
	// LowStock returns products with current_stock <= min_stock, emptiest first.
	LowStock(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error

	// AdjustStockTx applies delta atomically. A negative delta only applies when
	// enough stock exists; otherwise ErrNoRowsAffected is returned.
	AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) List(ctx context.Context, search string) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if search != "" {
		q = q.Where(likeClause(productSearchCols...), repeatArg(likePattern(search), len(productSearchCols))...)
	}
	var products []model.Product
	err := q.Order("description ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) LowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("current_stock <= min_stock").
		Order("current_stock ASC, description ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{ID: p.ID}).
		Select("description", "barcode", "brand", "model", "supplier",
			"cost_price", "sale_price", "min_stock", "updated_at").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	q := tx.Model(&model.Product{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("current_stock >= ?", -delta)
	}
	res := q.Update("current_stock", gorm.Expr("current_stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
