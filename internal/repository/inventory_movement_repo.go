package repository

import (
	"context"

	"tireshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementFilter defines filters for listing inventory movements.
type MovementFilter struct {
	ProductID *uuid.UUID
	Type      string
	Offset    int
	Limit     int
}

type InventoryMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.InventoryMovement) error
	// List returns movements newest first with their product preloaded.
	List(ctx context.Context, filter MovementFilter) ([]model.InventoryMovement, int64, error)
}

type inventoryMovementRepo struct{ db *gorm.DB }

func NewInventoryMovementRepository(db *gorm.DB) InventoryMovementRepository {
	return &inventoryMovementRepo{db: db}
}

func (r *inventoryMovementRepo) CreateTx(tx *gorm.DB, m *model.InventoryMovement) error {
	return tx.Omit("Product").Create(m).Error
}

func (r *inventoryMovementRepo) List(ctx context.Context, filter MovementFilter) ([]model.InventoryMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryMovement{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("movement_type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var movements []model.InventoryMovement
	err := q.Preload("Product").
		Order("created_at DESC").
		Offset(filter.Offset).Limit(limit).
		Find(&movements).Error
	return movements, total, err
}
