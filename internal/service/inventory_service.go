package service

import (
	"context"
	"errors"
	"strings"

	"tireshop/internal/dto"
	"tireshop/internal/metrics"
	"tireshop/internal/model"
	"tireshop/internal/repository"
	"tireshop/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type InventoryService interface {
	CreateMovement(ctx context.Context, actorID uuid.UUID, req dto.CreateMovementRequest) (*dto.MovementResponse, error)
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
}

type inventoryService struct {
	products   repository.ProductRepository
	movements  repository.InventoryMovementRepository
	dispatcher JobDispatcher
}

func NewInventoryService(
	products repository.ProductRepository,
	movements repository.InventoryMovementRepository,
	dispatcher JobDispatcher,
) InventoryService {
	return &inventoryService{products: products, movements: movements, dispatcher: dispatcher}
}

// ── CreateMovement ────────────────────────────────────────────────────────────
// One transaction: product lookup, guarded stock update, movement insert.
// An "out" larger than the stock leaves both tables untouched.
// An "out" that leaves the product at or below its minimum enqueues an alert.

func (s *inventoryService) CreateMovement(ctx context.Context, actorID uuid.UUID, req dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, invalid("product_id", "uuid")
	}
	if req.Quantity < 1 {
		return nil, invalid("quantity", "min=1")
	}
	if req.MovementType != model.MovementIn && req.MovementType != model.MovementOut {
		return nil, invalid("movement_type", "oneof=in out")
	}

	mov := &model.InventoryMovement{
		ProductID:    productID,
		MovementType: req.MovementType,
		Quantity:     req.Quantity,
		Notes:        strings.TrimSpace(req.Notes),
		CreatedBy:    actorID,
	}

	var product *model.Product
	err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		if _, err := s.products.FindByIDTx(tx, productID); err != nil {
			return err
		}
		if err := s.products.AdjustStockTx(tx, productID, mov.Delta()); err != nil {
			if errors.Is(err, repository.ErrNoRowsAffected) {
				return ErrInsufficientStock
			}
			return err
		}
		if err := s.movements.CreateTx(tx, mov); err != nil {
			return err
		}
		p, err := s.products.FindByIDTx(tx, productID)
		if err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, passThrough(ctx, "inventory.create_movement", err)
	}

	metrics.StockMovements.WithLabelValues(mov.MovementType).Inc()
	log.Ctx(ctx).Info().
		Str("product_id", productID.String()).
		Str("type", mov.MovementType).
		Int("quantity", mov.Quantity).
		Int("stock_after", product.CurrentStock).
		Msg("inventory movement recorded")

	if mov.MovementType == model.MovementOut && product.IsLowStock() {
		enqueue(ctx, s.dispatcher, worker.JobLowStockAlert, worker.LowStockAlertPayload{
			ProductID:    product.ID.String(),
			Description:  product.Description,
			CurrentStock: product.CurrentStock,
			MinStock:     product.MinStock,
		})
	}

	mov.Product = product
	resp := movementToResponse(mov)
	stock := product.CurrentStock
	resp.StockAfter = &stock
	return &resp, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	f := repository.MovementFilter{
		Type:   filter.Type,
		Offset: filter.Offset(),
		Limit:  filter.Limit,
	}
	if filter.ProductID != "" {
		id, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, invalid("product_id", "uuid")
		}
		f.ProductID = &id
	}

	movements, total, err := s.movements.List(ctx, f)
	if err != nil {
		return nil, storeErr(ctx, "inventory.list_movements", err)
	}
	data := make([]dto.MovementResponse, len(movements))
	for i := range movements {
		data[i] = movementToResponse(&movements[i])
	}
	return &dto.MovementListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: filter.TotalPages(total),
	}, nil
}

func movementToResponse(m *model.InventoryMovement) dto.MovementResponse {
	resp := dto.MovementResponse{
		ID:           m.ID.String(),
		ProductID:    m.ProductID.String(),
		MovementType: m.MovementType,
		Quantity:     m.Quantity,
		Notes:        m.Notes,
		CreatedBy:    m.CreatedBy.String(),
		CreatedAt:    m.CreatedAt,
	}
	if m.Product != nil {
		resp.ProductDescription = m.Product.Description
	}
	return resp
}
