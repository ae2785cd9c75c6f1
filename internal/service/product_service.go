package service

import (
	"context"
	"strings"
	"time"

	"tireshop/internal/dto"
	"tireshop/internal/model"
	"tireshop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const initialStockNote = "Estoque inicial"

type ProductService interface {
	List(ctx context.Context, search string) ([]dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	LowStock(ctx context.Context) ([]dto.ProductResponse, error)
	Create(ctx context.Context, actorID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
}

type productService struct {
	repo      repository.ProductRepository
	movements repository.InventoryMovementRepository
}

func NewProductService(repo repository.ProductRepository, movements repository.InventoryMovementRepository) ProductService {
	return &productService{repo: repo, movements: movements}
}

func (s *productService) List(ctx context.Context, search string) ([]dto.ProductResponse, error) {
	products, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, storeErr(ctx, "products.list", err)
	}
	return productsToResponse(products), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "products.get", err)
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) LowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, storeErr(ctx, "products.low_stock", err)
	}
	return productsToResponse(products), nil
}

// Create inserts the product with zero stock. A positive initial stock is
// booked as an "in" movement inside the same transaction.
func (s *productService) Create(ctx context.Context, actorID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := wholeCents(map[string]decimal.Decimal{"cost_price": req.CostPrice, "sale_price": req.SalePrice}); err != nil {
		return nil, err
	}
	p := &model.Product{
		Description: strings.TrimSpace(req.Description),
		Barcode:     trimmedOrNil(req.Barcode),
		Brand:       strings.TrimSpace(req.Brand),
		Model:       trimmedOrNil(req.Model),
		Supplier:    trimmedOrNil(req.Supplier),
		CostPrice:   req.CostPrice,
		SalePrice:   req.SalePrice,
		MinStock:    req.MinStock,
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			return err
		}
		if req.CurrentStock <= 0 {
			return nil
		}
		if err := s.repo.AdjustStockTx(tx, p.ID, req.CurrentStock); err != nil {
			return err
		}
		p.CurrentStock = req.CurrentStock
		return s.movements.CreateTx(tx, &model.InventoryMovement{
			ProductID:    p.ID,
			MovementType: model.MovementIn,
			Quantity:     req.CurrentStock,
			Notes:        initialStockNote,
			CreatedBy:    actorID,
		})
	})
	if err != nil {
		return nil, storeErr(ctx, "products.create", err)
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := wholeCents(map[string]decimal.Decimal{"cost_price": req.CostPrice, "sale_price": req.SalePrice}); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "products.update", err)
	}
	p.Description = strings.TrimSpace(req.Description)
	p.Barcode = trimmedOrNil(req.Barcode)
	p.Brand = strings.TrimSpace(req.Brand)
	p.Model = trimmedOrNil(req.Model)
	p.Supplier = trimmedOrNil(req.Supplier)
	p.CostPrice = req.CostPrice
	p.SalePrice = req.SalePrice
	p.MinStock = req.MinStock
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, storeErr(ctx, "products.update", err)
	}
	resp := productToResponse(p)
	return &resp, nil
}

func productsToResponse(products []model.Product) []dto.ProductResponse {
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = productToResponse(&products[i])
	}
	return resp
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:           p.ID.String(),
		Description:  p.Description,
		Barcode:      p.Barcode,
		Brand:        p.Brand,
		Model:        p.Model,
		Supplier:     p.Supplier,
		CostPrice:    p.CostPrice,
		SalePrice:    p.SalePrice,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		LowStock:     p.IsLowStock(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
