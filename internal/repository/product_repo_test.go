package repository

import (
	"testing"

	"tireshop/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepo_UpdateLeavesStockAlone(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)
	p := seedProduct(t, db, "Pneu 175/70 R13", 8, 2)

	p.CurrentStock = 999
	p.MinStock = 0
	p.SalePrice = decimal.RequireFromString("289.90")
	require.NoError(t, repo.Update(ctx(), p))

	got, err := repo.FindByID(ctx(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.CurrentStock)
	assert.Equal(t, 0, got.MinStock)
	assert.True(t, decimal.RequireFromString("289.90").Equal(got.SalePrice))
}

func TestProductRepo_AdjustStockGuard(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)
	p := seedProduct(t, db, "Válvula", 3, 1)

	require.NoError(t, repo.AdjustStockTx(db, p.ID, 4))
	require.NoError(t, repo.AdjustStockTx(db, p.ID, -7))

	err := repo.AdjustStockTx(db, p.ID, -1)
	assert.ErrorIs(t, err, ErrNoRowsAffected)

	got, err := repo.FindByID(ctx(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentStock)

	assert.ErrorIs(t, repo.AdjustStockTx(db, uuid.New(), 1), ErrNoRowsAffected)
}

func TestProductRepo_LowStockAndSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)
	low := seedProduct(t, db, "Câmara de ar aro 13", 5, 10)
	seedProduct(t, db, "Pneu Aro 14", 20, 4)
	edge := seedProduct(t, db, "Bico de pneu", 4, 4)

	lows, err := repo.LowStock(ctx())
	require.NoError(t, err)
	require.Len(t, lows, 2)
	assert.Equal(t, edge.ID, lows[0].ID)
	assert.Equal(t, low.ID, lows[1].ID)

	found, err := repo.List(ctx(), "ARO")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	byIDs, err := repo.FindByIDs(ctx(), []uuid.UUID{low.ID, edge.ID})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)
}

func TestInventoryMovementRepo_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryMovementRepository(db)
	user := seedUser(t, db)
	a := seedProduct(t, db, "Pneu A", 0, 0)
	b := seedProduct(t, db, "Pneu B", 0, 0)

	for _, m := range []*model.InventoryMovement{
		{ProductID: a.ID, MovementType: model.MovementIn, Quantity: 10, CreatedBy: user.ID, CreatedAt: day(2024, 1, 1)},
		{ProductID: a.ID, MovementType: model.MovementOut, Quantity: 2, CreatedBy: user.ID, CreatedAt: day(2024, 1, 2)},
		{ProductID: b.ID, MovementType: model.MovementIn, Quantity: 5, CreatedBy: user.ID, CreatedAt: day(2024, 1, 3)},
	} {
		require.NoError(t, repo.CreateTx(db, m))
	}

	all, total, err := repo.List(ctx(), MovementFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, b.ID, all[0].ProductID)
	require.NotNil(t, all[0].Product)
	assert.Equal(t, "Pneu B", all[0].Product.Description)

	onlyA, total, err := repo.List(ctx(), MovementFilter{ProductID: &a.ID, Type: model.MovementOut, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, onlyA, 1)
	assert.Equal(t, -2, onlyA[0].Delta())
}
