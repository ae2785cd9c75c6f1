package repository

import (
	"context"
	"testing"
	"time"

	"tireshop/internal/infra"
	"tireshop/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB returns an empty in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewDatabase(infra.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	u := &model.User{Email: uuid.NewString() + "@pneus.test", Name: "Operador", PasswordHash: "x", Role: model.RoleAttendant, Active: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCustomer(t *testing.T, db *gorm.DB, name string) *model.Customer {
	t.Helper()
	c := &model.Customer{Name: name, Document: uuid.NewString()[:14]}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, desc string, stock, min int) *model.Product {
	t.Helper()
	p := &model.Product{
		Description:  desc,
		Brand:        "Pirelli",
		CostPrice:    decimal.NewFromInt(30),
		SalePrice:    decimal.NewFromInt(50),
		CurrentStock: stock,
		MinStock:     min,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedService(t *testing.T, db *gorm.DB, desc string, price int64) *model.Service {
	t.Helper()
	s := &model.Service{Description: desc, Price: decimal.NewFromInt(price)}
	require.NoError(t, db.Create(s).Error)
	return s
}

func ctx() context.Context { return context.Background() }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
