package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tireshop/internal/dto"
	"tireshop/internal/serviceorder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func assertInvalidField(t *testing.T, err error, field string) {
	t.Helper()
	require.ErrorIs(t, err, serviceorder.ErrValidation)
	var verr *serviceorder.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, field)
}

// ── Customers ────────────────────────────────────────────────────────────────

func TestCustomerCreate_NormalizesFields(t *testing.T) {
	svc := NewCustomerService(newStubCustomerRepo())

	resp, err := svc.Create(ctx(), dto.CustomerRequest{
		Name:         "  Joana Prado ",
		Document:     "123.456.789-00",
		Email:        strPtr("   "),
		VehiclePlate: strPtr(" abc1d23 "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Joana Prado", resp.Name)
	assert.Nil(t, resp.Email)
	require.NotNil(t, resp.VehiclePlate)
	assert.Equal(t, "ABC1D23", *resp.VehiclePlate)
}

func TestCustomerCreate_DuplicateDocument(t *testing.T) {
	svc := NewCustomerService(newStubCustomerRepo())
	req := dto.CustomerRequest{Name: "Joana", Document: "111"}

	_, err := svc.Create(ctx(), req)
	require.NoError(t, err)
	_, err = svc.Create(ctx(), req)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCustomerDelete(t *testing.T) {
	repo := newStubCustomerRepo()
	svc := NewCustomerService(repo)
	c := repo.add("Joana", nil)

	repo.deleteErr = fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, svc.Delete(ctx(), c.ID), ErrConflict)

	repo.deleteErr = nil
	require.NoError(t, svc.Delete(ctx(), c.ID))
	assert.ErrorIs(t, svc.Delete(ctx(), c.ID), ErrNotFound)
}

func TestCustomerList_Search(t *testing.T) {
	repo := newStubCustomerRepo()
	repo.add("Carlos Lima", nil)
	repo.add("Beatriz Alves", nil)
	svc := NewCustomerService(repo)

	all, err := svc.List(ctx(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Beatriz Alves", all[0].Name)

	found, err := svc.List(ctx(), "lima")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Carlos Lima", found[0].Name)
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func TestEstimatedMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1:30", 90},
		{"00:45:59", 45},
		{"2h", 120},
		{"1h15m", 75},
	}
	for _, tc := range cases {
		got, err := estimatedMinutes(&tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, *got, tc.in)
	}

	for _, bad := range []string{"1:60", "abc", "1:2:3:4", "-1h"} {
		_, err := estimatedMinutes(&bad)
		assertInvalidField(t, err, "estimated_time")
	}

	got, err := estimatedMinutes(strPtr("  "))
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestCatalogCreate_LabelsEstimate(t *testing.T) {
	svc := NewCatalogService(newStubServiceRepo())

	resp, err := svc.Create(ctx(), dto.ServiceRequest{
		Description:   "Alinhamento",
		EstimatedTime: strPtr("1:30"),
		Price:         dec("80.00"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.EstimatedTime)
	assert.Equal(t, "1h 30min", *resp.EstimatedTime)
	assert.Equal(t, 90, *resp.EstimatedMinutes)

	_, err = svc.Update(ctx(), uuid.New(), dto.ServiceRequest{Description: "X", Price: dec("1.00")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogWrites_RejectFractionsOfACent(t *testing.T) {
	repo := newStubServiceRepo()
	svc := NewCatalogService(repo)

	_, err := svc.Create(ctx(), dto.ServiceRequest{Description: "Calibragem", Price: dec("10.005")})
	assertInvalidField(t, err, "price")

	sv := repo.add("Calibragem", "10.00")
	_, err = svc.Update(ctx(), sv.ID, dto.ServiceRequest{Description: "Calibragem", Price: dec("10.001")})
	assertInvalidField(t, err, "price")

	resp, err := svc.Update(ctx(), sv.ID, dto.ServiceRequest{Description: "Calibragem", Price: dec("10.500")})
	require.NoError(t, err)
	assert.True(t, dec("10.50").Equal(resp.Price))
}

// ── Error mapping ────────────────────────────────────────────────────────────

func TestStoreErr(t *testing.T) {
	assert.NoError(t, storeErr(ctx(), "op", nil))
	assert.ErrorIs(t, storeErr(ctx(), "op", gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, storeErr(ctx(), "op", gorm.ErrDuplicatedKey), ErrConflict)
	assert.ErrorIs(t, storeErr(ctx(), "op", &pgconn.PgError{Code: "23503"}), ErrConflict)
	assert.ErrorIs(t, storeErr(ctx(), "op", &pgconn.PgError{Code: "23514"}), ErrInsufficientStock)

	err := storeErr(ctx(), "products.list", errBoom)
	var remote *RemoteCallError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "products.list", remote.Op)
	assert.ErrorIs(t, err, errBoom)

	assert.ErrorIs(t, storeErr(ctx(), "op", context.DeadlineExceeded), context.DeadlineExceeded)
}

func TestPassThrough_KeepsClassifiedErrors(t *testing.T) {
	verr := invalid("name", "required")
	assert.Same(t, verr, passThrough(ctx(), "op", verr))
	assert.Equal(t, ErrInsufficientStock, passThrough(ctx(), "op", ErrInsufficientStock))
	assert.ErrorIs(t, passThrough(ctx(), "op", gorm.ErrRecordNotFound), ErrNotFound)
}
