package repository

import (
	"testing"

	"tireshop/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func TestCustomerRepo_CRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)

	c := &model.Customer{Name: "Maria Souza", Document: "123.456.789-00", Email: strPtr("maria@mail.test")}
	require.NoError(t, repo.Create(ctx(), c))
	require.NotEqual(t, uuid.Nil, c.ID)

	got, err := repo.FindByID(ctx(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", got.Name)

	got.Phone = strPtr("11 99999-0000")
	got.Email = nil
	require.NoError(t, repo.Update(ctx(), got))

	again, err := repo.FindByID(ctx(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "11 99999-0000", *again.Phone)
	assert.Nil(t, again.Email)

	require.NoError(t, repo.Delete(ctx(), c.ID))
	_, err = repo.FindByID(ctx(), c.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx(), c.ID), gorm.ErrRecordNotFound)
}

func TestCustomerRepo_DuplicateDocument(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)

	require.NoError(t, repo.Create(ctx(), &model.Customer{Name: "Ana", Document: "999"}))
	err := repo.Create(ctx(), &model.Customer{Name: "Outra Ana", Document: "999"})
	assert.True(t, IsDuplicateKey(err), err)
}

func TestCustomerRepo_Search(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)

	require.NoError(t, repo.Create(ctx(), &model.Customer{Name: "Carlos Lima", Document: "1", VehiclePlate: strPtr("ABC1D23")}))
	require.NoError(t, repo.Create(ctx(), &model.Customer{Name: "Beatriz Alves", Document: "2"}))

	all, err := repo.List(ctx(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Beatriz Alves", all[0].Name)

	byPlate, err := repo.List(ctx(), "abc1")
	require.NoError(t, err)
	require.Len(t, byPlate, 1)
	assert.Equal(t, "Carlos Lima", byPlate[0].Name)

	none, err := repo.List(ctx(), "100%")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCustomerRepo_DeleteReferencedFails(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)
	user := seedUser(t, db)
	c := seedCustomer(t, db, "Com OS")

	o := &model.ServiceOrder{Number: 1, CustomerID: c.ID, Status: "open", CreatedBy: user.ID}
	require.NoError(t, db.Omit("Customer").Create(o).Error)

	err := repo.Delete(ctx(), c.ID)
	assert.True(t, IsForeignKeyViolation(err), err)
}
