package repository

import (
	"context"

	"tireshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var customerSearchCols = []string{"name", "document", "email", "phone", "vehicle_plate"}

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	// List returns customers ordered by name; search matches name, document,
	// e-mail, phone or plate.
	List(ctx context.Context, search string) ([]model.Customer, error)
	Update(ctx context.Context, c *model.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context, search string) ([]model.Customer, error) {
	q := r.db.WithContext(ctx).Model(&model.Customer{})
	if search != "" {
		q = q.Where(likeClause(customerSearchCols...), repeatArg(likePattern(search), len(customerSearchCols))...)
	}
	var customers []model.Customer
	err := q.Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	res := r.db.WithContext(ctx).Model(&model.Customer{ID: c.ID}).
		Select("name", "document", "email", "phone", "address", "vehicle_plate", "updated_at").
		Updates(c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Customer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
