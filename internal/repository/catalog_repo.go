package repository

import (
	"context"

	"tireshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceRepository stores the service catalog.
type ServiceRepository interface {
	Create(ctx context.Context, s *model.Service) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Service, error)
	List(ctx context.Context, search string) ([]model.Service, error)
	Update(ctx context.Context, s *model.Service) error
}

type serviceRepo struct{ db *gorm.DB }

func NewServiceRepository(db *gorm.DB) ServiceRepository { return &serviceRepo{db: db} }

func (r *serviceRepo) Create(ctx context.Context, s *model.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *serviceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var s model.Service
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *serviceRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Service, error) {
	var services []model.Service
	if len(ids) == 0 {
		return services, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&services).Error
	return services, err
}

func (r *serviceRepo) List(ctx context.Context, search string) ([]model.Service, error) {
	q := r.db.WithContext(ctx).Model(&model.Service{})
	if search != "" {
		q = q.Where(likeClause("description"), likePattern(search))
	}
	var services []model.Service
	err := q.Order("description ASC").Find(&services).Error
	return services, err
}

func (r *serviceRepo) Update(ctx context.Context, s *model.Service) error {
	res := r.db.WithContext(ctx).Model(&model.Service{ID: s.ID}).
		Select("description", "estimated_minutes", "price", "updated_at").
		Updates(s)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
