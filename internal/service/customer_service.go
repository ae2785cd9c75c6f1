package service

import (
	"context"
	"strings"
	"time"

	"tireshop/internal/dto"
	"tireshop/internal/model"
	"tireshop/internal/repository"

	"github.com/google/uuid"
)

type CustomerService interface {
	List(ctx context.Context, search string) ([]dto.CustomerResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	Create(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) List(ctx context.Context, search string) ([]dto.CustomerResponse, error) {
	customers, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, storeErr(ctx, "customers.list", err)
	}
	resp := make([]dto.CustomerResponse, len(customers))
	for i := range customers {
		resp[i] = customerToResponse(&customers[i])
	}
	return resp, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "customers.get", err)
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) Create(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c := &model.Customer{}
	applyCustomer(c, req)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, storeErr(ctx, "customers.create", err)
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "customers.update", err)
	}
	applyCustomer(c, req)
	c.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, storeErr(ctx, "customers.update", err)
	}
	resp := customerToResponse(c)
	return &resp, nil
}

// Delete removes the customer. A customer with service orders is rejected
// by the foreign key and reported as ErrConflict.
func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	return storeErr(ctx, "customers.delete", s.repo.Delete(ctx, id))
}

func applyCustomer(c *model.Customer, req dto.CustomerRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Document = strings.TrimSpace(req.Document)
	c.Email = trimmedOrNil(req.Email)
	c.Phone = trimmedOrNil(req.Phone)
	c.Address = trimmedOrNil(req.Address)
	c.VehiclePlate = trimmedOrNil(req.VehiclePlate)
	if c.VehiclePlate != nil {
		up := strings.ToUpper(*c.VehiclePlate)
		c.VehiclePlate = &up
	}
}

// trimmedOrNil turns blank optional strings into NULL.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func customerToResponse(c *model.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		Document:     c.Document,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		VehiclePlate: c.VehiclePlate,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
