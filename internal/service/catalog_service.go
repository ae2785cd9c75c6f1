package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"tireshop/internal/dto"
	"tireshop/internal/model"
	"tireshop/internal/ptbr"
	"tireshop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogService manages the priced list of services the shop performs.
type CatalogService interface {
	List(ctx context.Context, search string) ([]dto.ServiceResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error)
	Create(ctx context.Context, req dto.ServiceRequest) (*dto.ServiceResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.ServiceRequest) (*dto.ServiceResponse, error)
}

type catalogService struct {
	repo repository.ServiceRepository
}

func NewCatalogService(repo repository.ServiceRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) List(ctx context.Context, search string) ([]dto.ServiceResponse, error) {
	services, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, storeErr(ctx, "services.list", err)
	}
	resp := make([]dto.ServiceResponse, len(services))
	for i := range services {
		resp[i] = serviceToResponse(&services[i])
	}
	return resp, nil
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error) {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "services.get", err)
	}
	resp := serviceToResponse(svc)
	return &resp, nil
}

func (s *catalogService) Create(ctx context.Context, req dto.ServiceRequest) (*dto.ServiceResponse, error) {
	if err := wholeCents(map[string]decimal.Decimal{"price": req.Price}); err != nil {
		return nil, err
	}
	minutes, err := estimatedMinutes(req.EstimatedTime)
	if err != nil {
		return nil, err
	}
	svc := &model.Service{
		Description:      strings.TrimSpace(req.Description),
		EstimatedMinutes: minutes,
		Price:            req.Price,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, storeErr(ctx, "services.create", err)
	}
	resp := serviceToResponse(svc)
	return &resp, nil
}

func (s *catalogService) Update(ctx context.Context, id uuid.UUID, req dto.ServiceRequest) (*dto.ServiceResponse, error) {
	if err := wholeCents(map[string]decimal.Decimal{"price": req.Price}); err != nil {
		return nil, err
	}
	minutes, err := estimatedMinutes(req.EstimatedTime)
	if err != nil {
		return nil, err
	}
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "services.update", err)
	}
	svc.Description = strings.TrimSpace(req.Description)
	svc.EstimatedMinutes = minutes
	svc.Price = req.Price
	svc.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, storeErr(ctx, "services.update", err)
	}
	resp := serviceToResponse(svc)
	return &resp, nil
}

// estimatedMinutes accepts "HH:MM", "HH:MM:SS" or a Go duration ("1h30m").
// Seconds are truncated. Blank input clears the estimate.
func estimatedMinutes(raw *string) (*int, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)

	var d time.Duration
	if strings.Contains(v, ":") {
		parts := strings.Split(v, ":")
		if len(parts) > 3 {
			return nil, invalid("estimated_time", "duration")
		}
		units := []time.Duration{time.Hour, time.Minute, time.Second}
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 || (i > 0 && n > 59) {
				return nil, invalid("estimated_time", "duration")
			}
			d += time.Duration(n) * units[i]
		}
	} else {
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed < 0 {
			return nil, invalid("estimated_time", "duration")
		}
		d = parsed
	}
	m := int(d / time.Minute)
	return &m, nil
}

func serviceToResponse(s *model.Service) dto.ServiceResponse {
	resp := dto.ServiceResponse{
		ID:               s.ID.String(),
		Description:      s.Description,
		EstimatedMinutes: s.EstimatedMinutes,
		Price:            s.Price,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if s.EstimatedMinutes != nil {
		label := ptbr.Duration(*s.EstimatedMinutes)
		resp.EstimatedTime = &label
	}
	return resp
}
