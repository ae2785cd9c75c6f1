package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tireshop/internal/dto"
	"tireshop/internal/infra"
	"tireshop/internal/metrics"
	"tireshop/internal/model"
	"tireshop/internal/repository"
	"tireshop/internal/serviceorder"
	"tireshop/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ServiceOrderService interface {
	List(ctx context.Context, filter dto.ServiceOrderFilter) (*dto.ServiceOrderListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ServiceOrderResponse, error)
	Create(ctx context.Context, actorID uuid.UUID, req dto.CreateServiceOrderRequest) (*dto.ServiceOrderResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateServiceOrderRequest) (*dto.ServiceOrderResponse, error)
	ChangeStatus(ctx context.Context, id, actorID uuid.UUID, status string) (*dto.ServiceOrderResponse, error)
	NextStatuses(ctx context.Context, id uuid.UUID) ([]dto.StatusOption, error)
	// RenderPDF returns the printable order and its display number.
	RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, int64, error)
}

type serviceOrderService struct {
	orders     repository.ServiceOrderRepository
	customers  repository.CustomerRepository
	products   repository.ProductRepository
	catalog    repository.ServiceRepository
	dispatcher JobDispatcher
	shopName   string
}

func NewServiceOrderService(
	orders repository.ServiceOrderRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	catalog repository.ServiceRepository,
	dispatcher JobDispatcher,
	shopName string,
) ServiceOrderService {
	return &serviceOrderService{
		orders:     orders,
		customers:  customers,
		products:   products,
		catalog:    catalog,
		dispatcher: dispatcher,
		shopName:   shopName,
	}
}

func (s *serviceOrderService) List(ctx context.Context, filter dto.ServiceOrderFilter) (*dto.ServiceOrderListResponse, error) {
	f := repository.ServiceOrderFilter{
		Status: filter.Status,
		Offset: filter.Offset(),
		Limit:  filter.Limit,
	}
	if filter.Status != "" {
		if _, err := serviceorder.ParseStatus(filter.Status); err != nil {
			return nil, invalid("status", "oneof")
		}
	}
	if filter.CustomerID != "" {
		id, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, invalid("customer_id", "uuid")
		}
		f.CustomerID = &id
	}

	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, storeErr(ctx, "service_orders.list", err)
	}
	data := make([]dto.ServiceOrderResponse, len(orders))
	for i := range orders {
		data[i] = orderToResponse(&orders[i])
	}
	return &dto.ServiceOrderListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: filter.TotalPages(total),
	}, nil
}

func (s *serviceOrderService) Get(ctx context.Context, id uuid.UUID) (*dto.ServiceOrderResponse, error) {
	m, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "service_orders.get", err)
	}
	resp := orderToResponse(m)
	return &resp, nil
}

// ── Create ────────────────────────────────────────────────────────────────────
//   1. Validate customer and resolve every line against the catalog
//   2. Build the aggregate (status open, total computed)
//   3. BEGIN TX: draw number, insert header and both child tables
//   4. COMMIT

func (s *serviceOrderService) Create(ctx context.Context, actorID uuid.UUID, req dto.CreateServiceOrderRequest) (*dto.ServiceOrderResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, invalid("customer_id", "uuid")
	}
	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	o, err := serviceorder.New(customerID, req.VehiclePlate, items, req.Observations, actorID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.FindByID(ctx, customerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid("customer_id", "exists")
	}
	if err != nil {
		return nil, storeErr(ctx, "service_orders.create", err)
	}

	m := model.NewServiceOrder(o)
	err = runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		n, err := s.orders.NextNumber(ctx, tx)
		if err != nil {
			return err
		}
		m.Number = n
		return s.orders.CreateTx(tx, m)
	})
	if err != nil {
		return nil, storeErr(ctx, "service_orders.create", err)
	}

	log.Ctx(ctx).Info().
		Int64("number", m.Number).
		Str("customer_id", customerID.String()).
		Str("total", m.TotalAmount.StringFixed(2)).
		Msg("service order created")

	m.Customer = customer
	resp := orderToResponse(m)
	return &resp, nil
}

// Update replaces plate, observations and every line of a non-terminal
// order in one transaction. Status, number and author are kept.
func (s *serviceOrderService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateServiceOrderRequest) (*dto.ServiceOrderResponse, error) {
	m, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "service_orders.update", err)
	}
	o := m.Domain()
	if o.Status.IsTerminal() {
		return nil, &serviceorder.TransitionError{From: o.Status, To: o.Status}
	}
	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	if err := o.Update(req.VehiclePlate, items, req.Observations); err != nil {
		return nil, err
	}

	updated := model.NewServiceOrder(o)
	err = runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		return s.orders.ReplaceTx(tx, updated, editableStatuses())
	})
	if errors.Is(err, repository.ErrNoRowsAffected) {
		// status moved to a terminal state since it was read
		return nil, &serviceorder.TransitionError{From: o.Status, To: o.Status}
	}
	if err != nil {
		return nil, storeErr(ctx, "service_orders.update", err)
	}

	updated.Customer = m.Customer
	updated.UpdatedAt = time.Now()
	resp := orderToResponse(updated)
	return &resp, nil
}

// ChangeStatus validates the move against the loaded order, then applies it
// with a guarded single-column update so a concurrent change cannot be
// overwritten.
func (s *serviceOrderService) ChangeStatus(ctx context.Context, id, actorID uuid.UUID, status string) (*dto.ServiceOrderResponse, error) {
	target, err := serviceorder.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	m, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "service_orders.change_status", err)
	}
	o := m.Domain()
	from := o.Status
	if err := o.ChangeStatus(target); err != nil {
		return nil, err
	}

	err = s.orders.UpdateStatus(ctx, id, string(target), statusStrings(serviceorder.Predecessors(target)))
	if errors.Is(err, repository.ErrNoRowsAffected) {
		return nil, &serviceorder.TransitionError{From: from, To: target}
	}
	if err != nil {
		return nil, storeErr(ctx, "service_orders.change_status", err)
	}

	metrics.OrderTransitions.WithLabelValues(string(from), string(target)).Inc()
	log.Ctx(ctx).Info().
		Int64("number", m.Number).
		Str("from", string(from)).
		Str("to", string(target)).
		Str("actor_id", actorID.String()).
		Msg("service order status changed")

	if target == serviceorder.StatusCompleted && m.Customer != nil && m.Customer.Email != nil {
		enqueue(ctx, s.dispatcher, worker.JobOrderReceipt, worker.OrderReceiptPayload{
			OrderID: m.ID.String(),
			Email:   *m.Customer.Email,
		})
	}

	m.Status = string(target)
	resp := orderToResponse(m)
	return &resp, nil
}

func (s *serviceOrderService) NextStatuses(ctx context.Context, id uuid.UUID) ([]dto.StatusOption, error) {
	m, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "service_orders.next_statuses", err)
	}
	return statusOptions(serviceorder.Status(m.Status).NextStates()), nil
}

func (s *serviceOrderService) RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, int64, error) {
	m, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, 0, storeErr(ctx, "service_orders.pdf", err)
	}
	pdf, err := infra.RenderServiceOrderPDF(infra.OrderDocumentFromModel(m, s.shopName))
	if err != nil {
		return nil, 0, err
	}
	return pdf, m.Number, nil
}

// resolveItems looks every line up in the catalog. Descriptions always come
// from the catalog; the price does too unless the request overrides it.
func (s *serviceOrderService) resolveItems(ctx context.Context, reqs []dto.OrderItemRequest) ([]serviceorder.Item, error) {
	verr := &serviceorder.ValidationError{Fields: map[string]string{}}
	ids := make([]uuid.UUID, len(reqs))
	var productIDs, serviceIDs []uuid.UUID
	for i, r := range reqs {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			verr.Fields[fmt.Sprintf("items[%d].id", i)] = "uuid"
			continue
		}
		ids[i] = id
		switch serviceorder.ItemKind(r.Kind) {
		case serviceorder.KindProduct:
			productIDs = append(productIDs, id)
		case serviceorder.KindService:
			serviceIDs = append(serviceIDs, id)
		default:
			verr.Fields[fmt.Sprintf("items[%d].kind", i)] = "oneof=service product"
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, storeErr(ctx, "service_orders.resolve_products", err)
	}
	services, err := s.catalog.FindByIDs(ctx, serviceIDs)
	if err != nil {
		return nil, storeErr(ctx, "service_orders.resolve_services", err)
	}
	productByID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	serviceByID := make(map[uuid.UUID]model.Service, len(services))
	for _, sv := range services {
		serviceByID[sv.ID] = sv
	}

	items := make([]serviceorder.Item, 0, len(reqs))
	for i, r := range reqs {
		qty := r.Quantity
		if qty == 0 {
			qty = 1
		}
		switch serviceorder.ItemKind(r.Kind) {
		case serviceorder.KindProduct:
			p, ok := productByID[ids[i]]
			if !ok {
				verr.Fields[fmt.Sprintf("items[%d].id", i)] = "exists"
				continue
			}
			items = append(items, serviceorder.ProductItem(p.ID, p.Description, priceOr(r.Price, p.SalePrice), qty))
		case serviceorder.KindService:
			sv, ok := serviceByID[ids[i]]
			if !ok {
				verr.Fields[fmt.Sprintf("items[%d].id", i)] = "exists"
				continue
			}
			it := serviceorder.ServiceItem(sv.ID, sv.Description, priceOr(r.Price, sv.Price))
			it.Quantity = qty
			items = append(items, it)
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return items, nil
}

func priceOr(override *decimal.Decimal, catalog decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return catalog
}

func editableStatuses() []string {
	var out []string
	for _, st := range serviceorder.AllStatuses() {
		if !st.IsTerminal() {
			out = append(out, string(st))
		}
	}
	return out
}

func statusStrings(states []serviceorder.Status) []string {
	out := make([]string, len(states))
	for i, st := range states {
		out[i] = string(st)
	}
	return out
}

func statusOptions(states []serviceorder.Status) []dto.StatusOption {
	out := make([]dto.StatusOption, len(states))
	for i, st := range states {
		out[i] = dto.StatusOption{Status: string(st), Label: st.Label()}
	}
	return out
}

func orderToResponse(m *model.ServiceOrder) dto.ServiceOrderResponse {
	o := m.Domain()
	items := make([]dto.OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = dto.OrderItemResponse{
			Kind:        string(it.Kind),
			ID:          it.RefID.String(),
			Description: it.Description,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal(),
		}
	}
	resp := dto.ServiceOrderResponse{
		ID:           o.ID.String(),
		Number:       o.Number,
		CustomerID:   o.CustomerID.String(),
		VehiclePlate: o.VehiclePlate,
		Status:       string(o.Status),
		StatusLabel:  o.Status.Label(),
		Observations: o.Observations,
		TotalAmount:  o.TotalAmount,
		Items:        items,
		NextStatuses: statusOptions(o.Status.NextStates()),
		CreatedBy:    o.CreatedBy.String(),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if m.Customer != nil {
		resp.CustomerName = m.Customer.Name
	}
	return resp
}
