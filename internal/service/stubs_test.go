package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"tireshop/internal/dto"
	"tireshop/internal/model"
	"tireshop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func ctx() context.Context { return context.Background() }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── CustomerRepository ───────────────────────────────────────────────────────

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
	deleteErr error
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) add(name string, email *string) *model.Customer {
	c := &model.Customer{ID: uuid.New(), Name: name, Document: uuid.NewString()[:11], Email: email}
	r.customers[c.ID] = c
	return c
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	for _, existing := range r.customers {
		if existing.Document == c.Document {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCustomerRepo) List(_ context.Context, search string) ([]model.Customer, error) {
	var out []model.Customer
	for _, c := range r.customers {
		if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	if _, ok := r.customers[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.customers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.customers, id)
	return nil
}

// ── ProductRepository ────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(desc string, salePrice string, stock, min int) *model.Product {
	p := &model.Product{
		ID:           uuid.New(),
		Description:  desc,
		Brand:        "Pirelli",
		CostPrice:    dec("30.00"),
		SalePrice:    dec(salePrice),
		CurrentStock: stock,
		MinStock:     min,
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) List(_ context.Context, _ string) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductRepo) LowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.CurrentStock <= p.MinStock {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	cur, ok := r.products[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	cp.CurrentStock = cur.CurrentStock
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) AdjustStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.products[id]
	if !ok || p.CurrentStock+delta < 0 {
		return repository.ErrNoRowsAffected
	}
	p.CurrentStock += delta
	return nil
}

// ── InventoryMovementRepository ──────────────────────────────────────────────

type stubMovementRepo struct {
	movements []model.InventoryMovement
}

var _ repository.InventoryMovementRepository = (*stubMovementRepo)(nil)

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.InventoryMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, f repository.MovementFilter) ([]model.InventoryMovement, int64, error) {
	var out []model.InventoryMovement
	for _, m := range r.movements {
		if f.ProductID != nil && m.ProductID != *f.ProductID {
			continue
		}
		if f.Type != "" && m.MovementType != f.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

// ── ServiceRepository ────────────────────────────────────────────────────────

type stubServiceRepo struct {
	services map[uuid.UUID]*model.Service
}

var _ repository.ServiceRepository = (*stubServiceRepo)(nil)

func newStubServiceRepo() *stubServiceRepo {
	return &stubServiceRepo{services: make(map[uuid.UUID]*model.Service)}
}

func (r *stubServiceRepo) add(desc, price string) *model.Service {
	s := &model.Service{ID: uuid.New(), Description: desc, Price: dec(price)}
	r.services[s.ID] = s
	return s
}

func (r *stubServiceRepo) Create(_ context.Context, s *model.Service) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *stubServiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubServiceRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Service, error) {
	var out []model.Service
	for _, id := range ids {
		if s, ok := r.services[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubServiceRepo) List(_ context.Context, _ string) ([]model.Service, error) {
	var out []model.Service
	for _, s := range r.services {
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubServiceRepo) Update(_ context.Context, s *model.Service) error {
	if _, ok := r.services[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

// ── ServiceOrderRepository ───────────────────────────────────────────────────

type stubOrderRepo struct {
	orders    map[uuid.UUID]*model.ServiceOrder
	customers *stubCustomerRepo
	seq       int64
	// statusOverride simulates a concurrent status change between read and write.
	statusOverride string
}

var _ repository.ServiceOrderRepository = (*stubOrderRepo)(nil)

func newStubOrderRepo(customers *stubCustomerRepo) *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.ServiceOrder), customers: customers}
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

func (r *stubOrderRepo) NextNumber(_ context.Context, _ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.ServiceOrder) error {
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	cp.Customer = nil
	r.orders[o.ID] = &cp
	return nil
}

func (r *stubOrderRepo) ReplaceTx(_ *gorm.DB, o *model.ServiceOrder, editable []string) error {
	cur, ok := r.orders[o.ID]
	if !ok || !contains(editable, r.currentStatus(cur)) {
		return repository.ErrNoRowsAffected
	}
	cur.VehiclePlate = o.VehiclePlate
	cur.Observations = o.Observations
	cur.TotalAmount = o.TotalAmount
	cur.Products = o.Products
	cur.Services = o.Services
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	if c, ok := r.customers.customers[o.CustomerID]; ok {
		cc := *c
		cp.Customer = &cc
	}
	return &cp, nil
}

func (r *stubOrderRepo) List(_ context.Context, f repository.ServiceOrderFilter) ([]model.ServiceOrder, int64, error) {
	var out []model.ServiceOrder
	for _, o := range r.orders {
		if f.Status == "" || o.Status == f.Status {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, to string, from []string) error {
	o, ok := r.orders[id]
	if !ok || !contains(from, r.currentStatus(o)) {
		return repository.ErrNoRowsAffected
	}
	o.Status = to
	return nil
}

func (r *stubOrderRepo) currentStatus(o *model.ServiceOrder) string {
	if r.statusOverride != "" {
		return r.statusOverride
	}
	return o.Status
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ── ReportRepository ─────────────────────────────────────────────────────────

type stubReportRepo struct {
	totals      repository.Totals
	totalsCalls int
	amounts     []repository.OrderAmount
	summary     repository.RevenueSummary
	services    []dto.ServiceRevenue
	products    []repository.ProductRevenueRow
	statuses    []repository.StatusCountRow
	orders      []model.ServiceOrder

	lastFrom, lastTo time.Time
}

var _ repository.ReportRepository = (*stubReportRepo)(nil)

func (r *stubReportRepo) Totals(_ context.Context) (*repository.Totals, error) {
	r.totalsCalls++
	t := r.totals
	return &t, nil
}

func (r *stubReportRepo) CompletedOrderAmounts(_ context.Context, from, to time.Time) ([]repository.OrderAmount, error) {
	r.lastFrom, r.lastTo = from, to
	var out []repository.OrderAmount
	for _, a := range r.amounts {
		if !a.CreatedAt.Before(from) && a.CreatedAt.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubReportRepo) TopProducts(_ context.Context, _ int) ([]dto.TopProduct, error) {
	return nil, nil
}

func (r *stubReportRepo) TopServices(_ context.Context, _ int) ([]dto.TopService, error) {
	return nil, nil
}

func (r *stubReportRepo) RecentOrders(_ context.Context, _ int) ([]repository.RecentOrderRow, error) {
	return []repository.RecentOrderRow{{Number: 3, CustomerName: "Ana", Status: "in_progress"}}, nil
}

func (r *stubReportRepo) CompletedSummary(_ context.Context, from, to time.Time) (*repository.RevenueSummary, error) {
	r.lastFrom, r.lastTo = from, to
	s := r.summary
	return &s, nil
}

func (r *stubReportRepo) ServiceRevenue(_ context.Context, _, _ time.Time) ([]dto.ServiceRevenue, error) {
	return r.services, nil
}

func (r *stubReportRepo) ProductRevenue(_ context.Context, _, _ time.Time) ([]repository.ProductRevenueRow, error) {
	return r.products, nil
}

func (r *stubReportRepo) StatusSummary(_ context.Context, _, _ time.Time) ([]repository.StatusCountRow, error) {
	return r.statuses, nil
}

func (r *stubReportRepo) OrdersInRange(_ context.Context, _, _ time.Time) ([]model.ServiceOrder, error) {
	return r.orders, nil
}

// ── UserRepository ───────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(u.Email)
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindActiveByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) && u.Active {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

// ── Side effects ─────────────────────────────────────────────────────────────

type enqueuedJob struct {
	Type    string
	Payload interface{}
}

type stubDispatcher struct {
	jobs []enqueuedJob
	err  error
}

func (d *stubDispatcher) Enqueue(_ context.Context, jobType string, payload interface{}) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, enqueuedJob{Type: jobType, Payload: payload})
	return nil
}

type stubDenylist struct {
	revoked map[string]time.Time
}

func newStubDenylist() *stubDenylist { return &stubDenylist{revoked: make(map[string]time.Time)} }

func (d *stubDenylist) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	d.revoked[tokenID] = expiresAt
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := d.revoked[tokenID]
	return ok, nil
}

type stubCache struct {
	values map[string]interface{}
	getErr error
}

func (c *stubCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	*dest.(*dto.DashboardMetrics) = *v.(*dto.DashboardMetrics)
	return true, nil
}

func (c *stubCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.values == nil {
		c.values = make(map[string]interface{})
	}
	c.values[key] = value
	return nil
}

var errBoom = errors.New("connection reset by peer")
