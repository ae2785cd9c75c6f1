package service

import (
	"context"
	"time"

	"tireshop/internal/dto"
	"tireshop/internal/money"
	"tireshop/internal/repository"
	"tireshop/internal/serviceorder"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	dateLayout   = "2006-01-02"
	dashboardKey = "dashboard"
)

// ReportCache is a JSON value cache; misses return false without error.
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type ReportService interface {
	Dashboard(ctx context.Context) (*dto.DashboardMetrics, error)
	RevenueByDate(ctx context.Context, days int) ([]dto.RevenuePoint, error)
	TopProducts(ctx context.Context, limit int) ([]dto.TopProduct, error)
	TopServices(ctx context.Context, limit int) ([]dto.TopService, error)
	RecentOrders(ctx context.Context, limit int) ([]dto.RecentOrder, error)
	Financial(ctx context.Context, q dto.DateRangeQuery) (*dto.FinancialMetrics, error)
	RevenueBreakdown(ctx context.Context, q dto.DateRangeQuery) (*dto.RevenueBreakdown, error)
	ServiceOrdersFinancial(ctx context.Context, q dto.DateRangeQuery) (*dto.ServiceOrdersFinancial, error)
	ServiceOrdersReport(ctx context.Context, q dto.DateRangeQuery) (*dto.ServiceOrdersReport, error)
}

type reportService struct {
	repo  repository.ReportRepository
	cache ReportCache
	ttl   time.Duration
	now   func() time.Time
}

// NewReportService builds the report service. A nil cache or a zero ttl
// disables dashboard caching.
func NewReportService(repo repository.ReportRepository, cache ReportCache, ttl time.Duration) ReportService {
	return &reportService{repo: repo, cache: cache, ttl: ttl, now: time.Now}
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

func (s *reportService) Dashboard(ctx context.Context) (*dto.DashboardMetrics, error) {
	caching := s.cache != nil && s.ttl > 0
	if caching {
		var cached dto.DashboardMetrics
		hit, err := s.cache.Get(ctx, dashboardKey, &cached)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("report cache read failed")
		}
		if hit {
			return &cached, nil
		}
	}

	t, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, storeErr(ctx, "reports.dashboard", err)
	}
	m := &dto.DashboardMetrics{
		TotalRevenue:   money.Round(t.Revenue),
		TotalOrders:    t.Orders,
		TotalProducts:  t.Products,
		TotalCustomers: t.Customers,
		LowStockCount:  t.LowStock,
	}

	if caching {
		if err := s.cache.Set(ctx, dashboardKey, m, s.ttl); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("report cache write failed")
		}
	}
	return m, nil
}

// RevenueByDate returns one point per calendar day for the last `days` days
// ending today, days without completed orders included as zero.
func (s *reportService) RevenueByDate(ctx context.Context, days int) ([]dto.RevenuePoint, error) {
	if days < 1 || days > 365 {
		return nil, invalid("days", "min=1,max=365")
	}
	today := dayStart(s.now())
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	rows, err := s.repo.CompletedOrderAmounts(ctx, from, to)
	if err != nil {
		return nil, storeErr(ctx, "reports.revenue_by_date", err)
	}

	byDay := make(map[string]decimal.Decimal, days)
	for _, r := range rows {
		key := r.CreatedAt.In(today.Location()).Format(dateLayout)
		byDay[key] = byDay[key].Add(r.TotalAmount)
	}

	points := make([]dto.RevenuePoint, 0, days)
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		points = append(points, dto.RevenuePoint{Date: key, Revenue: money.Round(byDay[key])})
	}
	return points, nil
}

func (s *reportService) TopProducts(ctx context.Context, limit int) ([]dto.TopProduct, error) {
	rows, err := s.repo.TopProducts(ctx, limit)
	if err != nil {
		return nil, storeErr(ctx, "reports.top_products", err)
	}
	return rows, nil
}

func (s *reportService) TopServices(ctx context.Context, limit int) ([]dto.TopService, error) {
	rows, err := s.repo.TopServices(ctx, limit)
	if err != nil {
		return nil, storeErr(ctx, "reports.top_services", err)
	}
	return rows, nil
}

func (s *reportService) RecentOrders(ctx context.Context, limit int) ([]dto.RecentOrder, error) {
	rows, err := s.repo.RecentOrders(ctx, limit)
	if err != nil {
		return nil, storeErr(ctx, "reports.recent_orders", err)
	}
	out := make([]dto.RecentOrder, len(rows))
	for i, r := range rows {
		out[i] = dto.RecentOrder{
			Number:       r.Number,
			CustomerName: r.CustomerName,
			TotalAmount:  r.TotalAmount,
			Status:       r.Status,
			StatusLabel:  serviceorder.Status(r.Status).Label(),
			CreatedAt:    r.CreatedAt,
		}
	}
	return out, nil
}

// ── Financial ─────────────────────────────────────────────────────────────────

func (s *reportService) Financial(ctx context.Context, q dto.DateRangeQuery) (*dto.FinancialMetrics, error) {
	from, to, err := s.dateRange(q)
	if err != nil {
		return nil, err
	}
	sum, err := s.repo.CompletedSummary(ctx, from, to)
	if err != nil {
		return nil, storeErr(ctx, "reports.financial", err)
	}
	products, err := s.repo.ProductRevenue(ctx, from, to)
	if err != nil {
		return nil, storeErr(ctx, "reports.financial", err)
	}

	costs := decimal.Zero
	for _, p := range products {
		costs = costs.Add(p.TotalCost)
	}
	return &dto.FinancialMetrics{
		TotalRevenue:  money.Round(sum.Revenue),
		TotalOrders:   sum.Orders,
		AverageTicket: average(sum.Revenue, sum.Orders),
		TotalCosts:    money.Round(costs),
		GrossProfit:   money.Round(sum.Revenue.Sub(costs)),
		GrossMargin:   money.MarginPct(sum.Revenue, costs),
	}, nil
}

func (s *reportService) RevenueBreakdown(ctx context.Context, q dto.DateRangeQuery) (*dto.RevenueBreakdown, error) {
	from, to, err := s.dateRange(q)
	if err != nil {
		return nil, err
	}
	services, err := s.repo.ServiceRevenue(ctx, from, to)
	if err != nil {
		return nil, storeErr(ctx, "reports.revenue_breakdown", err)
	}
	rows, err := s.repo.ProductRevenue(ctx, from, to)
	if err != nil {
		return nil, storeErr(ctx, "reports.revenue_breakdown", err)
	}

	products := make([]dto.ProductRevenue, len(rows))
	for i, r := range rows {
		products[i] = dto.ProductRevenue{
			Description:  r.Description,
			QuantitySold: r.QuantitySold,
			TotalRevenue: money.Round(r.TotalRevenue),
			TotalCost:    money.Round(r.TotalCost),
			Profit:       money.Round(r.TotalRevenue.Sub(r.TotalCost)),
		}
	}
	if services == nil {
		services = []dto.ServiceRevenue{}
	}
	return &dto.RevenueBreakdown{Services: services, Products: products}, nil
}

func (s *reportService) ServiceOrdersFinancial(ctx context.Context, q dto.DateRangeQuery) (*dto.ServiceOrdersFinancial, error) {
	from, to, err := s.dateRange(q)
	if err != nil {
		return nil, err
	}
	sum, err := s.repo.CompletedSummary(ctx, from, to)
	if err != nil {
		return nil, storeErr(ctx, "reports.service_orders_financial", err)
	}
	services, err := s.repo.ServiceRevenue(ctx, from, to)
	if err != nil {
		return nil, storeErr(ctx, "reports.service_orders_financial", err)
	}
	products, err := s.repo.ProductRevenue(ctx, from, to)
	if err != nil {
		return nil, storeErr(ctx, "reports.service_orders_financial", err)
	}

	var serviceCount, quantitySold int64
	serviceRevenue, productRevenue, productCost := decimal.Zero, decimal.Zero, decimal.Zero
	for _, sv := range services {
		serviceCount += sv.ServiceCount
		serviceRevenue = serviceRevenue.Add(sv.TotalRevenue)
	}
	for _, p := range products {
		quantitySold += p.QuantitySold
		productRevenue = productRevenue.Add(p.TotalRevenue)
		productCost = productCost.Add(p.TotalCost)
	}

	return &dto.ServiceOrdersFinancial{
		Revenue: dto.RevenueSplit{
			Total:    money.Round(sum.Revenue),
			Services: money.Round(serviceRevenue),
			Products: money.Round(productRevenue),
		},
		Costs: dto.CostSplit{
			Total:    money.Round(productCost),
			Products: money.Round(productCost),
		},
		Profits: dto.Profits{
			Gross:  money.Round(sum.Revenue.Sub(productCost)),
			Margin: money.MarginPct(sum.Revenue, productCost),
		},
		Averages: dto.Averages{
			Ticket:       average(sum.Revenue, sum.Orders),
			ServiceValue: average(serviceRevenue, serviceCount),
			ProductValue: average(productRevenue, quantitySold),
		},
	}, nil
}

// ServiceOrdersReport lists every order created in the range with a
// per-status summary. Statuses without orders are reported with zero.
func (s *reportService) ServiceOrdersReport(ctx context.Context, q dto.DateRangeQuery) (*dto.ServiceOrdersReport, error) {
	from, to, err := s.dateRange(q)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.StatusSummary(ctx, from, to)
	if err != nil {
		return nil, storeErr(ctx, "reports.service_orders", err)
	}
	orders, err := s.repo.OrdersInRange(ctx, from, to)
	if err != nil {
		return nil, storeErr(ctx, "reports.service_orders", err)
	}

	byStatus := make(map[string]repository.StatusCountRow, len(counts))
	for _, c := range counts {
		byStatus[c.Status] = c
	}
	report := &dto.ServiceOrdersReport{
		OrdersByStatus: make([]dto.StatusSummary, 0, len(serviceorder.AllStatuses())),
		OrdersDetails:  make([]dto.OrderDetail, 0, len(orders)),
	}
	for _, st := range serviceorder.AllStatuses() {
		c := byStatus[string(st)]
		report.OrdersByStatus = append(report.OrdersByStatus, dto.StatusSummary{
			Status:      string(st),
			Label:       st.Label(),
			Count:       c.Count,
			TotalAmount: money.Round(c.TotalAmount),
		})
	}

	for i := range orders {
		o := &orders[i]
		d := dto.OrderDetail{
			Number:      o.Number,
			CreatedAt:   o.CreatedAt,
			Status:      o.Status,
			StatusLabel: serviceorder.Status(o.Status).Label(),
			TotalAmount: o.TotalAmount,
			Services:    make([]dto.ReportServiceLine, len(o.Services)),
			Products:    make([]dto.ReportProductLine, len(o.Products)),
		}
		if o.Customer != nil {
			d.CustomerName = o.Customer.Name
		}
		for j, sv := range o.Services {
			d.Services[j] = dto.ReportServiceLine{Description: sv.Description, Price: sv.Price}
		}
		for j, p := range o.Products {
			d.Products[j] = dto.ReportProductLine{
				Description: p.Description,
				Quantity:    p.Quantity,
				UnitPrice:   p.UnitPrice,
				TotalPrice:  p.TotalPrice,
			}
		}
		report.OrdersDetails = append(report.OrdersDetails, d)
	}
	return report, nil
}

// dateRange turns inclusive calendar days into a half-open [from, to)
// interval in local time. Defaults: first day of the current month to today.
func (s *reportService) dateRange(q dto.DateRangeQuery) (time.Time, time.Time, error) {
	today := dayStart(s.now())
	loc := today.Location()
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	end := today

	if q.StartDate != "" {
		t, err := time.ParseInLocation(dateLayout, q.StartDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, invalid("start_date", "datetime=2006-01-02")
		}
		start = t
	}
	if q.EndDate != "" {
		t, err := time.ParseInLocation(dateLayout, q.EndDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, invalid("end_date", "datetime=2006-01-02")
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, invalid("end_date", "gtefield=start_date")
	}
	return start, end.AddDate(0, 0, 1), nil
}

func average(total decimal.Decimal, n int64) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return money.Round(total.Div(decimal.NewFromInt(n)))
}
