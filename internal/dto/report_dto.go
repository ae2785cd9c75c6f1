package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Queries ─────────────────────────────────────────────────────────────────

// DateRangeQuery dates are "2006-01-02"; both default to the current month.
type DateRangeQuery struct {
	StartDate string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   validate:"omitempty,datetime=2006-01-02"`
}

type DaysQuery struct {
	Days int `form:"days,default=30" validate:"min=1,max=365"`
}

type LimitQuery struct {
	Limit int `form:"limit,default=5" validate:"min=1,max=50"`
}

// ─── Dashboard ───────────────────────────────────────────────────────────────

type DashboardMetrics struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalOrders    int64           `json:"total_orders"`
	TotalProducts  int64           `json:"total_products"`
	TotalCustomers int64           `json:"total_customers"`
	LowStockCount  int64           `json:"low_stock_count"`
}

type RevenuePoint struct {
	Date    string          `json:"date"` // 2006-01-02
	Revenue decimal.Decimal `json:"revenue"`
}

type TopProduct struct {
	Description  string          `json:"description"`
	TotalSold    int64           `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type TopService struct {
	Description  string          `json:"description"`
	TotalCount   int64           `json:"total_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type RecentOrder struct {
	Number       int64           `json:"number"`
	CustomerName string          `json:"customer_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	StatusLabel  string          `json:"status_label"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ─── Financial ───────────────────────────────────────────────────────────────

type FinancialMetrics struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalOrders   int64           `json:"total_orders"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	TotalCosts    decimal.Decimal `json:"total_costs"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	GrossMargin   decimal.Decimal `json:"gross_margin"` // percent
}

type ServiceRevenue struct {
	Description  string          `json:"description"`
	ServiceCount int64           `json:"service_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type ProductRevenue struct {
	Description  string          `json:"description"`
	QuantitySold int64           `json:"quantity_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Profit       decimal.Decimal `json:"profit"`
}

type RevenueBreakdown struct {
	Services []ServiceRevenue `json:"services"`
	Products []ProductRevenue `json:"products"`
}

type RevenueSplit struct {
	Total    decimal.Decimal `json:"total"`
	Services decimal.Decimal `json:"services"`
	Products decimal.Decimal `json:"products"`
}

type CostSplit struct {
	Total    decimal.Decimal `json:"total"`
	Products decimal.Decimal `json:"products"`
}

type Profits struct {
	Gross  decimal.Decimal `json:"gross"`
	Margin decimal.Decimal `json:"margin"`
}

type Averages struct {
	Ticket       decimal.Decimal `json:"ticket"`
	ServiceValue decimal.Decimal `json:"service_value"`
	ProductValue decimal.Decimal `json:"product_value"`
}

type ServiceOrdersFinancial struct {
	Revenue  RevenueSplit `json:"revenue"`
	Costs    CostSplit    `json:"costs"`
	Profits  Profits      `json:"profits"`
	Averages Averages     `json:"averages"`
}

// ─── Service order report ────────────────────────────────────────────────────

type StatusSummary struct {
	Status      string          `json:"status"`
	Label       string          `json:"label"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type ReportServiceLine struct {
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type ReportProductLine struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type OrderDetail struct {
	Number       int64               `json:"number"`
	CustomerName string              `json:"customer_name"`
	CreatedAt    time.Time           `json:"created_at"`
	Status       string              `json:"status"`
	StatusLabel  string              `json:"status_label"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Services     []ReportServiceLine `json:"services"`
	Products     []ReportProductLine `json:"products"`
}

type ServiceOrdersReport struct {
	OrdersByStatus []StatusSummary `json:"orders_by_status"`
	OrdersDetails  []OrderDetail   `json:"orders_details"`
}
