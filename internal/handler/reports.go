package handler

import (
	"net/http"

	"tireshop/internal/dto"
	"tireshop/internal/service"

	"github.com/gin-gonic/gin"
)

// ReportsHandler serves the dashboard and the financial reports. Only
// completed orders count as revenue.
type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

func (h *ReportsHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RevenueByDate godoc
// @Summary Faturamento diário
// @Description Um ponto por dia, dias sem ordens concluídas com zero.
// @Tags reports
// @Produce json
// @Param days query int false "Quantidade de dias (1-365)" default(30)
// @Success 200 {array} dto.RevenuePoint
// @Security BearerAuth
// @Router /v1/reports/revenue-by-date [get]
func (h *ReportsHandler) RevenueByDate(c *gin.Context) {
	var q dto.DaysQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.RevenueByDate(c.Request.Context(), q.Days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) TopProducts(c *gin.Context) {
	var q dto.LimitQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.TopProducts(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(resp))
}

func (h *ReportsHandler) TopServices(c *gin.Context) {
	var q dto.LimitQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.TopServices(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(resp))
}

func (h *ReportsHandler) RecentOrders(c *gin.Context) {
	var q dto.LimitQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.RecentOrders(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Date-range reports ───────────────────────────────────────────────────────

// Financial godoc
// @Summary Indicadores financeiros
// @Tags reports
// @Produce json
// @Param start_date query string false "AAAA-MM-DD (padrão: início do mês)"
// @Param end_date query string false "AAAA-MM-DD (padrão: hoje)"
// @Success 200 {object} dto.FinancialMetrics
// @Failure 422 {object} apierror.ValidationError
// @Security BearerAuth
// @Router /v1/reports/financial [get]
func (h *ReportsHandler) Financial(c *gin.Context) {
	var q dto.DateRangeQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Financial(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) RevenueBreakdown(c *gin.Context) {
	var q dto.DateRangeQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.RevenueBreakdown(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) ServiceOrdersFinancial(c *gin.Context) {
	var q dto.DateRangeQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ServiceOrdersFinancial(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) ServiceOrdersReport(c *gin.Context) {
	var q dto.DateRangeQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ServiceOrdersReport(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// nonNil keeps empty lists as [] on the wire.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
