package handler

import (
	"fmt"
	"net/http"

	"tireshop/internal/dto"
	"tireshop/internal/service"

	"github.com/gin-gonic/gin"
)

type ServiceOrdersHandler struct{ svc service.ServiceOrderService }

func NewServiceOrdersHandler(svc service.ServiceOrderService) *ServiceOrdersHandler {
	return &ServiceOrdersHandler{svc: svc}
}

// List godoc
// @Summary Listar ordens de serviço
// @Tags service-orders
// @Produce json
// @Param status query string false "open, in_progress, completed ou cancelled"
// @Param customer_id query string false "ID do cliente"
// @Param page query int false "Página" default(1)
// @Param limit query int false "Itens por página" default(50)
// @Success 200 {object} dto.ServiceOrderListResponse
// @Security BearerAuth
// @Router /v1/service-orders [get]
func (h *ServiceOrdersHandler) List(c *gin.Context) {
	var filter dto.ServiceOrderFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServiceOrdersHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Abrir ordem de serviço
// @Description Descrições vêm do catálogo; o preço também, salvo quando informado no item.
// @Tags service-orders
// @Accept json
// @Produce json
// @Param body body dto.CreateServiceOrderRequest true "Ordem de serviço"
// @Success 201 {object} dto.ServiceOrderResponse
// @Failure 422 {object} apierror.ValidationError
// @Security BearerAuth
// @Router /v1/service-orders [post]
func (h *ServiceOrdersHandler) Create(c *gin.Context) {
	var req dto.CreateServiceOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ServiceOrdersHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateServiceOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChangeStatus godoc
// @Summary Alterar status da ordem
// @Description open → in_progress | cancelled; in_progress → completed | cancelled.
// @Tags service-orders
// @Accept json
// @Produce json
// @Param id path string true "ID da ordem"
// @Param body body dto.ChangeStatusRequest true "Novo status"
// @Success 200 {object} dto.ServiceOrderResponse
// @Failure 422 {object} apierror.APIError "Transição não permitida"
// @Security BearerAuth
// @Router /v1/service-orders/{id}/status [patch]
func (h *ServiceOrdersHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ChangeStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ChangeStatus(c.Request.Context(), id, actorID(c), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServiceOrdersHandler) NextStatuses(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.NextStatuses(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF godoc
// @Summary Baixar ordem de serviço em PDF
// @Tags service-orders
// @Produce application/pdf
// @Param id path string true "ID da ordem"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /v1/service-orders/{id}/pdf [get]
func (h *ServiceOrdersHandler) PDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	pdf, number, err := h.svc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="os-%d.pdf"`, number))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
