package handler

import (
	"net/http"

	"tireshop/internal/dto"
	"tireshop/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// CreateMovement godoc
// @Summary Registrar movimentação de estoque
// @Description Entrada soma, saída subtrai. Saída maior que o estoque é rejeitada sem alterar nada.
// @Tags inventory
// @Accept json
// @Produce json
// @Param body body dto.CreateMovementRequest true "Movimentação"
// @Success 201 {object} dto.MovementResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "Estoque insuficiente"
// @Security BearerAuth
// @Router /v1/inventory/movements [post]
func (h *InventoryHandler) CreateMovement(c *gin.Context) {
	var req dto.CreateMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateMovement(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var filter dto.MovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
