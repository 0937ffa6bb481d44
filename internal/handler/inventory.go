package handler

import (
	"net/http"
	"strconv"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.LedgerService }

func NewInventoryHandler(svc service.LedgerService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// Adjust applies a manual stock adjustment (add / remove / set), recording an
// audit movement for anything that actually changes the balance.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Adjust(c.Request.Context(), callerID(c), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movements lists the audit trail, filterable by product and movement type.
func (h *InventoryHandler) Movements(c *gin.Context) {
	filter := dto.MovementFilter{
		ProductID: c.Query("product_id"),
		Type:      c.Query("type"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))

	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LowStock lists active products at or below their minimum level.
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}
