package handler

import (
	"net/http"
	"strconv"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

func (h *ReportsHandler) Dashboard(c *gin.Context) {
	stats, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ReportsHandler) Sales(c *gin.Context) {
	resp, err := h.svc.Sales(c.Request.Context(), rangeQuery(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) Purchases(c *gin.Context) {
	resp, err := h.svc.Purchases(c.Request.Context(), rangeQuery(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) Inventory(c *gin.Context) {
	resp, err := h.svc.Inventory(c.Request.Context(), rangeQuery(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) Profit(c *gin.Context) {
	resp, err := h.svc.Profit(c.Request.Context(), rangeQuery(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) Activity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.Activity(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func rangeQuery(c *gin.Context) dto.ReportRange {
	rng := dto.ReportRange{
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}
	rng.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	return rng
}
