package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/apierror"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/middleware"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TransactionsHandler struct {
	svc        service.TransactionService
	receiptDir string
}

func NewTransactionsHandler(svc service.TransactionService, receiptDir string) *TransactionsHandler {
	return &TransactionsHandler{svc: svc, receiptDir: receiptDir}
}

// Create registers a new DRAFT transaction with snapshotted prices.
func (h *TransactionsHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID := callerID(c)

	resp, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TransactionsHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransactionsHandler) List(c *gin.Context) {
	filter := dto.TransactionFilter{
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update edits a DRAFT's counterparty, notes, or items.
func (h *TransactionsHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransactionsHandler) Confirm(c *gin.Context) {
	h.transition(c, h.svc.Confirm)
}

// Complete applies the transaction's stock effects atomically.
func (h *TransactionsHandler) Complete(c *gin.Context) {
	h.transition(c, h.svc.Complete)
}

func (h *TransactionsHandler) Cancel(c *gin.Context) {
	h.transition(c, h.svc.Cancel)
}

// Receipt streams the PDF the worker generated on completion. Generation is
// asynchronous, so a just-completed sale can briefly 404 here.
func (h *TransactionsHandler) Receipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	if resp.Status != string(model.StatusCompleted) {
		respondErr(c, apierror.Conflict("receipts exist only for completed transactions"))
		return
	}

	name := fmt.Sprintf("receipt_%s.pdf", resp.Code)
	path := filepath.Join(h.receiptDir, name)
	if _, err := os.Stat(path); err != nil {
		respondErr(c, apierror.NotFound("receipt for "+resp.Code))
		return
	}
	c.FileAttachment(path, name)
}

func (h *TransactionsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TransactionsHandler) transition(c *gin.Context, fn func(ctx context.Context, id, userID uuid.UUID) (*dto.TransactionResponse, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := fn(c.Request.Context(), id, callerID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondErr(c, apierror.Validation("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func callerID(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return id
}
