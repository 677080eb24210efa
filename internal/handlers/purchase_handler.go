package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"radiator-erp/internal/models"
	"radiator-erp/internal/services"
)

// PurchaseHandler exposes the raw-material purchase endpoints.
type PurchaseHandler struct {
	purchases services.PurchaseService
	validator *validator.Validate
	logger    *zap.Logger
}

func NewPurchaseHandler(purchases services.PurchaseService, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchases: purchases,
		validator: validator.New(),
		logger:    logger,
	}
}

// movementFilterFromQuery reads the shared list-screen filters.
func movementFilterFromQuery(c *gin.Context) *models.MovementFilter {
	return &models.MovementFilter{
		FromDate:   c.Query("from"),
		ToDate:     c.Query("to"),
		PartyIDs:   c.Query("party_ids"),
		ItemIDs:    c.Query("item_ids"),
		DocumentNo: c.Query("document_no"),
	}
}

// List serves GET "" with optional grouped=true for invoice headers.
func (h *PurchaseHandler) List(c *gin.Context) {
	filter := movementFilterFromQuery(c)

	if c.Query("grouped") == "true" {
		list, summary, err := h.purchases.ListGrouped(c.Request.Context(), filter)
		if err != nil {
			h.logger.Error("❌ list purchase invoices failed", zap.Error(err))
			respondError(c, err)
			return
		}
		respondList(c, list, summary)
		return
	}

	list, summary, err := h.purchases.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("❌ list purchases failed", zap.Error(err))
		respondError(c, err)
		return
	}
	respondList(c, list, summary)
}

func (h *PurchaseHandler) Create(c *gin.Context) {
	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, err)
		return
	}

	line, err := h.purchases.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "✅ purchase created", line)
}

func (h *PurchaseHandler) CreateBatch(c *gin.Context) {
	var req models.BatchPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.purchases.CreateBatch(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "✅ purchase invoice created", result)
}

func (h *PurchaseHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, err)
		return
	}

	line, err := h.purchases.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "✅ purchase updated", line)
}

func (h *PurchaseHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	if err := h.purchases.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "✅ purchase deleted", nil)
}

func (h *PurchaseHandler) InvoiceDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	detail, err := h.purchases.InvoiceDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", detail)
}

func (h *PurchaseHandler) DocumentNumbers(c *gin.Context) {
	numbers, err := h.purchases.DocumentNumbers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", numbers)
}

func (h *PurchaseHandler) DateRange(c *gin.Context) {
	dr, err := h.purchases.DateRange(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", dr)
}

func (h *PurchaseHandler) Suppliers(c *gin.Context) {
	refs, err := h.purchases.Suppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", refs)
}
