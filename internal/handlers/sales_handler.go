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

// SalesHandler exposes the radiator sale endpoints.
type SalesHandler struct {
	sales     services.SalesService
	validator *validator.Validate
	logger    *zap.Logger
}

func NewSalesHandler(sales services.SalesService, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{
		sales:     sales,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *SalesHandler) List(c *gin.Context) {
	filter := movementFilterFromQuery(c)

	if c.Query("grouped") == "true" {
		list, summary, err := h.sales.ListGrouped(c.Request.Context(), filter)
		if err != nil {
			h.logger.Error("❌ list sales invoices failed", zap.Error(err))
			respondError(c, err)
			return
		}
		respondList(c, list, summary)
		return
	}

	list, summary, err := h.sales.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("❌ list sales failed", zap.Error(err))
		respondError(c, err)
		return
	}
	respondList(c, list, summary)
}

func (h *SalesHandler) Create(c *gin.Context) {
	var req models.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, err)
		return
	}

	line, err := h.sales.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "✅ sale created", line)
}

func (h *SalesHandler) CreateBatch(c *gin.Context) {
	var req models.BatchSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.sales.CreateBatch(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "✅ sales invoice created", result)
}

func (h *SalesHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	var req models.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, err)
		return
	}

	line, err := h.sales.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "✅ sale updated", line)
}

func (h *SalesHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	if err := h.sales.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "✅ sale deleted", nil)
}

func (h *SalesHandler) InvoiceDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	detail, err := h.sales.InvoiceDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", detail)
}

func (h *SalesHandler) DocumentNumbers(c *gin.Context) {
	numbers, err := h.sales.DocumentNumbers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", numbers)
}

func (h *SalesHandler) DateRange(c *gin.Context) {
	dr, err := h.sales.DateRange(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", dr)
}

func (h *SalesHandler) Customers(c *gin.Context) {
	refs, err := h.sales.Customers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", refs)
}
