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

// ProductionHandler exposes the dispatch-note and reconciliation endpoints.
type ProductionHandler struct {
	production services.ProductionService
	validator  *validator.Validate
	logger     *zap.Logger
}

func NewProductionHandler(production services.ProductionService, logger *zap.Logger) *ProductionHandler {
	return &ProductionHandler{
		production: production,
		validator:  validator.New(),
		logger:     logger,
	}
}

func (h *ProductionHandler) CreateDispatch(c *gin.Context) {
	var req models.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, err)
		return
	}

	note, err := h.production.CreateDispatch(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "✅ dispatch created", note)
}

func (h *ProductionHandler) ListDispatches(c *gin.Context) {
	list, err := h.production.ListDispatches(c.Request.Context(), c.Query("direction"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", list)
}

func (h *ProductionHandler) DispatchDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	detail, err := h.production.DispatchDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", detail)
}

func (h *ProductionHandler) DeleteDispatch(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	if err := h.production.DeleteDispatch(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "✅ dispatch deleted", nil)
}

func (h *ProductionHandler) RemainingMaterials(c *gin.Context) {
	list, err := h.production.RemainingMaterials(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", list)
}

func (h *ProductionHandler) CostSummary(c *gin.Context) {
	list, err := h.production.CostSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", list)
}

func (h *ProductionHandler) NextDocumentNo(c *gin.Context) {
	next, err := h.production.NextDocumentNo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"document_no": next})
}

func (h *ProductionHandler) Materials(c *gin.Context) {
	refs, err := h.production.Materials(c.Request.Context(), c.Query("in_stock") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", refs)
}

func (h *ProductionHandler) Products(c *gin.Context) {
	refs, err := h.production.Products(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", refs)
}
