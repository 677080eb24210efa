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

// CostFileHandler exposes the bill-of-materials endpoints.
type CostFileHandler struct {
	costFiles services.CostFileService
	validator *validator.Validate
	logger    *zap.Logger
}

func NewCostFileHandler(costFiles services.CostFileService, logger *zap.Logger) *CostFileHandler {
	return &CostFileHandler{
		costFiles: costFiles,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *CostFileHandler) GetByProduct(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	file, err := h.costFiles.GetByProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", file)
}

func (h *CostFileHandler) Replace(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	var req models.SaveCostFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, err)
		return
	}

	file, err := h.costFiles.Replace(c.Request.Context(), productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "✅ cost file saved", file)
}

func (h *CostFileHandler) AddLine(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	var req models.AddCostFileLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, err)
		return
	}

	line, err := h.costFiles.AddLine(c.Request.Context(), productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "✅ cost file line added", line)
}

func (h *CostFileHandler) UpdateLine(c *gin.Context) {
	lineID, err := strconv.Atoi(c.Param("id"))
	if err != nil || lineID <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	var req models.UpdateCostFileLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	line, err := h.costFiles.UpdateLine(c.Request.Context(), lineID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "✅ cost file line updated", line)
}

func (h *CostFileHandler) DeleteLine(c *gin.Context) {
	lineID, err := strconv.Atoi(c.Param("id"))
	if err != nil || lineID <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	if err := h.costFiles.DeleteLine(c.Request.Context(), lineID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "✅ cost file line deleted", nil)
}

func (h *CostFileHandler) DeleteByProduct(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	if err := h.costFiles.DeleteByProduct(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "✅ cost file deleted", nil)
}
