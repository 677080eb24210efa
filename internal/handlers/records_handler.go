package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"radiator-erp/internal/services"
)

// RecordsHandler exposes the reference-record screens. Writes carry free-form
// JSON objects; the repository whitelist decides which keys are writable.
type RecordsHandler struct {
	records services.RecordsService
	logger  *zap.Logger
}

func NewRecordsHandler(records services.RecordsService, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{records: records, logger: logger}
}

func (h *RecordsHandler) ListAll(c *gin.Context) {
	items, err := h.records.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", items)
}

func (h *RecordsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.records.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", dashboard)
}

func (h *RecordsHandler) ListByType(c *gin.Context) {
	rows, err := h.records.ListByType(c.Request.Context(), c.Param("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", rows)
}

func (h *RecordsHandler) Create(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondBadRequest(c, err)
		return
	}

	id, err := h.records.Create(c.Request.Context(), c.Param("type"), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "✅ record created", gin.H{"id": id})
}

func (h *RecordsHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.records.Update(c.Request.Context(), c.Param("type"), id, fields); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "✅ record updated", nil)
}

func (h *RecordsHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	if err := h.records.Delete(c.Request.Context(), c.Param("type"), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "✅ record deleted", nil)
}

func (h *RecordsHandler) Detail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, errInvalidID)
		return
	}

	detail, err := h.records.Detail(c.Request.Context(), c.Param("type"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", detail)
}
