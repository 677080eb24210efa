package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"radiator-erp/internal/apperr"
)

// errInvalidID reports an unparsable or non-positive :id path parameter.
var errInvalidID = errors.New("invalid id parameter")

// respondOK writes the {success,message,data} envelope used by every endpoint.
func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// respondList adds the totals block next to the rows.
func respondList(c *gin.Context, data any, summary any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"summary": summary,
	})
}

// respondError maps an apperr kind to a status code. Internal errors never
// leak their cause into the body.
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.StatusOf(err), gin.H{
		"success": false,
		"message": "❌ " + apperr.MessageOf(err),
	})
}

// respondBadRequest reports a binding or validation failure.
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "❌ invalid request data",
		"error":   err.Error(),
	})
}
