package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"radiator-erp/internal/models"
	"radiator-erp/internal/services"
)

// MonitoringHandler serves the metrics snapshot, the websocket stream and the
// middleware that feeds both.
type MonitoringHandler struct {
	monitoring services.MonitoringService
	logger     *zap.Logger
}

func NewMonitoringHandler(monitoring services.MonitoringService, logger *zap.Logger) *MonitoringHandler {
	return &MonitoringHandler{monitoring: monitoring, logger: logger}
}

func (h *MonitoringHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitoring.Snapshot(c.Request.Context()))
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamMetrics pushes a metrics snapshot over websocket every 10 seconds
// until the client disconnects.
func (h *MonitoringHandler) StreamMetrics(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "stream_metrics"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("❌ websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			snapshot := h.monitoring.Snapshot(context.Background())
			if err := conn.WriteJSON(snapshot); err != nil {
				logger.Warn("websocket write failed", zap.Error(err))
				return
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}

// RecordRequestMiddleware feeds every non-monitoring request into the metrics.
func (h *MonitoringHandler) RecordRequestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/monitoring") || path == "/health" {
			return
		}

		h.monitoring.RecordRequest(models.RequestData{
			Method:     c.Request.Method,
			Endpoint:   c.FullPath(),
			StatusCode: c.Writer.Status(),
			Duration:   time.Since(start),
			Timestamp:  time.Now(),
		})
	}
}
