package services

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"radiator-erp/internal/models"
)

// slowRequestThreshold marks a request as slow for the monitoring feed.
const slowRequestThreshold = time.Second

// keptSamples bounds the slow-request and error ring buffers.
const keptSamples = 100

// MonitoringService accumulates in-process request metrics and snapshots the
// database pool and redis status for the monitoring endpoints.
type MonitoringService interface {
	RecordRequest(data models.RequestData)
	Snapshot(ctx context.Context) *models.MonitoringSnapshot
}

type monitoringService struct {
	logger      *zap.Logger
	dbPool      *sql.DB
	redisClient *redis.Client

	mu            sync.RWMutex
	endpoints     map[string]*models.EndpointMetrics
	slowRequests  []models.SlowRequest
	errors        []models.RequestError
	totalRequests int64

	startTime time.Time
}

func NewMonitoringService(dbPool *sql.DB, redisClient *redis.Client, logger *zap.Logger) MonitoringService {
	return &monitoringService{
		logger:      logger,
		dbPool:      dbPool,
		redisClient: redisClient,
		endpoints:   make(map[string]*models.EndpointMetrics),
		startTime:   time.Now(),
	}
}

func (s *monitoringService) RecordRequest(data models.RequestData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%s %s", data.Method, data.Endpoint)
	metrics, ok := s.endpoints[key]
	if !ok {
		metrics = &models.EndpointMetrics{}
		s.endpoints[key] = metrics
	}

	metrics.Count++
	durationMs := data.Duration.Milliseconds()
	metrics.TotalTime += durationMs
	metrics.AvgTime = float64(metrics.TotalTime) / float64(metrics.Count)
	s.totalRequests++

	if data.Duration > slowRequestThreshold {
		s.slowRequests = append(s.slowRequests, models.SlowRequest{
			Endpoint:  key,
			Duration:  durationMs,
			Timestamp: data.Timestamp,
		})
		if len(s.slowRequests) > keptSamples {
			s.slowRequests = s.slowRequests[1:]
		}
	}

	if data.StatusCode >= 400 {
		s.errors = append(s.errors, models.RequestError{
			Endpoint:   key,
			StatusCode: data.StatusCode,
			Timestamp:  data.Timestamp,
		})
		if len(s.errors) > keptSamples {
			s.errors = s.errors[1:]
		}
	}
}

func (s *monitoringService) Snapshot(ctx context.Context) *models.MonitoringSnapshot {
	s.mu.RLock()
	snapshot := &models.MonitoringSnapshot{
		TotalRequests: s.totalRequests,
		Endpoints:     make(map[string]*models.EndpointMetrics, len(s.endpoints)),
		SlowRequests:  append([]models.SlowRequest(nil), s.slowRequests...),
		Errors:        append([]models.RequestError(nil), s.errors...),
		GeneratedAt:   time.Now(),
	}
	for key, metrics := range s.endpoints {
		copied := *metrics
		snapshot.Endpoints[key] = &copied
	}
	s.mu.RUnlock()

	stats := s.dbPool.Stats()
	snapshot.Database = models.DatabaseMetrics{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		WaitCount:       stats.WaitCount,
		WaitDuration:    stats.WaitDuration.String(),
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	snapshot.System = models.SystemMetrics{
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(mem.HeapAlloc) / 1024 / 1024,
		HeapSysMB:     float64(mem.HeapSys) / 1024 / 1024,
		UptimeSeconds: time.Since(s.startTime).Seconds(),
	}

	snapshot.Redis = models.RedisMetrics{Status: "up"}
	if s.redisClient == nil {
		snapshot.Redis.Status = "disabled"
	} else if err := s.redisClient.Ping(ctx).Err(); err != nil {
		snapshot.Redis.Status = "down"
		s.logger.Warn("redis ping failed", zap.Error(err))
	}

	return snapshot
}
