package models

import "time"

// RequestData is one observed HTTP request, fed from the access-log middleware.
type RequestData struct {
	Method     string
	Endpoint   string
	StatusCode int
	Duration   time.Duration
	Timestamp  time.Time
}

// EndpointMetrics accumulates per-endpoint request counters.
type EndpointMetrics struct {
	Count     int64   `json:"count"`
	TotalTime int64   `json:"total_time_ms"`
	AvgTime   float64 `json:"avg_time_ms"`
}

// SlowRequest records a request that crossed the slow threshold.
type SlowRequest struct {
	Endpoint  string    `json:"endpoint"`
	Duration  int64     `json:"duration_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// RequestError records a request that ended with a 4xx/5xx status.
type RequestError struct {
	Endpoint   string    `json:"endpoint"`
	StatusCode int       `json:"status_code"`
	Timestamp  time.Time `json:"timestamp"`
}

// DatabaseMetrics mirrors the sql.DBStats fields worth watching.
type DatabaseMetrics struct {
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	WaitCount       int64  `json:"wait_count"`
	WaitDuration    string `json:"wait_duration"`
}

// SystemMetrics is a runtime snapshot of the process.
type SystemMetrics struct {
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	HeapSysMB     float64 `json:"heap_sys_mb"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// RedisMetrics reports redis reachability.
type RedisMetrics struct {
	Status string `json:"status"`
}

// MonitoringSnapshot is the full /monitoring payload, also streamed over the
// websocket.
type MonitoringSnapshot struct {
	TotalRequests int64                       `json:"total_requests"`
	Endpoints     map[string]*EndpointMetrics `json:"endpoints"`
	SlowRequests  []SlowRequest               `json:"slow_requests"`
	Errors        []RequestError              `json:"errors"`
	Database      DatabaseMetrics             `json:"database"`
	System        SystemMetrics               `json:"system"`
	Redis         RedisMetrics                `json:"redis"`
	GeneratedAt   time.Time                   `json:"generated_at"`
}
