package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestMemoryCounterStoreCountsWithinWindow(t *testing.T) {
	store := NewMemoryCounterStore()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := store.Incr(ctx, "10.0.0.1", time.Minute)
		if err != nil {
			t.Fatalf("Incr failed: %v", err)
		}
		if got != want {
			t.Fatalf("Incr = %d, want %d", got, want)
		}
	}
}

func TestMemoryCounterStoreIsolatesKeys(t *testing.T) {
	store := NewMemoryCounterStore()
	ctx := context.Background()

	if _, err := store.Incr(ctx, "10.0.0.1", time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err := store.Incr(ctx, "10.0.0.2", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Fatalf("second key started at %d, want 1", got)
	}
}

func TestMemoryCounterStoreResetsAfterWindow(t *testing.T) {
	store := NewMemoryCounterStore()
	ctx := context.Background()

	if _, err := store.Incr(ctx, "10.0.0.1", 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)

	got, err := store.Incr(ctx, "10.0.0.1", 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Fatalf("count after window expiry = %d, want 1", got)
	}
}

func TestRateLimitMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(NewMemoryCounterStore(), 2, time.Minute, zap.NewNop()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("requests under the limit got %v", statuses[:2])
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("third request got %d, want 429", statuses[2])
	}
}
