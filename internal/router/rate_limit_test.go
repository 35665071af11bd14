package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIPLimiterSeparatesClients(t *testing.T) {
	limiter := newIPLimiter(60, time.Minute, 2)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	if !limiter.allow("10.0.0.1") || !limiter.allow("10.0.0.1") {
		t.Fatalf("expected burst of 2 to pass")
	}
	if limiter.allow("10.0.0.1") {
		t.Fatalf("expected third request in the same instant to be limited")
	}
	if !limiter.allow("10.0.0.2") {
		t.Fatalf("expected another client to have its own bucket")
	}

	fixed = fixed.Add(time.Second)
	if !limiter.allow("10.0.0.1") {
		t.Fatalf("expected a token to refill after one second")
	}
}

func TestIPLimiterSweepsIdleVisitors(t *testing.T) {
	limiter := newIPLimiter(60, time.Minute, 1)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	limiter.allow("10.0.0.1")
	fixed = fixed.Add(10 * time.Minute)
	limiter.allow("10.0.0.2")

	if _, ok := limiter.visitors["10.0.0.1"]; ok {
		t.Fatalf("expected idle visitor to be removed")
	}
	if len(limiter.visitors) != 1 {
		t.Fatalf("expected 1 tracked visitor, got %d", len(limiter.visitors))
	}
}

func TestRateLimitMiddlewareRejectsWith429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/limited", rateLimit(1, time.Hour, 1), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/limited", nil))
	if first.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/limited", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/open", rateLimit(0, time.Minute, 1), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/open", nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i, w.Code)
		}
	}
}
