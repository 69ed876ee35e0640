package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitExhaustionAndRefill(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetRateLimitConfig(100*time.Millisecond, 2)
	defer SetRateLimitConfig(10*time.Second, 5)

	r := gin.New()
	r.GET("/ping", RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do(); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := do(); code != http.StatusOK {
		t.Fatalf("expected second request to pass, got %d", code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be limited, got %d", code)
	}

	time.Sleep(150 * time.Millisecond)
	if code := do(); code != http.StatusOK {
		t.Fatalf("expected request to pass after refill, got %d", code)
	}
}
