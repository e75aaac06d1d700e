package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func TestIPRateLimiter_GetLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1, time.Minute)

	a := limiter.GetLimiter("10.0.0.1")
	assert.Same(t, a, limiter.GetLimiter("10.0.0.1"))
	assert.NotSame(t, a, limiter.GetLimiter("10.0.0.2"))
	assert.Equal(t, 2, limiter.Visitors())
}

func TestIPRateLimiter_EvictsIdleVisitors(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1, 20*time.Millisecond)

	first := limiter.GetLimiter("10.0.0.1")
	time.Sleep(50 * time.Millisecond)

	assert.NotSame(t, first, limiter.GetLimiter("10.0.0.1"))
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(NewIPRateLimiter(rate.Limit(0.001), 2, time.Minute)))
	r.GET("/api/colleges", okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/colleges", nil)
		req.RemoteAddr = "192.0.2.7:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different client still has its own budget.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/colleges", nil)
	req.RemoteAddr = "192.0.2.8:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	const origin = "https://campusreveal.vercel.app"

	r := gin.New()
	r.Use(CORS(origin))
	r.GET("/api/colleges", okHandler)
	r.POST("/api/colleges/request-college", okHandler)

	testCases := []struct {
		name          string
		method        string
		origin        string
		expectedCode  int
		expectAllowed bool
	}{
		{name: "allowed simple request", method: http.MethodGet, origin: origin, expectedCode: http.StatusOK, expectAllowed: true},
		{name: "allowed preflight", method: http.MethodOptions, origin: origin, expectedCode: http.StatusNoContent, expectAllowed: true},
		{name: "foreign origin gets no grant", method: http.MethodGet, origin: "https://evil.example", expectedCode: http.StatusOK, expectAllowed: false},
		{name: "foreign preflight refused", method: http.MethodOptions, origin: "https://evil.example", expectedCode: http.StatusForbidden, expectAllowed: false},
		{name: "same-origin request without header", method: http.MethodGet, origin: "", expectedCode: http.StatusOK, expectAllowed: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, "/api/colleges/request-college", nil)
			if tc.method == http.MethodGet {
				req = httptest.NewRequest(tc.method, "/api/colleges", nil)
			}
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedCode, w.Code)
			if tc.expectAllowed {
				assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
				assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(AccessLog(zap.New(core).Sugar()))
	r.GET("/api/colleges", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/colleges?name=tech", nil))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "/api/colleges", entries[0].ContextMap()["path"])
		assert.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
	}
}

func TestMetrics_DoesNotAlterResponse(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/colleges/:collegeId", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/colleges/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}
