package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter(t *testing.T) {
	t.Run("should limit writes per client", func(t *testing.T) {
		req := require.New(t)
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		limiter := NewRateLimiter(1, 2)
		limiter.now = func() time.Time { return now }
		h := limiter.Middleware(okHandler)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
			r.RemoteAddr = "10.0.0.1:5000"
			h.ServeHTTP(rec, r)
			codes = append(codes, rec.Code)
		}
		req.Equal([]int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

		// Another client has its own bucket
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
		r.RemoteAddr = "10.0.0.2:5000"
		h.ServeHTTP(rec, r)
		req.Equal(http.StatusOK, rec.Code)
	})

	t.Run("should never limit reads", func(t *testing.T) {
		h := NewRateLimiter(0, 0).Middleware(okHandler)
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestCORS(t *testing.T) {
	t.Run("should echo allowed origins only", func(t *testing.T) {
		req := require.New(t)
		h := CORS([]string{"http://app.local"})(okHandler)

		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "http://app.local")
		h.ServeHTTP(rec, r)
		req.Equal("http://app.local", rec.Header().Get("Access-Control-Allow-Origin"))

		rec = httptest.NewRecorder()
		r = httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "http://evil.local")
		h.ServeHTTP(rec, r)
		req.Empty(rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("should parse a comma separated list", func(t *testing.T) {
		require.Equal(t, []string{"a", "b"}, ParseOrigins(" a, ,b "))
	})
}
