package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kevin07696/monext-gateway/pkg/middleware"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(remoteAddr string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/monext/notification", nil)
	r.RemoteAddr = remoteAddr
	return r
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := middleware.NewRateLimiter(1, 3)
	defer rl.Shutdown()
	h := rl.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.1:51234"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterRejectsBeyondBurst(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 2)
	defer rl.Shutdown()
	h := rl.Middleware(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.1:51234"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1:51234"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiterTracksClientsIndependently(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 1)
	defer rl.Shutdown()
	h := rl.Middleware(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1:51234"))
	assert.Equal(t, http.StatusOK, rec.Code)

	// The first client is exhausted, a second one is not.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1:50000"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.2:51234"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
