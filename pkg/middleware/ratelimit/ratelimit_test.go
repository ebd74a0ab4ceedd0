package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRejectsOverBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := New(0.001, 2, nil)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.POST("/auth/check_user/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/check_user/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestClientsAreIndependent(t *testing.T) {
	limiter := New(0.001, 1, nil)
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))
}

func TestSweepRemovesIdleClients(t *testing.T) {
	limiter := New(1, 1, nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return base }
	require.True(t, limiter.Allow("old"))

	limiter.now = func() time.Time { return base.Add(time.Hour) }
	require.True(t, limiter.Allow("fresh"))

	assert.Equal(t, 1, limiter.Sweep(30*time.Minute))
	assert.Len(t, limiter.visitors, 1)
}
