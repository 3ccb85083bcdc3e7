package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixRateLimitClock pins the bucket clock and returns a function that moves it
func fixRateLimitClock(t *testing.T) func(time.Duration) {
	current := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	rateLimitNow = func() time.Time { return current }
	t.Cleanup(func() { rateLimitNow = time.Now })
	return func(d time.Duration) { current = current.Add(d) }
}

func newLimitedRouter(t *testing.T) (*gin.Engine, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger, _ := test.NewNullLogger()
	router := setupTestRouter()
	router.POST("/chat", RateLimit(testRateLimitConfig(), rdb, logger), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, mr
}

func postChat(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/chat", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimit_TokenBucket(t *testing.T) {
	t.Run("Drains To Too Many Requests", func(t *testing.T) {
		fixRateLimitClock(t)
		router, _ := newLimitedRouter(t)

		w := postChat(router, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

		w = postChat(router, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

		w = postChat(router, "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "too_many_requests", body["error"])
		assert.Equal(t, float64(1), body["retry_after"])
	})

	t.Run("Refills One Token Per Interval", func(t *testing.T) {
		advance := fixRateLimitClock(t)
		router, _ := newLimitedRouter(t)

		postChat(router, "")
		postChat(router, "")
		assert.Equal(t, http.StatusTooManyRequests, postChat(router, "").Code)

		advance(time.Second)
		w := postChat(router, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

		advance(400 * time.Millisecond)
		assert.Equal(t, http.StatusTooManyRequests, postChat(router, "").Code)

		// A long pause refills only up to capacity
		advance(time.Minute)
		assert.Equal(t, "1", postChat(router, "").Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("Buckets Are Per Client", func(t *testing.T) {
		fixRateLimitClock(t)
		router, _ := newLimitedRouter(t)

		postChat(router, "")
		postChat(router, "")
		assert.Equal(t, http.StatusTooManyRequests, postChat(router, "").Code)

		w := postChat(router, "198.51.100.7:4000")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("Bucket Expires With TTL", func(t *testing.T) {
		fixRateLimitClock(t)
		router, mr := newLimitedRouter(t)

		postChat(router, "")
		key := "rl:ip:192.0.2.1:user:anon:route:/chat"
		require.True(t, mr.Exists(key))
		assert.Equal(t, time.Minute, mr.TTL(key))
		assert.Equal(t, "1", mr.HGet(key, "tokens"))

		mr.FastForward(time.Minute + time.Second)
		assert.False(t, mr.Exists(key))
	})
}
