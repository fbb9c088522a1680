// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/response"
	"golang.org/x/time/rate"
)

const (
	// A bucket idle this long has refilled and can be rebuilt on demand
	localLimiterIdle = 2 * time.Minute
	// Hard bound on tracked clients between sweeps
	localLimiterMaxClients = 10000
)

// localLimiter is the per-process token bucket used while Redis is unreachable
type localLimiter struct {
	mu        sync.Mutex
	clients   map[string]*localClient
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type localClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLocalLimiter(perMinute int) *localLimiter {
	return &localLimiter{
		clients: make(map[string]*localClient),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		now:     time.Now,
	}
}

func (l *localLimiter) allow(key string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= localLimiterIdle || len(l.clients) >= localLimiterMaxClients {
		l.sweep(now)
	}

	client, ok := l.clients[key]
	if !ok {
		client = &localClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = client
	}
	client.lastSeen = now
	l.mu.Unlock()

	return client.limiter.AllowN(now, 1)
}

// sweep drops idle clients, and every client when the map is still full.
// Callers hold mu.
func (l *localLimiter) sweep(now time.Time) {
	for key, client := range l.clients {
		if now.Sub(client.lastSeen) >= localLimiterIdle {
			delete(l.clients, key)
		}
	}
	if len(l.clients) >= localLimiterMaxClients {
		l.clients = make(map[string]*localClient)
	}
	l.lastSweep = now
}

// RateLimit implements a fixed-window limit per client IP in Redis.
// When Redis fails the request is judged by an in-process limiter instead.
func RateLimit(perMinute int, redisClient *redis.Client, logger *logrus.Logger) gin.HandlerFunc {
	if perMinute < 1 {
		return func(c *gin.Context) { c.Next() }
	}
	fallback := newLocalLimiter(perMinute)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		window := time.Now().Unix() / 60
		key := fmt.Sprintf("rate_limit:%s:%d", clientIP, window)

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		pipe := redisClient.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, time.Minute)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.WithError(err).Debug("rate limit store unavailable, using local limiter")
			if !fallback.allow(clientIP) {
				tooManyRequests(c)
				return
			}
			c.Next()
			return
		}

		current := int(incr.Val())
		remaining := perMinute - current
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(perMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt((window+1)*60, 10))

		if current > perMinute {
			tooManyRequests(c)
			return
		}

		c.Next()
	}
}

func tooManyRequests(c *gin.Context) {
	c.Header("Retry-After", "60")
	response.Abort(c, http.StatusTooManyRequests, response.CodeRateLimited, "Rate limit exceeded")
}
