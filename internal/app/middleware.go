package app

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garyellow/agri-advisor-go/internal/ctxutil"
	"github.com/garyellow/agri-advisor-go/internal/logger"
	"github.com/garyellow/agri-advisor-go/internal/metrics"
	"github.com/garyellow/agri-advisor-go/internal/ratelimit"
	"github.com/garyellow/agri-advisor-go/internal/warmup"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware propagates an incoming request or correlation ID, or
// mints one, and echoes it in the response.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = c.GetHeader("X-Correlation-ID")
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
		ctx = ctxutil.WithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// loggingMiddleware logs each request and records HTTP metrics.
// 5xx logs at error, other 4xx at warn, the rest at debug.
func loggingMiddleware(log *logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(route, strconv.Itoa(status), duration.Seconds())

		entry := log.WithFields(map[string]any{
			"http_method": c.Request.Method,
			"http_path":   c.Request.URL.Path,
			"http_status": status,
			"duration_ms": duration.Milliseconds(),
			"client_ip":   c.ClientIP(),
		})
		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			entry.ErrorContext(ctx, "HTTP request failed")
		case status >= http.StatusBadRequest && status != http.StatusNotFound:
			entry.WarnContext(ctx, "HTTP request rejected")
		default:
			entry.DebugContext(ctx, "HTTP request completed")
		}
	}
}

// readinessMiddleware answers 503 until the classifier has loaded or the
// init timeout has passed.
func readinessMiddleware(state *warmup.ReadinessState) gin.HandlerFunc {
	return func(c *gin.Context) {
		if state.IsReady() {
			c.Next()
			return
		}
		retry := retryAfterSeconds(state.RetryAfter())
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":       "service warming up",
			"retry_after": retry,
		})
	}
}

// rateLimitMiddleware limits each client IP with its own token bucket.
func rateLimitMiddleware(limiter *ratelimit.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if limiter.Allow(key) {
			c.Next()
			return
		}
		retry := retryAfterSeconds(limiter.RetryAfter(key))
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "Too many requests",
			"retry_after": retry,
		})
	}
}

func retryAfterSeconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}
