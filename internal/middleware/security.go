package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/profmatch-api/internal/logger"
	"github.com/ajharbinger/profmatch-api/pkg/config"
)

const defaultMaxRequestSize = 1 << 20

// developmentOrigins are the local frontends allowed outside production
var developmentOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3700",
	"http://localhost:8080",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:3700",
	"http://127.0.0.1:8080",
}

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'")

		// Marks and reset tokens must not be cached
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")

		c.Next()
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing with environment-based configuration
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowed := make(map[string]struct{})
	for _, origin := range cfg.GetAllowedOrigins() {
		allowed[origin] = struct{}{}
	}
	if cfg.IsDevelopment() {
		for _, origin := range developmentOrigins {
			allowed[origin] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if _, ok := allowed[origin]; ok && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// InputValidationMiddleware caps the body size and requires JSON bodies on writes
func InputValidationMiddleware(cfg *config.Config) gin.HandlerFunc {
	maxSize := cfg.MaxRequestSize
	if maxSize <= 0 {
		maxSize = defaultMaxRequestSize
	}

	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := c.GetHeader("Content-Type")
			if contentType == "" {
				reject(c, http.StatusBadRequest, "Content-Type header is required")
				return
			}
			if !strings.HasPrefix(contentType, "application/json") {
				reject(c, http.StatusUnsupportedMediaType, "Unsupported content type")
				return
			}
		}

		userAgent := strings.ToLower(c.GetHeader("User-Agent"))
		for _, pattern := range []string{"sqlmap", "nikto", "nmap", "masscan", "<script", "javascript:"} {
			if strings.Contains(userAgent, pattern) {
				reject(c, http.StatusForbidden, "Request blocked for security reasons")
				return
			}
		}

		c.Next()
	}
}

func reject(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"message": message,
		"code":    http.StatusText(status),
		"error":   true,
	})
}

// RateLimiter is a sliding one-minute window per client IP
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string][]time.Time
	now     func() time.Time

	lastSweep time.Time
}

// NewRateLimiter allows limit requests per client per minute
func NewRateLimiter(limit int) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  time.Minute,
		clients: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records a request from client and reports whether it is within the limit
func (r *RateLimiter) Allow(client string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	recent := r.clients[client][:0]
	for _, ts := range r.clients[client] {
		if now.Sub(ts) <= r.window {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= r.limit {
		r.clients[client] = recent
		return false
	}
	r.clients[client] = append(recent, now)
	r.sweep(now, client)
	return true
}

// sweep drops clients whose whole window has expired, at most once per window
func (r *RateLimiter) sweep(now time.Time, except string) {
	if now.Sub(r.lastSweep) < r.window {
		return
	}
	r.lastSweep = now
	for client, stamps := range r.clients {
		if client == except {
			continue
		}
		if len(stamps) == 0 || now.Sub(stamps[len(stamps)-1]) > r.window {
			delete(r.clients, client)
		}
	}
}

// Clients reports how many clients are currently tracked
func (r *RateLimiter) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Middleware rejects clients over the limit with 429
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(r.window.Seconds()))
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			c.Header("Retry-After", retryAfter)
			reject(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		c.Next()
	}
}

// RateLimitingMiddleware allows 100 requests per minute per IP
func RateLimitingMiddleware() gin.HandlerFunc {
	return NewRateLimiter(100).Middleware()
}

// LoggingMiddleware writes one structured entry per request
func LoggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if userID, ok := c.Get("user_id"); ok {
			fields = append(fields, "user_id", userID)
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Warn("request failed", fields...)
		case status >= http.StatusBadRequest:
			log.Info("request rejected", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}
