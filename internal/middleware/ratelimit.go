package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPRateLimiter holds rate limiters for each IP
type IPRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	limit    rate.Limit
	burst    int
}

// NewIPRateLimiter creates a limiter allowing perMinute requests per minute
// for each client IP, with the given burst.
func NewIPRateLimiter(perMinute int, burst int) *IPRateLimiter {
	limit := rate.Limit(0)
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}

	return &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// GetLimiter returns the rate limiter for the given IP
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(i.limit, i.burst)
		i.limiters[ip] = limiter
	}

	return limiter
}

// CleanupOldEntries removes limiters that have refilled completely
func (i *IPRateLimiter) CleanupOldEntries() {
	i.mu.Lock()
	defer i.mu.Unlock()

	for ip, limiter := range i.limiters {
		if limiter.Tokens() >= float64(i.burst) {
			delete(i.limiters, ip)
		}
	}
}

// limitExceeded is the body sent with a 429
type limitExceeded struct {
	code    string
	message string
}

// RateLimitMiddleware limits every API request per client IP
func RateLimitMiddleware(perMinute int, burst int) gin.HandlerFunc {
	return limitByIP(perMinute, burst, limitExceeded{
		code:    "rate_limit_exceeded",
		message: "Too many requests. Please try again later.",
	})
}

// ScrapeRateLimitMiddleware applies the stricter limit of endpoints that
// hit the upstream site
func ScrapeRateLimitMiddleware(perMinute int, burst int) gin.HandlerFunc {
	return limitByIP(perMinute, burst, limitExceeded{
		code:    "scrape_rate_limit_exceeded",
		message: "Scraping rate limit exceeded. Please wait before making more requests.",
	})
}

func limitByIP(perMinute int, burst int, exceeded limitExceeded) gin.HandlerFunc {
	limiter := NewIPRateLimiter(perMinute, burst)

	// Cleanup old entries every 5 minutes
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.CleanupOldEntries()
		}
	}()

	return func(c *gin.Context) {
		ipLimiter := limiter.GetLimiter(c.ClientIP())

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", perMinute))

		if !ipLimiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "60")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       exceeded.code,
				"message":     exceeded.message,
				"retry_after": 60,
			})
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", int(ipLimiter.Tokens())))
		c.Next()
	}
}
