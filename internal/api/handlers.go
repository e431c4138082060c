package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"fastats/internal/cache"
	"fastats/internal/middleware"
	"fastats/internal/scraper"
	"fastats/pkg/config"

	"github.com/gin-gonic/gin"
)

// Handler holds dependencies for API handlers
type Handler struct {
	scraper scraper.Interface
	cache   *cache.MemoryCache[*scraper.ProfileResponse]
	logger  *slog.Logger

	// upstream serializes page fetches so only one profile is requested
	// from the site at a time.
	upstream sync.Mutex
}

// NewHandler creates a new API handler
func NewHandler(s scraper.Interface, c *cache.MemoryCache[*scraper.ProfileResponse], logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		scraper: s,
		cache:   c,
		logger:  logger,
	}
}

// SetupRoutes configures the API routes
func (h *Handler) SetupRoutes(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Parse trusted proxies from config (comma-separated)
	trustedProxies := strings.Split(cfg.TrustedProxies, ",")
	for i, proxy := range trustedProxies {
		trustedProxies[i] = strings.TrimSpace(proxy)
	}
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		h.logger.Warn("invalid trusted proxies", "proxies", cfg.TrustedProxies, "err", err)
	}

	h.registerRoutes(r,
		middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitPerMinute),
		middleware.ScrapeRateLimitMiddleware(cfg.ScrapeRateLimit, cfg.ScrapeRateLimit),
	)

	return r
}

func (h *Handler) registerRoutes(r *gin.Engine, general, scrape gin.HandlerFunc) {
	r.Use(cors, h.requestLogger)

	r.GET("/health", h.healthCheck)
	r.GET("/debug/:username", scrape, h.debugLayout)

	v1 := r.Group("/api/v1", general)
	v1.GET("/stats/:username", scrape, h.getProfileStats)
}

// cors adds CORS headers for frontend consumption
func cors(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	c.Next()
}

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.logger.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start))
}

// healthCheck returns service health status
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"cache":     h.cache.Stats(),
	})
}

// getProfileStats returns the statistics of one profile
func (h *Handler) getProfileStats(c *gin.Context) {
	username := c.Param("username")

	cacheKey := "stats:" + username
	if cached, found := h.cache.Get(cacheKey); found {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, cached)
		return
	}

	h.upstream.Lock()
	stats, err := h.scraper.GetProfileStats(c.Request.Context(), username)
	h.upstream.Unlock()
	if err != nil {
		h.logger.Error("failed to get statistics", "user", username, "err", err)
		status, code := classify(err)
		c.JSON(status, scraper.ErrorResponse{
			Error:   code,
			Message: "Failed to scrape profile statistics: " + err.Error(),
		})
		return
	}

	resp := &scraper.ProfileResponse{
		Username:  username,
		Stats:     *stats,
		FetchedAt: time.Now(),
	}

	h.cache.Set(cacheKey, resp)
	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, resp)
}

// debugLayout returns the indexed stat cell markup of a profile page
func (h *Handler) debugLayout(c *gin.Context) {
	username := c.Param("username")

	h.upstream.Lock()
	layout, err := h.scraper.InspectLayout(c.Request.Context(), username)
	h.upstream.Unlock()
	if err != nil {
		status, code := classify(err)
		c.JSON(status, gin.H{
			"error":   code,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, layout)
}

// classify maps scraper errors to a status code and error identifier
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, scraper.ErrAuthRequired):
		return http.StatusBadGateway, "authentication_required"
	case errors.Is(err, scraper.ErrFetch):
		return http.StatusBadGateway, "fetch_failed"
	case errors.Is(err, scraper.ErrParsing):
		return http.StatusUnprocessableEntity, "parsing_failed"
	default:
		return http.StatusInternalServerError, "scraping_failed"
	}
}
