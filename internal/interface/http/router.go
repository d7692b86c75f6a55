package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/preburn-dashboard/internal/infra/config"
	"github.com/yanqian/preburn-dashboard/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, proxy *UpstreamProxy, collector *metrics.Collector) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger, collector),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", handler.Health)
	if cfg.Metrics.Enabled && collector != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(collector.Handler()))
	}

	upstream := gin.WrapH(withRetry(proxy, cfg.HTTP.Retry, handler.logger))
	api := router.Group("/api")
	{
		api.GET("/risk", upstream)
		api.GET("/forecast", upstream)
		api.GET("/actions", upstream)
	}

	sessions := router.Group("/dashboard/sessions")
	{
		sessions.POST("", handler.OpenSession)
		sessions.GET("/:id", handler.GetSession)
		sessions.POST("/:id/select", handler.SelectDay)
		sessions.GET("/:id/interactions", handler.Interactions)
		sessions.DELETE("/:id", handler.CloseSession)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger, collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
		if collector != nil {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			collector.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), latency)
		}
	}
}
