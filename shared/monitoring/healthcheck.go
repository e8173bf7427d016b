package monitoring

import (
	"fmt"
	"net/http"

	"video-judge/shared/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes adds /health and /status to r.
func RegisterRoutes(r gin.IRouter, monitor *Monitor) {
	r.GET("/health", func(c *gin.Context) {
		if monitor.IsHealthy() {
			c.String(http.StatusOK, "OK - %s", monitor.GetStatusSummary())
			return
		}
		c.String(http.StatusServiceUnavailable, "Service unhealthy - %s", monitor.GetStatusSummary())
	})
	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, monitor.Status())
	})
}

type HealthServer struct {
	monitor *Monitor
	port    string
	logger  *zap.SugaredLogger
}

func NewHealthServer(monitor *Monitor, port string, logger *zap.SugaredLogger) *HealthServer {
	if port == "" {
		port = "8080"
	}
	return &HealthServer{
		monitor: monitor,
		port:    port,
		logger:  logging.OrNop(logger),
	}
}

// Handler returns the router serving the health endpoints.
func (h *HealthServer) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, h.monitor)
	return r
}

// Start serves the health endpoints in the background.
func (h *HealthServer) Start() {
	addr := fmt.Sprintf(":%s", h.port)
	h.logger.Infow("Health check server starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, h.Handler()); err != nil {
			h.logger.Errorw("Health server error", "error", err)
		}
	}()
}
