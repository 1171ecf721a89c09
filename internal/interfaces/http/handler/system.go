package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/debttrack/backend/internal/infrastructure/cache"
	"github.com/debttrack/backend/internal/infrastructure/persistence"
	"github.com/debttrack/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SystemHandler handles health and system info endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	cache     cache.Cache
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database, c cache.Cache) *SystemHandler {
	return &SystemHandler{
		db:        db,
		cache:     c,
		startTime: time.Now(),
	}
}

// HealthResponse reports the state of the service and its dependencies.
// The cache being down does not fail the health check; the service falls
// back to direct storage reads.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Cache     string `json:"cache"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// RegisterRoutes registers the health endpoints under the API group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/ping", h.Ping)
}

// Health reports liveness plus dependency states.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Database:  "up",
		Cache:     "up",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	status := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "down"
			status = http.StatusServiceUnavailable
		}
	}
	if h.cache != nil && !h.cache.Ready(c.Request.Context()) {
		resp.Cache = "down"
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}

// Ping is a minimal liveness probe.
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"message":   "pong",
		"timestamp": time.Now().Format(time.RFC3339),
	}))
}
