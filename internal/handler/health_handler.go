package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"authsvc/internal/cache"
)

// HealthHandler reports reachability of the service's dependencies.
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *gorm.DB, cacheClient *cache.Client) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheClient}
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Check godoc
// @Summary Service health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	ctx := c.Request().Context()
	services := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	status := http.StatusOK

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		services["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if err := h.cache.Ping(ctx); err != nil {
		// The cache is optional; report it but stay healthy.
		services["redis"] = "unavailable"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	return c.JSON(status, HealthResponse{Status: overall, Services: services})
}
