package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/autoresolve/helpdesk-accounts/internal/core/ports"
)

// Pinger is an optional dependency reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness probe and the dependency report.
type HealthHandler struct {
	users   ports.UserRepository
	extra   map[string]Pinger
	version string
	log     zerolog.Logger
	now     func() time.Time
}

func NewHealthHandler(users ports.UserRepository, extra map[string]Pinger, version string, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		users:   users,
		extra:   extra,
		version: version,
		log:     log,
		now:     time.Now,
	}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Database     string                      `json:"database"`
	UserCount    int64                       `json:"user_count"`
	Version      string                      `json:"version"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Liveness returns 200 immediately; it confirms the process is alive.
//
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health/live [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Report checks the user store and any optional dependencies. A failing
// dependency yields "degraded" with 503; the handler itself never fails.
//
// @Summary  Health report
// @Tags     health
// @Produce  json
// @Success  200  {object}  healthResponse
// @Failure  503  {object}  healthResponse
// @Router   /health [get]
func (h *HealthHandler) Report(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:       "ok",
		Timestamp:    h.now().UTC(),
		Database:     "connected",
		Version:      h.version,
		Dependencies: make(map[string]dependencyStatus, len(h.extra)+1),
	}

	if err := h.users.Ping(ctx); err != nil {
		h.degrade(&resp, "database", err)
		resp.Database = "disconnected"
	} else if n, err := h.users.Count(ctx); err != nil {
		h.degrade(&resp, "database", err)
		resp.Database = "error"
	} else {
		resp.UserCount = n
		resp.Dependencies["database"] = dependencyStatus{Status: "ok"}
	}

	for name, p := range h.extra {
		if err := p.Ping(ctx); err != nil {
			h.degrade(&resp, name, err)
			continue
		}
		resp.Dependencies[name] = dependencyStatus{Status: "ok"}
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

func (h *HealthHandler) degrade(resp *healthResponse, name string, err error) {
	h.log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
	resp.Status = "degraded"
	resp.Dependencies[name] = dependencyStatus{Status: "unhealthy", Error: "unreachable"}
}
