package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"portal-bff-go/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	cfg     *config.Config
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v}
}

// Healthz returns a simple OK response for liveness probes. Also served
// at /api/health for the onboarding client's pre-flight check.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Status returns BFF status information. Upstream addresses only;
// secrets never appear here.
func (h *HealthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":       "ok",
		"version":      string(h.version),
		"app":          h.cfg.App.Name,
		"env":          h.cfg.App.Env,
		"auth_url":     h.cfg.Upstreams.AuthURL,
		"payments_url": h.cfg.Upstreams.PaymentsURL,
		"kyc_url":      h.cfg.Upstreams.KYCURL,
	})
}
