package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, auth *AuthHandler, kyc *KYCHandler, payments *PaymentsHandler, health *HealthHandler) {
	e.GET("/healthz", health.Healthz)
	e.GET("/api/health", health.Healthz)
	e.GET("/bff/status", health.Status)

	e.POST("/api/auth/login", auth.Login)
	e.POST("/api/auth/logout", auth.Logout)
	e.GET("/api/auth/me", auth.Me)

	e.POST("/api/kyc/upload", kyc.Upload)
	e.POST("/api/payments/intent", payments.CreateIntent)
}
