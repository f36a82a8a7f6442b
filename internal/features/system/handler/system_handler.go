package handler

import (
	"context"
	"net/http"
	"time"

	"storefront-admin/internal/core/auth"
	"storefront-admin/internal/core/cache"
	"storefront-admin/internal/core/config"
	"storefront-admin/internal/core/logger"
	"storefront-admin/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SystemHandler serves the health and login endpoints.
type SystemHandler struct {
	// commerce is checked for upstream reachability.
	commerce ports.OrderAPI
	// cache is checked with a redis ping.
	cache cache.Cache
	// authCfg holds the console tokens for login validation.
	authCfg config.AuthConfig
}

// NewSystemHandler creates a new instance of SystemHandler.
func NewSystemHandler(commerce ports.OrderAPI, c cache.Cache, authCfg config.AuthConfig) *SystemHandler {
	return &SystemHandler{
		commerce: commerce,
		cache:    c,
		authCfg:  authCfg,
	}
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	// Token is the console access token to validate.
	Token string `json:"token"`
}

// LoginResponse echoes the validated token and its role.
type LoginResponse struct {
	// Token is the validated access token.
	Token string `json:"token"`
	// Role is "operator" or "admin".
	Role auth.Role `json:"role"`
}

// HealthResponse reports the state of each dependency.
type HealthResponse struct {
	// Status is "ok" when every dependency is reachable, otherwise "degraded".
	Status string `json:"status"`
	// Commerce is "up" or "down".
	Commerce string `json:"commerce"`
	// Redis is "up" or "down".
	Redis string `json:"redis"`
}

// Health handles GET /health.
// @Summary Health check
// @Description Reports commerce API reachability and redis ping.
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Commerce: "up", Redis: "up"}

	if err := h.commerce.HealthCheck(ctx); err != nil {
		logger.Get().Warn("Commerce health check failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Commerce = "down"
	}
	if err := h.cache.Ping(ctx); err != nil {
		logger.Get().Warn("Redis ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Redis = "down"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}

// Login handles POST /login. There is no session state; the console keeps the
// token and sends it as a Bearer header on every request.
// @Summary Validate a console token
// @Tags System
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Token"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]string
// @Router /login [post]
func (h *SystemHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	role, ok := auth.Resolve(h.authCfg, req.Token)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid token",
		})
	}

	return c.Status(http.StatusOK).JSON(LoginResponse{
		Token: req.Token,
		Role:  role,
	})
}
