// Package v1 provides the function endpoints of askbot.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/askbot/internal/service"
	"github.com/xiaot623/gogo/askbot/internal/trigger"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers external routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/functions/configure", h.Configure)
	e.GET("/v1/functions/configure", h.CurrentChannels)
	e.POST("/v1/functions/quick_reply", h.QuickReply)
	e.POST("/v1/functions/discuss", h.Discuss)
	e.POST("/v1/functions/ask", h.Ask)
	e.POST("/v1/functions/answer", h.Answer)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrBlockedByPolicy):
		return http.StatusForbidden
	case errors.Is(err, trigger.ErrDuplicateTriggers):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	return c.JSON(errorStatus(err), map[string]string{"error": err.Error()})
}
