// Package internalapi provides HTTP handlers for the audit log.
// These APIs are meant for operators, not for the messaging platform.
package internalapi

import (
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/askbot/internal/service"
)

// Handler handles internal HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new internal API handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers internal routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/internal/events", h.ListEvents)
	e.GET("/internal/invocations", h.ListInvocations)
	e.GET("/internal/invocations/:request_id", h.GetInvocation)
}
