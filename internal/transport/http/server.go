// Package http provides the HTTP server implementation for askbot.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/gogo/askbot/internal/service"
	"github.com/xiaot623/gogo/askbot/internal/transport/http/internalapi"
	v1 "github.com/xiaot623/gogo/askbot/internal/transport/http/v1"
)

// NewExternalServer creates and configures the external-facing HTTP server.
// This server runs the bot's functions for the messaging platform.
func NewExternalServer(svc *service.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	v1.NewHandler(svc).RegisterRoutes(e)

	return e
}

// NewInternalServer creates and configures the internal HTTP server.
// This server exposes the audit log to operators.
func NewInternalServer(svc *service.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	internalapi.NewHandler(svc).RegisterRoutes(e)

	return e
}
