package internalapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/askbot/internal/domain"
	store "github.com/xiaot623/gogo/askbot/internal/repository"
)

// ListEvents retrieves audit events.
// GET /internal/events?request_id=&channel_id=&types=a,b&after_ts=&limit=
func (h *Handler) ListEvents(c echo.Context) error {
	filter := store.EventFilter{
		RequestID: c.QueryParam("request_id"),
		ChannelID: c.QueryParam("channel_id"),
		Limit:     100,
	}
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			filter.Limit = val
		}
	}
	if t := c.QueryParam("after_ts"); t != "" {
		if val, err := strconv.ParseInt(t, 10, 64); err == nil {
			filter.AfterTs = val
		}
	}
	if types := c.QueryParam("types"); types != "" {
		for _, t := range strings.Split(types, ",") {
			filter.Types = append(filter.Types, domain.EventType(strings.TrimSpace(t)))
		}
	}

	events, err := h.service.ListEvents(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}

// ListInvocations lists recent invocations.
// GET /internal/invocations?kind=&limit=
func (h *Handler) ListInvocations(c echo.Context) error {
	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	invocations, err := h.service.ListInvocations(c.Request().Context(), domain.InvocationKind(c.QueryParam("kind")), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"invocations": invocations,
	})
}

// GetInvocation retrieves one invocation.
// GET /internal/invocations/:request_id
func (h *Handler) GetInvocation(c echo.Context) error {
	requestID := c.Param("request_id")

	invocation, err := h.service.GetInvocation(c.Request().Context(), requestID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if invocation == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "invocation not found"})
	}

	return c.JSON(http.StatusOK, invocation)
}
