package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

// Configure reconciles triggers and joins the selected channels.
// POST /v1/functions/configure
func (h *Handler) Configure(c echo.Context) error {
	var req domain.ConfigureRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.service.Configure(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// CurrentChannels returns the channels the bot is enabled for.
// GET /v1/functions/configure?quick_reply_workflow_id=...
func (h *Handler) CurrentChannels(c echo.Context) error {
	resp, err := h.service.CurrentChannels(c.Request().Context(), c.QueryParam("quick_reply_workflow_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// QuickReply answers a mention.
// POST /v1/functions/quick_reply
func (h *Handler) QuickReply(c echo.Context) error {
	var req domain.QuickReplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.service.QuickReply(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Discuss continues a discussion thread.
// POST /v1/functions/discuss
func (h *Handler) Discuss(c echo.Context) error {
	var req domain.DiscussRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.service.Discuss(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Ask posts a question that the answer workflow picks up.
// POST /v1/functions/ask
func (h *Handler) Ask(c echo.Context) error {
	var req domain.AskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.service.Ask(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Answer answers a posted question.
// POST /v1/functions/answer
func (h *Handler) Answer(c echo.Context) error {
	var req domain.AnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.service.Answer(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}
