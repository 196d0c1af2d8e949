package platform

import (
	"context"
	"errors"
	"net/http"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

// ErrNoAppToken is returned by OpenConnection when no app-level token is set.
var ErrNoAppToken = errors.New("platform: app-level token is not configured")

type openConnectionResponse struct {
	envelope
	URL string `json:"url"`
}

// OpenConnection asks for a socket-mode websocket URL.
func (c *Client) OpenConnection(ctx context.Context) (string, error) {
	if c.appToken == "" {
		return "", ErrNoAppToken
	}
	var resp openConnectionResponse
	if err := c.doRequest(ctx, http.MethodPost, "apps.connections.open", c.appToken, struct{}{}, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// CompleteFunction reports a successful function execution.
func (c *Client) CompleteFunction(ctx context.Context, executionID string, outputs domain.FunctionOutputs) error {
	body := struct {
		FunctionExecutionID string                 `json:"function_execution_id"`
		Outputs             domain.FunctionOutputs `json:"outputs"`
	}{executionID, outputs}
	return c.post(ctx, "functions.completeSuccess", body, nil)
}

// FailFunction reports a failed function execution with a user-facing message.
func (c *Client) FailFunction(ctx context.Context, executionID, message string) error {
	body := struct {
		FunctionExecutionID string `json:"function_execution_id"`
		Error               string `json:"error"`
	}{executionID, message}
	return c.post(ctx, "functions.completeError", body, nil)
}
