// Package platform is a thin client for the messaging platform's Web API.
// Every method answers with a JSON envelope carrying ok, error and warning;
// an ok=false envelope is returned as an *APIError.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the production Web API endpoint.
const DefaultBaseURL = "https://slack.com/api"

// Client calls the Web API with the bot token, and the app-level token for
// socket mode.
type Client struct {
	baseURL    string
	botToken   string
	appToken   string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// NewClient creates a new platform client.
func NewClient(baseURL, botToken, appToken string, logger logrus.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		botToken: botToken,
		appToken: appToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// HasAppToken reports whether socket mode can be used.
func (c *Client) HasAppToken() bool {
	return c.appToken != ""
}

// envelope is the part shared by every Web API response.
type envelope struct {
	OK               bool             `json:"ok"`
	Error            string           `json:"error,omitempty"`
	Warning          string           `json:"warning,omitempty"`
	ResponseMetadata responseMetadata `json:"response_metadata,omitempty"`
}

type responseMetadata struct {
	NextCursor string `json:"next_cursor,omitempty"`
}

// post sends a JSON body to method with the bot token and decodes the
// response into out.
func (c *Client) post(ctx context.Context, method string, body, out interface{}) error {
	return c.doRequest(ctx, http.MethodPost, method, c.botToken, body, nil, out)
}

// get sends query parameters to method with the bot token.
func (c *Client) get(ctx context.Context, method string, query url.Values, out interface{}) error {
	return c.doRequest(ctx, http.MethodGet, method, c.botToken, nil, query, out)
}

// doRequest performs one Web API call. out must embed envelope-compatible
// fields; the envelope is always checked before out is returned.
func (c *Client) doRequest(ctx context.Context, httpMethod, method, token string, body interface{}, query url.Values, out interface{}) error {
	requestURL := c.baseURL + "/" + method
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("platform: failed to encode %s request: %w", method, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("platform: failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"query":  query.Encode(),
		"body":   string(encoded),
	}).Debug("platform request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("platform: request to %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("platform: failed to read %s response: %w", method, err)
	}

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"status": resp.StatusCode,
		"body":   string(respBody),
	}).Debug("platform response")

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("platform: unexpected %d response from %s: %s", resp.StatusCode, method, string(respBody))
	}
	if !env.OK {
		code := env.Error
		if code == "" {
			code = fmt.Sprintf("http_%d", resp.StatusCode)
		}
		return &APIError{Method: method, Code: code, Warning: env.Warning, StatusCode: resp.StatusCode}
	}
	if env.Warning != "" {
		c.logger.WithFields(logrus.Fields{"method": method, "warning": env.Warning}).Warn("platform warning")
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("platform: failed to decode %s response: %w", method, err)
		}
	}
	return nil
}
