package platform

import (
	"context"
	"net/url"
	"strconv"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

// JoinChannel makes the bot a member of channelID. Joining a channel the
// bot is already in succeeds.
func (c *Client) JoinChannel(ctx context.Context, channelID string) error {
	err := c.post(ctx, "conversations.join", map[string]string{"channel": channelID}, nil)
	if IsAPIError(err, ErrCodeAlreadyInChannel) {
		return nil
	}
	return err
}

type repliesResponse struct {
	envelope
	Messages []domain.ThreadMessage `json:"messages"`
	HasMore  bool                   `json:"has_more"`
}

// ThreadReplies returns the messages of the thread rooted at ts, oldest
// first, including the root message.
func (c *Client) ThreadReplies(ctx context.Context, channelID, ts string, includeMetadata bool, limit int) ([]domain.ThreadMessage, error) {
	query := url.Values{}
	query.Set("channel", channelID)
	query.Set("ts", ts)
	query.Set("include_all_metadata", strconv.FormatBool(includeMetadata))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp repliesResponse
	if err := c.get(ctx, "conversations.replies", query, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// PostMessageParams describes one chat.postMessage call.
type PostMessageParams struct {
	Channel  string                  `json:"channel"`
	Text     string                  `json:"text"`
	ThreadTS string                  `json:"thread_ts,omitempty"`
	Metadata *domain.MessageMetadata `json:"metadata,omitempty"`
}

type postMessageResponse struct {
	envelope
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// PostMessage posts a message and returns its timestamp.
func (c *Client) PostMessage(ctx context.Context, params PostMessageParams) (string, error) {
	var resp postMessageResponse
	if err := c.post(ctx, "chat.postMessage", params, &resp); err != nil {
		return "", err
	}
	return resp.TS, nil
}

// Identity is the result of auth.test.
type Identity struct {
	UserID string `json:"user_id"`
	BotID  string `json:"bot_id,omitempty"`
	TeamID string `json:"team_id,omitempty"`
}

type authTestResponse struct {
	envelope
	Identity
}

// AuthTest resolves the identity behind the bot token.
func (c *Client) AuthTest(ctx context.Context) (Identity, error) {
	var resp authTestResponse
	if err := c.post(ctx, "auth.test", struct{}{}, &resp); err != nil {
		return Identity{}, err
	}
	return resp.Identity, nil
}
