package llm

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"
)

// mockEchoRunes caps how much of the question a mock answer repeats.
const mockEchoRunes = 100

// MockClient answers without calling the completion API. It repeats the
// newest user turn so replies can be traced back to their question.
type MockClient struct{}

// NewMockClient creates a MockClient.
func NewMockClient() *MockClient {
	return &MockClient{}
}

var _ LLMClient = (*MockClient)(nil)

// CreateChatCompletion answers req with a single choice.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	answer := "[MOCK] No question was asked."
	if question, ok := lastUserContent(req.Messages); ok {
		answer = fmt.Sprintf("[MOCK] You asked %q.", truncateRunes(question, mockEchoRunes))
	}

	now := time.Now()
	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-%d", now.UnixNano()),
		Object:  "chat.completion",
		Created: now.Unix(),
		Model:   req.Model,
		Choices: []Choice{{
			Message:      &ChatMessage{Role: "assistant", Content: answer},
			FinishReason: "stop",
		}},
	}, nil
}

func lastUserContent(messages []ChatMessage) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content, messages[i].Content != ""
		}
	}
	return "", false
}

// truncateRunes cuts s to at most n runes, marking the cut with an ellipsis.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
