package llm

import (
	"os"

	"github.com/sirupsen/logrus"
)

const (
	// EnvAskbotMode is the environment variable name for mode selection.
	EnvAskbotMode = "ASKBOT_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewLLMClient creates an LLM client based on the ASKBOT_MODE environment variable.
// If ASKBOT_MODE=MOCK, returns a MockClient; otherwise returns a real Client.
func NewLLMClient(baseURL, apiKey string, logger logrus.FieldLogger) LLMClient {
	if os.Getenv(EnvAskbotMode) == ModeMock {
		if logger != nil {
			logger.Info("ASKBOT_MODE=MOCK detected, using mock LLM client")
		}
		return NewMockClient()
	}

	return NewClient(baseURL, apiKey)
}
