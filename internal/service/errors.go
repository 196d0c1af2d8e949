package service

import "errors"

// APIKeyErrorText tells the operator how to provide the completion API key.
const APIKeyErrorText = "OpenAI's API key is required for running this function! To fix this, follow these two steps:\n\n 1) Grab the API key string in https://platform.openai.com/account/api-keys \n 2) Place .env file for local development, or run `slack env add OPENAI_API_KEY {YOUR KEY HERE}` for deployed app."

var (
	// ErrMissingAPIKey is returned before any remote call when no completion
	// API key is configured.
	ErrMissingAPIKey = errors.New(APIKeyErrorText)

	// ErrInvalidInput is wrapped by validation failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBlockedByPolicy is wrapped when the policy denies a configuration.
	ErrBlockedByPolicy = errors.New("blocked by policy")
)
