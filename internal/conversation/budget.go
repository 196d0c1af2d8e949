package conversation

import "strings"

const (
	// ReplyTokens is the completion allowance requested as max_tokens. It is
	// reserved out of the model's context before the prompt is truncated.
	ReplyTokens = 2000

	smallContextTokens = 4096
	largeContextTokens = 8192
)

// ContextTokens returns the context size of model. The gpt-4 family gets the
// larger window; everything else is treated as gpt-3.5-turbo.
func ContextTokens(model string) int {
	if strings.HasPrefix(model, "gpt-4") {
		return largeContextTokens
	}
	return smallContextTokens
}

// PromptBudget returns the token budget left for the prompt once the reply
// allowance is reserved.
func PromptBudget(model string) int {
	return ContextTokens(model) - ReplyTokens
}
