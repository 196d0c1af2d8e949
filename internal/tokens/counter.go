// Package tokens estimates how many model tokens a list of conversation
// turns consumes.
package tokens

import "github.com/xiaot623/gogo/askbot/internal/domain"

const (
	// perMessageTokens covers <im_start>{role/name}\n{content}<im_end>\n.
	perMessageTokens = 4
	// replyPrimingTokens covers <im_start>assistant, which primes every reply.
	replyPrimingTokens = 2
)

// Encoder splits text into the subword tokens of a model vocabulary.
type Encoder interface {
	Tokenize(text string) []int
}

// Counter counts tokens following the published chat-completion algorithm.
type Counter struct {
	encoder Encoder
}

// NewCounter creates a counter backed by encoder.
func NewCounter(encoder Encoder) *Counter {
	return &Counter{encoder: encoder}
}

// Count returns the estimated prompt size of turns, including the priming
// of the upcoming reply.
func (c *Counter) Count(turns []domain.Turn) int {
	total := 0
	for _, turn := range turns {
		total += c.TurnTokens(turn)
	}
	return total + replyPrimingTokens
}

// TurnTokens returns what a single turn adds to Count.
func (c *Counter) TurnTokens(turn domain.Turn) int {
	n := perMessageTokens
	n += len(c.encoder.Tokenize(string(turn.Role)))
	n += len(c.encoder.Tokenize(turn.Content))
	if turn.Name != "" {
		// The name replaces the role in the framing.
		n += len(c.encoder.Tokenize(turn.Name))
		n--
	}
	return n
}
