// Package conversation turns thread history into the context window sent to
// the completion API.
package conversation

import (
	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

// Counter counts the tokens of a turn list. Count must equal Count(nil)
// plus the TurnTokens of every turn.
type Counter interface {
	Count(turns []domain.Turn) int
	TurnTokens(turn domain.Turn) int
}

// Builder assembles context windows for one bot identity.
type Builder struct {
	botUserID string
	counter   Counter
	logger    logrus.FieldLogger
}

// NewBuilder creates a builder. Messages authored by botUserID become
// assistant turns.
func NewBuilder(botUserID string, counter Counter, logger logrus.FieldLogger) *Builder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Builder{
		botUserID: botUserID,
		counter:   counter,
		logger:    logger,
	}
}

// Build replays messages after preamble and truncates the result to budget.
//
// discussion reports whether some message originated the thread with a
// question for the bot. When it is false the returned window is empty and
// the caller must not call the completion API.
func (b *Builder) Build(preamble domain.Turn, messages []domain.ThreadMessage, budget int) (turns []domain.Turn, discussion bool) {
	turns = []domain.Turn{preamble}
	for _, message := range messages {
		if question, ok := message.OriginatingQuestion(); ok {
			turns = append(turns, domain.UserTurn(question))
			discussion = true
		}
		if message.User != "" && message.User == b.botUserID {
			turns = append(turns, domain.AssistantTurn(message.Text))
		} else {
			turns = append(turns, domain.UserTurn(message.Text))
		}
	}
	if !discussion {
		return nil, false
	}
	return b.Fit(turns, budget), true
}

// Fit evicts turns from the front, right after the preamble at index 0,
// until the window fits budget. The preamble and the newest turn are never
// evicted; if those two alone exceed budget they are returned anyway.
//
// Every turn is tokenized once and the total is kept as turns are evicted.
func (b *Builder) Fit(turns []domain.Turn, budget int) []domain.Turn {
	if len(turns) == 0 {
		return []domain.Turn{}
	}

	sizes := make([]int, len(turns))
	total := b.counter.Count(nil)
	for i, turn := range turns {
		sizes[i] = b.counter.TurnTokens(turn)
		total += sizes[i]
	}

	// first is the oldest turn kept after the preamble.
	first := 1
	for len(turns)-first > 1 && total > budget {
		total -= sizes[first]
		first++
	}

	kept := make([]domain.Turn, 0, 1+len(turns)-first)
	kept = append(kept, turns[0])
	kept = append(kept, turns[first:]...)

	if evicted := first - 1; evicted > 0 {
		b.logger.WithFields(logrus.Fields{
			"evicted": evicted,
			"kept":    len(kept),
			"budget":  budget,
		}).Debug("context window truncated")
	}
	if total > budget {
		b.logger.WithFields(logrus.Fields{
			"tokens": total,
			"budget": budget,
		}).Debug("context window exceeds budget after maximum eviction")
	}
	return kept
}
