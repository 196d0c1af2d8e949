package conversation

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/askbot/internal/domain"
	"github.com/xiaot623/gogo/askbot/internal/tokens"
)

const botID = "UBOT"

// wordEncoder yields one token per whitespace-separated word.
type wordEncoder struct{}

func (wordEncoder) Tokenize(text string) []int {
	return make([]int, len(strings.Fields(text)))
}

func newTestBuilder() (*Builder, *tokens.Counter) {
	counter := tokens.NewCounter(wordEncoder{})
	return NewBuilder(botID, counter, nil), counter
}

func originating(text, question string) domain.ThreadMessage {
	return domain.ThreadMessage{
		User:     botID,
		Text:     text,
		Metadata: domain.QuestionMetadata(question),
	}
}

func TestBuildDiscussionScenario(t *testing.T) {
	b, _ := newTestBuilder()
	preamble := SystemPreamble(botID)

	messages := []domain.ThreadMessage{
		{User: "U1", Text: "hello", Metadata: domain.QuestionMetadata("What is 2+2?")},
		{User: botID, Text: "4"},
	}

	turns, discussion := b.Build(preamble, messages, 10000)
	require.True(t, discussion)
	assert.Equal(t, []domain.Turn{
		preamble,
		domain.UserTurn("What is 2+2?"),
		domain.UserTurn("hello"),
		domain.AssistantTurn("4"),
	}, turns)
}

func TestBuildWithoutOriginatingQuestionIsSkipped(t *testing.T) {
	b, _ := newTestBuilder()

	messages := []domain.ThreadMessage{
		{User: "U1", Text: "anyone around?"},
		{User: "U2", Text: "yes"},
		{User: "U1", Text: "metadata of another kind", Metadata: &domain.MessageMetadata{EventType: "other"}},
	}

	turns, discussion := b.Build(SystemPreamble(botID), messages, 10000)
	assert.False(t, discussion)
	assert.Empty(t, turns)
}

func TestBuildIgnoresEmptyQuestion(t *testing.T) {
	b, _ := newTestBuilder()

	messages := []domain.ThreadMessage{
		{User: botID, Text: "answer", Metadata: domain.QuestionMetadata("")},
	}
	turns, discussion := b.Build(SystemPreamble(botID), messages, 10000)
	assert.False(t, discussion)
	assert.Empty(t, turns)
}

func TestBuildEvictsOldestFirst(t *testing.T) {
	b, counter := newTestBuilder()
	preamble := domain.SystemTurn("sys")

	messages := []domain.ThreadMessage{originating("root", "question")}
	for i := 0; i < 10; i++ {
		messages = append(messages, domain.ThreadMessage{User: "U1", Text: fmt.Sprintf("message %d", i)})
	}

	// preamble (6) + newest (7) + priming (2) = 15, one more turn needs 7.
	turns, discussion := b.Build(preamble, messages, 22)
	require.True(t, discussion)
	require.Len(t, turns, 3)
	assert.Equal(t, preamble, turns[0])
	assert.Equal(t, domain.UserTurn("message 8"), turns[1])
	assert.Equal(t, domain.UserTurn("message 9"), turns[2])
	assert.LessOrEqual(t, counter.Count(turns), 22)
}

func TestBuildOverflowFloor(t *testing.T) {
	b, counter := newTestBuilder()
	preamble := domain.SystemTurn("sys")

	messages := []domain.ThreadMessage{
		originating("root", "question"),
		{User: "U1", Text: strings.Repeat("word ", 50)},
	}

	turns, discussion := b.Build(preamble, messages, 5)
	require.True(t, discussion)
	require.Len(t, turns, 2)
	assert.Equal(t, preamble, turns[0])
	assert.Equal(t, domain.UserTurn(strings.Repeat("word ", 50)), turns[1])
	assert.Greater(t, counter.Count(turns), 5)
}

func TestBuildFitsBudgetOrHitsFloor(t *testing.T) {
	b, counter := newTestBuilder()
	preamble := SystemPreamble(botID)

	var messages []domain.ThreadMessage
	messages = append(messages, originating("root", "what should we name the service"))
	for i := 0; i < 30; i++ {
		user := "U1"
		if i%2 == 1 {
			user = botID
		}
		messages = append(messages, domain.ThreadMessage{User: user, Text: strings.Repeat("x ", i+1)})
	}
	newest := domain.AssistantTurn(messages[len(messages)-1].Text)

	for budget := 0; budget <= 600; budget += 25 {
		turns, discussion := b.Build(preamble, messages, budget)
		require.True(t, discussion)
		require.GreaterOrEqual(t, len(turns), 2)
		assert.Equal(t, preamble, turns[0], "budget %d", budget)
		assert.Equal(t, newest, turns[len(turns)-1], "budget %d", budget)
		if counter.Count(turns) > budget {
			assert.Len(t, turns, 2, "budget %d", budget)
		}
	}
}

func TestFitDoesNotModifyInput(t *testing.T) {
	b, _ := newTestBuilder()
	input := []domain.Turn{
		domain.SystemTurn("sys"),
		domain.UserTurn("one two three"),
		domain.UserTurn("four five six"),
	}
	snapshot := append([]domain.Turn(nil), input...)

	out := b.Fit(input, 0)
	assert.Len(t, out, 2)
	assert.Equal(t, snapshot, input)
}

// countingEncoder is a wordEncoder that counts Tokenize calls.
type countingEncoder struct {
	calls atomic.Int64
}

func (e *countingEncoder) Tokenize(text string) []int {
	e.calls.Add(1)
	return wordEncoder{}.Tokenize(text)
}

// recountFit evicts one turn at a time and recounts the whole window.
func recountFit(counter Counter, turns []domain.Turn, budget int) []domain.Turn {
	turns = append([]domain.Turn(nil), turns...)
	for len(turns) > 2 && counter.Count(turns) > budget {
		turns = append(turns[:1], turns[2:]...)
	}
	return turns
}

func TestFitMatchesRecounting(t *testing.T) {
	b, counter := newTestBuilder()
	turns := []domain.Turn{SystemPreamble(botID)}
	for i := 0; i < 40; i++ {
		turns = append(turns, domain.UserTurn(strings.Repeat("w ", (i*7)%13+1)))
	}

	for budget := 0; budget <= 400; budget += 7 {
		assert.Equal(t, recountFit(counter, turns, budget), b.Fit(turns, budget), "budget %d", budget)
	}
}

func TestFitTokenizesEachTurnOnce(t *testing.T) {
	encoder := &countingEncoder{}
	b := NewBuilder(botID, tokens.NewCounter(encoder), nil)

	turns := []domain.Turn{domain.SystemTurn("sys")}
	for i := 0; i < 500; i++ {
		turns = append(turns, domain.UserTurn("one two three four"))
	}

	out := b.Fit(turns, 100)
	require.Len(t, out, 11)
	// One call for the role and one for the content of every turn.
	assert.Equal(t, int64(2*len(turns)), encoder.calls.Load())
}

func TestBuildFullThreadWithTiktoken(t *testing.T) {
	encoder, err := tokens.NewTiktokenEncoder("gpt-3.5-turbo")
	require.NoError(t, err)
	counter := tokens.NewCounter(encoder)
	b := NewBuilder(botID, counter, nil)

	paragraph := strings.Repeat("The quick brown fox jumps over the lazy dog near the river bank. ", 9)
	messages := []domain.ThreadMessage{originating("root", "how do foxes cross rivers?")}
	for i := 1; i < 1000; i++ {
		messages = append(messages, domain.ThreadMessage{User: "U1", Text: fmt.Sprintf("%d %s", i, paragraph)})
	}

	budget := PromptBudget("gpt-3.5-turbo")
	start := time.Now()
	turns, discussion := b.Build(SystemPreamble(botID), messages, budget)
	elapsed := time.Since(start)

	require.True(t, discussion)
	assert.LessOrEqual(t, counter.Count(turns), budget)
	assert.Equal(t, domain.UserTurn(messages[len(messages)-1].Text), turns[len(turns)-1])
	assert.Less(t, elapsed, 10*time.Second)
}

func TestPromptBudget(t *testing.T) {
	assert.Equal(t, 4096-ReplyTokens, PromptBudget("gpt-3.5-turbo"))
	assert.Equal(t, 8192-ReplyTokens, PromptBudget("gpt-4"))
	assert.Equal(t, 8192-ReplyTokens, PromptBudget("gpt-4-0613"))
	assert.Equal(t, 4096-ReplyTokens, PromptBudget("something-else"))
}

func TestStripMentions(t *testing.T) {
	assert.Equal(t, "what is go?", StripMentions("<@UBOT> what is go?"))
	assert.Equal(t, "ask and", StripMentions("<@UBOT>ask <@U2> and"))
	assert.Equal(t, "", StripMentions("<@UBOT>   "))
}

func TestSystemPreambleMentionsBot(t *testing.T) {
	preamble := SystemPreamble(botID)
	assert.Equal(t, domain.RoleSystem, preamble.Role)
	assert.Contains(t, preamble.Content, "<@UBOT>")
}
