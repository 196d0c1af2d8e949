package llm

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// OutcomeKind tags the result of one completion call.
type OutcomeKind int

const (
	// Answered means the API returned at least one choice.
	Answered OutcomeKind = iota
	// Empty means the API succeeded with zero choices.
	Empty
	// HTTPError means the API answered with a non-success status.
	HTTPError
	// TransportError means the request never produced a response.
	TransportError
	// TimedOut means no response arrived before the deadline.
	TimedOut
)

func (k OutcomeKind) String() string {
	switch k {
	case Answered:
		return "answered"
	case Empty:
		return "empty"
	case HTTPError:
		return "http_error"
	case TransportError:
		return "transport_error"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// EmptyAnswerText is shown when the API returned no choices.
const EmptyAnswerText = ":warning: ChatGPT didn't respond to your request. Please try it again later."

// Outcome is the textual result of a completion call. Text is always
// suitable for posting back to the user.
type Outcome struct {
	Kind OutcomeKind
	Text string
	// Err is the underlying failure for HTTPError and TransportError.
	Err error
}

// Answered reports whether Text holds the model's answer.
func (o Outcome) Answered() bool {
	return o.Kind == Answered
}

// TimeoutText formats the user-facing timeout message.
func TimeoutText(timeout time.Duration) string {
	return fmt.Sprintf(":warning: ChatGPT didn't respond within %s seconds.",
		strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64))
}

// FailureText formats the user-facing message for a failed request.
func FailureText(reason string) string {
	return fmt.Sprintf(":warning: Something is wrong with your ChatGPT request (error: %s)", reason)
}

type completionResult struct {
	resp *ChatCompletionResponse
	err  error
}

// Complete performs one chat completion bounded by timeout. The call runs
// in its own goroutine so Complete returns on time even when the client
// ignores context cancellation. It never retries.
func Complete(ctx context.Context, client LLMClient, req *ChatCompletionRequest, timeout time.Duration) Outcome {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan completionResult, 1)
	go func() {
		resp, err := client.CreateChatCompletion(callCtx, req)
		done <- completionResult{resp: resp, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		return Outcome{Kind: TimedOut, Text: TimeoutText(timeout)}
	case <-ctx.Done():
		return Outcome{Kind: TransportError, Text: FailureText(ctx.Err().Error()), Err: ctx.Err()}
	case result := <-done:
		return outcomeOf(result)
	}
}

func outcomeOf(result completionResult) Outcome {
	if result.err != nil {
		if statusErr, ok := AsStatusError(result.err); ok {
			return Outcome{Kind: HTTPError, Text: FailureText(statusErr.Status), Err: result.err}
		}
		return Outcome{Kind: TransportError, Text: FailureText(result.err.Error()), Err: result.err}
	}
	if result.resp == nil || len(result.resp.Choices) == 0 {
		return Outcome{Kind: Empty, Text: EmptyAnswerText}
	}
	choice := result.resp.Choices[0]
	if choice.Message == nil {
		return Outcome{Kind: Empty, Text: EmptyAnswerText}
	}
	return Outcome{Kind: Answered, Text: choice.Message.Content}
}
