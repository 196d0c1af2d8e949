package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xiaot623/gogo/askbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/askbot/internal/adapter/platform"
	"github.com/xiaot623/gogo/askbot/internal/conversation"
	"github.com/xiaot623/gogo/askbot/internal/domain"
	"github.com/xiaot623/gogo/askbot/policy"
)

// threadFetchLimit caps the replies fetched for one discussion.
const threadFetchLimit = 1000

// QuickReply answers a mention and posts the answer into the channel with
// the metadata that makes its thread a discussion.
func (s *Service) QuickReply(ctx context.Context, req *domain.QuickReplyRequest) (*domain.FunctionResponse, error) {
	if s.config.OpenAIAPIKey == "" {
		s.logger.Error(APIKeyErrorText)
		return nil, ErrMissingAPIKey
	}
	if req.ChannelID == "" || req.UserID == "" {
		return nil, fmt.Errorf("%w: channel_id and user_id are required", ErrInvalidInput)
	}

	inv := s.startInvocation(ctx, domain.InvocationQuickReply, req.ChannelID, req.UserID)

	if allowed, reason := s.checkPolicy(ctx, inv, policy.Input{
		Action:    policy.ActionQuickReply,
		ChannelID: req.ChannelID,
		UserID:    req.UserID,
	}); !allowed {
		return s.skip(ctx, inv, blockedReason(reason)), nil
	}

	identity, err := s.platform.AuthTest(ctx)
	if err != nil {
		err = fmt.Errorf("failed to resolve the bot user: %w", err)
		inv.finish(ctx, domain.InvocationStatusFailed, "", err)
		return nil, err
	}

	builder := conversation.NewBuilder(identity.UserID, s.counter, inv.logger)
	turns := builder.Fit([]domain.Turn{
		conversation.SystemPreamble(identity.UserID),
		domain.UserTurn(conversation.StripMentions(req.Question)),
	}, conversation.PromptBudget(s.config.OpenAIModel))

	outcome := s.complete(ctx, inv, turns, "")

	_, err = s.platform.PostMessage(ctx, platform.PostMessageParams{
		Channel:  req.ChannelID,
		Text:     fmt.Sprintf("<@%s> %s", req.UserID, outcome.Text),
		Metadata: domain.QuestionMetadata(req.Question),
	})
	if err != nil {
		err = fmt.Errorf("Failed to post ChatGPT's reply due to %s", platform.ErrorCode(err))
		inv.finish(ctx, domain.InvocationStatusFailed, outcome.Kind.String(), err)
		return nil, err
	}

	inv.record(ctx, domain.EventTypeReplyPosted, nil)
	inv.finish(ctx, domain.InvocationStatusDone, outcome.Kind.String(), nil)
	return &domain.FunctionResponse{Outputs: domain.FunctionOutputs{Answer: outcome.Text}}, nil
}

// Discuss continues a discussion thread. Messages outside a thread, the
// bot's own messages and threads not rooted at a quick reply are skipped.
func (s *Service) Discuss(ctx context.Context, req *domain.DiscussRequest) (*domain.FunctionResponse, error) {
	if req.ThreadTS == "" {
		return &domain.FunctionResponse{Skipped: true}, nil
	}
	if s.config.OpenAIAPIKey == "" {
		s.logger.Error(APIKeyErrorText)
		return nil, ErrMissingAPIKey
	}
	if req.ChannelID == "" {
		return nil, fmt.Errorf("%w: channel_id is required", ErrInvalidInput)
	}

	inv := s.startInvocation(ctx, domain.InvocationDiscuss, req.ChannelID, req.UserID)

	identity, err := s.platform.AuthTest(ctx)
	if err != nil {
		err = fmt.Errorf("failed to resolve the bot user: %w", err)
		inv.finish(ctx, domain.InvocationStatusFailed, "", err)
		return nil, err
	}
	if req.UserID == identity.UserID {
		return s.skip(ctx, inv, "posted by the bot"), nil
	}

	if allowed, reason := s.checkPolicy(ctx, inv, policy.Input{
		Action:    policy.ActionDiscuss,
		ChannelID: req.ChannelID,
		UserID:    req.UserID,
	}); !allowed {
		return s.skip(ctx, inv, blockedReason(reason)), nil
	}

	messages, err := s.platform.ThreadReplies(ctx, req.ChannelID, req.ThreadTS, true, threadFetchLimit)
	if err != nil {
		err = fmt.Errorf("Failed to fetch replies in a thread due to %s", platform.ErrorCode(err))
		inv.finish(ctx, domain.InvocationStatusFailed, "", err)
		return nil, err
	}

	builder := conversation.NewBuilder(identity.UserID, s.counter, inv.logger)
	turns, discussion := builder.Build(conversation.SystemPreamble(identity.UserID), messages, conversation.PromptBudget(s.config.OpenAIModel))
	if !discussion {
		return s.skip(ctx, inv, "thread is not a discussion"), nil
	}

	outcome := s.complete(ctx, inv, turns, req.ThreadTS)

	_, err = s.platform.PostMessage(ctx, platform.PostMessageParams{
		Channel:  req.ChannelID,
		ThreadTS: req.ThreadTS,
		Text:     outcome.Text,
	})
	if err != nil {
		err = fmt.Errorf("Failed to post ChatGPT's reply due to %s", platform.ErrorCode(err))
		inv.finish(ctx, domain.InvocationStatusFailed, outcome.Kind.String(), err)
		return nil, err
	}

	inv.record(ctx, domain.EventTypeReplyPosted, nil)
	inv.finish(ctx, domain.InvocationStatusDone, outcome.Kind.String(), nil)
	return &domain.FunctionResponse{Outputs: domain.FunctionOutputs{Answer: outcome.Text}}, nil
}

func (s *Service) complete(ctx context.Context, inv *invocation, turns []domain.Turn, threadTS string) llm.Outcome {
	model := s.config.OpenAIModel
	inv.record(ctx, domain.EventTypeCompletionStarted, domain.CompletionStartedPayload{
		Model:        model,
		Turns:        len(turns),
		PromptTokens: s.counter.Count(turns),
		ThreadTS:     threadTS,
	})

	start := time.Now()
	outcome := llm.Complete(ctx, s.llmClient, &llm.ChatCompletionRequest{
		Model:     model,
		Messages:  llm.MessagesFromTurns(turns),
		MaxTokens: conversation.ReplyTokens,
	}, s.config.OpenAITimeout)

	inv.record(ctx, domain.EventTypeCompletionDone, domain.CompletionDonePayload{
		Model:     model,
		Outcome:   outcome.Kind.String(),
		LatencyMs: time.Since(start).Milliseconds(),
	})
	if !outcome.Answered() {
		inv.logger.WithError(outcome.Err).WithField("outcome", outcome.Kind).Warn("completion did not answer")
	}
	return outcome
}

func (s *Service) skip(ctx context.Context, inv *invocation, reason string) *domain.FunctionResponse {
	inv.record(ctx, domain.EventTypeDiscussionSkipped, domain.SkipPayload{Reason: reason})
	inv.finish(ctx, domain.InvocationStatusSkipped, reason, nil)
	inv.logger.WithField("reason", reason).Debug("skipped")
	return &domain.FunctionResponse{Skipped: true}
}

func blockedReason(reason string) string {
	if reason == "" {
		return "blocked by policy"
	}
	return "blocked by policy: " + reason
}
