package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xiaot623/gogo/askbot/internal/adapter/platform"
	"github.com/xiaot623/gogo/askbot/internal/conversation"
	"github.com/xiaot623/gogo/askbot/internal/domain"
	"github.com/xiaot623/gogo/askbot/internal/trigger"
	"github.com/xiaot623/gogo/askbot/policy"
)

// DefaultAnswerWorkflowID is the callback id of the answer workflow.
const DefaultAnswerWorkflowID = "openai_answer"

var questionBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// Ask posts a question with the metadata that fires the answer workflow,
// making sure the channel has the trigger for it first.
func (s *Service) Ask(ctx context.Context, req *domain.AskRequest) (*domain.AskResponse, error) {
	if s.config.OpenAIAPIKey == "" {
		s.logger.Error(APIKeyErrorText)
		return nil, ErrMissingAPIKey
	}
	question := strings.TrimSpace(questionBreaks.Replace(req.Question))
	if req.ChannelID == "" || req.UserID == "" || question == "" {
		return nil, fmt.Errorf("%w: channel_id, user_id and question are required", ErrInvalidInput)
	}
	workflowID := req.AnswerWorkflowID
	if workflowID == "" {
		workflowID = DefaultAnswerWorkflowID
	}

	inv := s.startInvocation(ctx, domain.InvocationAsk, req.ChannelID, req.UserID)

	if allowed, reason := s.checkPolicy(ctx, inv, policy.Input{
		Action:    policy.ActionAsk,
		ChannelID: req.ChannelID,
		UserID:    req.UserID,
	}); !allowed {
		err := ErrBlockedByPolicy
		if reason != "" {
			err = fmt.Errorf("%w: %s", ErrBlockedByPolicy, reason)
		}
		inv.finish(ctx, domain.InvocationStatusFailed, "", err)
		return nil, err
	}

	result, err := s.reconciler.EnsureChannel(ctx, trigger.QuestionSpec(workflowID, req.ChannelID))
	if err != nil {
		inv.finish(ctx, domain.InvocationStatusFailed, "", err)
		return nil, err
	}
	if result.Action == trigger.ActionCreate {
		spec := trigger.QuestionSpec(workflowID, req.ChannelID)
		inv.record(ctx, domain.EventTypeTriggerCreated, domain.TriggerReconciledPayload{
			TriggerID:  result.TriggerID,
			EventType:  spec.EventType,
			WorkflowID: spec.WorkflowID,
			ChannelIDs: spec.ChannelIDs,
		})
	}

	ts, err := s.platform.PostMessage(ctx, platform.PostMessageParams{
		Channel: req.ChannelID,
		Text: fmt.Sprintf(":wave: A new question from <@%s>! OpenAI's answer will be posted in this thread shortly :raised_hands:\n>%s",
			req.UserID, question),
		Metadata: domain.AskMetadata(req.ChannelID, req.UserID, question),
	})
	if err != nil {
		err = fmt.Errorf("Failed to post a message with metadata due to %s", platform.ErrorCode(err))
		inv.finish(ctx, domain.InvocationStatusFailed, "", err)
		return nil, err
	}

	inv.record(ctx, domain.EventTypeQuestionPosted, domain.QuestionPostedPayload{
		MessageTS: ts,
		TriggerID: result.TriggerID,
		Created:   result.Action == trigger.ActionCreate,
	})
	inv.finish(ctx, domain.InvocationStatusDone, "posted", nil)
	return &domain.AskResponse{
		Message: fmt.Sprintf(":incoming_envelope: Thanks for submitting the question! "+
			"Once this app receives an answer from the OpenAI platform, it will be posted in <#%s>", req.ChannelID),
		ChannelID: req.ChannelID,
		MessageTS: ts,
	}, nil
}

// Answer answers a question posted by Ask. With a channel and thread the
// answer is also posted as a reply to the question.
func (s *Service) Answer(ctx context.Context, req *domain.AnswerRequest) (*domain.FunctionResponse, error) {
	if s.config.OpenAIAPIKey == "" {
		s.logger.Error(APIKeyErrorText)
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}

	inv := s.startInvocation(ctx, domain.InvocationAnswer, req.ChannelID, req.UserID)

	if allowed, reason := s.checkPolicy(ctx, inv, policy.Input{
		Action:    policy.ActionAnswer,
		ChannelID: req.ChannelID,
		UserID:    req.UserID,
	}); !allowed {
		return s.skip(ctx, inv, blockedReason(reason)), nil
	}

	builder := conversation.NewBuilder("", s.counter, inv.logger)
	turns := builder.Fit([]domain.Turn{domain.UserTurn(req.Question)}, conversation.PromptBudget(s.config.OpenAIModel))
	outcome := s.complete(ctx, inv, turns, req.ThreadTS)

	if req.ChannelID != "" && req.ThreadTS != "" {
		_, err := s.platform.PostMessage(ctx, platform.PostMessageParams{
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
	}

	inv.finish(ctx, domain.InvocationStatusDone, outcome.Kind.String(), nil)
	return &domain.FunctionResponse{Outputs: domain.FunctionOutputs{Answer: outcome.Text}}, nil
}
