package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/gogo/askbot/internal/domain"
	"github.com/xiaot623/gogo/askbot/internal/trigger"
	"github.com/xiaot623/gogo/askbot/policy"
)

// ConfiguredMessage is shown after a successful configuration.
const ConfiguredMessage = "*You're all set!*\n\nThis ChatGPT is now available for the channels :white_check_mark:"

// Configure points both triggers at channelIDs and joins those channels.
// The first failure aborts and is returned.
func (s *Service) Configure(ctx context.Context, req *domain.ConfigureRequest) (*domain.ConfigureResponse, error) {
	if req.QuickReplyWorkflowID == "" || req.DiscussWorkflowID == "" {
		return nil, fmt.Errorf("%w: quick_reply_workflow_id and discuss_workflow_id are required", ErrInvalidInput)
	}

	inv := s.startInvocation(ctx, domain.InvocationConfigure, "", "")
	inv.record(ctx, domain.EventTypeConfigureStarted, req)

	resp, err := s.configure(ctx, inv, req)
	if err != nil {
		inv.logger.WithError(err).Error("configuration failed")
		inv.finish(ctx, domain.InvocationStatusFailed, "", err)
		return nil, err
	}

	inv.record(ctx, domain.EventTypeConfigureDone, resp)
	inv.finish(ctx, domain.InvocationStatusDone, "configured", nil)
	return resp, nil
}

func (s *Service) configure(ctx context.Context, inv *invocation, req *domain.ConfigureRequest) (*domain.ConfigureResponse, error) {
	if allowed, reason := s.checkPolicy(ctx, inv, policy.Input{
		Action:     policy.ActionConfigure,
		ChannelIDs: req.ChannelIDs,
	}); !allowed {
		if reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrBlockedByPolicy, reason)
		}
		return nil, ErrBlockedByPolicy
	}

	specs := []domain.SubscriptionSpec{
		trigger.AppMentionedSpec(req.QuickReplyWorkflowID, req.ChannelIDs),
		trigger.MessagePostedSpec(req.DiscussWorkflowID, req.ChannelIDs),
	}
	for _, spec := range specs {
		result, err := s.reconciler.Reconcile(ctx, spec)
		if err != nil {
			return nil, err
		}

		eventType := domain.EventTypeTriggerUpdated
		if result.Action == trigger.ActionCreate {
			eventType = domain.EventTypeTriggerCreated
		}
		inv.record(ctx, eventType, domain.TriggerReconciledPayload{
			TriggerID:  result.TriggerID,
			EventType:  spec.EventType,
			WorkflowID: spec.WorkflowID,
			ChannelIDs: spec.ChannelIDs,
		})
	}

	if err := s.ensurer.EnsureMember(ctx, req.ChannelIDs); err != nil {
		inv.record(ctx, domain.EventTypeChannelJoinError, domain.ErrorPayload{Error: err.Error()})
		return nil, err
	}

	return &domain.ConfigureResponse{Message: ConfiguredMessage}, nil
}

// CurrentChannels returns the channels the quick reply trigger currently
// listens to, or an empty list when it does not exist yet.
func (s *Service) CurrentChannels(ctx context.Context, quickReplyWorkflowID string) (*domain.ChannelsResponse, error) {
	if quickReplyWorkflowID == "" {
		return nil, fmt.Errorf("%w: quick_reply_workflow_id is required", ErrInvalidInput)
	}

	record, err := s.reconciler.Find(ctx, domain.TriggerEventAppMentioned, quickReplyWorkflowID)
	if err != nil {
		return nil, err
	}

	channelIDs := []string{}
	if record != nil && record.ChannelIDs != nil {
		channelIDs = record.ChannelIDs
	}
	s.logger.WithField("channels", channelIDs).Debug("trigger to update")
	return &domain.ChannelsResponse{ChannelIDs: channelIDs}, nil
}
