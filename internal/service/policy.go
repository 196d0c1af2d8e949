package service

import (
	"context"

	"github.com/xiaot623/gogo/askbot/internal/domain"
	"github.com/xiaot623/gogo/askbot/policy"
)

// checkPolicy evaluates the policy for one action. Evaluation errors fail
// open: the bot keeps answering and the error is logged.
func (s *Service) checkPolicy(ctx context.Context, inv *invocation, input policy.Input) (bool, string) {
	if s.policyEngine == nil {
		return true, ""
	}
	input.BlockedChannels = s.config.BlockedChannels
	if input.BlockedChannels == nil {
		input.BlockedChannels = []string{}
	}

	decision, reason, err := s.policyEngine.Evaluate(ctx, input)
	if err != nil {
		inv.logger.WithError(err).Warn("policy evaluation failed")
		return true, ""
	}

	inv.record(ctx, domain.EventTypePolicyDecision, domain.PolicyDecisionPayload{
		Action:   input.Action,
		Decision: decision,
		UserID:   input.UserID,
	})
	return decision != policy.DecisionBlock, reason
}
