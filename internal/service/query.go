package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/gogo/askbot/internal/domain"
	store "github.com/xiaot623/gogo/askbot/internal/repository"
)

// ListEvents returns audit events matching filter.
func (s *Service) ListEvents(ctx context.Context, filter store.EventFilter) ([]domain.Event, error) {
	events, err := s.store.ListEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}

// GetInvocation returns one invocation, or nil when it does not exist.
func (s *Service) GetInvocation(ctx context.Context, requestID string) (*domain.Invocation, error) {
	invocation, err := s.store.GetInvocation(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invocation: %w", err)
	}
	return invocation, nil
}

// ListInvocations returns the newest invocations, optionally of one kind.
func (s *Service) ListInvocations(ctx context.Context, kind domain.InvocationKind, limit int) ([]domain.Invocation, error) {
	invocations, err := s.store.ListInvocations(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list invocations: %w", err)
	}
	if invocations == nil {
		invocations = []domain.Invocation{}
	}
	return invocations, nil
}
