package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

// invocation tracks one function call in the audit log. Audit writes never
// fail the call; they are logged instead.
type invocation struct {
	svc       *Service
	requestID string
	channelID string
	logger    logrus.FieldLogger
}

func (s *Service) startInvocation(ctx context.Context, kind domain.InvocationKind, channelID, userID string) *invocation {
	requestID := "req_" + uuid.New().String()[:8]
	inv := &invocation{
		svc:       s,
		requestID: requestID,
		channelID: channelID,
		logger: s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"kind":       kind,
			"channel_id": channelID,
		}),
	}

	err := s.store.CreateInvocation(ctx, &domain.Invocation{
		RequestID: requestID,
		Kind:      kind,
		ChannelID: channelID,
		UserID:    userID,
		Status:    domain.InvocationStatusRunning,
		StartedAt: time.Now(),
	})
	if err != nil {
		inv.logger.WithError(err).Warn("failed to record invocation")
	}
	return inv
}

// record records an event for the invocation.
func (inv *invocation) record(ctx context.Context, eventType domain.EventType, payload interface{}) {
	if err := inv.svc.recordEvent(ctx, inv.requestID, inv.channelID, eventType, payload); err != nil {
		inv.logger.WithError(err).Warnf("failed to record %s event", eventType)
	}
}

func (inv *invocation) finish(ctx context.Context, status domain.InvocationStatus, outcome string, cause error) {
	errText := ""
	if cause != nil {
		errText = cause.Error()
	}
	if err := inv.svc.store.FinishInvocation(ctx, inv.requestID, status, outcome, errText, time.Now()); err != nil {
		inv.logger.WithError(err).Warn("failed to finish invocation")
	}
}

// recordEvent records an event to the store.
func (s *Service) recordEvent(ctx context.Context, requestID, channelID string, eventType domain.EventType, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &domain.Event{
		EventID:   "evt_" + uuid.New().String()[:8],
		RequestID: requestID,
		ChannelID: channelID,
		Ts:        time.Now().UnixMilli(),
		Type:      eventType,
		Payload:   payloadBytes,
	}

	return s.store.CreateEvent(ctx, event)
}
