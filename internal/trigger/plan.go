// Package trigger converges the platform's event triggers to a desired state.
package trigger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

// ErrDuplicateTriggers is matched (errors.Is) by a DuplicateTriggersError.
var ErrDuplicateTriggers = errors.New("duplicate triggers")

// DuplicateTriggersError reports more than one existing trigger for the same
// (event type, workflow) pair. No trigger is modified when it is returned.
type DuplicateTriggersError struct {
	EventType  domain.TriggerEventType
	WorkflowID string
	// ChannelID is set for channel-scoped triggers.
	ChannelID string
	IDs       []string
}

func (e *DuplicateTriggersError) Error() string {
	scope := ""
	if e.ChannelID != "" {
		scope = " in channel " + e.ChannelID
	}
	return fmt.Sprintf("%s: %d triggers for %s on workflow %s%s (%s)",
		ErrDuplicateTriggers, len(e.IDs), e.EventType, e.WorkflowID, scope, strings.Join(e.IDs, ", "))
}

// Is makes errors.Is(err, ErrDuplicateTriggers) succeed.
func (e *DuplicateTriggersError) Is(target error) bool {
	return target == ErrDuplicateTriggers
}

// Action is what a reconciliation does to the remote trigger set.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	// ActionNone leaves an existing channel-scoped trigger alone.
	ActionNone Action = "none"
)

// Step is the planned mutation for one desired trigger.
type Step struct {
	Action Action
	// TriggerID is the trigger to update; empty for ActionCreate.
	TriggerID string
	Spec      domain.SubscriptionSpec
}

// Plan decides how to converge listing towards desired. It has no side
// effects.
func Plan(desired domain.SubscriptionSpec, listing []domain.SubscriptionRecord) (Step, error) {
	matches := matching(desired.EventType, desired.WorkflowID, listing)
	switch len(matches) {
	case 0:
		return Step{Action: ActionCreate, Spec: desired}, nil
	case 1:
		return Step{Action: ActionUpdate, TriggerID: matches[0].ID, Spec: desired}, nil
	default:
		return Step{}, duplicates(desired.EventType, desired.WorkflowID, matches)
	}
}

// PlanChannel decides whether the channel-scoped trigger desired exists.
// Such triggers are keyed by (event type, workflow, channel) and only ever
// created: an existing one is left alone.
func PlanChannel(desired domain.SubscriptionSpec, channelID string, listing []domain.SubscriptionRecord) (Step, error) {
	var matches []domain.SubscriptionRecord
	for _, record := range matching(desired.EventType, desired.WorkflowID, listing) {
		if record.Covers(channelID) {
			matches = append(matches, record)
		}
	}
	switch len(matches) {
	case 0:
		return Step{Action: ActionCreate, Spec: desired}, nil
	case 1:
		return Step{Action: ActionNone, TriggerID: matches[0].ID, Spec: desired}, nil
	default:
		err := duplicates(desired.EventType, desired.WorkflowID, matches)
		err.ChannelID = channelID
		return Step{}, err
	}
}

func matching(eventType domain.TriggerEventType, workflowID string, listing []domain.SubscriptionRecord) []domain.SubscriptionRecord {
	var matches []domain.SubscriptionRecord
	for _, record := range listing {
		if record.EventType == eventType && record.WorkflowID == workflowID {
			matches = append(matches, record)
		}
	}
	return matches
}

func duplicates(eventType domain.TriggerEventType, workflowID string, matches []domain.SubscriptionRecord) *DuplicateTriggersError {
	ids := make([]string, 0, len(matches))
	for _, record := range matches {
		ids = append(ids, record.ID)
	}
	return &DuplicateTriggersError{EventType: eventType, WorkflowID: workflowID, IDs: ids}
}
