package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

const workflowRefPrefix = "#/workflows/"

type triggerWorkflow struct {
	CallbackID string `json:"callback_id"`
}

type listedTrigger struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Name       string          `json:"name"`
	Workflow   triggerWorkflow `json:"workflow"`
	EventType  string          `json:"event_type"`
	ChannelIDs []string        `json:"channel_ids"`
}

type listTriggersResponse struct {
	envelope
	Triggers []listedTrigger `json:"triggers"`
}

// ListTriggers returns every trigger visible to the app. With ownedOnly the
// listing is restricted to triggers the app owns. Pagination cursors are
// followed so the listing is complete.
func (c *Client) ListTriggers(ctx context.Context, ownedOnly bool) ([]domain.SubscriptionRecord, error) {
	var records []domain.SubscriptionRecord
	cursor := ""
	for {
		query := url.Values{}
		query.Set("is_owner", fmt.Sprintf("%t", ownedOnly))
		query.Set("limit", "200")
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		var resp listTriggersResponse
		if err := c.get(ctx, "workflows.triggers.list", query, &resp); err != nil {
			return nil, err
		}
		for _, trigger := range resp.Triggers {
			records = append(records, domain.SubscriptionRecord{
				ID:         trigger.ID,
				Name:       trigger.Name,
				WorkflowID: trigger.Workflow.CallbackID,
				EventType:  domain.TriggerEventType(trigger.EventType),
				ChannelIDs: trigger.ChannelIDs,
			})
		}

		cursor = resp.ResponseMetadata.NextCursor
		if cursor == "" {
			return records, nil
		}
	}
}

type triggerEvent struct {
	EventType         string                `json:"event_type"`
	MetadataEventType string                `json:"metadata_event_type,omitempty"`
	ChannelIDs        []string              `json:"channel_ids"`
	Filter            *domain.TriggerFilter `json:"filter,omitempty"`
}

type triggerRequest struct {
	TriggerID string                         `json:"trigger_id,omitempty"`
	Type      string                         `json:"type"`
	Name      string                         `json:"name"`
	Workflow  string                         `json:"workflow"`
	Event     triggerEvent                   `json:"event"`
	Inputs    map[string]domain.InputBinding `json:"inputs,omitempty"`
}

type triggerResponse struct {
	envelope
	Trigger struct {
		ID string `json:"id"`
	} `json:"trigger"`
}

func newTriggerRequest(spec domain.SubscriptionSpec) triggerRequest {
	channelIDs := spec.ChannelIDs
	if channelIDs == nil {
		channelIDs = []string{}
	}
	return triggerRequest{
		Type:     "event",
		Name:     spec.Name,
		Workflow: workflowRef(spec.WorkflowID),
		Event: triggerEvent{
			EventType:         string(spec.EventType),
			MetadataEventType: spec.MetadataEventType,
			ChannelIDs:        channelIDs,
			Filter:            spec.Filter,
		},
		Inputs: spec.Inputs,
	}
}

func workflowRef(workflowID string) string {
	if strings.HasPrefix(workflowID, workflowRefPrefix) {
		return workflowID
	}
	return workflowRefPrefix + workflowID
}

// CreateTrigger creates an event trigger and returns its id.
func (c *Client) CreateTrigger(ctx context.Context, spec domain.SubscriptionSpec) (string, error) {
	var resp triggerResponse
	if err := c.post(ctx, "workflows.triggers.create", newTriggerRequest(spec), &resp); err != nil {
		return "", err
	}
	return resp.Trigger.ID, nil
}

// UpdateTrigger replaces the channels, inputs and filter of trigger id.
func (c *Client) UpdateTrigger(ctx context.Context, id string, spec domain.SubscriptionSpec) error {
	req := newTriggerRequest(spec)
	req.TriggerID = id
	return c.post(ctx, "workflows.triggers.update", req, nil)
}
