package domain

// InputBinding maps a workflow input to a platform template expression,
// for example {"channel_id": {"value": "{{data.channel_id}}"}}.
type InputBinding struct {
	Value string `json:"value"`
}

// TriggerFilter restricts which events fire an event trigger.
type TriggerFilter struct {
	Version int               `json:"version"`
	Root    map[string]string `json:"root"`
}

// SubscriptionSpec is the desired state of one event trigger.
type SubscriptionSpec struct {
	Name       string                  `json:"name"`
	EventType  TriggerEventType        `json:"event_type"`
	WorkflowID string                  `json:"workflow_id"`
	ChannelIDs []string                `json:"channel_ids"`
	Inputs     map[string]InputBinding `json:"inputs,omitempty"`
	Filter     *TriggerFilter          `json:"filter,omitempty"`
	// MetadataEventType narrows a message_metadata_posted trigger to one
	// metadata event type.
	MetadataEventType string `json:"metadata_event_type,omitempty"`
}

// SubscriptionRecord is an existing trigger as listed by the platform.
type SubscriptionRecord struct {
	ID         string           `json:"id"`
	Name       string           `json:"name,omitempty"`
	WorkflowID string           `json:"workflow_id"`
	EventType  TriggerEventType `json:"event_type"`
	ChannelIDs []string         `json:"channel_ids,omitempty"`
}

// Covers reports whether the trigger listens in channelID.
func (r SubscriptionRecord) Covers(channelID string) bool {
	for _, id := range r.ChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}
