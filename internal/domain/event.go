package domain

import "encoding/json"

// Event is an audit record of one step of an invocation.
type Event struct {
	EventID   string          `json:"event_id"`
	RequestID string          `json:"request_id"`
	ChannelID string          `json:"channel_id,omitempty"`
	Ts        int64           `json:"ts"` // Unix milliseconds
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}
