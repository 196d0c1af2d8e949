// Package socket receives function executions over a socket-mode
// websocket instead of inbound HTTP.
package socket

import "encoding/json"

// Envelope types sent by the platform.
const (
	TypeHello      = "hello"
	TypeEventsAPI  = "events_api"
	TypeDisconnect = "disconnect"
)

// EventFunctionExecuted is the only event type the listener handles.
const EventFunctionExecuted = "function_executed"

// Function callback ids.
const (
	CallbackConfigure  = "configure"
	CallbackQuickReply = "quick_reply"
	CallbackDiscuss    = "discuss"
	CallbackAsk        = "ask"
	CallbackAnswer     = "answer"
)

// Envelope wraps every message read from the socket.
type Envelope struct {
	EnvelopeID string          `json:"envelope_id,omitempty"`
	Type       string          `json:"type"`
	Reason     string          `json:"reason,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Ack acknowledges an envelope.
type Ack struct {
	EnvelopeID string `json:"envelope_id"`
}

// EventsAPIPayload is the payload of an events_api envelope.
type EventsAPIPayload struct {
	Event FunctionExecuted `json:"event"`
}

// FunctionExecuted is a function_executed event.
type FunctionExecuted struct {
	Type                string          `json:"type"`
	Function            FunctionRef     `json:"function"`
	Inputs              json.RawMessage `json:"inputs"`
	FunctionExecutionID string          `json:"function_execution_id"`
}

// FunctionRef identifies the executed function.
type FunctionRef struct {
	CallbackID string `json:"callback_id"`
}
