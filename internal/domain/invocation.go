package domain

import "time"

// InvocationKind is the function an invocation ran.
type InvocationKind string

const (
	InvocationConfigure  InvocationKind = "configure"
	InvocationQuickReply InvocationKind = "quick_reply"
	InvocationDiscuss    InvocationKind = "discuss"
	InvocationAsk        InvocationKind = "ask"
	InvocationAnswer     InvocationKind = "answer"
)

// InvocationStatus represents the status of an invocation.
type InvocationStatus string

const (
	InvocationStatusRunning InvocationStatus = "RUNNING"
	InvocationStatusDone    InvocationStatus = "DONE"
	InvocationStatusSkipped InvocationStatus = "SKIPPED"
	InvocationStatusFailed  InvocationStatus = "FAILED"
)

// Invocation is the audit record of one function call.
type Invocation struct {
	RequestID string           `json:"request_id"`
	Kind      InvocationKind   `json:"kind"`
	ChannelID string           `json:"channel_id,omitempty"`
	UserID    string           `json:"user_id,omitempty"`
	Status    InvocationStatus `json:"status"`
	Outcome   string           `json:"outcome,omitempty"`
	Error     string           `json:"error,omitempty"`
	StartedAt time.Time        `json:"started_at"`
	EndedAt   *time.Time       `json:"ended_at,omitempty"`
}
