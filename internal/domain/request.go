package domain

// ConfigureRequest selects the channels where the bot answers.
type ConfigureRequest struct {
	QuickReplyWorkflowID string   `json:"quick_reply_workflow_id"`
	DiscussWorkflowID    string   `json:"discuss_workflow_id"`
	ChannelIDs           []string `json:"channel_ids"`
}

// ConfigureResponse carries the text shown to the user who configured the app.
type ConfigureResponse struct {
	Message string `json:"message"`
}

// ChannelsResponse lists the channels the app is currently enabled for.
type ChannelsResponse struct {
	ChannelIDs []string `json:"channel_ids"`
}

// QuickReplyRequest is the input of the app_mentioned workflow.
type QuickReplyRequest struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Question  string `json:"question"`
	MessageTS string `json:"message_ts,omitempty"`
}

// DiscussRequest is the input of the message_posted workflow.
type DiscussRequest struct {
	ChannelID string `json:"channel_id"`
	MessageTS string `json:"message_ts"`
	ThreadTS  string `json:"thread_ts,omitempty"`
	UserID    string `json:"user_id"`
}

// AskRequest is the input of the ask function: a question to post in a
// channel and answer in its thread.
type AskRequest struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Question  string `json:"question"`
	// AnswerWorkflowID defaults to the answer workflow's callback id.
	AnswerWorkflowID string `json:"answer_workflow_id,omitempty"`
}

// AskResponse tells the asker where the question was posted.
type AskResponse struct {
	Message   string `json:"message"`
	ChannelID string `json:"channel_id"`
	MessageTS string `json:"message_ts"`
}

// AnswerRequest is the input of the answer workflow, fired by the question
// message's metadata.
type AnswerRequest struct {
	ChannelID string `json:"channel_id"`
	ThreadTS  string `json:"thread_ts"`
	UserID    string `json:"user_id,omitempty"`
	Question  string `json:"question"`
}

// FunctionOutputs holds the outputs of a workflow function.
type FunctionOutputs struct {
	Answer string `json:"answer,omitempty"`
}

// FunctionResponse is returned by the function endpoints.
type FunctionResponse struct {
	Outputs FunctionOutputs `json:"outputs"`
	Skipped bool            `json:"skipped,omitempty"`
}

// TriggerReconciledPayload is the audit payload for trigger_created/updated.
type TriggerReconciledPayload struct {
	TriggerID  string           `json:"trigger_id"`
	EventType  TriggerEventType `json:"event_type"`
	WorkflowID string           `json:"workflow_id"`
	ChannelIDs []string         `json:"channel_ids"`
}

// CompletionStartedPayload is the audit payload for completion_started.
type CompletionStartedPayload struct {
	Model        string `json:"model"`
	Turns        int    `json:"turns"`
	PromptTokens int    `json:"prompt_tokens"`
	ThreadTS     string `json:"thread_ts,omitempty"`
}

// CompletionDonePayload is the audit payload for completion_done.
type CompletionDonePayload struct {
	Model     string `json:"model"`
	Outcome   string `json:"outcome"`
	LatencyMs int64  `json:"latency_ms"`
}

// SkipPayload is the audit payload for discussion_skipped.
type SkipPayload struct {
	Reason string `json:"reason"`
}

// PolicyDecisionPayload is the audit payload for policy_decision.
type PolicyDecisionPayload struct {
	Action   string `json:"action"`
	Decision string `json:"decision"`
	UserID   string `json:"user_id,omitempty"`
}

// QuestionPostedPayload is the audit payload for question_posted.
type QuestionPostedPayload struct {
	MessageTS string `json:"message_ts"`
	TriggerID string `json:"trigger_id"`
	Created   bool   `json:"trigger_created"`
}

// ErrorPayload is the audit payload for failures such as channel_join_failed.
type ErrorPayload struct {
	Error string `json:"error"`
}
