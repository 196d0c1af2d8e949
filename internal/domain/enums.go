// Package domain defines the core domain models for askbot.
package domain

// Role is the speaker of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TriggerEventType is the platform event a trigger subscribes to.
type TriggerEventType string

const (
	TriggerEventAppMentioned  TriggerEventType = "slack#/events/app_mentioned"
	TriggerEventMessagePosted TriggerEventType = "slack#/events/message_posted"

	TriggerEventMessageMetadataPosted TriggerEventType = "slack#/events/message_metadata_posted"
)

// ConvoEventType is the message metadata event type that marks the bot's
// answer to a mention. A thread rooted at such a message is a discussion.
const ConvoEventType = "chat-gpt-convo"

// QuestionEventType is the message metadata event type of a question posted
// by the ask function. Its message_metadata_posted trigger runs the answer
// workflow.
const QuestionEventType = "openai_question"

// EventType represents the type of an audit event.
type EventType string

const (
	EventTypeConfigureStarted EventType = "configure_started"
	EventTypeConfigureDone    EventType = "configure_done"
	EventTypeTriggerCreated   EventType = "trigger_created"
	EventTypeTriggerUpdated   EventType = "trigger_updated"
	EventTypeChannelJoinError EventType = "channel_join_failed"

	EventTypeDiscussionSkipped EventType = "discussion_skipped"
	EventTypeCompletionStarted EventType = "completion_started"
	EventTypeCompletionDone    EventType = "completion_done"
	EventTypeReplyPosted       EventType = "reply_posted"
	EventTypeQuestionPosted    EventType = "question_posted"
	EventTypePolicyDecision    EventType = "policy_decision"
)
