package domain

// MessageMetadata is the structured metadata a platform message may carry.
type MessageMetadata struct {
	EventType    string                 `json:"event_type"`
	EventPayload map[string]interface{} `json:"event_payload,omitempty"`
}

// ThreadMessage is a single message fetched from a thread.
type ThreadMessage struct {
	User      string           `json:"user,omitempty"`
	BotID     string           `json:"bot_id,omitempty"`
	Text      string           `json:"text"`
	Timestamp string           `json:"ts"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// OriginatingQuestion returns the question embedded in the message metadata
// when the message is the root of a discussion thread.
func (m ThreadMessage) OriginatingQuestion() (string, bool) {
	if m.Metadata == nil || m.Metadata.EventType != ConvoEventType {
		return "", false
	}
	question, ok := m.Metadata.EventPayload["question"].(string)
	if !ok || question == "" {
		return "", false
	}
	return question, true
}

// QuestionMetadata builds the metadata attached to a quick reply so that
// later replies in its thread are recognized as a discussion.
func QuestionMetadata(question string) *MessageMetadata {
	return &MessageMetadata{
		EventType:    ConvoEventType,
		EventPayload: map[string]interface{}{"question": question},
	}
}

// AskMetadata builds the metadata of a question posted by the ask function.
// Its payload feeds the answer workflow's inputs.
func AskMetadata(channelID, userID, question string) *MessageMetadata {
	return &MessageMetadata{
		EventType: QuestionEventType,
		EventPayload: map[string]interface{}{
			"channel_id": channelID,
			"user_id":    userID,
			"question":   question,
		},
	}
}
