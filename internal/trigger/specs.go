package trigger

import "github.com/xiaot623/gogo/askbot/internal/domain"

// AppMentionedSpec is the trigger that runs the quick reply workflow when
// the bot is mentioned in one of channelIDs.
func AppMentionedSpec(workflowID string, channelIDs []string) domain.SubscriptionSpec {
	return domain.SubscriptionSpec{
		Name:       "app_mentioned event trigger",
		EventType:  domain.TriggerEventAppMentioned,
		WorkflowID: workflowID,
		ChannelIDs: copyIDs(channelIDs),
		Inputs: map[string]domain.InputBinding{
			"channel_id": {Value: "{{data.channel_id}}"},
			"user_id":    {Value: "{{data.user_id}}"},
			"message_ts": {Value: "{{data.message_ts}}"},
			"text":       {Value: "{{data.text}}"},
		},
	}
}

// MessagePostedSpec is the trigger that runs the discuss workflow for every
// message posted in one of channelIDs.
func MessagePostedSpec(workflowID string, channelIDs []string) domain.SubscriptionSpec {
	return domain.SubscriptionSpec{
		Name:       "message_posted event trigger",
		EventType:  domain.TriggerEventMessagePosted,
		WorkflowID: workflowID,
		ChannelIDs: copyIDs(channelIDs),
		Inputs: map[string]domain.InputBinding{
			"channel_id": {Value: "{{data.channel_id}}"},
			"user_id":    {Value: "{{data.user_id}}"},
			"message_ts": {Value: "{{data.message_ts}}"},
			"thread_ts":  {Value: "{{data.thread_ts}}"},
			"text":       {Value: "{{data.text}}"},
		},
		// message_posted triggers require a filter; this one accepts everything.
		Filter: &domain.TriggerFilter{
			Version: 1,
			Root:    map[string]string{"statement": "1 == 1"},
		},
	}
}

// QuestionSpec is the trigger that runs the answer workflow for questions
// posted by the ask function in channelID. Each channel gets its own.
func QuestionSpec(workflowID, channelID string) domain.SubscriptionSpec {
	return domain.SubscriptionSpec{
		Name:              "message_metadata_posted for " + channelID,
		EventType:         domain.TriggerEventMessageMetadataPosted,
		MetadataEventType: domain.QuestionEventType,
		WorkflowID:        workflowID,
		ChannelIDs:        []string{channelID},
		Inputs: map[string]domain.InputBinding{
			"user_id":    {Value: "{{data.user_id}}"},
			"channel_id": {Value: "{{data.channel_id}}"},
			"thread_ts":  {Value: "{{data.message_ts}}"},
			"question":   {Value: "{{data.metadata.event_payload.question}}"},
		},
	}
}

func copyIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
