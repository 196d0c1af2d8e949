package conversation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

var mentionPattern = regexp.MustCompile(`<@[^>]+>\s*`)

// SystemPreamble returns the system turn that opens every request.
func SystemPreamble(botUserID string) domain.Turn {
	return domain.SystemTurn(fmt.Sprintf(
		"You are a bot in a slack chat room. You might receive messages from multiple people. "+
			"Slack user IDs match the regex `<@U.*?>`. Your Slack user ID is <@%s>.", botUserID))
}

// StripMentions removes user mentions from a question addressed to the bot.
func StripMentions(text string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
}
