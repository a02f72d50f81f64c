package webhook

import (
	"slices"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/garyellow/agri-advisor-go/internal/stringutil"
)

// selfMentions returns the bot's own mention spans, last first.
func selfMentions(mention *webhook.Mention) []webhook.UserMentionee {
	if mention == nil {
		return nil
	}
	var spans []webhook.UserMentionee
	for _, m := range mention.Mentionees {
		if um, ok := m.(webhook.UserMentionee); ok && um.IsSelf {
			spans = append(spans, um)
		}
	}
	slices.SortFunc(spans, func(a, b webhook.UserMentionee) int { return int(b.Index - a.Index) })
	return spans
}

// isBotMentioned reports whether a group message addresses the bot.
func isBotMentioned(msg webhook.TextMessageContent) bool {
	return len(selfMentions(msg.Mention)) > 0
}

// removeBotMentions strips "@bot" spans so the classifier sees only the
// question. LINE indexes mentions in runes.
func removeBotMentions(text string, mention *webhook.Mention) string {
	spans := selfMentions(mention)
	if len(spans) == 0 {
		return text
	}

	runes := []rune(text)
	for _, m := range spans {
		start := max(int(m.Index), 0)
		end := min(int(m.Index+m.Length), len(runes))
		if start >= end {
			continue
		}
		runes = append(runes[:start], runes[end:]...)
	}
	return stringutil.CollapseSpace(string(runes))
}
