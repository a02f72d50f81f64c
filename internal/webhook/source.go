package webhook

import "github.com/line/line-bot-sdk-go/v8/linebot/webhook"

type eventMeta struct {
	eventID    string
	replyToken string
	source     webhook.SourceInterface
	redelivery bool
}

func metaOf(event webhook.EventInterface) eventMeta {
	var m eventMeta
	var dc *webhook.DeliveryContext
	switch e := event.(type) {
	case webhook.MessageEvent:
		m = eventMeta{eventID: e.WebhookEventId, replyToken: e.ReplyToken, source: e.Source}
		dc = e.DeliveryContext
	case webhook.FollowEvent:
		m = eventMeta{eventID: e.WebhookEventId, replyToken: e.ReplyToken, source: e.Source}
		dc = e.DeliveryContext
	case webhook.JoinEvent:
		m = eventMeta{eventID: e.WebhookEventId, replyToken: e.ReplyToken, source: e.Source}
		dc = e.DeliveryContext
	}
	if dc != nil {
		m.redelivery = dc.IsRedelivery
	}
	return m
}

// chatIDOf returns the user, group or room ID the reply goes to.
func chatIDOf(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.GroupId
	case webhook.RoomSource:
		return s.RoomId
	}
	return ""
}

// userIDOf returns the sender's user ID in any chat type.
func userIDOf(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	}
	return ""
}

func isPersonalChat(source webhook.SourceInterface) bool {
	_, ok := source.(webhook.UserSource)
	return ok
}
