package middleware

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Update kinds used by metrics labels and rate limit exclusions.
const (
	KindCommand = "command"
	KindMessage = "message"
	KindPhoto   = "photo"
	KindWebApp  = "web_app"
	KindOther   = "other"
)

// UpdateKind classifies an update for metrics and rate limiting.
func UpdateKind(upd tele.Update) string {
	msg := upd.Message
	if msg == nil {
		return KindOther
	}
	switch {
	case msg.WebAppData != nil:
		return KindWebApp
	case msg.Photo != nil:
		return KindPhoto
	case strings.HasPrefix(strings.TrimSpace(msg.Text), "/"):
		return KindCommand
	default:
		return KindMessage
	}
}
