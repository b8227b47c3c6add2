package bot

import (
	"github.com/m3rciful/lotbot/internal/market"

	tele "gopkg.in/telebot.v4"
)

// eventFromContext reduces a telebot update to a market event.
// Updates without a sender or message are not events.
func eventFromContext(c tele.Context) (market.Event, bool) {
	user := c.Sender()
	msg := c.Message()
	if user == nil || msg == nil {
		return market.Event{}, false
	}
	chatID := user.ID
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}

	switch {
	case msg.WebAppData != nil:
		return market.NewWebAppEvent(user.ID, chatID, msg.WebAppData.Data), true
	case msg.Photo != nil:
		return market.NewPhotoEvent(user.ID, chatID, msg.Photo.FileID, msg.Caption), true
	case msg.Text != "":
		return market.NewTextEvent(user.ID, chatID, msg.Text), true
	default:
		return market.NewOtherEvent(user.ID, chatID), true
	}
}
