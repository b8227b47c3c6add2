package keyboard

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a reply keyboard from rows of text.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	var keyboard []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// WebAppButton returns an inline keyboard with one button opening the mini-app at url.
// It returns nil when url is empty.
func WebAppButton(text, url string) *tele.ReplyMarkup {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{{
			{Text: text, WebApp: &tele.WebApp{URL: url}},
		}},
	}
}
