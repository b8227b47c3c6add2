package bot

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/m3rciful/lotbot/core/metrics"
	tghelpers "github.com/m3rciful/lotbot/core/telegram/helpers"
	"github.com/m3rciful/lotbot/core/telegram/keyboard"
	"github.com/m3rciful/lotbot/internal/market"

	tele "gopkg.in/telebot.v4"
)

var errNotBound = errors.New("bot: notifier is not bound to a bot")

// sendAPI is the part of *tele.Bot the notifier needs.
type sendAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type apiHolder struct{ sendAPI }

// Notifier delivers market notifications through the Telegram Bot API.
// Sends go through the shared sender dispatcher when one is running.
type Notifier struct {
	api atomic.Pointer[apiHolder]
}

// NewNotifier returns an unbound Notifier; Bind it once the bot exists.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Bind attaches the bot used for sending.
func (n *Notifier) Bind(b *tele.Bot) {
	if b == nil {
		n.api.Store(nil)
		return
	}
	n.bind(b)
}

func (n *Notifier) bind(api sendAPI) {
	n.api.Store(&apiHolder{api})
}

// SendText implements market.Notifier.
func (n *Notifier) SendText(ctx context.Context, to int64, text string, opts ...market.SendOption) error {
	return n.deliver(ctx, "text", "sendMessage", to, text, market.ApplySendOptions(opts...))
}

// SendPhoto implements market.Notifier.
func (n *Notifier) SendPhoto(ctx context.Context, to int64, photoID, caption string, opts ...market.SendOption) error {
	photo := &tele.Photo{File: tele.File{FileID: photoID}, Caption: caption}
	return n.deliver(ctx, "photo", "sendPhoto", to, photo, market.ApplySendOptions(opts...))
}

func (n *Notifier) deliver(ctx context.Context, kind, endpoint string, to int64, what interface{}, o market.SendOptions) error {
	holder := n.api.Load()
	if holder == nil {
		metrics.RecordNotification(kind, errNotBound)
		return errNotBound
	}
	api := holder.sendAPI
	var sendOpts []interface{}
	if markup := replyMarkup(o); markup != nil {
		sendOpts = append(sendOpts, markup)
	}
	return tghelpers.Deliver(ctx, "notify."+kind, endpoint, func() error {
		_, err := api.Send(tele.ChatID(to), what, sendOpts...)
		metrics.RecordNotification(kind, err)
		return err
	})
}

func replyMarkup(o market.SendOptions) *tele.ReplyMarkup {
	switch {
	case strings.TrimSpace(o.WebAppURL) != "":
		return keyboard.WebAppButton(o.WebAppText, o.WebAppURL)
	case len(o.Keyboard) > 0:
		return keyboard.ReplyButtons(o.Keyboard...)
	case o.RemoveKeyboard:
		return keyboard.RemoveKeyboard()
	}
	return nil
}

var _ market.Notifier = (*Notifier)(nil)
