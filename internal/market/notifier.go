package market

import "context"

// Notifier delivers outbound messages. Recipients are Telegram chat ids:
// a user's private chat, an admin, or the publishing channel.
type Notifier interface {
	SendText(ctx context.Context, to int64, text string, opts ...SendOption) error
	SendPhoto(ctx context.Context, to int64, photoID, caption string, opts ...SendOption) error
}

// SendOptions is the transport-neutral markup attached to a message.
type SendOptions struct {
	// WebAppText and WebAppURL describe a single inline button launching the mini-app.
	WebAppText string
	WebAppURL  string
	// Keyboard is a reply keyboard given as rows of button labels.
	Keyboard       [][]string
	RemoveKeyboard bool
}

// SendOption mutates SendOptions.
type SendOption func(*SendOptions)

// WithWebApp attaches the mini-app launcher button.
func WithWebApp(text, url string) SendOption {
	return func(o *SendOptions) {
		o.WebAppText = text
		o.WebAppURL = url
	}
}

// WithKeyboard attaches a reply keyboard.
func WithKeyboard(rows ...[]string) SendOption {
	return func(o *SendOptions) { o.Keyboard = rows }
}

// WithoutKeyboard hides a previously shown reply keyboard.
func WithoutKeyboard() SendOption {
	return func(o *SendOptions) { o.RemoveKeyboard = true }
}

// ApplySendOptions folds opts into a SendOptions value.
func ApplySendOptions(opts ...SendOption) SendOptions {
	var o SendOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
