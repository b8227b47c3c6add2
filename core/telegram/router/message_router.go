package router

import (
	"strings"

	tg "github.com/m3rciful/lotbot/core/telegram"
	"github.com/m3rciful/lotbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MessageOptions binds non-command message kinds to handlers. A nil handler
// leaves that kind unrouted, except Text which falls back to the registry.
type MessageOptions struct {
	Text     tele.HandlerFunc
	Photo    tele.HandlerFunc
	WebApp   tele.HandlerFunc
	Document tele.HandlerFunc
}

// MessageRoutes builds handlers for text, photo, mini-app data and document updates.
func MessageRoutes(reg *tg.Registry, opts MessageOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		// Commands telebot did not match itself, e.g. aliases typed with a bot mention.
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(commandWord(c.Text())); ok && cmd.Handler != nil {
				return handled(c, normalizeHandlerName(key), func() error {
					return cmd.Handler(c)
				})
			}
		}

		if opts.Text != nil {
			return handled(c, "text", func() error {
				return opts.Text(c)
			})
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handled(c, "fallback", func() error {
					return fb(c)
				})
			}
		}

		logSummary(c, "unknown_text", outcomeSkip, 0, nil)
		return nil
	}

	routes := []tg.Route{
		{Endpoint: tele.OnText, Handler: middleware.RecoverMiddleware(textHandler)},
	}
	add := func(endpoint, name string, h tele.HandlerFunc) {
		if h == nil {
			return
		}
		routes = append(routes, tg.Route{
			Endpoint: endpoint,
			Handler: middleware.RecoverMiddleware(func(c tele.Context) error {
				return handled(c, name, func() error { return h(c) })
			}),
		})
	}
	add(tele.OnPhoto, "photo", opts.Photo)
	add(tele.OnWebApp, "web_app", opts.WebApp)
	add(tele.OnDocument, "document", opts.Document)
	return routes
}

// commandWord returns the leading "/verb" of text without a bot mention, or "".
func commandWord(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	word, _, _ := strings.Cut(text, " ")
	word, _, _ = strings.Cut(word, "@")
	return strings.ToLower(word)
}
