package router

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m3rciful/lotbot/core/logger"
	tg "github.com/m3rciful/lotbot/core/telegram"
	"github.com/m3rciful/lotbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes prepares command handlers, aliases included, each guarded against panics.
// Access control is left to the handlers.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		name := normalizeHandlerName(cmd)
		inner := def.Handler
		h := middleware.RecoverMiddleware(func(c tele.Context) error {
			return handled(c, name, func() error { return inner(c) })
		})

		routes = append(routes, tg.Route{Endpoint: cmd, Handler: h})
		for _, alias := range def.Aliases {
			if !strings.HasPrefix(alias, "/") {
				alias = "/" + alias
			}
			routes = append(routes, tg.Route{Endpoint: alias, Handler: h})
		}
	}

	logger.Info(context.Background(), "tg.wire", "complete",
		slog.Int("commands", len(reg.Commands())),
		slog.Int("routes", len(routes)),
	)

	return routes
}
