// Package commands describes bot commands for the registry and the command menu.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command binds a slash command to its handler.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly keeps the command out of the public menu; it is listed only in admin chats.
	// Handlers still check permissions themselves.
	AdminOnly bool
	// Hidden keeps the command out of every menu.
	Hidden bool
	// Aliases are extra names routed to the same handler, with or without the slash.
	Aliases []string
}
