package market

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/m3rciful/lotbot/core/logger"
	"github.com/m3rciful/lotbot/core/telegram/state"
	"github.com/m3rciful/lotbot/internal/domain"
)

const routerComponent = "market.router"

// Options wires the marketplace dependencies.
type Options struct {
	Lots     domain.LotRepository
	Sellers  domain.SellerRepository
	States   state.Store[Phase]
	Notifier Notifier
	Admins   AdminList

	ChannelID       int64
	MiniAppURL      string
	ContactUsername string
	BotUsername     string

	// IDs overrides lot id generation; defaults to RandomLotID.
	IDs IDSource
	// Locks serialises events per user; defaults to an in-process lock table.
	Locks state.Locker
}

// CommandInfo describes a command for menus and help.
type CommandInfo struct {
	Name        string
	Aliases     []string
	Description string
	AdminOnly   bool
}

type handlerFunc func(ctx context.Context, ev Event) error

type command struct {
	CommandInfo
	// usage is sent when the command needs an argument and got none.
	usage  string
	handle handlerFunc
}

// Router is the single entry point for inbound events. It routes an event to
// the conversation engine when the user has an active phase, and to the
// command table or mini-app handler otherwise.
type Router struct {
	engine          *Engine
	locks           state.Locker
	commands        map[string]*command
	ordered         []*command
	miniAppURL      string
	contactUsername string
}

// New validates opts and builds a Router.
func New(opts Options) (*Router, error) {
	switch {
	case opts.Lots == nil:
		return nil, errors.New("market: nil lot repository")
	case opts.Sellers == nil:
		return nil, errors.New("market: nil seller repository")
	case opts.States == nil:
		return nil, errors.New("market: nil state store")
	case opts.Notifier == nil:
		return nil, errors.New("market: nil notifier")
	}
	ids := opts.IDs
	if ids == nil {
		ids = RandomLotID
	}
	var locks state.Locker = state.NewUserLocks()
	if opts.Locks != nil {
		locks = opts.Locks
	}

	r := &Router{
		engine: &Engine{
			lots:        opts.Lots,
			sellers:     opts.Sellers,
			states:      opts.States,
			notify:      opts.Notifier,
			admins:      opts.Admins,
			nextID:      ids,
			channelID:   opts.ChannelID,
			botUsername: strings.TrimPrefix(opts.BotUsername, "@"),
		},
		locks:           locks,
		commands:        make(map[string]*command),
		miniAppURL:      opts.MiniAppURL,
		contactUsername: strings.TrimPrefix(opts.ContactUsername, "@"),
	}
	r.registerCommands()
	return r, nil
}

// Engine exposes the conversation engine.
func (r *Router) Engine() *Engine { return r.engine }

// Commands lists the command table in name order.
func (r *Router) Commands() []CommandInfo {
	out := make([]CommandInfo, 0, len(r.ordered))
	for _, c := range r.ordered {
		out = append(out, c.CommandInfo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Router) add(c *command) {
	r.commands[c.Name] = c
	for _, alias := range c.Aliases {
		r.commands[alias] = c
	}
	r.ordered = append(r.ordered, c)
}

// Dispatch handles one inbound event. Events of one user are processed one at a time.
func (r *Router) Dispatch(ctx context.Context, ev Event) error {
	unlock, err := r.locks.Acquire(ctx, ev.UserID)
	if err != nil {
		return r.engine.fail(ctx, ev, "lock", err)
	}
	defer unlock()

	phase, err := r.engine.Phase(ctx, ev.UserID)
	if err != nil {
		return r.engine.fail(ctx, ev, "dispatch", err)
	}
	if phase != nil {
		return r.engine.Step(ctx, ev, phase)
	}

	switch ev.Kind {
	case KindCommand:
		return r.runCommand(ctx, ev)
	case KindWebApp:
		return r.handleMiniApp(ctx, ev)
	default:
		logger.Debug(ctx, routerComponent, "idle.skip",
			slog.Int64("user_id", ev.UserID),
			slog.String("kind", ev.Kind.String()),
		)
		return nil
	}
}

func (r *Router) runCommand(ctx context.Context, ev Event) error {
	c, ok := r.commands[ev.Command]
	if !ok {
		logger.Debug(ctx, routerComponent, "command.unknown",
			slog.Int64("user_id", ev.UserID),
			slog.String("command", logger.SanitizeLimit(ev.Command, 64)),
		)
		return nil
	}
	if c.AdminOnly && !r.engine.admins.Contains(ev.UserID) {
		logger.Info(ctx, routerComponent, "command.denied",
			slog.Int64("user_id", ev.UserID),
			slog.String("command", c.Name),
		)
		r.engine.reply(ctx, ev.ChatID, textAccessDenied)
		return nil
	}
	if c.usage != "" && ev.Args == "" {
		r.engine.reply(ctx, ev.ChatID, c.usage)
		return nil
	}
	return c.handle(ctx, ev)
}
