// Package bot wires the marketplace router into the Telegram runtime.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/lotbot/core/logger"
	coretelegram "github.com/m3rciful/lotbot/core/telegram"
	"github.com/m3rciful/lotbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/lotbot/core/telegram/helpers"
	"github.com/m3rciful/lotbot/core/telegram/router"
	tgsender "github.com/m3rciful/lotbot/core/telegram/sender"
	"github.com/m3rciful/lotbot/core/telegram/state"
	"github.com/m3rciful/lotbot/internal/config"
	"github.com/m3rciful/lotbot/internal/domain"
	"github.com/m3rciful/lotbot/internal/market"
	"github.com/m3rciful/lotbot/internal/storage/memory"
	"github.com/m3rciful/lotbot/internal/storage/postgres"

	tele "gopkg.in/telebot.v4"
)

const appComponent = "app"

// App holds the wired marketplace bot.
type App struct {
	cfg      *config.Config
	router   *market.Router
	notifier *Notifier
	closers  []io.Closer
}

// New builds the entity stores, the conversation state store and the market router.
// db may be nil when cfg selects in-memory storage.
func New(ctx context.Context, cfg *config.Config, db *sqlx.DB) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bot: nil config")
	}

	var (
		lots    domain.LotRepository
		sellers domain.SellerRepository
		closers []io.Closer
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		lots, sellers = memory.NewLotStore(), memory.NewSellerStore()
	case config.StoragePostgres:
		if db == nil {
			return nil, errors.New("bot: postgres storage selected without a database")
		}
		lots, sellers = postgres.NewLotStore(db), postgres.NewSellerStore(db)
		closers = append(closers, db)
	default:
		return nil, fmt.Errorf("bot: unknown storage driver %q", cfg.Storage.Driver)
	}

	var (
		states state.Store[market.Phase]
		locks  state.Locker
	)
	switch cfg.State.Backend {
	case config.StateRedis:
		rs, err := state.NewRedisStore[market.Phase](ctx, state.RedisOptions{
			URL:       cfg.State.RedisURL,
			KeyPrefix: cfg.State.KeyPrefix,
			TTL:       cfg.State.TTL(),
		}, market.PhaseCodec{})
		if err != nil {
			return nil, err
		}
		states = rs
		closers = append(closers, rs)

		var lockOpts state.RedisLockOptions
		if cfg.State.KeyPrefix != "" {
			lockOpts.KeyPrefix = cfg.State.KeyPrefix + "lock:"
		}
		locks = state.NewRedisLocks(rs.Client(), lockOpts)
	default:
		states = state.NewMemoryStore[market.Phase]()
	}

	notifier := NewNotifier()
	r, err := market.New(market.Options{
		Lots:            lots,
		Sellers:         sellers,
		States:          states,
		Notifier:        notifier,
		Admins:          market.NewAdminList(cfg.Telegram.AdminIDs...),
		ChannelID:       cfg.Market.ChannelID,
		MiniAppURL:      cfg.Market.MiniAppURL,
		ContactUsername: cfg.Market.ContactUsername,
		BotUsername:     cfg.Market.BotUsername,
		Locks:           locks,
	})
	if err != nil {
		closeAll(ctx, closers)
		return nil, err
	}

	logger.Info(ctx, appComponent, "wired",
		slog.String("storage", cfg.Storage.Driver),
		slog.String("state", cfg.State.Backend),
		slog.Int("admins", len(cfg.Telegram.AdminIDs)),
	)
	return &App{cfg: cfg, router: r, notifier: notifier, closers: closers}, nil
}

// Router exposes the market router.
func (a *App) Router() *market.Router { return a.router }

// TelegramRunOptions registers every market command and the message routes.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	for _, info := range a.router.Commands() {
		reg.RegisterCommand("/"+info.Name, commands.Command{
			Handler:     a.handle,
			Description: info.Description,
			AdminOnly:   info.AdminOnly,
			Aliases:     info.Aliases,
		})
	}
	reg.SetAdminChats(a.cfg.Telegram.AdminIDs...)

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.MessageRoutes(reg, router.MessageOptions{
		Text:     a.handle,
		Photo:    a.handle,
		WebApp:   a.handle,
		Document: a.handle,
	})...)

	return coretelegram.RunOptions{
		Config:   a.cfg.CoreConfig(),
		Registry: reg,
		// One worker keeps outbound messages in the order the engine produced them.
		DispatcherOptions: tgsender.Options{
			Workers:      1,
			MaxRetries:   2,
			RetryBackoff: time.Second,
		},
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt coretelegram.Runtime) error {
	a.notifier.Bind(rt.Bot)
	engine := a.router.Engine()
	if engine.BotUsername() == "" && rt.Bot != nil && rt.Bot.Me != nil {
		engine.SetBotUsername(rt.Bot.Me.Username)
	}
	logger.Info(ctx, appComponent, "bot.bound",
		slog.String("bot_username", engine.BotUsername()),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, _ coretelegram.Runtime) error {
	a.notifier.Bind(nil)
	return closeAll(ctx, a.closers)
}

// handle converts the update and dispatches it to the market router.
func (a *App) handle(c tele.Context) error {
	ev, ok := eventFromContext(c)
	if !ok {
		return nil
	}
	return a.router.Dispatch(tghelpers.BuildContext(c), ev)
}

func closeAll(ctx context.Context, closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Warn(ctx, appComponent, "close.failed", slog.String("err", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
