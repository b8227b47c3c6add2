package bot

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/lotbot/core/config"
	coretelegram "github.com/m3rciful/lotbot/core/telegram"
	"github.com/m3rciful/lotbot/internal/config"
	"github.com/m3rciful/lotbot/internal/market"
)

type sent struct {
	to   string
	what interface{}
	opts []interface{}
}

type fakeAPI struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{to: to.Recipient(), what: what, opts: opts})
	return &tele.Message{}, f.err
}

func newContext(t *testing.T, msg *tele.Message) tele.Context {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b.NewContext(tele.Update{ID: 1, Message: msg})
}

func userMessage(userID int64) *tele.Message {
	return &tele.Message{
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
	}
}

func TestEventFromContext(t *testing.T) {
	msg := userMessage(7)
	msg.Text = "/checklot@lot_bot 42"
	ev, ok := eventFromContext(newContext(t, msg))
	require.True(t, ok)
	assert.Equal(t, market.KindCommand, ev.Kind)
	assert.Equal(t, "checklot", ev.Command)
	assert.Equal(t, "42", ev.Args)
	assert.Equal(t, int64(7), ev.UserID)
	assert.Equal(t, int64(7), ev.ChatID)

	msg = userMessage(7)
	msg.Photo = &tele.Photo{File: tele.File{FileID: "file-1"}}
	msg.Caption = "cap"
	ev, ok = eventFromContext(newContext(t, msg))
	require.True(t, ok)
	assert.Equal(t, market.KindPhoto, ev.Kind)
	assert.Equal(t, "file-1", ev.PhotoID)
	assert.Equal(t, "cap", ev.Text)

	msg = userMessage(7)
	msg.WebAppData = &tele.WebAppData{Data: `{"command":"get_lots"}`}
	ev, ok = eventFromContext(newContext(t, msg))
	require.True(t, ok)
	assert.Equal(t, market.KindWebApp, ev.Kind)
	assert.Equal(t, `{"command":"get_lots"}`, ev.Data)

	msg = userMessage(7)
	msg.Document = &tele.Document{File: tele.File{FileID: "doc"}}
	ev, ok = eventFromContext(newContext(t, msg))
	require.True(t, ok)
	assert.Equal(t, market.KindOther, ev.Kind)

	_, ok = eventFromContext(newContext(t, nil))
	assert.False(t, ok)
}

func TestNotifierUnbound(t *testing.T) {
	n := NewNotifier()
	assert.ErrorIs(t, n.SendText(context.Background(), 1, "hi"), errNotBound)
}

func TestNotifierSendsTextWithWebApp(t *testing.T) {
	api := &fakeAPI{}
	n := NewNotifier()
	n.bind(api)

	require.NoError(t, n.SendText(context.Background(), 42, "hello", market.WithWebApp("open", "https://example.org")))
	require.Len(t, api.sent, 1)
	assert.Equal(t, "42", api.sent[0].to)
	assert.Equal(t, "hello", api.sent[0].what)
	require.Len(t, api.sent[0].opts, 1)
	markup := api.sent[0].opts[0].(*tele.ReplyMarkup)
	require.NotNil(t, markup.InlineKeyboard[0][0].WebApp)
	assert.Equal(t, "https://example.org", markup.InlineKeyboard[0][0].WebApp.URL)
}

func TestNotifierSendsPhoto(t *testing.T) {
	api := &fakeAPI{}
	n := NewNotifier()
	n.bind(api)

	require.NoError(t, n.SendPhoto(context.Background(), -100500, "file-1", "caption"))
	require.Len(t, api.sent, 1)
	assert.Equal(t, "-100500", api.sent[0].to)
	photo := api.sent[0].what.(*tele.Photo)
	assert.Equal(t, "file-1", photo.FileID)
	assert.Equal(t, "caption", photo.Caption)
	assert.Empty(t, api.sent[0].opts)
}

func TestNotifierReturnsSendError(t *testing.T) {
	boom := errors.New("chat not found")
	n := NewNotifier()
	n.bind(&fakeAPI{err: boom})
	assert.ErrorIs(t, n.SendText(context.Background(), 1, "hi"), boom)
}

func TestReplyMarkup(t *testing.T) {
	assert.Nil(t, replyMarkup(market.SendOptions{}))

	kb := replyMarkup(market.ApplySendOptions(market.WithKeyboard([]string{market.TokenApprove, market.TokenReject})))
	require.NotNil(t, kb)
	require.Len(t, kb.ReplyKeyboard, 1)
	assert.Equal(t, market.TokenApprove, kb.ReplyKeyboard[0][0].Text)

	rm := replyMarkup(market.ApplySendOptions(market.WithoutKeyboard()))
	require.NotNil(t, rm)
	assert.True(t, rm.RemoveKeyboard)
}

func memoryConfig() *config.Config {
	return &config.Config{
		Config: coreconfig.Config{
			Telegram: coreconfig.TelegramConfig{Token: "t", AdminIDs: []int64{1}},
		},
		Storage: config.StorageConfig{Driver: config.StorageMemory},
		State:   config.StateConfig{Backend: config.StateMemory},
		Market:  config.MarketConfig{ChannelID: -100500, BotUsername: "lot_bot"},
	}
}

func findRoute(routes []coretelegram.Route, endpoint string) tele.HandlerFunc {
	for _, r := range routes {
		if r.Endpoint == endpoint {
			return r.Handler
		}
	}
	return nil
}

func TestAppRegistersCommands(t *testing.T) {
	app, err := New(context.Background(), memoryConfig(), nil)
	require.NoError(t, err)

	opts, err := app.TelegramRunOptions()
	require.NoError(t, err)
	assert.Len(t, opts.Registry.Commands(), len(app.Router().Commands()))

	_, cmd, ok := opts.Registry.LookupCommand("menu")
	require.True(t, ok)
	assert.False(t, cmd.AdminOnly)
	_, cmd, ok = opts.Registry.LookupCommand("dltall")
	require.True(t, ok)
	assert.True(t, cmd.AdminOnly)

	for _, endpoint := range []string{"/start", "/menu", tele.OnText, tele.OnPhoto, tele.OnWebApp, tele.OnDocument} {
		assert.NotNil(t, findRoute(opts.Routes, endpoint), endpoint)
	}
	assert.Equal(t, 1, opts.DispatcherOptions.Workers)
}

func TestAppDispatchesThroughRoutes(t *testing.T) {
	app, err := New(context.Background(), memoryConfig(), nil)
	require.NoError(t, err)
	api := &fakeAPI{}
	app.notifier.bind(api)

	opts, err := app.TelegramRunOptions()
	require.NoError(t, err)

	msg := userMessage(100)
	msg.Text = "/seller"
	require.NoError(t, findRoute(opts.Routes, "/seller")(newContext(t, msg)))

	phase, err := app.Router().Engine().Phase(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, market.SellerPhone{}, phase)
	require.Len(t, api.sent, 1)
	assert.Equal(t, "100", api.sent[0].to)

	msg = userMessage(100)
	msg.Text = "555-0100"
	require.NoError(t, findRoute(opts.Routes, tele.OnText)(newContext(t, msg)))
	phase, err = app.Router().Engine().Phase(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, market.SellerEmail{Phone: "555-0100"}, phase)
}

func TestAppOnStartKeepsConfiguredUsername(t *testing.T) {
	app, err := New(context.Background(), memoryConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, app.onStart(context.Background(), coretelegram.Runtime{}))
	assert.Equal(t, "lot_bot", app.Router().Engine().BotUsername())
	require.NoError(t, app.onStop(context.Background(), coretelegram.Runtime{}))
}

func TestNewRejectsPostgresWithoutDB(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Driver = config.StoragePostgres
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestAppRedisStateSurvivesRestart(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.State = config.StateConfig{Backend: config.StateRedis, RedisURL: "redis://" + mr.Addr(), KeyPrefix: "lotbot:"}

	app, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	app.notifier.bind(&fakeAPI{})
	opts, err := app.TelegramRunOptions()
	require.NoError(t, err)

	msg := userMessage(200)
	msg.Text = "/seller"
	require.NoError(t, findRoute(opts.Routes, "/seller")(newContext(t, msg)))
	assert.True(t, mr.Exists("lotbot:200"))
	assert.False(t, mr.Exists("lotbot:lock:200"))
	require.NoError(t, app.onStop(context.Background(), coretelegram.Runtime{}))

	restarted, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = restarted.onStop(context.Background(), coretelegram.Runtime{}) })
	phase, err := restarted.Router().Engine().Phase(context.Background(), 200)
	require.NoError(t, err)
	assert.Equal(t, market.SellerPhone{}, phase)
}
