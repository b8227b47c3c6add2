package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/lotbot/core/metrics"
)

func newTestContext(t *testing.T, upd tele.Update) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return bot.NewContext(upd)
}

func textUpdate(id int, userID int64, text string) tele.Update {
	return tele.Update{
		ID: id,
		Message: &tele.Message{
			Text:   text,
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		},
	}
}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, KindOther, UpdateKind(tele.Update{}))
	assert.Equal(t, KindCommand, UpdateKind(textUpdate(1, 1, " /start")))
	assert.Equal(t, KindMessage, UpdateKind(textUpdate(1, 1, "hello")))
	assert.Equal(t, KindPhoto, UpdateKind(tele.Update{Message: &tele.Message{Photo: &tele.Photo{}}}))
	assert.Equal(t, KindWebApp, UpdateKind(tele.Update{Message: &tele.Message{WebAppData: &tele.WebAppData{Data: "{}"}}}))
}

func TestRateLimitDropsBurst(t *testing.T) {
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	before := testutil.ToFloat64(metrics.RateLimitedTotal)
	require.NoError(t, h(newTestContext(t, textUpdate(1, 7, "a"))))
	require.NoError(t, h(newTestContext(t, textUpdate(2, 7, "b"))))
	require.NoError(t, h(newTestContext(t, textUpdate(3, 8, "c"))))

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, limited)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitedTotal))
}

func TestRateLimitExcludedKind(t *testing.T) {
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{KindCommand: {}},
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	for i := 0; i < 3; i++ {
		require.NoError(t, h(newTestContext(t, textUpdate(i, 7, "/lots"))))
	}
	assert.Equal(t, 3, calls)
}

func TestRateLimitForgetsLeastRecentUser(t *testing.T) {
	mw := RateLimitMiddleware(RateLimitOptions{Interval: time.Hour, MaxUsers: 1})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	require.NoError(t, h(newTestContext(t, textUpdate(1, 7, "a"))))
	require.NoError(t, h(newTestContext(t, textUpdate(2, 8, "b"))))
	// 7 was evicted by 8.
	require.NoError(t, h(newTestContext(t, textUpdate(3, 7, "c"))))
	assert.Equal(t, 3, calls)
}

func TestRecoverMiddlewareReturnsError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(newTestContext(t, textUpdate(1, 7, "a")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	assert.ErrorIs(t, h(newTestContext(t, textUpdate(1, 7, "a"))), want)
}

func TestMetricsMiddlewareCountsByStatus(t *testing.T) {
	ok := testutil.ToFloat64(metrics.UpdatesTotal.WithLabelValues(KindCommand, "ok"))
	failed := testutil.ToFloat64(metrics.UpdatesTotal.WithLabelValues(KindMessage, "error"))

	h := MetricsMiddleware(func(tele.Context) error { return nil })
	require.NoError(t, h(newTestContext(t, textUpdate(1, 7, "/start"))))

	h = MetricsMiddleware(func(tele.Context) error { return errors.New("boom") })
	require.Error(t, h(newTestContext(t, textUpdate(2, 7, "hello"))))

	assert.Equal(t, ok+1, testutil.ToFloat64(metrics.UpdatesTotal.WithLabelValues(KindCommand, "ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(metrics.UpdatesTotal.WithLabelValues(KindMessage, "error")))
}

func TestLoggerMiddlewareSetsRID(t *testing.T) {
	c := newTestContext(t, textUpdate(3, 8, "hi"))
	var rid string
	h := LoggerMiddleware(func(c tele.Context) error {
		rid, _ = c.Get("rid").(string)
		return nil
	})
	require.NoError(t, h(c))
	assert.Equal(t, "3:8:8", rid)
}
