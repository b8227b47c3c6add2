package middleware

import (
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/m3rciful/lotbot/core/logger"
	"github.com/m3rciful/lotbot/core/metrics"
	tghelpers "github.com/m3rciful/lotbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const defaultRateLimitUsers = 4096

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval time.Duration
	Exclude  map[string]struct{}
	// MaxUsers bounds how many senders are tracked; the least recently seen are forgotten first.
	MaxUsers  int
	OnLimited tele.HandlerFunc
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between messages from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	size := opts.MaxUsers
	if size <= 0 {
		size = defaultRateLimitUsers
	}
	lastSeen, err := lru.New(size)
	if err != nil {
		// lru.New fails only for a non-positive size.
		panic(err)
	}
	var mu sync.Mutex

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}

			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			now := time.Now()

			mu.Lock()
			if v, ok := lastSeen.Get(user.ID); ok && now.Sub(v.(time.Time)) < opts.Interval {
				mu.Unlock()
				metrics.RateLimitedTotal.Inc()
				attrs := []slog.Attr{
					slog.Int64("user_id", user.ID),
					slog.String("kind", kind),
				}
				if chat := c.Chat(); chat != nil {
					attrs = append(attrs, slog.Int64("chat_id", chat.ID))
				}
				logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit", attrs...)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			lastSeen.Add(user.ID, now)
			mu.Unlock()
			return next(c)
		}
	}
}
