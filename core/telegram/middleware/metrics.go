package middleware

import (
	"github.com/m3rciful/lotbot/core/metrics"

	tele "gopkg.in/telebot.v4"
)

// MetricsMiddleware counts every update by kind once the chain below it returns.
func MetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		err := next(c)
		metrics.RecordUpdate(UpdateKind(c.Update()), err)
		return err
	}
}
