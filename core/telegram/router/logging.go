package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/lotbot/core/logger"
	"github.com/m3rciful/lotbot/core/metrics"
	tghelpers "github.com/m3rciful/lotbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const (
	outcomeOK   = "ok"
	outcomeFail = "fail"
	outcomeSkip = "skip"
)

// handled runs fn as handlerName and writes one summary line for it.
func handled(c tele.Context, handlerName string, fn func() error) error {
	start := time.Now()
	tghelpers.WithHandler(c, handlerName)
	err := fn()
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeFail
	}
	logSummary(c, handlerName, outcome, time.Since(start), err)
	return err
}

func logSummary(c tele.Context, handlerName, outcome string, took time.Duration, err error) {
	ctx := tghelpers.WithHandler(c, handlerName)
	metrics.RecordHandler(handlerName, outcome, took)

	attrs := []slog.Attr{
		slog.String("outcome", outcome),
		slog.Int64("duration_ms", logger.RoundMS(took).Milliseconds()),
	}
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.Event(ctx, "tg", level, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// errorCode names the innermost error type, e.g. "ERRORSTRING" for errors.New.
func errorCode(err error) string {
	for next := errors.Unwrap(err); next != nil; next = errors.Unwrap(next) {
		err = next
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(t.Name())
}
