package main

import (
	"context"
	"log"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/m3rciful/lotbot/core/bootstrap"
	"github.com/m3rciful/lotbot/core/buildinfo"
	corecmd "github.com/m3rciful/lotbot/core/cmd"
	"github.com/m3rciful/lotbot/core/logger"
	"github.com/m3rciful/lotbot/core/metrics"
	coretelegram "github.com/m3rciful/lotbot/core/telegram"
	"github.com/m3rciful/lotbot/internal/bot"
	"github.com/m3rciful/lotbot/internal/config"
)

func main() {
	var metricsListen string

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		EnvFiles:          []string{".env"},
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg := carrier.(*config.Config)
			metricsListen = cfg.Metrics.Listen

			res, err := bootstrap.Run(bootstrap.Options{
				Config:       cfg.CoreConfig(),
				Database:     cfg.Database,
				SkipDatabase: cfg.Storage.Driver == config.StorageMemory,
			})
			if err != nil {
				return nil, err
			}
			logger.Info(context.Background(), "app", "bootstrap", append(buildinfo.Attrs(),
				slog.String("storage", cfg.Storage.Driver),
				slog.String("state", cfg.State.Backend),
			)...)
			return bot.New(context.Background(), cfg, res.DB)
		},
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return coretelegram.RunTelegram(gctx, opts) })
			g.Go(func() error { return metrics.Serve(gctx, metricsListen) })
			return g.Wait()
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
