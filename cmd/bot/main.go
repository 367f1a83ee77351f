package main

import (
	"context"
	"log"

	"kalshi_bot/internal/config"
	"kalshi_bot/internal/exchange"
	"kalshi_bot/internal/feed"
	"kalshi_bot/internal/modules/classifier"
	"kalshi_bot/internal/modules/health"
	"kalshi_bot/internal/modules/postgres"
	"kalshi_bot/internal/modules/resolver"
	"kalshi_bot/internal/notify"
	"kalshi_bot/internal/runner"
	"kalshi_bot/internal/store"
	"kalshi_bot/pkg/logger"
	"kalshi_bot/pkg/tracing"

	"go.uber.org/fx"
)

const serviceName = "kalshi_bot"

func main() {
	logger.SetServiceName(serviceName)
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	tracing.SetServiceName(serviceName)

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		exchange.Module(),
		store.Module(),
		classifier.Module(),
		resolver.Module(),
		feed.Module(),
		notify.Module(),
		runner.Module(),
		health.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			// InitTracer выставляет глобальный трейсер сам
			_, closer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					closer()
					return nil
				},
			})
			return nil
		}),
	)
	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	<-app.Done()
	_ = app.Stop(context.Background())
}
