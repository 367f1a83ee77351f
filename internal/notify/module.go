package notify

import (
	"context"

	"kalshi_bot/internal/config"
	"kalshi_bot/internal/exchange"
	"kalshi_bot/internal/store"
	"kalshi_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			func(cfg *config.Config, ex exchange.Client, settings *store.Settings) Notifier {
				if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
					// конфиг-ошибка гасит только нотифайер, не весь процесс
					logger.Warn("notify: телеграм не сконфигурен, уходим в stdout")
					return NewStdout()
				}
				tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, ex, settings, RetryPolicy{
					Attempts:     cfg.NotifyRetries,
					BackoffStart: cfg.NotifyBackoffStart,
					BackoffCap:   cfg.NotifyBackoffCap,
				})
				if err != nil {
					logger.Error("notify: телеграм не поднялся (%v), уходим в stdout", err)
					return NewStdout()
				}
				return tg
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, n Notifier, ctx context.Context) {
			tg, ok := n.(*Telegram)
			if !ok {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					return tg.Start(ctx)
				},
				OnStop: func(_ context.Context) error {
					tg.Stop()
					return nil
				},
			})
		}),
	)
}
