package runner

import (
	"context"
	"time"

	"kalshi_bot/internal/config"
	"kalshi_bot/internal/exchange"
	healthsvc "kalshi_bot/internal/modules/health/service"
	"kalshi_bot/internal/store"
	"kalshi_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(c *exchange.KalshiClient) LastTradeSource { return c },
			func(c *exchange.KalshiClient) TickStreamer { return c },
			NewRunner,
			func(r *Runner) healthsvc.StatusSource { return r },
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			r *Runner,
			cfg *config.Config,
			processed *store.Processed,
			ctx context.Context,
		) {
			lc.Append(fx.Hook{
				OnStart: func(startCtx context.Context) error {
					// processed-набор обязан пережить рестарт
					if err := processed.Load(startCtx); err != nil {
						logger.Error("runner: processed-набор не прогрелся: %v", err)
					}
					go func() {
						t := time.NewTicker(cfg.TickInterval)
						defer t.Stop()
						for {
							select {
							case <-ctx.Done():
								return
							case <-t.C:
								r.Tick(ctx)
							}
						}
					}()
					return nil
				},
			})
		}),
	)
}
