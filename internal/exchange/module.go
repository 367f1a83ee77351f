package exchange

import (
	"kalshi_bot/internal/config"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("exchange",
		fx.Provide(
			func(cfg *config.Config) *KalshiClient {
				return NewKalshiClient(cfg.Kalshi.BaseURL, cfg.Kalshi.WSURL, NewAPIKeySigner(cfg.Kalshi.APIKey))
			},
			func(c *KalshiClient) Client { return c },
		),
	)
}
