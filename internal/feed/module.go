package feed

import (
	"kalshi_bot/internal/config"
	"kalshi_bot/internal/store"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("feed",
		fx.Provide(
			func(cfg *config.Config, processed *store.Processed) *Poller {
				var src Source
				if cfg.Feed.URL != "" {
					src = NewHTTPSource(cfg.Feed.URL)
				}
				return NewPoller(src, processed)
			},
		),
	)
}
