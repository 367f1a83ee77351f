package classifier

import (
	"time"

	"kalshi_bot/internal/config"
	"kalshi_bot/internal/modules/classifier/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("classifier",
		fx.Provide(
			func(cfg *config.Config) *service.Classifier {
				var analyzer service.Analyzer
				if cfg.Analyzer.URL != "" {
					analyzer = service.NewHTTPAnalyzer(cfg.Analyzer.URL, time.Duration(cfg.Analyzer.TimeoutSec)*time.Second)
				}
				return service.New(service.DefaultRules(), analyzer)
			},
		),
	)
}
