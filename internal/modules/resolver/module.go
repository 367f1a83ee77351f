package resolver

import (
	"kalshi_bot/internal/modules/resolver/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("resolver",
		fx.Provide(
			service.New,
		),
	)
}
