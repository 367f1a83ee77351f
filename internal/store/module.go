package store

import (
	"kalshi_bot/internal/config"
	"kalshi_bot/pkg/db"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("store",
		fx.Provide(
			func(pg *db.PgTxManager, cfg *config.Config) *Settings {
				return NewSettings(pg, cfg.SettingsTTL)
			},
			NewAudit,
			NewProcessed,
		),
	)
}
