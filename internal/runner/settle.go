package runner

import (
	"context"
	"time"

	"kalshi_bot/internal/exchange"
	"kalshi_bot/internal/models"
	"kalshi_bot/pkg/logger"
)

const settleEvery = 15 * time.Minute

// settlePass — докачиваем разрешённые рынки отслеживаемых серий и
// проставляем исход связанных сигналов. Без этого историческая точность
// источников не накапливается и сайзинг вечно сидит на весе тира.
func (r *Runner) settlePass(ctx context.Context) {
	if time.Since(r.settledAt) < settleEvery {
		return
	}
	r.settledAt = time.Now()

	if len(r.cfg.Series) == 0 {
		got, err := r.ex.GetMarkets(ctx, exchange.MarketsFilter{Status: models.StatusSettled, Limit: 200})
		if err != nil {
			logger.Warn("settle: разрешённые рынки не прочитались: %v", err)
			return
		}
		r.settleInstruments(ctx, got)
		return
	}
	for _, series := range r.cfg.Series {
		got, err := r.ex.GetMarkets(ctx, exchange.MarketsFilter{SeriesTicker: series, Status: models.StatusSettled, Limit: 200})
		if err != nil {
			logger.Warn("settle: серия %s не прочиталась: %v", series, err)
			continue
		}
		r.settleInstruments(ctx, got)
	}
}

func (r *Runner) settleInstruments(ctx context.Context, settled []models.Instrument) {
	for _, inst := range settled {
		if inst.Result != models.ResultYes && inst.Result != models.ResultNo {
			continue
		}
		sigs, err := r.audit.UnresolvedSignals(ctx, inst.Ticker)
		if err != nil {
			logger.Warn("settle: [%s] сигналы не прочитались: %v", inst.Ticker, err)
			continue
		}
		for _, s := range sigs {
			correct := (inst.Result == models.ResultYes && s.Action == models.ActionBuyYes) ||
				(inst.Result == models.ResultNo && s.Action == models.ActionBuyNo)
			if err := r.audit.MarkResolved(ctx, s.ID, correct); err != nil {
				logger.Warn("settle: [%s] сигнал %s не закрылся: %v", inst.Ticker, s.ID, err)
				continue
			}
			logger.Info("settle: [%s] result=%s, сигнал %s (%s) => correct=%t",
				inst.Ticker, inst.Result, s.ID, s.Author, correct)
		}
	}
}
