package runner

import (
	"context"
	"time"

	"kalshi_bot/internal/helper"
	"kalshi_bot/internal/models"
	"kalshi_bot/pkg/logger"
)

// profitPass — оценка каждой открытой ноги. Позиции берём ЖИВЫМ запросом:
// кэш через границу решения — корневая причина двойных продаж.
func (r *Runner) profitPass(ctx context.Context, st *models.Settings) {
	positions, err := r.ex.GetPositions(ctx)
	if err != nil {
		logger.Error("profit: позиции не прочитали, пасс пропущен: %v", err)
		return
	}
	if len(positions) == 0 {
		return
	}

	for _, pos := range positions {
		// уже стоящий sell проверяем живым запросом, не памятью:
		// память рестарт не переживает
		resting, err := r.ex.GetRestingOrders(ctx, pos.Ticker)
		if err != nil {
			logger.Warn("profit: [%s] resting-ордера не прочитали, тикер пропущен: %v", pos.Ticker, err)
			continue
		}
		hasSell := false
		for _, o := range resting {
			if o.Action == actionSell {
				hasSell = true
				break
			}
		}
		if hasSell {
			continue
		}

		for _, leg := range pos.Legs() {
			r.evaluateLeg(ctx, st, leg)
		}
	}
}

// evaluateLeg — приоритетная лесенка правил, первым совпавшим и кончаем:
// 1) почти-решённый рынок — полный выход;
// 2) фиксация половины на сильном плюсе;
// 3) стоп-лосс вне финального окна;
// 4) ликвидация в финальном окне при слабой цене;
// 5) hold.
func (r *Runner) evaluateLeg(ctx context.Context, st *models.Settings, leg models.PositionLeg) {
	inst, ok := r.instrumentByTicker(leg.Ticker)
	if !ok {
		return
	}

	// entry обязан быть в базисе своей стороны; битую запись не угадываем
	if leg.Entry > 0 && leg.Entry >= 100 {
		logger.Error("profit: [%s/%s] entry=%d вне диапазона, нога пропущена", leg.Ticker, leg.Side, leg.Entry)
		return
	}

	cur := leg.CurrentPrice(inst.YesPrice)
	profitPer := cur - leg.Entry
	pnl := leg.PnLPct(inst.YesPrice)

	p := st.Profit
	inFinalWindow := !inst.CloseTime.IsZero() && time.Until(inst.CloseTime) <= p.DeadlineWindow

	switch {
	// 1. около разрешения: забираем всё, цена не ниже entry+маржа
	case cur >= p.NearResolution && profitPer >= p.MinProfitCents:
		price := leg.Entry + p.ExitMarginCents
		if alt := cur - p.SellSlipCents; alt > price {
			price = alt
		}
		r.sellLeg(ctx, st, leg, leg.Contracts, price, "near_resolution")

	// 2. частичная фиксация: >=30% профита и цена >=60 — половину,
	// остаток едет дальше
	case pnl >= p.PartialGainPct && cur >= p.PartialMinPrice:
		half := leg.Contracts / 2
		if half < p.PartialMinLot {
			return
		}
		r.sellLeg(ctx, st, leg, half, cur-p.SellSlipCents, "partial_profit")

	// 3. стоп-лосс, но не внутри финального окна (там правит правило 4)
	case pnl <= p.StopLossPct && !inFinalWindow:
		r.sellLeg(ctx, st, leg, leg.Contracts, cur-2*p.SellSlipCents, "stop_loss")

	// 4. финальное окно + слабая цена: бинарный риск без времени на
	// разворот — ликвидация любой ценой
	case inFinalWindow && cur < p.ConfidenceFloor:
		r.sellLeg(ctx, st, leg, leg.Contracts, cur-2*p.SellSlipCents, "deadline_liquidation")

	// 5. hold; заметный PnL репортим, но не каждый тик
	default:
		if (pnl >= p.ReportPct || pnl <= -p.ReportPct) &&
			r.canSend("hold:"+helper.LegKey(leg.Ticker, string(leg.Side)), 10*time.Minute) {
			logger.Info("profit: [%s/%s] hold, PnL %.1f%% (entry %d¢, cur %d¢)", leg.Ticker, leg.Side, pnl, leg.Entry, cur)
		}
	}
}

func (r *Runner) sellLeg(ctx context.Context, st *models.Settings, leg models.PositionLeg, count, wantPrice int, reason string) {
	if count <= 0 {
		return
	}
	if wantPrice < 1 {
		wantPrice = 1
	}

	logger.Info("profit: [%s/%s] %s => sell x%d (entry %d¢)", leg.Ticker, leg.Side, reason, count, leg.Entry)
	if reason == "stop_loss" || reason == "deadline_liquidation" {
		r.notifier.Sendf("🛑 [%s] %s: продаём %d контрактов (%s)", leg.Ticker, reason, count, leg.Side)
	}

	res := r.Execute(ctx, st, execRequest{
		Instrument: r.mustInstrument(leg.Ticker),
		Side:       leg.Side,
		Action:     actionSell,
		Count:      count,
		WantPrice:  wantPrice,
		Tier:       models.TierConfirmed, // для sell тир влияет только на лог
	})
	if !res.OK && !res.Paper {
		logger.Warn("profit: [%s/%s] выход не прошёл: %s", leg.Ticker, leg.Side, res.Reason)
	}
}

func (r *Runner) mustInstrument(ticker string) *models.Instrument {
	if inst, ok := r.instrumentByTicker(ticker); ok {
		return inst
	}
	return &models.Instrument{Ticker: ticker, Status: models.StatusOpen}
}
