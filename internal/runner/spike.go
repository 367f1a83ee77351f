package runner

import (
	"context"
	"time"

	"kalshi_bot/internal/exchange"
	"kalshi_bot/internal/models"
	"kalshi_bot/pkg/logger"
)

// spikePass — сперва сливаем накопившиеся WS-тики, затем прогоняем
// детектор по каждому. Окна цен пишет только этот цикл.
func (r *Runner) spikePass(ctx context.Context, st *models.Settings) {
	for {
		select {
		case t := <-r.ticks:
			r.observe(ctx, st, t)
		default:
			return
		}
	}
}

// observe — стейт-машина по инструменту:
// Idle → (sample, window check) → AlertFired → (history cleared) → Idle.
// Суб-пороговые тики окно НЕ сбрасывают, оно только скользит;
// сброс до [{current, now}] — после сработавшего алерта или волюм-гейта.
func (r *Runner) observe(ctx context.Context, st *models.Settings, tick exchange.PriceTick) {
	inst, ok := r.instrumentByTicker(tick.Ticker)
	if !ok {
		return
	}

	// session low — для гейта "не догонять ушедшее движение"
	if low, ok := r.sessionLow[tick.Ticker]; !ok || tick.YesPrice < low {
		r.sessionLow[tick.Ticker] = tick.YesPrice
	}

	w, ok := r.windows[tick.Ticker]
	if !ok {
		w = models.NewPriceWindow(st.Spike.Window)
		r.windows[tick.Ticker] = w
	}
	w.Add(tick.YesPrice, tick.At)

	oldest, ok := w.Oldest()
	if !ok || oldest.Price <= 0 {
		return
	}

	moved := tick.YesPrice - oldest.Price
	abs := moved
	if abs < 0 {
		abs = -abs
	}
	pct := float64(abs) / float64(oldest.Price)

	if pct < st.Spike.AlertPct {
		return
	}
	// около решённого рынка движение не новость
	if oldest.Price >= st.NearCertaintyCeiling {
		return
	}

	// волюм-гейт: тонкий рынок дёргается сам по себе.
	// Сбрасываем окно без нотификации, чтобы тот же шум не копился.
	if inst.Volume < st.Spike.MinVolume {
		logger.Info("spike: [%s] %.1f%% на объёме %d < %d — шум, окно сброшено",
			tick.Ticker, pct*100, inst.Volume, st.Spike.MinVolume)
		w.Reset(tick.YesPrice, tick.At)
		return
	}

	// алерт состоялся — окно чистим, чтобы не стрелять по тому же движению
	defer w.Reset(tick.YesPrice, tick.At)

	dir := "⬆️"
	if moved < 0 {
		dir = "⬇️"
	}
	logger.Info("spike: [%s] %s %d→%d (%.1f%%) vol=%d", tick.Ticker, dir, oldest.Price, tick.YesPrice, pct*100, inst.Volume)
	if r.canSend("spike:"+tick.Ticker, 10*time.Minute) {
		r.notifier.Sendf("%s [%s] Движение %d¢ → %d¢ (%.1f%%), объём %d", dir, tick.Ticker, oldest.Price, tick.YesPrice, pct*100, inst.Volume)
	}

	if moved > 0 && pct >= st.Spike.AutoBuyPct {
		r.maybeAutoBuy(ctx, st, inst, tick, abs)
	}
}

// maybeAutoBuy — автопокупка по спайку, каждый гейт с собственной причиной в логе.
func (r *Runner) maybeAutoBuy(ctx context.Context, st *models.Settings, inst *models.Instrument, tick exchange.PriceTick, absCents int) {
	sp := st.Spike
	switch {
	case !sp.AutoBuyEnabled:
		return
	case tick.YesPrice < sp.MinPriceFloor:
		logger.Info("spike: [%s] автобай мимо — цена %d ниже пола %d", tick.Ticker, tick.YesPrice, sp.MinPriceFloor)
		return
	case absCents < sp.MinAbsCents:
		logger.Info("spike: [%s] автобай мимо — движение %d¢ меньше минимума %d¢", tick.Ticker, absCents, sp.MinAbsCents)
		return
	case tick.YesPrice >= sp.MaxEntryPrice:
		logger.Info("spike: [%s] автобай мимо — цена %d выше потолка входа %d", tick.Ticker, tick.YesPrice, sp.MaxEntryPrice)
		return
	}

	if low, ok := r.sessionLow[tick.Ticker]; ok && tick.YesPrice-low > sp.MaxRunUpCents {
		logger.Info("spike: [%s] автобай мимо — ран-ап %d¢ от лоу сессии, поезд ушёл", tick.Ticker, tick.YesPrice-low)
		return
	}

	if sp.NeedCorroborate {
		at, ok := r.lastSignalAt[tick.Ticker]
		if !ok || time.Since(at) > sp.CorroborateWin {
			logger.Info("spike: [%s] автобай мимо — нет свежего сигнала классификатора", tick.Ticker)
			return
		}
	}

	// синтетический сигнал: движение цены — это Serious, не Confirmed
	sig := models.Signal{
		Entity: inst.Entity,
		Tier:   models.TierSerious,
		Score:  scorePriceSpike,
		Action: models.ActionBuyYes,
		Reason: "spike_auto_buy",
	}
	tier := st.TierFor(models.TierSerious)
	pct := SizePct(tier.BasePct, sig.Score, tick.YesPrice, tier.Weight)
	count := Contracts(st.BaseContracts, pct)
	if count == 0 {
		return
	}

	res := r.Execute(ctx, st, execRequest{
		Instrument: inst,
		Side:       models.SideYes,
		Action:     actionBuy,
		Count:      count,
		MaxPrice:   tier.MaxPrice,
		Tier:       models.TierSerious,
		Signal:     &sig,
	})
	logger.Info("spike: [%s] автобай => ok=%t reason=%s", tick.Ticker, res.OK, res.Reason)
}

const scorePriceSpike = 65
