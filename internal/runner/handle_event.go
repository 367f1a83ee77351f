package runner

import (
	"context"
	"time"

	"kalshi_bot/internal/models"
	"kalshi_bot/pkg/logger"

	"github.com/google/uuid"
)

// eventsPass — свежие события в порядке получения; обработка каждого
// полностью сериализована: classify → resolve → size → execute,
// только потом следующее событие.
func (r *Runner) eventsPass(ctx context.Context, st *models.Settings) {
	events, err := r.poller.Drain(ctx)
	if err != nil {
		logger.Error("events: поллер упал, шаг пропущен до следующего тика: %v", err)
		return
	}
	for _, ev := range events {
		r.processEvent(ctx, st, ev)
	}
}

func (r *Runner) processEvent(ctx context.Context, st *models.Settings, ev models.TweetEvent) {
	signals := r.classifier.Classify(ctx, ev, r.entityCandidates())

	outcome := "classified"
	if len(signals) == 0 {
		outcome = "skipped"
	}
	if err := r.audit.RecordEvent(ctx, &models.EventRecord{
		ID: ev.ID, Author: ev.Author, Text: ev.Text, Outcome: outcome, At: ev.At,
	}); err != nil {
		logger.Error("events: аудит события %s не записался: %v", ev.ID, err)
	}

	for _, sig := range signals {
		r.processSignal(ctx, st, sig)
	}
}

func (r *Runner) processSignal(ctx context.Context, st *models.Settings, sig models.Signal) {
	// резолв строгий: неоднозначность = нет инструмента, не догадка
	var inst *models.Instrument
	var ok bool
	if sig.Destination != "" {
		inst, ok = r.resolver.ResolveWithDestination(sig.Entity, sig.Destination, r.instruments)
		if !ok {
			// направленный не нашёлся — только базовый рынок без направления,
			// рынок чужого направления Resolve не отдаст
			inst, ok = r.resolver.Resolve(sig.Entity, r.instruments)
		}
	} else {
		inst, ok = r.resolver.Resolve(sig.Entity, r.instruments)
	}

	sigID := uuid.NewString()
	rec := &models.SignalRecord{
		ID:      sigID,
		EventID: sig.Event.ID,
		Author:  sig.Event.Author,
		Entity:  sig.Entity,
		Tier:    sig.Tier,
		Score:   sig.Score,
		Action:  sig.Action,
		Reason:  sig.Reason,
		At:      time.Now(),
	}
	if ok {
		rec.Ticker = inst.Ticker
	}
	if err := r.audit.RecordSignal(ctx, rec); err != nil {
		logger.Error("events: аудит сигнала не записался: %v", err)
	}

	if !ok {
		logger.Info("events: [%s] %q не резолвится в инструмент, сигнал не торгуем", sig.Event.ID, sig.Entity)
		return
	}

	// корреляция для спайк-детектора
	r.lastSignalAt[inst.Ticker] = time.Now()

	side := models.SideYes
	if sig.Action == models.ActionBuyNo {
		side = models.SideNo
	}
	entryPrice := inst.PriceFor(side)

	tier := st.TierFor(sig.Tier)
	rel := r.reliabilityMultiplier(ctx, sig.Event.Author, tier)
	pct := SizePct(tier.BasePct, sig.Score, entryPrice, rel)
	count := Contracts(st.BaseContracts, pct)
	if count == 0 {
		// валидный skip, не ошибка
		logger.Info("events: [%s] сайзинг дал 0 контрактов (pct=%.4f), пропуск", inst.Ticker, pct)
		return
	}

	res := r.Execute(ctx, st, execRequest{
		Instrument: inst,
		Side:       side,
		Action:     actionBuy,
		Count:      count,
		MaxPrice:   tier.MaxPrice,
		Tier:       sig.Tier,
		Signal:     &sig,
		SignalID:   sigID,
	})
	logger.Info("events: [%s] %s x%d => ok=%t paper=%t reason=%q",
		inst.Ticker, side, count, res.OK, res.Paper, res.Reason)
}
