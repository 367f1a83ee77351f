package runner

import (
	"context"
	"time"

	"kalshi_bot/internal/exchange"
	"kalshi_bot/internal/models"
	"kalshi_bot/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	actionBuy  = "buy"
	actionSell = "sell"

	sellNoSlipFloor = 95 // с этой цены edge уже реализован, слиппедж не даём
)

type execRequest struct {
	Instrument *models.Instrument
	Side       models.Side
	Action     string // buy/sell
	Count      int
	MaxPrice   int // buy: потолок тира, в базисе стороны
	WantPrice  int // sell: лимит, посчитанный правилом выхода
	Tier       models.Tier
	Signal     *models.Signal
	SignalID   string
}

// Execute — терминальная точка исполнения. Порядок проверок фиксирован:
// kill switch → дедуп → сверка референса → ценовые гарды → агрессивность.
// Ордер НИКОГДА не ретраится автоматически: тихий повтор финансового
// ордера опаснее пропущенного.
func (r *Runner) Execute(ctx context.Context, st *models.Settings, req execRequest) models.OrderResult {
	ticker := req.Instrument.Ticker

	// 1. kill switch — всегда первым, безусловно
	if !st.TradingEnabled {
		paper := req.MaxPrice
		if req.Action == actionSell {
			paper = req.WantPrice
		}
		logger.Info("guard: [%s] kill switch: would have traded %s %s x%d (%d¢)",
			ticker, req.Action, req.Side, req.Count, paper)
		r.recordTrade(ctx, req, paper, "paper", "")
		return models.OrderResult{Reason: "kill_switch", Paper: true, Count: req.Count}
	}

	// 2. дедуп покупок: два независимых источника сигнала не должны
	// купить один инструмент дважды подряд
	if req.Action == actionBuy {
		if til, ok := r.dedupTil[ticker]; ok && time.Now().Before(til) {
			logger.Info("guard: [%s] deduped, кулдаун до %s", ticker, til.Format(time.TimeOnly))
			return models.OrderResult{Reason: "deduped"}
		}
	}

	// 3. референсная цена: живой стакан против кэша последней сделки.
	// Расходятся сильнее порога — верим сделке (тонкий стакан врёт)
	ref, ok := r.referencePrice(ctx, st, ticker, req.Side)
	if !ok {
		return models.OrderResult{Reason: "no_reference"}
	}

	limit := 0
	if req.Action == actionBuy {
		// 4. бай-гарды
		if ref >= st.NearCertaintyCeiling {
			logger.Info("guard: [%s] референс %d¢ у потолка %d — edge не осталось", ticker, ref, st.NearCertaintyCeiling)
			if r.canSend("skip_price:"+ticker, 30*time.Minute) {
				r.notifier.Sendf("⚠️ [%s] Пропуск: цена %d¢ у почти-решённого рынка", ticker, ref)
			}
			return models.OrderResult{Reason: "near_certainty"}
		}
		if ref > req.MaxPrice {
			logger.Info("guard: [%s] референс %d¢ выше потолка тира %d¢ — не гонимся", ticker, ref, req.MaxPrice)
			if r.canSend("skip_tier:"+ticker, 30*time.Minute) {
				r.notifier.Sendf("⚠️ [%s] Пропуск: %d¢ дороже бюджета тира %s (%d¢)", ticker, ref, req.Tier, req.MaxPrice)
			}
			return models.OrderResult{Reason: "tier_ceiling"}
		}

		// 5. агрессивность по тиру: новостные рынки двигаются за секунды,
		// верхний тир бидует в потолок ради гарантии филла
		switch req.Tier {
		case models.TierConfirmed:
			limit = req.MaxPrice
		case models.TierImminent:
			limit = ref + (req.MaxPrice-ref)/2
		default:
			limit = ref + st.SlippageCents
			if limit > req.MaxPrice {
				limit = req.MaxPrice
			}
		}
	} else {
		// 6. цена продажи: правило выхода уже посчитало свой лимит —
		// уважаем его; без лимита считаем от референса. У почти-решённого
		// рынка ниже референса не отдаём: edge уже наш, ноль слиппеджа
		limit = req.WantPrice
		if limit <= 0 {
			limit = ref - st.Profit.SellSlipCents
		}
		if ref >= sellNoSlipFloor && limit < ref {
			limit = ref
		}
		if limit < 1 {
			limit = 1
		}
	}

	resp, err := r.ex.PlaceOrder(ctx, exchange.OrderRequest{
		Ticker:        ticker,
		Side:          req.Side,
		Action:        req.Action,
		Count:         req.Count,
		LimitPrice:    limit,
		ClientOrderID: uuid.NewString(),
	})
	if err != nil {
		logger.Error("guard: [%s] submit %s %s x%d @ %d¢ не прошёл: %v", ticker, req.Action, req.Side, req.Count, limit, err)
		r.recordTrade(ctx, req, limit, "error", "")
		return models.OrderResult{Reason: "submit_failed"}
	}

	if req.Action == actionBuy {
		r.dedupTil[ticker] = time.Now().Add(st.DedupCooldown)
	}

	r.recordTrade(ctx, req, limit, "submitted", resp.OrderID)
	r.notifier.Sendf("✅ [%s] %s %s x%d @ %d¢ (tier=%s, order=%s)",
		ticker, req.Action, req.Side, req.Count, limit, req.Tier, resp.OrderID)

	return models.OrderResult{OK: true, OrderID: resp.OrderID, Price: limit, Count: req.Count}
}

// referencePrice — цена для оценки агрессивности, в базисе стороны.
func (r *Runner) referencePrice(ctx context.Context, st *models.Settings, ticker string, side models.Side) (int, bool) {
	book := 0
	ob, err := r.ex.GetOrderbook(ctx, ticker)
	if err != nil {
		logger.Warn("guard: [%s] стакан не прочитали: %v", ticker, err)
	} else if side == models.SideNo {
		book = ob.NoAsk
	} else {
		book = ob.YesAsk
	}

	cached := 0
	if yes, ok := r.lastTrades.LastTrade(ticker); ok {
		// кэш ведётся в YES-базисе, для NO инвертируем
		if side == models.SideNo {
			cached = 100 - yes
		} else {
			cached = yes
		}
	}

	switch {
	case book <= 0 && cached <= 0:
		logger.Warn("guard: [%s] нет ни стакана, ни последней сделки — отказ", ticker)
		return 0, false
	case book <= 0:
		return cached, true
	case cached <= 0:
		return book, true
	}

	gap := book - cached
	if gap < 0 {
		gap = -gap
	}
	if gap > st.PriceSanityGapCents {
		logger.Warn("guard: [%s] стакан %d¢ против сделки %d¢ (gap %d) — верим сделке", ticker, book, cached, gap)
		return cached, true
	}
	return book, true
}

func (r *Runner) recordTrade(ctx context.Context, req execRequest, price int, status, orderID string) {
	cost := decimal.New(int64(price)*int64(req.Count), -2)
	err := r.audit.RecordTrade(ctx, &models.TradeRecord{
		ID:       uuid.NewString(),
		Ticker:   req.Instrument.Ticker,
		Side:     req.Side,
		Action:   req.Action,
		Price:    price,
		Count:    req.Count,
		Cost:     cost,
		Status:   status,
		OrderID:  orderID,
		SignalID: req.SignalID,
		At:       time.Now(),
	})
	if err != nil {
		// аудит не валит уже принятое решение
		logger.Error("guard: аудит сделки не записался: %v", err)
	}
}
