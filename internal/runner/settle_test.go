package runner

import (
	"context"
	"testing"
	"time"

	"kalshi_bot/internal/models"
)

func TestSettlePassScoresSignals(t *testing.T) {
	env := newTestRunner()
	env.au.signals = []*models.SignalRecord{
		{ID: "s1", Ticker: "T", Author: "shams", Action: models.ActionBuyYes},
		{ID: "s2", Ticker: "T", Author: "windy", Action: models.ActionBuyNo},
		{ID: "s3", Ticker: "OTHER", Author: "shams", Action: models.ActionBuyYes},
	}
	env.ex.settled = []models.Instrument{
		{Ticker: "T", Status: models.StatusSettled, Result: models.ResultYes},
	}

	env.r.settlePass(context.Background())

	// рынок разрешился в YES: buy_yes прав, buy_no нет
	if correct, ok := env.au.resolved["s1"]; !ok || !correct {
		t.Fatalf("s1: %+v", env.au.resolved)
	}
	if correct, ok := env.au.resolved["s2"]; !ok || correct {
		t.Fatalf("s2: %+v", env.au.resolved)
	}
	// сигнал по другому тикеру не трогаем
	if _, ok := env.au.resolved["s3"]; ok {
		t.Fatalf("закрыли сигнал чужого рынка: %+v", env.au.resolved)
	}
}

func TestSettlePassSkipsMarketWithoutResult(t *testing.T) {
	env := newTestRunner()
	env.au.signals = []*models.SignalRecord{
		{ID: "s1", Ticker: "T", Action: models.ActionBuyYes},
	}
	// closed, но ещё без результата — исход неизвестен
	env.ex.settled = []models.Instrument{{Ticker: "T", Status: models.StatusSettled}}

	env.r.settlePass(context.Background())
	if len(env.au.resolved) != 0 {
		t.Fatalf("закрыли сигнал без результата рынка: %+v", env.au.resolved)
	}
}

func TestSettlePassThrottled(t *testing.T) {
	env := newTestRunner()
	env.au.signals = []*models.SignalRecord{
		{ID: "s1", Ticker: "T", Action: models.ActionBuyYes},
	}
	env.ex.settled = []models.Instrument{
		{Ticker: "T", Status: models.StatusSettled, Result: models.ResultNo},
	}

	env.r.settledAt = time.Now() // прошлый проход только что был
	env.r.settlePass(context.Background())
	if len(env.au.resolved) != 0 {
		t.Fatalf("пасс прошёл внутри интервала: %+v", env.au.resolved)
	}
}
