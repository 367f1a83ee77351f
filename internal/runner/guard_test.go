package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"kalshi_bot/internal/models"
)

func buyReq(inst *models.Instrument, tier models.Tier, maxPrice int) execRequest {
	return execRequest{
		Instrument: inst,
		Side:       models.SideYes,
		Action:     actionBuy,
		Count:      10,
		MaxPrice:   maxPrice,
		Tier:       tier,
	}
}

func TestExecuteKillSwitchFirst(t *testing.T) {
	inst := models.Instrument{Ticker: "T", YesPrice: 50, Status: models.StatusOpen}
	env := newTestRunner(inst)

	st := testSettings()
	st.TradingEnabled = false
	// стакан намеренно не задан: до ценовых проверок дойти не должны

	res := env.r.Execute(context.Background(), st, buyReq(&inst, models.TierConfirmed, 85))
	if !res.Paper || res.Reason != "kill_switch" || res.OK {
		t.Fatalf("res = %+v", res)
	}
	if len(env.ex.placed) != 0 {
		t.Fatalf("ордер ушёл на биржу при выключенной торговле")
	}
	// бумажный трейд всё равно в аудите
	if len(env.au.trades) != 1 || env.au.trades[0].Status != "paper" {
		t.Fatalf("аудит: %+v", env.au.trades)
	}
}

func TestExecuteBuyDedup(t *testing.T) {
	inst := models.Instrument{Ticker: "T", YesPrice: 50, Status: models.StatusOpen}
	env := newTestRunner(inst)
	env.ex.books["T"] = models.Orderbook{Ticker: "T", YesAsk: 50, NoAsk: 50}

	st := testSettings()

	first := env.r.Execute(context.Background(), st, buyReq(&inst, models.TierSerious, 60))
	if !first.OK {
		t.Fatalf("первая покупка не прошла: %+v", first)
	}
	// второй сигнал по тому же тикеру внутри кулдауна
	second := env.r.Execute(context.Background(), st, buyReq(&inst, models.TierSerious, 60))
	if second.OK || second.Reason != "deduped" {
		t.Fatalf("second = %+v", second)
	}
	if len(env.ex.placed) != 1 {
		t.Fatalf("на бирже %d ордеров, want 1", len(env.ex.placed))
	}

	// sell дедупом не блокируется
	sellRes := env.r.Execute(context.Background(), st, execRequest{
		Instrument: &inst, Side: models.SideYes, Action: actionSell, Count: 5, WantPrice: 48, Tier: models.TierConfirmed,
	})
	if !sellRes.OK {
		t.Fatalf("sell попал под дедуп: %+v", sellRes)
	}
}

func TestExecutePriceSanityPrefersLastTrade(t *testing.T) {
	inst := models.Instrument{Ticker: "T", YesPrice: 50, Status: models.StatusOpen}
	env := newTestRunner(inst)
	// тонкий стакан врёт (80), последняя сделка 50, gap 30 > 20
	env.ex.books["T"] = models.Orderbook{Ticker: "T", YesAsk: 80, NoAsk: 20}
	env.setLastTrade("T", 50)

	st := testSettings()

	res := env.r.Execute(context.Background(), st, buyReq(&inst, models.TierSerious, 60))
	if !res.OK {
		t.Fatalf("res = %+v", res)
	}
	// референс 50 (сделка), serious => ref + слиппедж
	if got := env.ex.placed[0].LimitPrice; got != 50+st.SlippageCents {
		t.Fatalf("limit = %d, want %d", got, 50+st.SlippageCents)
	}
}

func TestExecuteNoReference(t *testing.T) {
	inst := models.Instrument{Ticker: "T", YesPrice: 50, Status: models.StatusOpen}
	env := newTestRunner(inst)
	env.ex.bookErr = errors.New("api down")

	res := env.r.Execute(context.Background(), testSettings(), buyReq(&inst, models.TierSerious, 60))
	if res.OK || res.Reason != "no_reference" {
		t.Fatalf("res = %+v", res)
	}
}

func TestExecuteNearCertaintyGate(t *testing.T) {
	inst := models.Instrument{Ticker: "T", YesPrice: 92, Status: models.StatusOpen}
	env := newTestRunner(inst)
	env.ex.books["T"] = models.Orderbook{Ticker: "T", YesAsk: 92, NoAsk: 8}

	res := env.r.Execute(context.Background(), testSettings(), buyReq(&inst, models.TierConfirmed, 95))
	if res.OK || res.Reason != "near_certainty" {
		t.Fatalf("res = %+v", res)
	}
	if len(env.nt.sent) == 0 {
		t.Fatalf("оператор не узнал про пропуск")
	}
}

func TestExecuteTierCeiling(t *testing.T) {
	inst := models.Instrument{Ticker: "T", YesPrice: 70, Status: models.StatusOpen}
	env := newTestRunner(inst)
	env.ex.books["T"] = models.Orderbook{Ticker: "T", YesAsk: 70, NoAsk: 30}

	res := env.r.Execute(context.Background(), testSettings(), buyReq(&inst, models.TierSerious, 60))
	if res.OK || res.Reason != "tier_ceiling" {
		t.Fatalf("res = %+v", res)
	}
}

func TestExecuteTierAggressiveness(t *testing.T) {
	st := testSettings()

	cases := []struct {
		tier      models.Tier
		maxPrice  int
		wantLimit int
	}{
		{models.TierConfirmed, 85, 85},          // в потолок ради филла
		{models.TierImminent, 75, 50 + 25/2},    // середина между ref и потолком
		{models.TierSerious, 60, 50 + st.SlippageCents},
	}
	for _, c := range cases {
		inst := models.Instrument{Ticker: "T", YesPrice: 50, Status: models.StatusOpen}
		env := newTestRunner(inst)
		env.ex.books["T"] = models.Orderbook{Ticker: "T", YesAsk: 50, NoAsk: 50}

		res := env.r.Execute(context.Background(), st, buyReq(&inst, c.tier, c.maxPrice))
		if !res.OK {
			t.Fatalf("tier %s: %+v", c.tier, res)
		}
		if got := env.ex.placed[0].LimitPrice; got != c.wantLimit {
			t.Fatalf("tier %s: limit=%d, want %d", c.tier, got, c.wantLimit)
		}
	}
}

func TestExecuteNoSideUsesNoBasis(t *testing.T) {
	// NO-покупка: стакан пуст, кэш сделок в YES-базисе 70 => NO-референс 30
	inst := models.Instrument{Ticker: "T", YesPrice: 70, Status: models.StatusOpen}
	env := newTestRunner(inst)
	env.setLastTrade("T", 70)

	st := testSettings()
	res := env.r.Execute(context.Background(), st, execRequest{
		Instrument: &inst,
		Side:       models.SideNo,
		Action:     actionBuy,
		Count:      10,
		MaxPrice:   70,
		Tier:       models.TierNegative,
	})
	if !res.OK {
		t.Fatalf("res = %+v", res)
	}
	placed := env.ex.placed[0]
	if placed.Side != models.SideNo {
		t.Fatalf("side = %s", placed.Side)
	}
	if placed.LimitPrice != 30+st.SlippageCents {
		t.Fatalf("limit = %d, want %d (NO-базис)", placed.LimitPrice, 30+st.SlippageCents)
	}
}

func TestExecuteSellPricing(t *testing.T) {
	st := testSettings()

	// лимит правила выхода доходит до биржи как есть
	inst := models.Instrument{Ticker: "T", YesPrice: 70, Status: models.StatusOpen}
	env := newTestRunner(inst)
	env.ex.books["T"] = models.Orderbook{Ticker: "T", YesAsk: 70, NoAsk: 30}
	res := env.r.Execute(context.Background(), st, execRequest{
		Instrument: &inst, Side: models.SideYes, Action: actionSell, Count: 5, WantPrice: 61, Tier: models.TierConfirmed,
	})
	if !res.OK || env.ex.placed[0].LimitPrice != 61 {
		t.Fatalf("sell want=61: %+v limit=%d", res, env.ex.placed[0].LimitPrice)
	}

	// без лимита — дефолт от референса минус слиппедж
	res = env.r.Execute(context.Background(), st, execRequest{
		Instrument: &inst, Side: models.SideYes, Action: actionSell, Count: 5, Tier: models.TierConfirmed,
	})
	if !res.OK || env.ex.placed[1].LimitPrice != 70-st.Profit.SellSlipCents {
		t.Fatalf("sell default: %+v limit=%d", res, env.ex.placed[1].LimitPrice)
	}

	// у почти-решённого рынка ниже референса не отдаём
	inst2 := models.Instrument{Ticker: "T2", YesPrice: 97, Status: models.StatusOpen}
	env2 := newTestRunner(inst2)
	env2.ex.books["T2"] = models.Orderbook{Ticker: "T2", YesAsk: 97, NoAsk: 3}
	res = env2.r.Execute(context.Background(), st, execRequest{
		Instrument: &inst2, Side: models.SideYes, Action: actionSell, Count: 5, WantPrice: 52, Tier: models.TierConfirmed,
	})
	if !res.OK || env2.ex.placed[0].LimitPrice != 97 {
		t.Fatalf("sell@97: %+v limit=%d", res, env2.ex.placed[0].LimitPrice)
	}
}

func TestExecuteSubmitFailureNotRetried(t *testing.T) {
	inst := models.Instrument{Ticker: "T", YesPrice: 50, Status: models.StatusOpen}
	env := newTestRunner(inst)
	env.ex.books["T"] = models.Orderbook{Ticker: "T", YesAsk: 50, NoAsk: 50}
	env.ex.placeErr = errors.New("rejected")

	res := env.r.Execute(context.Background(), testSettings(), buyReq(&inst, models.TierSerious, 60))
	if res.OK || res.Reason != "submit_failed" {
		t.Fatalf("res = %+v", res)
	}
	// упавший submit не ставит дедуп: следующий честный сигнал не блокируем
	if til, ok := env.r.dedupTil["T"]; ok && time.Now().Before(til) {
		t.Fatalf("dedup выставлен после ошибки submit")
	}
	if len(env.au.trades) != 1 || env.au.trades[0].Status != "error" {
		t.Fatalf("аудит: %+v", env.au.trades)
	}
}
