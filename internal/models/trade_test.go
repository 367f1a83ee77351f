package models

import "testing"

func TestSourceReliabilityMultiplier(t *testing.T) {
	cases := []struct {
		name     string
		rel      SourceReliability
		want     float64
		wantOK   bool
	}{
		{"мало разрешённых", SourceReliability{Correct: 2, Resolved: 2, Tracked: 5}, 0, false},
		{"resolved > tracked — мусор в данных", SourceReliability{Correct: 3, Resolved: 5, Tracked: 4}, 0, false},
		{"идеальный источник", SourceReliability{Correct: 4, Resolved: 4, Tracked: 6}, 1.5, true},
		{"всё мимо", SourceReliability{Correct: 0, Resolved: 4, Tracked: 6}, 0.5, true},
		{"половина", SourceReliability{Correct: 2, Resolved: 4, Tracked: 6}, 1.0, true},
	}
	for _, c := range cases {
		got, ok := c.rel.Multiplier()
		if ok != c.wantOK || got != c.want {
			t.Fatalf("%s: Multiplier = (%.2f, %t), want (%.2f, %t)", c.name, got, ok, c.want, c.wantOK)
		}
	}
}

func TestTierRankAndTradable(t *testing.T) {
	if !TierConfirmed.Tradable() || !TierNegative.Tradable() {
		t.Fatalf("confirmed/negative должны торговаться")
	}
	if TierExploring.Tradable() {
		t.Fatalf("exploring торговаться не должен")
	}
	if TierConfirmed.Rank() <= TierImminent.Rank() || TierImminent.Rank() <= TierSerious.Rank() {
		t.Fatalf("порядок тиров сломан")
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.TradingEnabled {
		t.Fatalf("дефолт обязан стартовать с выключенной торговлей")
	}
	if s.TierFor(TierExploring).BasePct != 0 {
		t.Fatalf("exploring не должен иметь аллокации")
	}
	if s.TierFor("unknown").MaxPrice != 0 {
		t.Fatalf("неизвестный тир должен давать нулевые параметры")
	}
}
