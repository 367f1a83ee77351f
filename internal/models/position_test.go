package models

import "testing"

func TestPositionLegs(t *testing.T) {
	// обе ноги живут одновременно и не схлопываются
	p := Position{Ticker: "T", YesContracts: 5, NoContracts: 3, YesEntry: 40, NoEntry: 55}
	legs := p.Legs()
	if len(legs) != 2 {
		t.Fatalf("Legs: получили %d ног, хотим 2", len(legs))
	}
	if legs[0].Side != SideYes || legs[0].Contracts != 5 || legs[0].Entry != 40 {
		t.Fatalf("YES-нога: %+v", legs[0])
	}
	if legs[1].Side != SideNo || legs[1].Contracts != 3 || legs[1].Entry != 55 {
		t.Fatalf("NO-нога: %+v", legs[1])
	}

	empty := Position{Ticker: "T"}
	if got := empty.Legs(); len(got) != 0 {
		t.Fatalf("пустая позиция дала ноги: %+v", got)
	}
}

func TestLegCurrentPriceAndPnL(t *testing.T) {
	yes := PositionLeg{Side: SideYes, Entry: 40}
	no := PositionLeg{Side: SideNo, Entry: 38}

	if got := yes.CurrentPrice(70); got != 70 {
		t.Fatalf("YES CurrentPrice(70) = %d", got)
	}
	if got := no.CurrentPrice(70); got != 30 {
		t.Fatalf("NO CurrentPrice(70) = %d", got)
	}

	if got := yes.PnLPct(70); got != 75 {
		t.Fatalf("YES PnL = %.1f, want 75", got)
	}
	// NO-нога: yes 70 => no 30, вход 38 => -21.05%
	got := no.PnLPct(70)
	if got > -21.0 || got < -21.1 {
		t.Fatalf("NO PnL = %.2f, want ~-21.05", got)
	}

	// нулевой вход не делит на ноль
	if got := (PositionLeg{Side: SideYes}).PnLPct(50); got != 0 {
		t.Fatalf("PnL с entry=0 = %.1f, want 0", got)
	}
}

func TestSideOpposite(t *testing.T) {
	if SideYes.Opposite() != SideNo || SideNo.Opposite() != SideYes {
		t.Fatalf("Opposite сломан")
	}
}
