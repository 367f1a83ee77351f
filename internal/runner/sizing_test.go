package runner

import (
	"math"
	"testing"
)

func TestSizePctCapsAtDouble(t *testing.T) {
	// дешёвый вход, высокий скор, надёжный источник — всё равно не больше 2x
	got := SizePct(0.10, 95, 5, 1.5)
	if got != 0.20 {
		t.Fatalf("SizePct = %.4f, want кап 0.20", got)
	}
}

func TestSizePctFactors(t *testing.T) {
	// price=50 => odds 1.0; score=50 => conf 1.0; rel=1.0 => ровно basePct
	got := SizePct(0.10, 50, 50, 1.0)
	if math.Abs(got-0.10) > 1e-9 {
		t.Fatalf("SizePct = %.4f, want 0.10", got)
	}

	// дорогой вход уменьшает аллокацию
	cheap := SizePct(0.10, 50, 30, 1.0)
	rich := SizePct(0.10, 50, 80, 1.0)
	if rich >= cheap {
		t.Fatalf("дорогой вход обязан сайзиться меньше: cheap=%.4f rich=%.4f", cheap, rich)
	}

	// выше скор — больше аллокация (до капа)
	lo := SizePct(0.10, 40, 70, 1.0)
	hi := SizePct(0.10, 90, 70, 1.0)
	if hi <= lo {
		t.Fatalf("скор не двигает сайз: lo=%.4f hi=%.4f", lo, hi)
	}
}

func TestSizePctZeroBase(t *testing.T) {
	// exploring-тир с basePct=0 никогда ничего не сайзит
	if got := SizePct(0, 95, 10, 1.5); got != 0 {
		t.Fatalf("SizePct(base=0) = %.4f", got)
	}
}

func TestSizePctExtremePrice(t *testing.T) {
	// цена 100 — нулевой потенциал, нулевой сайз
	if got := SizePct(0.10, 80, 100, 1.0); got != 0 {
		t.Fatalf("SizePct(price=100) = %.4f", got)
	}
}

func TestContractsRounding(t *testing.T) {
	cases := []struct {
		base int
		pct  float64
		want int
	}{
		{100, 0.10, 10},
		{100, 0.124, 12},
		{100, 0.126, 13},
		{100, 0.004, 0}, // ноль — валидный skip
		{0, 0.50, 0},
	}
	for _, c := range cases {
		if got := Contracts(c.base, c.pct); got != c.want {
			t.Fatalf("Contracts(%d, %.3f) = %d, want %d", c.base, c.pct, got, c.want)
		}
	}
}
