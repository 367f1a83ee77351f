package models

import (
	"testing"
	"time"
)

func TestInstrumentPrices(t *testing.T) {
	in := Instrument{YesPrice: 37, Status: StatusOpen}
	if in.NoPrice() != 63 {
		t.Fatalf("NoPrice = %d, want 63", in.NoPrice())
	}
	// инвариант yes+no=100 на всём диапазоне
	for yes := 0; yes <= 100; yes++ {
		in.YesPrice = yes
		if in.YesPrice+in.NoPrice() != 100 {
			t.Fatalf("yes=%d: сумма сторон %d", yes, in.YesPrice+in.NoPrice())
		}
	}

	in.YesPrice = 37
	if in.PriceFor(SideYes) != 37 || in.PriceFor(SideNo) != 63 {
		t.Fatalf("PriceFor: yes=%d no=%d", in.PriceFor(SideYes), in.PriceFor(SideNo))
	}

	if !in.Tradable() {
		t.Fatalf("открытый рынок должен торговаться")
	}
	in.Status = "settled"
	if in.Tradable() {
		t.Fatalf("settled-рынок торговаться не должен")
	}
}

func TestPriceWindowPrune(t *testing.T) {
	now := time.Now()
	w := NewPriceWindow(5 * time.Minute)

	w.Add(30, now.Add(-10*time.Minute)) // выпадет
	w.Add(33, now.Add(-4*time.Minute))
	w.Add(40, now)

	oldest, ok := w.Oldest()
	if !ok || oldest.Price != 33 {
		t.Fatalf("Oldest = %+v (%t), want price 33", oldest, ok)
	}
	if len(w.Samples) != 2 {
		t.Fatalf("в окне %d сэмплов, want 2", len(w.Samples))
	}
}

func TestPriceWindowReset(t *testing.T) {
	now := time.Now()
	w := NewPriceWindow(5 * time.Minute)
	w.Add(30, now.Add(-time.Minute))
	w.Add(40, now)

	w.Reset(40, now)
	if len(w.Samples) != 1 || w.Samples[0].Price != 40 {
		t.Fatalf("после Reset: %+v", w.Samples)
	}
	// следующий спайк меряется от точки сброса
	oldest, _ := w.Oldest()
	if oldest.Price != 40 {
		t.Fatalf("Oldest после Reset = %d", oldest.Price)
	}
}

func TestPriceWindowEmpty(t *testing.T) {
	w := NewPriceWindow(time.Minute)
	if _, ok := w.Oldest(); ok {
		t.Fatalf("пустое окно вернуло сэмпл")
	}
}
