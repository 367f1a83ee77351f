package models

import "time"

// Instrument — бинарный контракт Kalshi (NBA-трейды, Super Bowl реклама).
// Цены всегда в центах 0..100. NO-цена НИГДЕ не хранится отдельно,
// только выводится из YES (инвариант yes+no=100).
type Instrument struct {
	Ticker       string
	Title        string
	Entity       string // игрок или бренд, под которого открыт рынок
	Destination  string // команда/слот, если рынок "entity → destination"
	YesPrice     int    // центы, 0..100
	Volume       int64
	OpenInterest int64
	Status       string // open/closed/settled
	Result       string // yes/no, только у разрешённого рынка
	CloseTime    time.Time
	FetchedAt    time.Time
}

const (
	StatusOpen    = "open"
	StatusSettled = "settled"

	ResultYes = "yes"
	ResultNo  = "no"
)

func (i Instrument) NoPrice() int { return 100 - i.YesPrice }

func (i Instrument) Tradable() bool { return i.Status == StatusOpen }

// PriceFor — цена в базисе запрошенной стороны.
func (i Instrument) PriceFor(side Side) int {
	if side == SideNo {
		return i.NoPrice()
	}
	return i.YesPrice
}

// Orderbook — лучшие аски обеих сторон из живого стакана.
type Orderbook struct {
	Ticker string
	YesAsk int
	NoAsk  int
}

// PriceSample — точка скользящего окна цен.
type PriceSample struct {
	Price int
	At    time.Time
}

// PriceWindow — скользящая история цены одного инструмента.
// Пишет только управляющий цикл (single-writer), лочить не нужно.
type PriceWindow struct {
	Samples []PriceSample
	Span    time.Duration
}

func NewPriceWindow(span time.Duration) *PriceWindow {
	return &PriceWindow{Span: span}
}

// Add — добавляем сэмпл и подчищаем всё, что выпало из окна.
func (w *PriceWindow) Add(price int, now time.Time) {
	w.Samples = append(w.Samples, PriceSample{Price: price, At: now})
	w.Prune(now)
}

func (w *PriceWindow) Prune(now time.Time) {
	cut := now.Add(-w.Span)
	i := 0
	for i < len(w.Samples) && w.Samples[i].At.Before(cut) {
		i++
	}
	if i > 0 {
		w.Samples = append(w.Samples[:0], w.Samples[i:]...)
	}
}

// Oldest — самый старый сэмпл внутри окна.
func (w *PriceWindow) Oldest() (PriceSample, bool) {
	if len(w.Samples) == 0 {
		return PriceSample{}, false
	}
	return w.Samples[0], true
}

// Reset — сбрасываем историю до одной текущей точки.
// Вызывается после сработавшего алерта, чтобы не стрелять по тому же движению.
func (w *PriceWindow) Reset(price int, now time.Time) {
	w.Samples = w.Samples[:0]
	w.Samples = append(w.Samples, PriceSample{Price: price, At: now})
}
