package models

import "github.com/shopspring/decimal"

type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// Position — позиция по одному тикеру как её отдаёт биржа.
// YES и NO — ДВА независимых неотрицательных поля, не одно знаковое:
// по одному инструменту могут одновременно жить обе ноги
// (например, после противоречащих сигналов), и схлопывать их нельзя.
type Position struct {
	Ticker       string
	YesContracts int
	NoContracts  int
	YesEntry     int // центы, в базисе YES
	NoEntry      int // центы, в базисе NO
}

// PositionLeg — одна нога позиции, entry всегда в базисе СВОЕЙ стороны.
type PositionLeg struct {
	Ticker    string
	Side      Side
	Contracts int
	Entry     int
}

// Legs — раскладываем позицию на независимые ноги.
func (p Position) Legs() []PositionLeg {
	legs := make([]PositionLeg, 0, 2)
	if p.YesContracts > 0 {
		legs = append(legs, PositionLeg{Ticker: p.Ticker, Side: SideYes, Contracts: p.YesContracts, Entry: p.YesEntry})
	}
	if p.NoContracts > 0 {
		legs = append(legs, PositionLeg{Ticker: p.Ticker, Side: SideNo, Contracts: p.NoContracts, Entry: p.NoEntry})
	}
	return legs
}

// CurrentPrice — цена ноги в её собственном базисе от YES-цены инструмента.
func (l PositionLeg) CurrentPrice(yesPrice int) int {
	if l.Side == SideNo {
		return 100 - yesPrice
	}
	return yesPrice
}

// PnLPct — нереализованный P&L ноги в процентах от входа.
func (l PositionLeg) PnLPct(yesPrice int) float64 {
	if l.Entry <= 0 {
		return 0
	}
	cur := l.CurrentPrice(yesPrice)
	return float64(cur-l.Entry) / float64(l.Entry) * 100
}

// Balance — кэш и оценка позиций, деньги считаем в decimal.
type Balance struct {
	Cash           decimal.Decimal
	PositionsValue decimal.Decimal
}

type Fill struct {
	Ticker  string
	Side    Side
	Action  string // buy/sell
	Price   int
	Count   int
	OrderID string
}
