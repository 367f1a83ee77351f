package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord — append-only строка аудита исполненного (или бумажного) ордера.
type TradeRecord struct {
	ID       string
	Ticker   string
	Side     Side
	Action   string // buy/sell
	Price    int    // центы, в базисе стороны
	Count    int
	Cost     decimal.Decimal // price*count, доллары
	Status   string          // submitted/filled/error/paper
	OrderID  string
	SignalID string // ссылка на SignalRecord, для reliability-скоринга
	At       time.Time
}

// SignalRecord — аудит сигнала; Resolved/Correct заполняются позже,
// когда рынок разрешится, из них считается надёжность источника.
type SignalRecord struct {
	ID       string
	EventID  string
	Author   string
	Entity   string
	Tier     Tier
	Score    int
	Action   Action
	Ticker   string
	Reason   string
	Resolved bool
	Correct  bool
	At       time.Time
}

// EventRecord — аудит входного события (в т.ч. отбракованных).
type EventRecord struct {
	ID      string
	Author  string
	Text    string
	Outcome string // classified/skipped/duplicate
	At      time.Time
}

// SourceReliability — историческая точность автора.
type SourceReliability struct {
	Author   string
	Correct  int
	Resolved int
	Tracked  int // всего сигналов от автора
}

// Multiplier — множитель надёжности и признак, что данных достаточно.
// Минимум 3 разрешённых сигнала и согласованность resolved<=tracked, иначе
// статистика не считается осмысленной и вызывающий падает на вес тира.
func (r SourceReliability) Multiplier() (float64, bool) {
	if r.Resolved < 3 || r.Resolved > r.Tracked {
		return 0, false
	}
	return 0.5 + float64(r.Correct)/float64(r.Resolved), true
}

// OrderResult — результат терминальной точки исполнения.
type OrderResult struct {
	OK       bool
	OrderID  string
	Reason   string // deduped / price_sanity / kill_switch / tier_ceiling / ...
	Paper    bool   // true, если сработал kill switch ("would have traded")
	Price    int
	Count    int
}

// RestingOrder — уже стоящий на бирже ордер (живой запрос, не память).
type RestingOrder struct {
	OrderID string
	Ticker  string
	Side    Side
	Action  string
	Price   int
	Count   int
}
