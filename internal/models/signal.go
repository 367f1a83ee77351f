package models

import "time"

// Tier — дискретный уровень уверенности сигнала.
// Порядок силы: Confirmed > Imminent > Serious > Exploring.
// Negative — не ранг, а отдельная полярность (разворот/отказ).
type Tier string

const (
	TierConfirmed Tier = "confirmed"
	TierImminent  Tier = "imminent"
	TierSerious   Tier = "serious"
	TierExploring Tier = "exploring"
	TierNegative  Tier = "negative"
)

// Rank — для сравнения позитивных тиров между собой.
func (t Tier) Rank() int {
	switch t {
	case TierConfirmed:
		return 4
	case TierImminent:
		return 3
	case TierSerious:
		return 2
	case TierExploring:
		return 1
	}
	return 0
}

// Tradable — Exploring никогда не превращается в ордер.
func (t Tier) Tradable() bool {
	return t == TierConfirmed || t == TierImminent || t == TierSerious || t == TierNegative
}

type Action string

const (
	ActionBuyYes Action = "buy_yes"
	ActionBuyNo  Action = "buy_no"
	ActionHold   Action = "hold"
)

// TweetEvent — сырое событие от поллера соцсетей.
type TweetEvent struct {
	ID     string
	Text   string
	Author string
	At     time.Time
}

// Signal — торговая импликация, выведенная из текста.
// Потребляется сайзером ровно один раз, затем уходит в аудит.
type Signal struct {
	Event       TweetEvent
	Entity      string
	Tier        Tier
	Score       int // 0..100
	Destination string
	Action      Action
	Reason      string
}
