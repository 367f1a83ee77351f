package models

import "time"

// TierParams — параметры риска одного тира.
type TierParams struct {
	BasePct  float64 `json:"base_pct"`  // базовая доля аллокации, например 0.10
	MaxPrice int     `json:"max_price"` // потолок цены входа, центы
	Weight   float64 `json:"weight"`    // статический вес источника-фоллбэк
}

// SpikeSettings — пороги детектора резких движений.
type SpikeSettings struct {
	Window          time.Duration `json:"window"`             // длина окна цен, напр. 5m
	AlertPct        float64       `json:"alert_pct"`          // порог алерта, доли (0.10 = 10%)
	AutoBuyPct      float64       `json:"auto_buy_pct"`       // порог автопокупки (обычно больше alert)
	MinVolume       int64         `json:"min_volume"`         // ниже — движение считаем шумом
	MinAbsCents     int           `json:"min_abs_cents"`      // защита от процентов на копеечных ценах
	MinPriceFloor   int           `json:"min_price_floor"`    // слишком дешёвые не трогаем
	MaxEntryPrice   int           `json:"max_entry_price"`    // потолок входа по спайку
	MaxRunUpCents   int           `json:"max_runup_cents"`    // не догонять ушедшее движение
	AutoBuyEnabled  bool          `json:"auto_buy_enabled"`
	NeedCorroborate bool          `json:"need_corroborate"`   // требовать свежий сигнал классификатора
	CorroborateWin  time.Duration `json:"corroborate_window"`
}

// ProfitSettings — пороги стейт-машины фиксации/риска.
type ProfitSettings struct {
	NearResolution  int           `json:"near_resolution"`   // >=95 — почти решённый рынок
	MinProfitCents  int           `json:"min_profit_cents"`  // минимум профита на контракт для правила 1
	ExitMarginCents int           `json:"exit_margin_cents"` // подушка к entry при выходе
	PartialGainPct  float64       `json:"partial_gain_pct"`  // >=30% — полфиксация
	PartialMinPrice int           `json:"partial_min_price"` // и цена >=60
	PartialMinLot   int           `json:"partial_min_lot"`   // не дробить мелочь
	StopLossPct     float64       `json:"stop_loss_pct"`     // <=-40% — стоп
	DeadlineWindow  time.Duration `json:"deadline_window"`   // финальное окно перед закрытием рынка
	ConfidenceFloor int           `json:"confidence_floor"`  // ниже — ликвидация в финальном окне
	ReportPct       float64       `json:"report_pct"`        // просто логируем, если |PnL%| выше
	SellSlipCents   int           `json:"sell_slip_cents"`
}

// Settings — операторский конфиг бота. Снимок ИММУТАБЕЛЕН:
// движок берёт один снапшот на тик и никогда не перечитывает посреди решения.
// Version растёт при каждом Set, подмена снапшота атомарная.
type Settings struct {
	Version int `json:"version"`

	// kill switch: false => каждый ордер превращается в лог "would have traded"
	TradingEnabled bool `json:"trading_enabled"`

	BaseContracts        int           `json:"base_contracts"`
	Tiers                map[Tier]TierParams `json:"tiers"`
	NearCertaintyCeiling int           `json:"near_certainty_ceiling"` // обычно 90
	DedupCooldown        time.Duration `json:"dedup_cooldown"`         // обычно 5m
	PriceSanityGapCents  int           `json:"price_sanity_gap"`       // обычно 20
	SlippageCents        int           `json:"slippage_cents"`

	Spike  SpikeSettings  `json:"spike"`
	Profit ProfitSettings `json:"profit"`
}

// DefaultSettings — стартовый снапшот, пока оператор не записал свой.
func DefaultSettings() *Settings {
	return &Settings{
		Version:        1,
		TradingEnabled: false,
		BaseContracts:  100,
		Tiers: map[Tier]TierParams{
			TierConfirmed: {BasePct: 0.10, MaxPrice: 85, Weight: 1.0},
			TierImminent:  {BasePct: 0.07, MaxPrice: 75, Weight: 0.9},
			TierSerious:   {BasePct: 0.04, MaxPrice: 60, Weight: 0.8},
			TierNegative:  {BasePct: 0.05, MaxPrice: 70, Weight: 0.9},
			TierExploring: {BasePct: 0, MaxPrice: 0, Weight: 0.5},
		},
		NearCertaintyCeiling: 90,
		DedupCooldown:        5 * time.Minute,
		PriceSanityGapCents:  20,
		SlippageCents:        2,
		Spike: SpikeSettings{
			Window:         5 * time.Minute,
			AlertPct:       0.10,
			AutoBuyPct:     0.15,
			MinVolume:      5000,
			MinAbsCents:    4,
			MinPriceFloor:  5,
			MaxEntryPrice:  80,
			MaxRunUpCents:  25,
			AutoBuyEnabled: false,
			CorroborateWin: 15 * time.Minute,
		},
		Profit: ProfitSettings{
			NearResolution:  95,
			MinProfitCents:  3,
			ExitMarginCents: 2,
			PartialGainPct:  30,
			PartialMinPrice: 60,
			PartialMinLot:   5,
			StopLossPct:     -40,
			DeadlineWindow:  30 * time.Minute,
			ConfidenceFloor: 40,
			ReportPct:       15,
			SellSlipCents:   2,
		},
	}
}

// TierFor — параметры тира с нулевым поведением по умолчанию.
func (s *Settings) TierFor(t Tier) TierParams {
	if s.Tiers == nil {
		return TierParams{}
	}
	return s.Tiers[t]
}
