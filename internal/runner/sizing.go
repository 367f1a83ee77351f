package runner

import (
	"context"
	"math"

	"kalshi_bot/internal/models"
	"kalshi_bot/pkg/logger"
)

// SizePct — доля аллокации из тира, уверенности, текущих шансов и
// надёжности источника.
//
//	odds  = min(2, (100-price)/50)  — дешевле вход, больше потенциал, кап 2x
//	conf  = 0.5 + score/100         — 0.5x..1.5x
//	итог капится 2×basePct НЕЗАВИСИМО от остальных факторов — потолок риска
func SizePct(tierBasePct float64, score int, currentPrice int, reliability float64) float64 {
	if tierBasePct <= 0 {
		return 0
	}
	odds := math.Min(2.0, float64(100-currentPrice)/50.0)
	if odds < 0 {
		odds = 0
	}
	conf := 0.5 + float64(score)/100.0
	pct := tierBasePct * odds * conf * reliability
	return math.Min(pct, tierBasePct*2)
}

// Contracts — штучный размер; ноль — валидный "skip", не ошибка.
func Contracts(baseContracts int, pct float64) int {
	return int(math.Round(float64(baseContracts) * pct))
}

// reliabilityMultiplier — исторический множитель источника; когда выборка
// мала (<3 разрешённых) или несогласована — МОЛЧА (только лог) падаем на
// статический вес тира: у новых источников история легитимно пустая.
func (r *Runner) reliabilityMultiplier(ctx context.Context, author string, tier models.TierParams) float64 {
	rel, err := r.audit.SourceReliability(ctx, author)
	if err != nil {
		logger.Warn("sizing: reliability для %q не прочитали (%v), вес тира %.2f", author, err, tier.Weight)
		return tier.Weight
	}
	mult, ok := rel.Multiplier()
	if !ok {
		logger.Info("sizing: у %q мало статистики (resolved=%d tracked=%d), вес тира %.2f",
			author, rel.Resolved, rel.Tracked, tier.Weight)
		return tier.Weight
	}
	return mult
}
