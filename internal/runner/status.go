package runner

import (
	"context"

	healthsvc "kalshi_bot/internal/modules/health/service"
)

// TradingStatus — read-view для дашбордов: живые позиции, баланс,
// текущая рекомендация. Считается по запросу, не из кэша.
func (r *Runner) TradingStatus(ctx context.Context) (healthsvc.TradingStatus, error) {
	out := healthsvc.TradingStatus{Recommendation: r.health.Recommendation()}

	positions, err := r.ex.GetPositions(ctx)
	if err != nil {
		return out, err
	}
	for _, p := range positions {
		for _, leg := range p.Legs() {
			out.Positions = append(out.Positions, healthsvc.PositionView{
				Ticker:    leg.Ticker,
				Side:      string(leg.Side),
				Contracts: leg.Contracts,
				Entry:     leg.Entry,
			})
		}
	}

	bal, err := r.ex.GetBalance(ctx)
	if err != nil {
		return out, err
	}
	out.Cash = bal.Cash.StringFixed(2)
	out.PositionsValue = bal.PositionsValue.StringFixed(2)
	return out, nil
}
