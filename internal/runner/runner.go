package runner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"kalshi_bot/internal/config"
	"kalshi_bot/internal/exchange"
	"kalshi_bot/internal/feed"
	"kalshi_bot/internal/models"
	clssvc "kalshi_bot/internal/modules/classifier/service"
	healthsvc "kalshi_bot/internal/modules/health/service"
	ressvc "kalshi_bot/internal/modules/resolver/service"
	"kalshi_bot/internal/notify"
	"kalshi_bot/internal/store"
	"kalshi_bot/pkg/logger"
	"kalshi_bot/pkg/tracing"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
)

// LastTradeSource — кэш последних сделок (ведёт биржевой клиент).
type LastTradeSource interface {
	LastTrade(ticker string) (int, bool)
}

// TickStreamer — WS-поток тиков цен.
type TickStreamer interface {
	StreamTickers(ctx context.Context, tickers []string) <-chan exchange.PriceTick
}

// AuditStore — журнал решений движка (pg-реализация в store).
type AuditStore interface {
	RecordTrade(ctx context.Context, t *models.TradeRecord) error
	RecordSignal(ctx context.Context, s *models.SignalRecord) error
	RecordEvent(ctx context.Context, e *models.EventRecord) error
	SourceReliability(ctx context.Context, author string) (models.SourceReliability, error)
	UnresolvedSignals(ctx context.Context, ticker string) ([]models.SignalRecord, error)
	MarkResolved(ctx context.Context, signalID string, correct bool) error
}

type Params struct {
	fx.In

	Cfg        *config.Config
	Ex         exchange.Client
	LastTrades LastTradeSource
	Streamer   TickStreamer
	Settings   *store.Settings
	Audit      *store.Audit
	Poller     *feed.Poller
	Classifier *clssvc.Classifier
	Resolver   *ressvc.Resolver
	Notifier   notify.Notifier
	Health     *healthsvc.State
}

// Runner — управляющий цикл движка. Один логический поток: все фазы тика
// идут последовательно, все мапы состояния ниже — single-writer (только тик).
// Позиции и баланс НИКОГДА не кэшируются через границу решения.
type Runner struct {
	cfg        *config.Config
	ex         exchange.Client
	lastTrades LastTradeSource
	streamer   TickStreamer
	settings   *store.Settings
	audit      AuditStore
	poller     *feed.Poller
	classifier *clssvc.Classifier
	resolver   *ressvc.Resolver
	notifier   notify.Notifier
	health     *healthsvc.State

	// --- состояние тик-цикла (single-writer) ---
	instruments   []models.Instrument
	instrumentsAt time.Time
	windows       map[string]*models.PriceWindow
	dedupTil      map[string]time.Time
	sessionLow    map[string]int
	lastSignalAt  map[string]time.Time // корреляция спайка с классификатором
	throttleAt    map[string]time.Time
	ticks         chan exchange.PriceTick
	streamKey     string
	streamCancel  context.CancelFunc
	settledAt     time.Time
	warmupDone    bool
}

func NewRunner(p Params) *Runner {
	return &Runner{
		cfg:        p.Cfg,
		ex:         p.Ex,
		lastTrades: p.LastTrades,
		streamer:   p.Streamer,
		settings:   p.Settings,
		audit:      p.Audit,
		poller:     p.Poller,
		classifier: p.Classifier,
		resolver:   p.Resolver,
		notifier:   p.Notifier,
		health:     p.Health,

		windows:      make(map[string]*models.PriceWindow),
		dedupTil:     make(map[string]time.Time),
		sessionLow:   make(map[string]int),
		lastSignalAt: make(map[string]time.Time),
		throttleAt:   make(map[string]time.Time),
		ticks:        make(chan exchange.PriceTick, 1024),
	}
}

// Tick — один проход: settings → markets → risk → spike → events.
// Решения внутри тика принимаются против ОДНОГО снапшота настроек.
func (r *Runner) Tick(ctx context.Context) {
	span := opentracing.StartSpan("tick")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	st, err := r.settings.Current(ctx)
	if err != nil {
		// без настроек решений не принимаем, ждём следующий тик
		logger.Error("tick: настройки недоступны: %v", err)
		return
	}

	if err := r.refreshInstruments(ctx); err != nil {
		logger.Error("tick: кэш рынков не обновился: %v", err)
	}

	if !r.warmupDone {
		if len(r.instruments) == 0 {
			return
		}
		r.warmupDone = true
		r.health.SetReady(true)
		r.notifier.Sendf("🚀 Прогрев завершён: %d инструментов, settings v%d", len(r.instruments), st.Version)
	}

	r.startStream(ctx)

	phase, pctx := tracing.StartPhase(ctx, "risk_pass")
	r.profitPass(pctx, st)
	phase.Finish()

	phase, pctx = tracing.StartPhase(ctx, "spike_pass")
	r.spikePass(pctx, st)
	phase.Finish()

	phase, pctx = tracing.StartPhase(ctx, "events_pass")
	r.eventsPass(pctx, st)
	phase.Finish()

	phase, pctx = tracing.StartPhase(ctx, "settle_pass")
	r.settlePass(pctx)
	phase.Finish()

	if st.TradingEnabled {
		r.health.SetRecommendation(fmt.Sprintf("активен: %d инструментов, settings v%d", len(r.instruments), st.Version))
	} else {
		r.health.SetRecommendation("торговля остановлена (kill switch), ордера не размещаются")
	}
	r.health.TouchTick(time.Now())
}

// refreshInstruments — кэш рынков с TTL; мёртвые статусы выпадают из
// торгуемого набора прямо здесь.
func (r *Runner) refreshInstruments(ctx context.Context) error {
	if time.Since(r.instrumentsAt) < r.cfg.MarketCacheTTL && len(r.instruments) > 0 {
		return nil
	}

	all := make([]models.Instrument, 0, 64)
	for _, series := range r.cfg.Series {
		got, err := r.ex.GetMarkets(ctx, exchange.MarketsFilter{SeriesTicker: series, Status: models.StatusOpen, Limit: 200})
		if err != nil {
			return err
		}
		all = append(all, got...)
	}
	if len(all) == 0 && len(r.cfg.Series) == 0 {
		got, err := r.ex.GetMarkets(ctx, exchange.MarketsFilter{Status: models.StatusOpen, Limit: 200})
		if err != nil {
			return err
		}
		all = got
	}

	r.instruments = all
	r.instrumentsAt = time.Now()

	// подчистка состояния по исчезнувшим тикерам
	alive := make(map[string]struct{}, len(all))
	for _, in := range all {
		alive[in.Ticker] = struct{}{}
	}
	for t := range r.windows {
		if _, ok := alive[t]; !ok {
			delete(r.windows, t)
			delete(r.sessionLow, t)
		}
	}
	return nil
}

// startStream — подписка WS-стрима на текущий набор тикеров.
// Набор поменялся (новые листинги, умершие рынки) — старый стрим
// гасим и подписываемся заново.
func (r *Runner) startStream(ctx context.Context) {
	if r.streamer == nil || len(r.instruments) == 0 {
		return
	}
	tickers := make([]string, 0, len(r.instruments))
	for _, in := range r.instruments {
		tickers = append(tickers, in.Ticker)
	}
	sort.Strings(tickers)
	key := strings.Join(tickers, ",")
	if key == r.streamKey {
		return
	}
	if r.streamCancel != nil {
		logger.Info("stream: набор тикеров поменялся, переподписка (%d шт)", len(tickers))
		r.streamCancel()
	}

	sctx, cancel := context.WithCancel(ctx)
	r.streamKey = key
	r.streamCancel = cancel

	src := r.streamer.StreamTickers(sctx, tickers)
	go func() {
		for t := range src {
			select {
			case r.ticks <- t:
			default:
				// спайк-детектор не успевает — старые тики не ценнее новых
			}
		}
	}()
}

func (r *Runner) instrumentByTicker(ticker string) (*models.Instrument, bool) {
	for i := range r.instruments {
		if r.instruments[i].Ticker == ticker {
			return &r.instruments[i], true
		}
	}
	return nil, false
}

func (r *Runner) entityCandidates() []string {
	seen := make(map[string]struct{}, len(r.instruments))
	out := make([]string, 0, len(r.instruments))
	for _, in := range r.instruments {
		if in.Entity == "" {
			continue
		}
		if _, ok := seen[in.Entity]; ok {
			continue
		}
		seen[in.Entity] = struct{}{}
		out = append(out, in.Entity)
	}
	return out
}

// canSend — троттлинг повторяющихся нотификаций по ключу.
func (r *Runner) canSend(key string, every time.Duration) bool {
	if t, ok := r.throttleAt[key]; ok && time.Since(t) < every {
		return false
	}
	r.throttleAt[key] = time.Now()
	return true
}
