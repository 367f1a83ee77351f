package runner

import (
	"context"
	"fmt"
	"time"

	"kalshi_bot/internal/config"
	"kalshi_bot/internal/exchange"
	"kalshi_bot/internal/models"
	clssvc "kalshi_bot/internal/modules/classifier/service"
	ressvc "kalshi_bot/internal/modules/resolver/service"

	"github.com/shopspring/decimal"
)

// Фейки зависимостей движка. Биржа скриптуется полями, всё остальное
// просто копит вызовы.

type fakeExchange struct {
	books     map[string]models.Orderbook
	bookErr   error
	positions []models.Position
	posErr    error
	resting   map[string][]models.RestingOrder
	placed    []exchange.OrderRequest
	placeErr  error
	markets   []models.Instrument
	settled   []models.Instrument
}

func (f *fakeExchange) GetMarkets(_ context.Context, fl exchange.MarketsFilter) ([]models.Instrument, error) {
	if fl.Status == models.StatusSettled {
		return f.settled, nil
	}
	return f.markets, nil
}

func (f *fakeExchange) GetOrderbook(_ context.Context, ticker string) (models.Orderbook, error) {
	if f.bookErr != nil {
		return models.Orderbook{}, f.bookErr
	}
	return f.books[ticker], nil
}

func (f *fakeExchange) PlaceOrder(_ context.Context, req exchange.OrderRequest) (exchange.OrderResponse, error) {
	if f.placeErr != nil {
		return exchange.OrderResponse{}, f.placeErr
	}
	f.placed = append(f.placed, req)
	return exchange.OrderResponse{OrderID: fmt.Sprintf("ord-%d", len(f.placed)), Status: "resting"}, nil
}

func (f *fakeExchange) GetPositions(_ context.Context) ([]models.Position, error) {
	return f.positions, f.posErr
}

func (f *fakeExchange) GetBalance(_ context.Context) (models.Balance, error) {
	return models.Balance{Cash: decimal.New(100000, -2)}, nil
}

func (f *fakeExchange) GetFills(_ context.Context, _ string) ([]models.Fill, error) {
	return nil, nil
}

func (f *fakeExchange) GetRestingOrders(_ context.Context, ticker string) ([]models.RestingOrder, error) {
	return f.resting[ticker], nil
}

type fakeLastTrades struct {
	prices map[string]int // YES-базис
}

func (f *fakeLastTrades) LastTrade(ticker string) (int, bool) {
	p, ok := f.prices[ticker]
	return p, ok
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) Send(msg string) { f.sent = append(f.sent, msg) }
func (f *fakeNotifier) Sendf(format string, args ...any) {
	f.Send(fmt.Sprintf(format, args...))
}

type fakeAudit struct {
	trades   []*models.TradeRecord
	signals  []*models.SignalRecord
	events   []*models.EventRecord
	rel      models.SourceReliability
	relErr   error
	resolved map[string]bool // signalID -> correct
}

func (f *fakeAudit) RecordTrade(_ context.Context, t *models.TradeRecord) error {
	f.trades = append(f.trades, t)
	return nil
}

func (f *fakeAudit) RecordSignal(_ context.Context, s *models.SignalRecord) error {
	f.signals = append(f.signals, s)
	return nil
}

func (f *fakeAudit) RecordEvent(_ context.Context, e *models.EventRecord) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeAudit) SourceReliability(_ context.Context, _ string) (models.SourceReliability, error) {
	return f.rel, f.relErr
}

func (f *fakeAudit) UnresolvedSignals(_ context.Context, ticker string) ([]models.SignalRecord, error) {
	var out []models.SignalRecord
	for _, s := range f.signals {
		if s.Ticker == ticker && !s.Resolved {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeAudit) MarkResolved(_ context.Context, signalID string, correct bool) error {
	if f.resolved == nil {
		f.resolved = make(map[string]bool)
	}
	f.resolved[signalID] = correct
	for _, s := range f.signals {
		if s.ID == signalID {
			s.Resolved = true
			s.Correct = correct
		}
	}
	return nil
}

type testEnv struct {
	r  *Runner
	ex *fakeExchange
	nt *fakeNotifier
	au *fakeAudit
}

func newTestRunner(instruments ...models.Instrument) *testEnv {
	ex := &fakeExchange{
		books:   map[string]models.Orderbook{},
		resting: map[string][]models.RestingOrder{},
	}
	nt := &fakeNotifier{}
	au := &fakeAudit{}
	r := &Runner{
		cfg:        &config.Config{},
		ex:         ex,
		lastTrades: &fakeLastTrades{prices: map[string]int{}},
		audit:      au,
		notifier:   nt,
		classifier: clssvc.New(nil, nil),
		resolver:   ressvc.New(),

		instruments:  instruments,
		windows:      make(map[string]*models.PriceWindow),
		dedupTil:     make(map[string]time.Time),
		sessionLow:   make(map[string]int),
		lastSignalAt: make(map[string]time.Time),
		throttleAt:   make(map[string]time.Time),
		ticks:        make(chan exchange.PriceTick, 64),
	}
	return &testEnv{r: r, ex: ex, nt: nt, au: au}
}

func (e *testEnv) setLastTrade(ticker string, yes int) {
	e.r.lastTrades.(*fakeLastTrades).prices[ticker] = yes
}

type fakeStreamer struct {
	subs [][]string
}

func (f *fakeStreamer) StreamTickers(ctx context.Context, tickers []string) <-chan exchange.PriceTick {
	f.subs = append(f.subs, tickers)
	ch := make(chan exchange.PriceTick)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

// снапшот настроек для тестов: торговля включена, автобай включён
func testSettings() *models.Settings {
	st := models.DefaultSettings()
	st.TradingEnabled = true
	st.Spike.AutoBuyEnabled = true
	return st
}
