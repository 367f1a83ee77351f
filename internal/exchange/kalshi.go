package exchange

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"kalshi_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// KalshiClient — тонкий REST-клиент Kalshi trade-api v2.
// Держит кэш последних цен сделок (нужен гарду для price-sanity сверки).
type KalshiClient struct {
	baseURL  string
	wsURL    string
	http     *http.Client
	wsDialer *websocket.Dialer
	signer   Signer

	mu         sync.RWMutex
	lastTrades map[string]int // ticker -> последняя цена сделки (YES-базис)
}

func NewKalshiClient(baseURL, wsURL string, signer Signer) *KalshiClient {
	return &KalshiClient{
		baseURL:    baseURL,
		wsURL:      wsURL,
		http:       &http.Client{Timeout: 10 * time.Second},
		wsDialer:   &websocket.Dialer{},
		signer:     signer,
		lastTrades: make(map[string]int),
	}
}

// SetLastTrade / LastTrade — кэш последней сделки, single-writer из WS-стрима.
func (c *KalshiClient) SetLastTrade(ticker string, price int) {
	c.mu.Lock()
	c.lastTrades[ticker] = price
	c.mu.Unlock()
}

func (c *KalshiClient) LastTrade(ticker string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.lastTrades[ticker]
	return p, ok
}

func (c *KalshiClient) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var rd io.Reader
	if body != nil {
		bs, err := sonic.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal body")
		}
		rd = bytes.NewReader(bs)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.signer != nil {
		if err := c.signer.Sign(req); err != nil {
			return errors.Wrap(err, "sign request")
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "http do")
	}
	defer func() { _ = resp.Body.Close() }()

	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if resp.StatusCode >= 300 {
		return errors.Errorf("kalshi %s %s: status=%d body=%s", method, path, resp.StatusCode, string(bs))
	}
	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(bs, out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

type wireMarket struct {
	Ticker       string `json:"ticker"`
	Title        string `json:"title"`
	YesSubTitle  string `json:"yes_sub_title"`
	YesBid       int    `json:"yes_bid"`
	YesAsk       int    `json:"yes_ask"`
	LastPrice    int    `json:"last_price"`
	Volume       int64  `json:"volume"`
	OpenInterest int64  `json:"open_interest"`
	Status       string `json:"status"`
	Result       string `json:"result"`
	CloseTime    string `json:"close_time"`
}

func (c *KalshiClient) GetMarkets(ctx context.Context, f MarketsFilter) ([]models.Instrument, error) {
	q := url.Values{}
	if f.SeriesTicker != "" {
		q.Set("series_ticker", f.SeriesTicker)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	var resp struct {
		Markets []wireMarket `json:"markets"`
	}
	if err := c.do(ctx, http.MethodGet, "/markets", q, nil, &resp); err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]models.Instrument, 0, len(resp.Markets))
	for _, m := range resp.Markets {
		price := m.LastPrice
		if price == 0 {
			price = m.YesAsk
		}
		closeAt, _ := time.Parse(time.RFC3339, m.CloseTime)
		out = append(out, models.Instrument{
			Ticker:       m.Ticker,
			Title:        m.Title,
			Entity:       m.YesSubTitle,
			Destination:  destinationFromTitle(m.Title),
			YesPrice:     price,
			Volume:       m.Volume,
			OpenInterest: m.OpenInterest,
			Status:       m.Status,
			Result:       m.Result,
			CloseTime:    closeAt,
			FetchedAt:    now,
		})
		if m.LastPrice > 0 {
			c.SetLastTrade(m.Ticker, m.LastPrice)
		}
	}
	return out, nil
}

// destinationFromTitle — направление мульти-легового рынка из заголовка
// ("Will X be traded to the Los Angeles Lakers?" => "Los Angeles Lakers").
// Канонизацию по словарю алиасов делает резолвер, тут только сырой хвост.
func destinationFromTitle(title string) string {
	lower := strings.ToLower(title)
	idx := strings.LastIndex(lower, " to ")
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(title[idx+len(" to "):])
	rest = strings.TrimRight(rest, "?!. ")
	if strings.HasPrefix(strings.ToLower(rest), "the ") {
		rest = rest[len("the "):]
	}
	return rest
}

func (c *KalshiClient) GetOrderbook(ctx context.Context, ticker string) (models.Orderbook, error) {
	// стакан приходит уровнями [price, count]; бид YES на уровне p —
	// это аск NO по 100-p, отсюда и считаем оба аска
	var resp struct {
		Orderbook struct {
			Yes [][]int `json:"yes"`
			No  [][]int `json:"no"`
		} `json:"orderbook"`
	}
	if err := c.do(ctx, http.MethodGet, "/markets/"+ticker+"/orderbook", nil, nil, &resp); err != nil {
		return models.Orderbook{}, err
	}

	ob := models.Orderbook{Ticker: ticker}
	if n := len(resp.Orderbook.No); n > 0 {
		ob.YesAsk = 100 - resp.Orderbook.No[n-1][0]
	}
	if n := len(resp.Orderbook.Yes); n > 0 {
		ob.NoAsk = 100 - resp.Orderbook.Yes[n-1][0]
	}
	return ob, nil
}

func (c *KalshiClient) PlaceOrder(ctx context.Context, req OrderRequest) (OrderResponse, error) {
	body := map[string]any{
		"ticker":          req.Ticker,
		"client_order_id": req.ClientOrderID,
		"side":            string(req.Side),
		"action":          req.Action,
		"count":           req.Count,
		"type":            "limit",
	}
	// лимитка всегда в базисе своей стороны
	if req.Side == models.SideNo {
		body["no_price"] = req.LimitPrice
	} else {
		body["yes_price"] = req.LimitPrice
	}

	var resp struct {
		Order struct {
			OrderID string `json:"order_id"`
			Status  string `json:"status"`
		} `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/portfolio/orders", nil, body, &resp); err != nil {
		return OrderResponse{}, err
	}
	return OrderResponse{OrderID: resp.Order.OrderID, Status: resp.Order.Status}, nil
}

func (c *KalshiClient) GetPositions(ctx context.Context) ([]models.Position, error) {
	// YES и NO у Kalshi — независимые неотрицательные поля,
	// тут их НЕЛЬЗЯ схлопывать в одно знаковое
	var resp struct {
		MarketPositions []struct {
			Ticker       string `json:"ticker"`
			YesCount     int    `json:"yes_count"`
			NoCount      int    `json:"no_count"`
			YesAvgPrice  int    `json:"yes_avg_price"`
			NoAvgPrice   int    `json:"no_avg_price"`
		} `json:"market_positions"`
	}
	if err := c.do(ctx, http.MethodGet, "/portfolio/positions", nil, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Position, 0, len(resp.MarketPositions))
	for _, p := range resp.MarketPositions {
		if p.YesCount == 0 && p.NoCount == 0 {
			continue
		}
		out = append(out, models.Position{
			Ticker:       p.Ticker,
			YesContracts: p.YesCount,
			NoContracts:  p.NoCount,
			YesEntry:     p.YesAvgPrice,
			NoEntry:      p.NoAvgPrice,
		})
	}
	return out, nil
}

func (c *KalshiClient) GetBalance(ctx context.Context) (models.Balance, error) {
	var resp struct {
		Balance       int64 `json:"balance"`        // центы
		PayoutValue   int64 `json:"payout"`
		PositionValue int64 `json:"position_value"` // центы
	}
	if err := c.do(ctx, http.MethodGet, "/portfolio/balance", nil, nil, &resp); err != nil {
		return models.Balance{}, err
	}
	return models.Balance{
		Cash:           decimal.New(resp.Balance, -2),
		PositionsValue: decimal.New(resp.PositionValue, -2),
	}, nil
}

func (c *KalshiClient) GetFills(ctx context.Context, ticker string) ([]models.Fill, error) {
	q := url.Values{}
	if ticker != "" {
		q.Set("ticker", ticker)
	}
	var resp struct {
		Fills []struct {
			Ticker  string `json:"ticker"`
			Side    string `json:"side"`
			Action  string `json:"action"`
			Price   int    `json:"price"`
			Count   int    `json:"count"`
			OrderID string `json:"order_id"`
		} `json:"fills"`
	}
	if err := c.do(ctx, http.MethodGet, "/portfolio/fills", q, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Fill, 0, len(resp.Fills))
	for _, f := range resp.Fills {
		out = append(out, models.Fill{
			Ticker:  f.Ticker,
			Side:    models.Side(f.Side),
			Action:  f.Action,
			Price:   f.Price,
			Count:   f.Count,
			OrderID: f.OrderID,
		})
	}
	return out, nil
}

func (c *KalshiClient) GetRestingOrders(ctx context.Context, ticker string) ([]models.RestingOrder, error) {
	q := url.Values{}
	q.Set("status", "resting")
	if ticker != "" {
		q.Set("ticker", ticker)
	}
	var resp struct {
		Orders []struct {
			OrderID string `json:"order_id"`
			Ticker  string `json:"ticker"`
			Side    string `json:"side"`
			Action  string `json:"action"`
			Price   int    `json:"yes_price"`
			Count   int    `json:"remaining_count"`
		} `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/portfolio/orders", q, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]models.RestingOrder, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		out = append(out, models.RestingOrder{
			OrderID: o.OrderID,
			Ticker:  o.Ticker,
			Side:    models.Side(o.Side),
			Action:  o.Action,
			Price:   o.Price,
			Count:   o.Count,
		})
	}
	return out, nil
}

var _ Client = (*KalshiClient)(nil)

// apiKeySigner — простейший подписант по заголовку; продовая криптоподпись
// приходит отдельной реализацией Signer.
type apiKeySigner struct{ key string }

func NewAPIKeySigner(key string) Signer { return &apiKeySigner{key: key} }

func (s *apiKeySigner) Sign(req *http.Request) error {
	if s.key == "" {
		return fmt.Errorf("empty kalshi api key")
	}
	req.Header.Set("KALSHI-ACCESS-KEY", s.key)
	return nil
}
