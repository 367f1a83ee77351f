package exchange

import (
	"context"
	"net/http"
	"time"

	"kalshi_bot/internal/models"
)

// Signer подписывает запрос к бирже. Сама механика подписи (ключи, подпись
// заголовков) живёт снаружи ядра и сюда инжектится готовой.
type Signer interface {
	Sign(req *http.Request) error
}

type MarketsFilter struct {
	SeriesTicker string
	Status       string
	Limit        int
}

type OrderRequest struct {
	Ticker        string
	Side          models.Side
	Action        string // buy/sell
	Count         int
	LimitPrice    int // центы, в базисе стороны
	ClientOrderID string
}

type OrderResponse struct {
	OrderID string
	Status  string
}

// Client — контракт биржи, который нужен движку. Всё остальное
// (вебсокеты дашборда, история и т.п.) — не наше дело.
type Client interface {
	GetMarkets(ctx context.Context, f MarketsFilter) ([]models.Instrument, error)
	GetOrderbook(ctx context.Context, ticker string) (models.Orderbook, error)
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResponse, error)
	GetPositions(ctx context.Context) ([]models.Position, error)
	GetBalance(ctx context.Context) (models.Balance, error)
	GetFills(ctx context.Context, ticker string) ([]models.Fill, error)
	GetRestingOrders(ctx context.Context, ticker string) ([]models.RestingOrder, error)
}

// PriceTick — тик цены из WS-стрима для спайк-детектора.
type PriceTick struct {
	Ticker   string
	YesPrice int
	At       time.Time
}
