package exchange

import (
	"context"
	"time"

	"kalshi_bot/pkg/logger"

	"github.com/bytedance/sonic"
)

const wsRedialCap = 30 * time.Second

// StreamTickers — поток тиков цен по пачке тикеров через один вебсокет.
// Реконнект бесконечный, пауза растёт до потолка: умерший стрим морит
// спайк-детектор голодом до рестарта процесса, этого допускать нельзя.
// Пинг — отдельной горутиной; каждый тик обновляет кэш последних сделок.
func (c *KalshiClient) StreamTickers(ctx context.Context, tickers []string) <-chan PriceTick {
	ch := make(chan PriceTick)
	go func() {
		defer close(ch)

		if len(tickers) == 0 {
			return
		}

		retry := 0
		for {
			if ctx.Err() != nil {
				return
			}

			conn, _, err := c.wsDialer.Dial(c.wsURL, nil)
			if err != nil {
				retry++
				pause := time.Duration(300*retry) * time.Millisecond
				if pause > wsRedialCap {
					pause = wsRedialCap
				}
				if retry%10 == 1 {
					logger.Warn("ws dial: попытка %d не прошла, пауза %s: %v", retry, pause, err)
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(pause):
				}
				continue
			}
			retry = 0

			sub := map[string]any{
				"id":  1,
				"cmd": "subscribe",
				"params": map[string]any{
					"channels":       []string{"ticker"},
					"market_tickers": tickers,
				},
			}
			_ = conn.WriteJSON(sub)

			stopPing := make(chan struct{})
			go func() {
				t := time.NewTicker(15 * time.Second)
				defer t.Stop()
				for {
					select {
					case <-stopPing:
						return
					case <-ctx.Done():
						return
					case <-t.C:
						_ = conn.WriteJSON(map[string]string{"cmd": "ping"})
					}
				}
			}()

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					close(stopPing)
					_ = conn.Close()
					break
				}
				var frame struct {
					Type string `json:"type"`
					Msg  struct {
						MarketTicker string `json:"market_ticker"`
						Price        int    `json:"price"`
						YesAsk       int    `json:"yes_ask"`
					} `json:"msg"`
				}
				if err := sonic.Unmarshal(msg, &frame); err != nil || frame.Type != "ticker" {
					continue
				}
				price := frame.Msg.Price
				if price == 0 {
					price = frame.Msg.YesAsk
				}
				if price <= 0 || price >= 100 {
					continue
				}
				c.SetLastTrade(frame.Msg.MarketTicker, price)

				select {
				case ch <- PriceTick{Ticker: frame.Msg.MarketTicker, YesPrice: price, At: time.Now()}:
				case <-ctx.Done():
					close(stopPing)
					_ = conn.Close()
					return
				}
			}
		}
	}()
	return ch
}
