package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"kalshi_bot/internal/exchange"
	"kalshi_bot/internal/helper"
	"kalshi_bot/internal/models"
	"kalshi_bot/internal/store"
	"kalshi_bot/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier — fire-and-forget канал к оператору. Ошибки доставки
// НЕ пробрасываются в торговое решение: это единственный I/O,
// который ретраится (капнутый экспоненциальный бэкофф, вне горячего пути).
type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

type RetryPolicy struct {
	Attempts     int
	BackoffStart time.Duration
	BackoffCap   time.Duration
}

// Telegram — пассивный нотифайер + операторские команды
// /positions, /pause, /resume, /reload, /status.
type Telegram struct {
	bot      *tgbot.BotAPI
	chatID   int64
	ex       exchange.Client
	settings *store.Settings
	retry    RetryPolicy

	startedAt time.Time
}

func NewTelegram(token string, chatID int64, ex exchange.Client, settings *store.Settings, retry RetryPolicy) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:       b,
		chatID:    chatID,
		ex:        ex,
		settings:  settings,
		retry:     retry,
		startedAt: time.Now(),
	}, nil
}

// Send — асинхронно, с ретраями; главный цикл не ждёт доставку.
func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	go func() {
		for attempt := 0; ; attempt++ {
			_, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg))
			if err == nil {
				return
			}
			if attempt+1 >= t.retry.Attempts {
				logger.Error("notify: доставка не удалась после %d попыток: %v", attempt+1, err)
				return
			}
			time.Sleep(helper.Backoff(attempt, t.retry.BackoffStart, t.retry.BackoffCap))
		}
	}()
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// /positions — живые ноги позиций с биржи (не из памяти).
func (t *Telegram) handlePositions(ctx context.Context) {
	if t.ex == nil {
		t.Send("❗️ Клиент биржи не инициализирован")
		return
	}
	positions, err := t.ex.GetPositions(ctx)
	if err != nil {
		t.Sendf("❗️ Ошибка получения позиций: %v", err)
		return
	}
	if len(positions) == 0 {
		t.Send("📭 Открытых позиций нет")
		return
	}

	var b strings.Builder
	b.WriteString("📊 Открытые позиции:\n")
	for _, p := range positions {
		for _, leg := range p.Legs() {
			fmt.Fprintf(&b, "- %s [%s] x%d @ %d¢\n", leg.Ticker, strings.ToUpper(string(leg.Side)), leg.Contracts, leg.Entry)
		}
	}
	t.Send(b.String())
}

// setTrading — флип kill switch через стор (бамп версии настроек).
func (t *Telegram) setTrading(ctx context.Context, enabled bool) {
	cur, err := t.settings.Current(ctx)
	if err != nil {
		t.Sendf("❗️ Настройки недоступны: %v", err)
		return
	}
	next := *cur
	next.TradingEnabled = enabled
	if next.Tiers != nil {
		tiers := make(map[models.Tier]models.TierParams, len(cur.Tiers))
		for k, v := range cur.Tiers {
			tiers[k] = v
		}
		next.Tiers = tiers
	}
	if err := t.settings.Set(ctx, &next); err != nil {
		t.Sendf("❗️ Не записали настройки: %v", err)
		return
	}
	if enabled {
		t.Sendf("▶️ Торговля включена (settings v%d)", next.Version)
	} else {
		t.Sendf("⏸ Торговля на паузе, ордера идут в лог (settings v%d)", next.Version)
	}
}

func (t *Telegram) handleStatus(ctx context.Context) {
	cur, err := t.settings.Current(ctx)
	if err != nil {
		t.Sendf("❗️ Настройки недоступны: %v", err)
		return
	}
	state := "⏸ paper"
	if cur.TradingEnabled {
		state = "▶️ live"
	}
	t.Sendf("%s | settings v%d | uptime %s", state, cur.Version, time.Since(t.startedAt).Round(time.Second))
}

// Start: long-polling для операторских команд.
func (t *Telegram) Start(ctx context.Context) error {
	if t == nil || t.bot == nil {
		return nil
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				if upd.Message == nil || upd.Message.Chat == nil ||
					upd.Message.Chat.ID != t.chatID || !upd.Message.IsCommand() {
					continue
				}
				switch upd.Message.Command() {
				case "positions":
					go t.handlePositions(ctx)
				case "pause":
					go t.setTrading(ctx, false)
				case "resume":
					go t.setTrading(ctx, true)
				case "status":
					go t.handleStatus(ctx)
				case "reload":
					// настройки поменяли напрямую в базе — сбрасываем кэш
					t.settings.Invalidate()
					t.Send("🔄 Кэш настроек сброшен, перечитаем на следующем тике")
				}
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() {
	if t != nil && t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
}

// Stdout — заглушка, когда телеграм не сконфигурен: всё в лог.
type Stdout struct{}

func NewStdout() *Stdout                           { return &Stdout{} }
func (s *Stdout) Send(msg string)                  { log.Println(msg) }
func (s *Stdout) Sendf(format string, args ...any) { log.Printf(format, args...) }
