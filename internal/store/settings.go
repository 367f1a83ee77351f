package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kalshi_bot/internal/models"
	"kalshi_bot/pkg/db"
	"kalshi_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
)

// Settings — операторский конфиг в pg (одна строка на версию, sonic-блоб).
// Движок читает через TTL-кэш и получает ИММУТАБЕЛЬНЫЙ снапшот:
// все мутации — только через Set с бампом версии.
type Settings struct {
	db *db.PgTxManager

	ttl time.Duration

	mu        sync.RWMutex
	cached    *models.Settings
	fetchedAt time.Time
}

func NewSettings(pg *db.PgTxManager, ttl time.Duration) *Settings {
	return &Settings{db: pg, ttl: ttl}
}

func (s *Settings) isStale(now time.Time) bool {
	return s.cached == nil || now.Sub(s.fetchedAt) > s.ttl
}

// Current — снапшот настроек; внутри TTL отдаём кэш, иначе перечитываем.
// При ошибке чтения и живом кэше — отдаём кэш (решение лучше принять
// на чуть устаревшем конфиге, чем не принять вовсе), лог обязателен.
func (s *Settings) Current(ctx context.Context) (*models.Settings, error) {
	now := time.Now()

	s.mu.RLock()
	if !s.isStale(now) {
		cached := s.cached
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	fresh, err := s.Get(ctx)
	if err != nil {
		s.mu.RLock()
		cached := s.cached
		s.mu.RUnlock()
		if cached != nil {
			logger.Warn("settings: перечитать не удалось (%v), работаем на version=%d", err, cached.Version)
			return cached, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cached = fresh
	s.fetchedAt = now
	s.mu.Unlock()
	return fresh, nil
}

// Invalidate — out-of-band push от оператора: следующий Current перечитает.
func (s *Settings) Invalidate() {
	s.mu.Lock()
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

func (s *Settings) Get(ctx context.Context) (out *models.Settings, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("store.Settings.Get: %w", err)
		}
	}()

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		var data []byte
		row := tx.QueryRow(ctxTx,
			`SELECT data FROM bot_settings ORDER BY version DESC LIMIT 1`)
		if err := row.Scan(&data); err != nil {
			if err == pgx.ErrNoRows {
				// пустая таблица — легитимный старт, садимся на дефолты
				out = models.DefaultSettings()
				return nil
			}
			return err
		}
		var t models.Settings
		if err := sonic.Unmarshal(data, &t); err != nil {
			return err
		}
		out = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Set — записывает новый снапшот с бампом версии и сразу прогревает кэш.
func (s *Settings) Set(ctx context.Context, next *models.Settings) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("store.Settings.Set: %w", err)
		}
	}()

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctxTx, `SELECT COALESCE(MAX(version), 0) FROM bot_settings`)
		var maxVer int
		if err := row.Scan(&maxVer); err != nil {
			return err
		}
		next.Version = maxVer + 1

		data, err := sonic.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctxTx,
			`INSERT INTO bot_settings (version, data, updated_at) VALUES ($1, $2, now())`,
			next.Version, data)
		return err
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cached = next
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return nil
}
