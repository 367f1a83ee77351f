package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kalshi_bot/pkg/db"

	"github.com/jackc/pgx/v5"
)

// Processed — персистентный набор обработанных id твитов.
// Память не переживает рестарт, поэтому набор лежит в pg,
// а мапа — только горячий кэш поверх.
type Processed struct {
	db *db.PgTxManager

	mu   sync.RWMutex
	seen map[string]struct{}
}

func NewProcessed(pg *db.PgTxManager) *Processed {
	return &Processed{db: pg, seen: make(map[string]struct{})}
}

// Load — прогрев кэша на старте (хвост за последние сутки достаточен:
// поллер старее не отдаёт).
func (p *Processed) Load(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("store.Processed.Load: %w", err)
		}
	}()
	return p.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctxTx,
			`SELECT event_id FROM processed_events WHERE created_at > now() - interval '1 day'`)
		if err != nil {
			return err
		}
		defer rows.Close()

		p.mu.Lock()
		defer p.mu.Unlock()
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			p.seen[id] = struct{}{}
		}
		return rows.Err()
	})
}

func (p *Processed) Seen(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.seen[id]
	return ok
}

// Mark — фиксируем id и в кэше, и в pg. Ошибка записи не фатальна для
// обработки события (словим дубль после рестарта — его отсечёт ON CONFLICT).
func (p *Processed) Mark(ctx context.Context, id string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("store.Processed.Mark: %w", err)
		}
	}()

	p.mu.Lock()
	p.seen[id] = struct{}{}
	p.mu.Unlock()

	return p.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO processed_events (event_id, created_at) VALUES ($1, $2)
			 ON CONFLICT (event_id) DO NOTHING`,
			id, time.Now())
		return err
	})
}
