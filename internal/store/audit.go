package store

import (
	"context"
	"fmt"

	"kalshi_bot/internal/models"
	"kalshi_bot/pkg/db"

	"github.com/jackc/pgx/v5"
)

// Audit — append-only журнал сделок/сигналов/событий.
// Ошибки записи НЕ должны валить уже принятое торговое решение —
// это дело вызывающего: логировать и ехать дальше.
type Audit struct {
	db *db.PgTxManager
}

func NewAudit(pg *db.PgTxManager) *Audit {
	return &Audit{db: pg}
}

func (a *Audit) RecordTrade(ctx context.Context, t *models.TradeRecord) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("store.Audit.RecordTrade: %w", err)
		}
	}()
	return a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO trades (id, ticker, side, action, price, count, cost, status, order_id, signal_id, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			t.ID, t.Ticker, string(t.Side), t.Action, t.Price, t.Count, t.Cost, t.Status, t.OrderID, t.SignalID, t.At)
		return err
	})
}

func (a *Audit) RecordSignal(ctx context.Context, s *models.SignalRecord) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("store.Audit.RecordSignal: %w", err)
		}
	}()
	return a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO signals (id, event_id, author, entity, tier, score, action, ticker, reason, resolved, correct, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			s.ID, s.EventID, s.Author, s.Entity, string(s.Tier), s.Score, string(s.Action), s.Ticker, s.Reason, s.Resolved, s.Correct, s.At)
		return err
	})
}

func (a *Audit) RecordEvent(ctx context.Context, e *models.EventRecord) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("store.Audit.RecordEvent: %w", err)
		}
	}()
	return a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO events (id, author, text, outcome, created_at)
			 VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (id) DO NOTHING`,
			e.ID, e.Author, e.Text, e.Outcome, e.At)
		return err
	})
}

// SourceReliability — историческая точность автора из разрешённых сигналов.
// Читаем в repeatable read: correct/resolved/tracked должны быть из одного среза.
func (a *Audit) SourceReliability(ctx context.Context, author string) (out models.SourceReliability, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("store.Audit.SourceReliability: %w", err)
		}
	}()
	out = models.SourceReliability{Author: author}
	err = a.db.RunRepeatableRead(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctxTx,
			`SELECT
			   COUNT(*) FILTER (WHERE resolved AND correct),
			   COUNT(*) FILTER (WHERE resolved),
			   COUNT(*)
			 FROM signals WHERE author = $1`, author)
		return row.Scan(&out.Correct, &out.Resolved, &out.Tracked)
	})
	return out, err
}

// UnresolvedSignals — сигналы по тикеру, ждущие исхода рынка.
func (a *Audit) UnresolvedSignals(ctx context.Context, ticker string) (out []models.SignalRecord, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("store.Audit.UnresolvedSignals: %w", err)
		}
	}()
	err = a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctxTx,
			`SELECT id, author, action FROM signals WHERE ticker = $1 AND NOT resolved`, ticker)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			s := models.SignalRecord{Ticker: ticker}
			var action string
			if err := rows.Scan(&s.ID, &s.Author, &action); err != nil {
				return err
			}
			s.Action = models.Action(action)
			out = append(out, s)
		}
		return rows.Err()
	})
	return out, err
}

// MarkResolved — проставляем исход сигнала после разрешения рынка.
func (a *Audit) MarkResolved(ctx context.Context, signalID string, correct bool) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("store.Audit.MarkResolved: %w", err)
		}
	}()
	return a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`UPDATE signals SET resolved = true, correct = $2 WHERE id = $1`,
			signalID, correct)
		return err
	})
}
