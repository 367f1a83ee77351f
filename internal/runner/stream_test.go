package runner

import (
	"context"
	"testing"

	"kalshi_bot/internal/models"
)

func TestStartStreamResubscribesOnNewListings(t *testing.T) {
	a := models.Instrument{Ticker: "A", Status: models.StatusOpen}
	b := models.Instrument{Ticker: "B", Status: models.StatusOpen}

	env := newTestRunner(a)
	fs := &fakeStreamer{}
	env.r.streamer = fs

	ctx := context.Background()
	env.r.startStream(ctx)
	if len(fs.subs) != 1 || len(fs.subs[0]) != 1 {
		t.Fatalf("subs = %+v", fs.subs)
	}

	// тот же набор — переподписки нет
	env.r.startStream(ctx)
	if len(fs.subs) != 1 {
		t.Fatalf("переподписка без изменений набора: %+v", fs.subs)
	}

	// новый листинг — старый стрим гаснет, подписка на оба тикера
	env.r.instruments = []models.Instrument{a, b}
	env.r.startStream(ctx)
	if len(fs.subs) != 2 || len(fs.subs[1]) != 2 {
		t.Fatalf("subs = %+v", fs.subs)
	}
}
