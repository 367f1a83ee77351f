package feed

import (
	"context"
	"io"
	"net/http"
	"sort"
	"time"

	"kalshi_bot/internal/models"
	"kalshi_bot/internal/store"
	"kalshi_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Source — внешний поставщик текстовых событий. Сама tiered-логика
// опроса соцсетей живёт снаружи, нам сюда падает плоский {id,text,author,ts}.
type Source interface {
	Poll(ctx context.Context) ([]models.TweetEvent, error)
}

// Poller — дедуп по персистентному processed-набору + порядок по времени.
type Poller struct {
	src       Source
	processed *store.Processed
}

func NewPoller(src Source, processed *store.Processed) *Poller {
	return &Poller{src: src, processed: processed}
}

// Drain — свежие события в порядке получения. Уже виденные id
// отсеиваются; набор переживает рестарты (pg под капотом).
func (p *Poller) Drain(ctx context.Context) ([]models.TweetEvent, error) {
	if p.src == nil {
		return nil, nil
	}
	events, err := p.src.Poll(ctx)
	if err != nil {
		return nil, err
	}

	fresh := make([]models.TweetEvent, 0, len(events))
	for _, ev := range events {
		if ev.ID == "" || p.processed.Seen(ev.ID) {
			continue
		}
		if err := p.processed.Mark(ctx, ev.ID); err != nil {
			// дубль после рестарта отсечёт ON CONFLICT, едем дальше
			logger.Warn("feed: не записали processed id=%s: %v", ev.ID, err)
		}
		fresh = append(fresh, ev)
	}

	sort.Slice(fresh, func(i, j int) bool { return fresh[i].At.Before(fresh[j].At) })
	return fresh, nil
}

// HTTPSource — простой съём событий с HTTP-эндпоинта поллера.
type HTTPSource struct {
	url  string
	http *http.Client
}

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{url: url, http: &http.Client{Timeout: 10 * time.Second}}
}

func (s *HTTPSource) Poll(ctx context.Context) ([]models.TweetEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "feed request")
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "feed poll")
	}
	defer func() { _ = resp.Body.Close() }()

	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "feed read")
	}
	if resp.StatusCode >= 300 {
		return nil, errors.Errorf("feed status=%d", resp.StatusCode)
	}

	var out struct {
		Events []struct {
			ID        string `json:"id"`
			Text      string `json:"text"`
			Author    string `json:"author"`
			Timestamp int64  `json:"timestamp"`
		} `json:"events"`
	}
	if err := sonic.Unmarshal(bs, &out); err != nil {
		return nil, errors.Wrap(err, "feed decode")
	}

	events := make([]models.TweetEvent, 0, len(out.Events))
	for _, e := range out.Events {
		events = append(events, models.TweetEvent{
			ID:     e.ID,
			Text:   e.Text,
			Author: e.Author,
			At:     time.Unix(e.Timestamp, 0),
		})
	}
	return events, nil
}
