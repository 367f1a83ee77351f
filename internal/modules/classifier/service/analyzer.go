package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"kalshi_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// EntityVerdict — структурированный по-сущностный вывод внешнего анализатора.
type EntityVerdict struct {
	Entity      string      `json:"entity"`
	Tier        models.Tier `json:"tier"`
	Score       int         `json:"score"`
	Sentiment   string      `json:"sentiment"`
	Destination string      `json:"destination"`
	Suppressed  bool        `json:"suppressed"` // отвергнутая альтернатива
}

// Analyzer — делегированный текст-анализ. Когда доступен, его вывод
// перекрывает keyword-каскад; при ошибке вызывающий падает на каскад.
type Analyzer interface {
	Analyze(ctx context.Context, text string, entities []string) ([]EntityVerdict, error)
}

// HTTPAnalyzer — вызов внешнего сервиса анализа текста.
type HTTPAnalyzer struct {
	url  string
	http *http.Client
}

func NewHTTPAnalyzer(url string, timeout time.Duration) *HTTPAnalyzer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAnalyzer{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

func (a *HTTPAnalyzer) Analyze(ctx context.Context, text string, entities []string) ([]EntityVerdict, error) {
	body, err := sonic.Marshal(map[string]any{
		"text":     text,
		"entities": entities,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal analyze request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "new analyze request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "analyze call")
	}
	defer func() { _ = resp.Body.Close() }()

	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read analyze response")
	}
	if resp.StatusCode >= 300 {
		return nil, errors.Errorf("analyzer status=%d body=%s", resp.StatusCode, string(bs))
	}

	var out struct {
		Verdicts []EntityVerdict `json:"verdicts"`
	}
	if err := sonic.Unmarshal(bs, &out); err != nil {
		return nil, errors.Wrap(err, "decode analyze response")
	}
	return out.Verdicts, nil
}
