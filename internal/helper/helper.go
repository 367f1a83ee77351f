package helper

import (
	"strings"
	"time"
)

// Normalize — каноническая форма имени/текста для сопоставления:
// lower, без пунктуации, схлопнутые пробелы.
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n':
			b.WriteRune(' ')
		default:
			// пунктуацию заменяем пробелом, чтобы "j.smith" не слипся
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SplitName — первое и последнее слово нормализованного имени.
func SplitName(normalized string) (first, last string, ok bool) {
	parts := strings.Fields(normalized)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[len(parts)-1], true
}

// LegKey — ключ ноги позиции для стейт-мап и троттлинга движка.
func LegKey(ticker, side string) string {
	return ticker + ":" + side
}

// Backoff — экспоненциальная пауза с потолком для ретраев нотификаций.
func Backoff(attempt int, start, cap time.Duration) time.Duration {
	d := start
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}
