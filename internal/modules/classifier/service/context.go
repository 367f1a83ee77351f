package service

import "strings"

// Негативно-контекстное подавление: сущность, упомянутая как отвергнутая
// альтернатива, не должна торговаться, даже если тир-ключи в тексте есть.
// Это отдельный пост-фильтр над кандидатами, он НЕ вмешан в каскад тиров.
var rejectedPrefixes = []string{
	"instead of ",
	"passed over ",
	"passed on ",
	"rather than ",
	"chosen over ",
	"chose over ",
	"not ",
}

var rejectedSuffixes = []string{
	" was previously considered",
	" had been considered",
	" was the backup option",
	" is out of the running",
	" lost out",
}

// mentionedAsRejected — true, если entity встречается в тексте только
// в отвергающем контексте. Текст и entity уже нормализованы.
func mentionedAsRejected(text, entity string) bool {
	if entity == "" {
		return false
	}

	idx := 0
	mentions := 0
	rejected := 0
	for {
		pos := strings.Index(text[idx:], entity)
		if pos < 0 {
			break
		}
		pos += idx
		mentions++

		if hasRejectedPrefix(text[:pos]) || hasRejectedSuffix(text[pos+len(entity):]) {
			rejected++
		}
		idx = pos + len(entity)
	}

	// упомянут И хотя бы раз позитивно — не давим
	return mentions > 0 && rejected == mentions
}

func hasRejectedPrefix(before string) bool {
	for _, p := range rejectedPrefixes {
		if strings.HasSuffix(before, p) {
			return true
		}
	}
	return false
}

func hasRejectedSuffix(after string) bool {
	for _, s := range rejectedSuffixes {
		if strings.HasPrefix(after, s) {
			return true
		}
	}
	return false
}
