package service

import (
	"context"
	"strings"

	"kalshi_bot/internal/helper"
	"kalshi_bot/internal/models"
	"kalshi_bot/pkg/logger"
)

// Classifier — free text → дискретные сигналы по сущностям.
// Exploring отфильтровывается ЗДЕСЬ: наружу такой сигнал не выходит.
type Classifier struct {
	rules    []Rule
	analyzer Analyzer // nil => только keyword-каскад
}

func New(rules []Rule, analyzer Analyzer) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules, analyzer: analyzer}
}

var scoreByTier = map[models.Tier]int{
	models.TierConfirmed: 92,
	models.TierImminent:  78,
	models.TierSerious:   65,
	models.TierNegative:  75,
	models.TierExploring: 40,
}

func actionFor(t models.Tier) models.Action {
	switch t {
	case models.TierNegative:
		return models.ActionBuyNo
	case models.TierConfirmed, models.TierImminent, models.TierSerious:
		return models.ActionBuyYes
	}
	return models.ActionHold
}

// Classify — по одному сигналу на упомянутую сущность.
// candidates — имена сущностей, под которые вообще есть рынки.
func (c *Classifier) Classify(ctx context.Context, ev models.TweetEvent, candidates []string) []models.Signal {
	if c.analyzer != nil {
		verdicts, err := c.analyzer.Analyze(ctx, ev.Text, candidates)
		if err == nil {
			return c.fromVerdicts(ev, verdicts)
		}
		// фоллбэк обязан отработать, событие не теряем
		logger.Warn("classifier: analyzer недоступен (%v), падаем на keyword-каскад", err)
	}
	return c.fromKeywords(ev, candidates)
}

func (c *Classifier) fromVerdicts(ev models.TweetEvent, verdicts []EntityVerdict) []models.Signal {
	out := make([]models.Signal, 0, len(verdicts))
	for _, v := range verdicts {
		if v.Suppressed {
			logger.Info("classifier: [%s] %q подавлен анализатором (отвергнутая альтернатива)", ev.ID, v.Entity)
			continue
		}
		if !v.Tier.Tradable() {
			continue
		}
		score := v.Score
		if score <= 0 || score > 100 {
			score = scoreByTier[v.Tier]
		}
		out = append(out, models.Signal{
			Event:       ev,
			Entity:      v.Entity,
			Tier:        v.Tier,
			Score:       score,
			Destination: v.Destination,
			Action:      actionFor(v.Tier),
			Reason:      "analyzer",
		})
	}
	return out
}

func (c *Classifier) fromKeywords(ev models.TweetEvent, candidates []string) []models.Signal {
	text := helper.Normalize(ev.Text)

	out := make([]models.Signal, 0, 2)
	for _, entity := range candidates {
		ne := helper.Normalize(entity)
		if ne == "" || !strings.Contains(text, ne) {
			continue
		}
		// пост-фильтр отвергнутых альтернатив, отдельно от каскада тиров
		if mentionedAsRejected(text, ne) {
			logger.Info("classifier: [%s] %q упомянут только как отвергнутая альтернатива, давим", ev.ID, entity)
			continue
		}

		tier, ruleName := matchTier(c.rules, text)
		if !tier.Tradable() {
			// Exploring — вердикт есть, сигнала нет
			logger.Info("classifier: [%s] %q => exploring (rule=%s), не торгуем", ev.ID, entity, ruleName)
			continue
		}

		out = append(out, models.Signal{
			Event:       ev,
			Entity:      entity,
			Tier:        tier,
			Score:       scoreByTier[tier],
			Destination: extractDestination(text),
			Action:      actionFor(tier),
			Reason:      "rule:" + ruleName,
		})
	}
	return out
}

var destMarkers = []string{
	"traded to ",
	"dealt to ",
	"headed to ",
	"on the move to ",
	"agreed to trade him to ",
}

// extractDestination — хвост после маркера до пунктуации, максимум три слова.
// Нормализацию через словарь алиасов делает резолвер, тут только сырая строка.
func extractDestination(text string) string {
	for _, m := range destMarkers {
		idx := strings.Index(text, m)
		if idx < 0 {
			continue
		}
		rest := text[idx+len(m):]
		if cut := strings.IndexAny(rest, ".,!?;:\n"); cut >= 0 {
			rest = rest[:cut]
		}
		words := strings.Fields(rest)
		if len(words) == 0 {
			continue
		}
		if words[0] == "the" {
			words = words[1:]
		}
		if len(words) > 3 {
			words = words[:3]
		}
		return strings.Join(words, " ")
	}
	return ""
}
