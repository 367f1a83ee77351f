package service

import (
	"strings"

	"kalshi_bot/internal/models"
)

// Rule — один элемент упорядоченного каскада (предикат → тир).
// Порядок в списке и есть приоритет: негатив стоит первым и
// выигрывает любую ничью, позитивные тиры идут по убыванию силы.
type Rule struct {
	Name string
	Tier models.Tier
	Hit  func(text string) bool
}

func anyPhrase(subs ...string) func(string) bool {
	return func(text string) bool {
		for _, s := range subs {
			if strings.Contains(text, s) {
				return true
			}
		}
		return false
	}
}

// DefaultRules — каскад под NBA-трейды и Super Bowl рекламу.
// Текст на входе уже нормализован (lower).
func DefaultRules() []Rule {
	return []Rule{
		// --- негативная полярность, всегда первой ---
		{
			Name: "neg_reversal",
			Tier: models.TierNegative,
			Hit: anyPhrase(
				"talks have stalled",
				"talks stalled",
				"no longer",
				"not happening",
				"fell apart",
				"falling apart",
				"off the table",
				"is staying",
				"will stay",
				"ruled out",
				"denied",
				"won't be traded",
				"will not be traded",
				"won't air",
				"pulled the ad",
			),
		},
		// --- позитивные тиры по убыванию ---
		{
			Name: "confirmed",
			Tier: models.TierConfirmed,
			Hit: anyPhrase(
				"has been traded",
				"have agreed to trade",
				"trade is official",
				"it's official",
				"its official",
				"done deal",
				"officially",
				"confirmed",
				"will air during the super bowl",
				"super bowl ad is official",
			),
		},
		{
			Name: "imminent",
			Tier: models.TierImminent,
			Hit: anyPhrase(
				"finalizing",
				"imminent",
				"closing in on",
				"nearing a deal",
				"nearing a trade",
				"expected to be traded",
				"on the verge",
				"expected to air",
			),
		},
		{
			Name: "serious",
			Tier: models.TierSerious,
			Hit: anyPhrase(
				"serious talks",
				"serious discussions",
				"in advanced talks",
				"actively shopping",
				"engaged in talks",
				"gaining traction",
				"in negotiations",
			),
		},
		{
			Name: "exploring",
			Tier: models.TierExploring,
			Hit: anyPhrase(
				"exploring",
				"listening to offers",
				"gauging interest",
				"has had conversations",
				"kicking the tires",
			),
		},
	}
}

// matchTier — прогон каскада; нет совпадений — дефолтный Exploring
// (детерминированный и объяснимый вердикт, не молчаливый дроп).
func matchTier(rules []Rule, text string) (models.Tier, string) {
	for _, r := range rules {
		if r.Hit(text) {
			return r.Tier, r.Name
		}
	}
	return models.TierExploring, "default"
}
