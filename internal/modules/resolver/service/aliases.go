package service

// Контролируемый словарь направлений: команды NBA и слоты Super Bowl.
// Неизвестный алиас НЕ матчится ни во что (fail closed) — частичное
// совпадение по направлению дороже, чем пропущенный рынок.
var destinationAliases = map[string]string{
	// NBA
	"lakers":                "los angeles lakers",
	"la lakers":             "los angeles lakers",
	"los angeles lakers":    "los angeles lakers",
	"warriors":              "golden state warriors",
	"golden state":          "golden state warriors",
	"golden state warriors": "golden state warriors",
	"heat":                  "miami heat",
	"miami":                 "miami heat",
	"miami heat":            "miami heat",
	"knicks":                "new york knicks",
	"new york knicks":       "new york knicks",
	"nets":                  "brooklyn nets",
	"brooklyn":              "brooklyn nets",
	"brooklyn nets":         "brooklyn nets",
	"celtics":               "boston celtics",
	"boston celtics":        "boston celtics",
	"bucks":                 "milwaukee bucks",
	"milwaukee bucks":       "milwaukee bucks",
	"suns":                  "phoenix suns",
	"phoenix suns":          "phoenix suns",
	"mavericks":             "dallas mavericks",
	"mavs":                  "dallas mavericks",
	"dallas mavericks":      "dallas mavericks",
	"sixers":                "philadelphia 76ers",
	"76ers":                 "philadelphia 76ers",
	"philadelphia 76ers":    "philadelphia 76ers",
	"clippers":              "la clippers",
	"la clippers":           "la clippers",
	"spurs":                 "san antonio spurs",
	"san antonio spurs":     "san antonio spurs",
	"thunder":               "oklahoma city thunder",
	"okc":                   "oklahoma city thunder",
	"oklahoma city thunder": "oklahoma city thunder",

	// Super Bowl ad slots
	"first quarter":  "q1",
	"q1":             "q1",
	"second quarter": "q2",
	"q2":             "q2",
	"halftime":       "halftime",
	"pregame":        "pregame",
}

// CanonicalDestination — нормализованный алиас → каноническое имя.
func CanonicalDestination(normalized string) (string, bool) {
	c, ok := destinationAliases[normalized]
	return c, ok
}
