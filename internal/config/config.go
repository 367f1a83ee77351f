package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	kalshiKeyENV      = "KALSHI_API_KEY"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB     string `yaml:"db_dsn"`
	Kalshi struct {
		BaseURL string `yaml:"base_url"`
		WSURL   string `yaml:"ws_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"kalshi"`
	Feed struct {
		URL string `yaml:"url"` // пусто => источник событий выключен
	} `yaml:"feed"`
	Analyzer struct {
		URL        string `yaml:"url"` // пусто => только keyword-фоллбэк
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"analyzer"`
	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`
	Health struct {
		Addr string `yaml:"addr"`
	} `yaml:"health"`

	// Серии рынков, которые кэшируем (NBA-трейды, Super Bowl ads)
	Series []string `yaml:"series"`

	// Периодика управляющего цикла
	TickInterval   time.Duration
	SettingsTTL    time.Duration
	MarketCacheTTL time.Duration
	FeedInterval   time.Duration

	// Ретраи нотификаций (единственный ретраимый I/O)
	NotifyRetries      int
	NotifyBackoffStart time.Duration
	NotifyBackoffCap   time.Duration
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		TickInterval:   durationFromEnv("TICK_INTERVAL", "15s"),
		SettingsTTL:    durationFromEnv("SETTINGS_TTL", "30s"),
		MarketCacheTTL: durationFromEnv("MARKET_CACHE_TTL", "2m"),
		FeedInterval:   durationFromEnv("FEED_INTERVAL", "20s"),

		NotifyRetries:      intFromEnv("NOTIFY_RETRIES", 3),
		NotifyBackoffStart: durationFromEnv("NOTIFY_BACKOFF_START", "1s"),
		NotifyBackoffCap:   durationFromEnv("NOTIFY_BACKOFF_CAP", "8s"),
	}
	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	key := os.Getenv(kalshiKeyENV)
	if key != "" {
		config.Kalshi.APIKey = key
	}

	if config.Kalshi.BaseURL == "" {
		config.Kalshi.BaseURL = "https://api.elections.kalshi.com/trade-api/v2"
	}
	if config.Kalshi.WSURL == "" {
		config.Kalshi.WSURL = "wss://api.elections.kalshi.com/trade-api/ws/v2"
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
