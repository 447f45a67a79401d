package app

import (
	"time"

	"github.com/emberwell/pulsecheck-backend/internal/platform/envutil"
)

// Version is stamped by the build (-ldflags "-X .../internal/app.Version=...").
var Version = "dev"

const serviceName = "pulsecheck-backend"

// Config is the app-level environment snapshot. Component tunables
// (learning thresholds, worker concurrency, SLO targets) stay inside
// their packages; only wiring-level keys live here.
type Config struct {
	Mode string
	Port string

	RedisAddr   string
	MetricsAddr string

	SentimentProvider string
	SentimentURL      string
	SentimentTimeout  time.Duration
}

func LoadConfig() Config {
	return Config{
		Mode: envutil.String("APP_MODE", "development"),
		Port: envutil.String("PORT", "8080"),

		RedisAddr:   envutil.String("REDIS_ADDR", ""),
		MetricsAddr: envutil.String("METRICS_ADDR", ":9100"),

		SentimentProvider: envutil.String("SENTIMENT_PROVIDER", "lexicon"),
		SentimentURL:      envutil.String("SENTIMENT_PROVIDER_URL", ""),
		SentimentTimeout:  time.Duration(envutil.Int("SENTIMENT_TIMEOUT_MS", 5000)) * time.Millisecond,
	}
}
