package app

import (
	"fmt"

	"github.com/emberwell/pulsecheck-backend/internal/burnout"
	kafkaclient "github.com/emberwell/pulsecheck-backend/internal/clients/kafka"
	redisclient "github.com/emberwell/pulsecheck-backend/internal/clients/redis"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
	"github.com/emberwell/pulsecheck-backend/internal/sentiment"
)

type Clients struct {
	Events    redisclient.Client // nil without REDIS_ADDR
	Alerts    kafkaclient.AlertPublisher
	Sentiment burnout.SentimentProvider
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	var events redisclient.Client
	if cfg.RedisAddr != "" {
		ev, err := redisclient.NewClient(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis client: %w", err)
		}
		events = ev
	}

	alerts, err := kafkaclient.NewAlertPublisher(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init kafka alert publisher: %w", err)
	}

	provider, err := sentiment.New(sentiment.Config{
		Provider: cfg.SentimentProvider,
		URL:      cfg.SentimentURL,
		Timeout:  cfg.SentimentTimeout,
	}, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init sentiment provider: %w", err)
	}

	return Clients{
		Events:    events,
		Alerts:    alerts,
		Sentiment: provider,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Alerts != nil {
		_ = c.Alerts.Close()
	}
	if c.Events != nil {
		_ = c.Events.Close()
	}
}
