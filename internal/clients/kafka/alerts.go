package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/emberwell/pulsecheck-backend/internal/platform/envutil"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

// LevelTransitionAlert is emitted whenever a user's fused burnout level
// changes between consecutive daily assessments. Downstream consumers
// (manager dashboards, escalation bots) key on user_id.
type LevelTransitionAlert struct {
	UserID       uuid.UUID `json:"user_id"`
	AnalysisDate string    `json:"analysis_date"`
	FromLevel    string    `json:"from_level"`
	ToLevel      string    `json:"to_level"`
	FinalScore   int       `json:"final_score"`
}

type AlertPublisher interface {
	PublishLevelTransition(ctx context.Context, alert LevelTransitionAlert) error
	Close() error
}

// messageWriter is the slice of *kafkago.Writer the publisher uses; tests
// substitute a recording fake.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type publisher struct {
	log    *logger.Logger
	writer messageWriter
	topic  string
}

// NewAlertPublisher reads KAFKA_BROKERS (comma-separated) and
// KAFKA_ALERTS_TOPIC. With no brokers configured alerts are disabled and
// a no-op publisher is returned, so callers never branch on config.
func NewAlertPublisher(log *logger.Logger) (AlertPublisher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	brokers := splitBrokers(envutil.String("KAFKA_BROKERS", ""))
	if len(brokers) == 0 {
		log.Info("kafka alerts disabled: no brokers configured")
		return NoopAlertPublisher{}, nil
	}
	topic := envutil.String("KAFKA_ALERTS_TOPIC", "pulsecheck.alerts")

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafkago.RequireAll,
		Balancer:     &kafkago.LeastBytes{},
	}
	return &publisher{
		log:    log.With("service", "KafkaAlertPublisher"),
		writer: w,
		topic:  topic,
	}, nil
}

func (p *publisher) PublishLevelTransition(ctx context.Context, alert LevelTransitionAlert) error {
	if p == nil || p.writer == nil {
		return fmt.Errorf("kafka alert publisher not initialized")
	}
	raw, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	// Keyed by user so one user's transitions stay ordered per partition.
	msg := kafkago.Message{
		Key:   []byte(alert.UserID.String()),
		Value: raw,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// NoopAlertPublisher swallows alerts; used when no brokers are configured.
type NoopAlertPublisher struct{}

func (NoopAlertPublisher) PublishLevelTransition(context.Context, LevelTransitionAlert) error {
	return nil
}

func (NoopAlertPublisher) Close() error { return nil }

func splitBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
