package sentiment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emberwell/pulsecheck-backend/internal/burnout"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

type Config struct {
	Provider string
	URL      string
	Timeout  time.Duration
}

// New selects the configured provider. The lexicon scorer is the default
// so the service stays fully functional with zero external dependencies.
func New(cfg Config, log *logger.Logger) (burnout.SentimentProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "lexicon":
		return NewLexiconProvider(log)
	case "http":
		return NewHTTPProvider(cfg.URL, cfg.Timeout, log)
	case "noop":
		return NoopProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown sentiment provider %q", cfg.Provider)
	}
}

// NoopProvider always reports neutral sentiment.
type NoopProvider struct{}

func (NoopProvider) Analyze(ctx context.Context, in burnout.QualitativeInput) (burnout.SentimentResult, error) {
	return burnout.NeutralSentiment("noop"), nil
}
