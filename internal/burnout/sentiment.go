package burnout

import (
	"context"
	"strings"
)

// QualitativeInput is the day's free-text entries (check-ins, task notes,
// meeting transcripts). Owned by the caller for one analysis call and
// never persisted verbatim.
type QualitativeInput struct {
	Texts []string `json:"texts"`
}

func (q QualitativeInput) Empty() bool {
	for _, t := range q.Texts {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return true
}

type SentimentFlags struct {
	EmotionalExhaustion bool `json:"emotional_exhaustion"`
	Overwhelm           bool `json:"overwhelm"`
	SleepConcerns       bool `json:"sleep_concerns"`
	Detachment          bool `json:"detachment"`
	Irritability        bool `json:"irritability"`
}

// SentimentResult is the collaborator-computed qualitative signal:
// a bounded score in [-1,1] (negative = distress), a confidence in [0,1],
// flagged signals, and the stress keywords the collaborator matched.
type SentimentResult struct {
	Score          float64        `json:"score"`
	Confidence     float64        `json:"confidence"`
	Flags          SentimentFlags `json:"flags"`
	StressKeywords []string       `json:"stress_keywords"`
	Source         string         `json:"source"`
}

// NeutralSentiment is the degraded-path value: zero adjustment, no flags.
func NeutralSentiment(source string) SentimentResult {
	return SentimentResult{Source: source}
}

// SentimentProvider computes the sentiment signal from qualitative text.
// Implementations live outside this package; the engine only consumes
// the result value and must keep working when a provider fails.
type SentimentProvider interface {
	Analyze(ctx context.Context, in QualitativeInput) (SentimentResult, error)
}
