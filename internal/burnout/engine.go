package burnout

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Upper bound on how many points the qualitative signal may move the
// workload score in either direction.
const maxSentimentAdjustment = 10

const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendWorsening = "worsening"
)

// Dead-band half-width: day-over-day changes strictly inside (-5, +5)
// read as stable so the direction does not flap on noise.
const trendDeadBand = 5

type Insights struct {
	PrimaryIssues    []string        `json:"primary_issues"`
	StressIndicators []string        `json:"stress_indicators"`
	BurnoutSignals   map[string]bool `json:"burnout_signals"`
}

type TrendInfo struct {
	PreviousScore      *int   `json:"previous_score"`
	ScoreChange        *int   `json:"score_change"`
	Direction          string `json:"trend_direction"`
	DaysInCurrentLevel int    `json:"days_in_current_level"`
}

// PreviousAnalysis is the slice of the prior day's stored result the
// trend state machine needs.
type PreviousAnalysis struct {
	FinalScore         int
	Level              Level
	DaysInCurrentLevel int
}

type AnalyzeInput struct {
	UserID       uuid.UUID
	AnalysisDate time.Time
	Metrics      UserMetrics
	Workload     WorkloadBreakdown
	Sentiment    SentimentResult
	Qualitative  QualitativeInput
	Previous     *PreviousAnalysis
}

// Analysis is one day's assessed result, shaped for append-only storage.
type Analysis struct {
	UserID              uuid.UUID         `json:"user_id"`
	AnalysisDate        time.Time         `json:"analysis_date"`
	FinalScore          int               `json:"final_score"`
	Level               Level             `json:"level"`
	Workload            WorkloadBreakdown `json:"workload"`
	Sentiment           SentimentResult   `json:"sentiment"`
	SentimentAdjustment int               `json:"sentiment_adjustment"`
	Metrics             UserMetrics       `json:"metrics"`
	Insights            Insights          `json:"insights"`
	Trend               TrendInfo         `json:"trend"`
}

// Analyze fuses the workload score with the sentiment signal, classifies
// the result, extracts insights, and advances the per-user trend state.
// Total over well-formed input: a zero-value SentimentResult means
// neutral and adjusts nothing, a nil Previous means first analysis ever.
func Analyze(in AnalyzeInput) Analysis {
	adj := sentimentAdjustment(in.Sentiment)
	final := clampInt(in.Workload.Total+adj, 0, 100)
	level := LevelForScore(final)

	return Analysis{
		UserID:              in.UserID,
		AnalysisDate:        in.AnalysisDate,
		FinalScore:          final,
		Level:               level,
		Workload:            in.Workload,
		Sentiment:           in.Sentiment,
		SentimentAdjustment: adj,
		Metrics:             in.Metrics.Normalized(),
		Insights:            buildInsights(in.Workload, in.Sentiment, in.Metrics, in.Qualitative),
		Trend:               advanceTrend(final, level, in.Previous),
	}
}

// sentimentAdjustment maps the bounded sentiment score onto points.
// Negative sentiment (distress) adds, positive subtracts; magnitude is
// proportional to the score and damped to half effect at zero confidence.
func sentimentAdjustment(s SentimentResult) int {
	score := clampFloat(s.Score, -1, 1)
	if score == 0 {
		return 0
	}
	weight := 0.5 + clampFloat(s.Confidence, 0, 1)/2
	adj := int(math.Round(-score * maxSentimentAdjustment * weight))
	return clampInt(adj, -maxSentimentAdjustment, maxSentimentAdjustment)
}

func buildInsights(w WorkloadBreakdown, s SentimentResult, m UserMetrics, q QualitativeInput) Insights {
	m = m.Normalized()

	// Text-sourced indicators only make sense when text was submitted;
	// the flags and keywords are collaborator output, not re-derived.
	indicators := make([]string, 0, 8)
	if !q.Empty() {
		if s.Flags.EmotionalExhaustion {
			indicators = append(indicators, "exhaustion language in check-ins")
		}
		if s.Flags.Overwhelm {
			indicators = append(indicators, "feeling overwhelmed")
		}
		if s.Flags.SleepConcerns {
			indicators = append(indicators, "sleep disruption mentioned")
		}
		if s.Flags.Detachment {
			indicators = append(indicators, "detachment from work")
		}
		if s.Flags.Irritability {
			indicators = append(indicators, "irritability in recent entries")
		}
		for _, kw := range dedupeStrings(s.StressKeywords) {
			indicators = append(indicators, "recurring mention of "+kw)
		}
	}

	signals := map[string]bool{
		"emotional_exhaustion": s.Flags.EmotionalExhaustion,
		"overwhelm":            s.Flags.Overwhelm || m.TotalActiveTasks > 12,
		"sleep_concerns":       s.Flags.SleepConcerns || m.LateNightWorkSessions > 4,
		"detachment":           s.Flags.Detachment,
		"chronic_overwork":     m.ConsecutiveWorkDays > 15 || m.WorkHoursThisWeek > 60,
	}

	issues := make([]string, len(w.PrimaryIssues))
	copy(issues, w.PrimaryIssues)

	return Insights{
		PrimaryIssues:    issues,
		StressIndicators: indicators,
		BurnoutSignals:   signals,
	}
}

// advanceTrend is the per-day hysteresis step: three level states, one
// transition per day, a consecutive-days counter as output.
func advanceTrend(final int, level Level, prev *PreviousAnalysis) TrendInfo {
	if prev == nil {
		return TrendInfo{Direction: TrendStable, DaysInCurrentLevel: 1}
	}
	prevScore := prev.FinalScore
	change := final - prevScore
	direction := TrendStable
	switch {
	case change <= -trendDeadBand:
		direction = TrendImproving
	case change >= trendDeadBand:
		direction = TrendWorsening
	}
	days := 1
	if prev.Level == level {
		days = prev.DaysInCurrentLevel + 1
	}
	return TrendInfo{
		PreviousScore:      &prevScore,
		ScoreChange:        &change,
		Direction:          direction,
		DaysInCurrentLevel: days,
	}
}

func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
