package burnout

import (
	"math"
	"sort"
	"time"
)

const (
	BaselineSourceGreen   = "green"
	BaselineSourceOverall = "overall"
)

// Below this calm-side mean a relative comparison is meaningless and the
// absolute floor decides instead.
const nearZeroCalmMean = 0.1

// LearnConfig tunes the pattern learner. Zero values fall back to the
// documented defaults, so the empty struct is a valid config.
type LearnConfig struct {
	MinDays          int
	MinSubsetSamples int
	RelativeIncrease float64
	AbsoluteFloor    float64
}

func (c LearnConfig) withDefaults() LearnConfig {
	if c.MinDays <= 0 {
		c.MinDays = 7
	}
	if c.MinSubsetSamples <= 0 {
		c.MinSubsetSamples = 3
	}
	if c.RelativeIncrease <= 0 {
		c.RelativeIncrease = 0.5
	}
	if c.AbsoluteFloor <= 0 {
		c.AbsoluteFloor = 1.0
	}
	return c
}

// HistoryRecord is the slice of a stored daily result the learner reads.
// Decoding storage rows (and skipping corrupt ones) is the caller's job.
type HistoryRecord struct {
	AnalysisDate time.Time
	FinalScore   int
	Level        Level
	Metrics      UserMetrics
}

// StressTrigger marks a metric dimension whose mean on red days sits
// meaningfully above its mean on green days.
type StressTrigger struct {
	Dimension    string  `json:"dimension"`
	CalmMean     float64 `json:"calm_mean"`
	StressedMean float64 `json:"stressed_mean"`
	Increase     float64 `json:"increase"`
}

type LearnedPatterns struct {
	BaselineScore  float64         `json:"baseline_score"`
	BaselineSource string          `json:"baseline_source"`
	AvgTasksPerDay float64         `json:"avg_tasks_per_day"`
	AvgHoursPerDay float64         `json:"avg_hours_per_day"`
	StressTriggers []StressTrigger `json:"stress_triggers"`
	SampleDays     int             `json:"sample_days"`
}

var triggerDimensions = []struct {
	name  string
	value func(UserMetrics) float64
}{
	{"overdue_tasks", func(m UserMetrics) float64 { return float64(m.OverdueTasks) }},
	{"weekend_work_sessions", func(m UserMetrics) float64 { return float64(m.WeekendWorkSessions) }},
	{"late_night_work_sessions", func(m UserMetrics) float64 { return float64(m.LateNightWorkSessions) }},
	{"back_to_back_meetings", func(m UserMetrics) float64 { return float64(m.BackToBackMeetings) }},
	{"consecutive_work_days", func(m UserMetrics) float64 { return float64(m.ConsecutiveWorkDays) }},
}

// LearnPatterns mines a window of daily results for one user's baseline,
// typical workload, and stress triggers. Below MinDays of records it
// returns nil: not enough history is a documented no-op, not an error.
func LearnPatterns(records []HistoryRecord, cfg LearnConfig) *LearnedPatterns {
	cfg = cfg.withDefaults()
	if len(records) < cfg.MinDays {
		return nil
	}

	allScores := make([]float64, 0, len(records))
	greenScores := make([]float64, 0, len(records))
	tasks := make([]float64, 0, len(records))
	hours := make([]float64, 0, len(records))
	for _, r := range records {
		allScores = append(allScores, float64(r.FinalScore))
		if r.Level == LevelGreen {
			greenScores = append(greenScores, float64(r.FinalScore))
		}
		tasks = append(tasks, float64(r.Metrics.TotalActiveTasks))
		hours = append(hours, r.Metrics.WorkHoursToday)
	}

	baseline := 0.0
	baselineSource := BaselineSourceGreen
	if len(greenScores) > 0 {
		baseline = medianOf(greenScores)
	} else {
		baseline = meanOf(allScores)
		baselineSource = BaselineSourceOverall
	}

	return &LearnedPatterns{
		BaselineScore:  baseline,
		BaselineSource: baselineSource,
		AvgTasksPerDay: meanOf(tasks),
		AvgHoursPerDay: meanOf(hours),
		StressTriggers: detectTriggers(records, cfg),
		SampleDays:     len(records),
	}
}

// detectTriggers runs the two-group mean comparison per dimension. Both
// subsets must reach MinSubsetSamples before a dimension may fire, so
// thin samples never produce spurious triggers.
func detectTriggers(records []HistoryRecord, cfg LearnConfig) []StressTrigger {
	triggers := []StressTrigger{}
	for _, dim := range triggerDimensions {
		stressed := []float64{}
		calm := []float64{}
		for _, r := range records {
			switch r.Level {
			case LevelRed:
				stressed = append(stressed, dim.value(r.Metrics))
			case LevelGreen:
				calm = append(calm, dim.value(r.Metrics))
			}
		}
		if len(stressed) < cfg.MinSubsetSamples || len(calm) < cfg.MinSubsetSamples {
			continue
		}
		calmMean := meanOf(calm)
		stressedMean := meanOf(stressed)
		fired := false
		if calmMean < nearZeroCalmMean {
			fired = stressedMean >= cfg.AbsoluteFloor
		} else {
			fired = stressedMean >= calmMean*(1+cfg.RelativeIncrease)
		}
		if !fired {
			continue
		}
		triggers = append(triggers, StressTrigger{
			Dimension:    dim.name,
			CalmMean:     calmMean,
			StressedMean: stressedMean,
			Increase:     (stressedMean - calmMean) / math.Max(calmMean, nearZeroCalmMean),
		})
	}
	sort.SliceStable(triggers, func(i, j int) bool { return triggers[i].Increase > triggers[j].Increase })
	return triggers
}

// MergeTriggers folds freshly learned triggers into an existing ranked
// list without duplicating dimensions; fresh stats win on collision.
func MergeTriggers(existing, fresh []StressTrigger) []StressTrigger {
	byDim := make(map[string]StressTrigger, len(existing)+len(fresh))
	for _, t := range existing {
		byDim[t.Dimension] = t
	}
	for _, t := range fresh {
		byDim[t.Dimension] = t
	}
	out := make([]StressTrigger, 0, len(byDim))
	for _, t := range byDim {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Increase != out[j].Increase {
			return out[i].Increase > out[j].Increase
		}
		return out[i].Dimension < out[j].Dimension
	})
	return out
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
