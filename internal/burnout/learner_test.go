package burnout

import (
	"math"
	"testing"
	"time"
)

func histRecord(daysAgo int, level Level, score int, m UserMetrics) HistoryRecord {
	base := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	return HistoryRecord{
		AnalysisDate: base.AddDate(0, 0, -daysAgo),
		FinalScore:   score,
		Level:        level,
		Metrics:      m,
	}
}

func approxEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLearnConfigDefaults(t *testing.T) {
	c := LearnConfig{}.withDefaults()
	if c.MinDays != 7 || c.MinSubsetSamples != 3 {
		t.Fatalf("day gates: want=7/3 got=%d/%d", c.MinDays, c.MinSubsetSamples)
	}
	if !approxEq(c.RelativeIncrease, 0.5) || !approxEq(c.AbsoluteFloor, 1.0) {
		t.Fatalf("thresholds: want=0.5/1.0 got=%v/%v", c.RelativeIncrease, c.AbsoluteFloor)
	}

	// Explicit values survive.
	c = LearnConfig{MinDays: 14, RelativeIncrease: 0.8}.withDefaults()
	if c.MinDays != 14 || !approxEq(c.RelativeIncrease, 0.8) {
		t.Fatalf("explicit values: want=14/0.8 got=%d/%v", c.MinDays, c.RelativeIncrease)
	}
}

func TestLearnPatternsBelowMinDays(t *testing.T) {
	records := make([]HistoryRecord, 0, 6)
	for i := 0; i < 6; i++ {
		records = append(records, histRecord(i, LevelGreen, 20, UserMetrics{}))
	}
	if got := LearnPatterns(records, LearnConfig{}); got != nil {
		t.Fatalf("LearnPatterns with 6 days: want=nil got=%+v", got)
	}

	records = append(records, histRecord(6, LevelGreen, 20, UserMetrics{}))
	if got := LearnPatterns(records, LearnConfig{}); got == nil {
		t.Fatalf("LearnPatterns with 7 days: want patterns, got nil")
	}

	// A lowered gate accepts a shorter window.
	if got := LearnPatterns(records[:3], LearnConfig{MinDays: 3}); got == nil {
		t.Fatalf("LearnPatterns with MinDays=3: want patterns, got nil")
	}
}

func TestLearnPatternsBaselineFromGreenMedian(t *testing.T) {
	m := UserMetrics{TotalActiveTasks: 4, WorkHoursToday: 8}
	records := []HistoryRecord{
		histRecord(0, LevelGreen, 30, m),
		histRecord(1, LevelGreen, 10, m),
		histRecord(2, LevelGreen, 20, m),
		histRecord(3, LevelYellow, 50, m),
		histRecord(4, LevelYellow, 50, m),
		histRecord(5, LevelRed, 70, m),
		histRecord(6, LevelRed, 70, m),
		histRecord(7, LevelRed, 80, m),
	}
	p := LearnPatterns(records, LearnConfig{})
	if p == nil {
		t.Fatalf("LearnPatterns: want patterns, got nil")
	}
	if !approxEq(p.BaselineScore, 20) {
		t.Fatalf("BaselineScore: want=20 got=%v", p.BaselineScore)
	}
	if p.BaselineSource != BaselineSourceGreen {
		t.Fatalf("BaselineSource: want=%s got=%s", BaselineSourceGreen, p.BaselineSource)
	}
	if !approxEq(p.AvgTasksPerDay, 4) || !approxEq(p.AvgHoursPerDay, 8) {
		t.Fatalf("averages: want=4/8 got=%v/%v", p.AvgTasksPerDay, p.AvgHoursPerDay)
	}
	if p.SampleDays != 8 {
		t.Fatalf("SampleDays: want=8 got=%d", p.SampleDays)
	}
}

func TestLearnPatternsBaselineFallsBackToOverallMean(t *testing.T) {
	records := make([]HistoryRecord, 0, 7)
	for i := 0; i < 7; i++ {
		records = append(records, histRecord(i, LevelYellow, 42, UserMetrics{}))
	}
	p := LearnPatterns(records, LearnConfig{})
	if p == nil {
		t.Fatalf("LearnPatterns: want patterns, got nil")
	}
	if !approxEq(p.BaselineScore, 42) {
		t.Fatalf("BaselineScore: want=42 got=%v", p.BaselineScore)
	}
	if p.BaselineSource != BaselineSourceOverall {
		t.Fatalf("BaselineSource: want=%s got=%s", BaselineSourceOverall, p.BaselineSource)
	}
}

// triggerHistory builds three green and three red days shaped so that
// exactly two dimensions fire: weekend sessions via the absolute floor
// (calm side is all zeros) and overdue tasks via the relative rule.
func triggerHistory() []HistoryRecord {
	calm := UserMetrics{OverdueTasks: 2, BackToBackMeetings: 2, ConsecutiveWorkDays: 2}
	records := []HistoryRecord{
		histRecord(0, LevelGreen, 20, calm),
		histRecord(1, LevelGreen, 22, calm),
		histRecord(2, LevelGreen, 24, calm),
		histRecord(3, LevelRed, 70, UserMetrics{OverdueTasks: 2, WeekendWorkSessions: 3, BackToBackMeetings: 2, ConsecutiveWorkDays: 2}),
		histRecord(4, LevelRed, 72, UserMetrics{OverdueTasks: 4, WeekendWorkSessions: 3, LateNightWorkSessions: 1, BackToBackMeetings: 2, ConsecutiveWorkDays: 2}),
		histRecord(5, LevelRed, 74, UserMetrics{OverdueTasks: 6, WeekendWorkSessions: 3, BackToBackMeetings: 2, ConsecutiveWorkDays: 2}),
	}
	return records
}

func TestDetectTriggers(t *testing.T) {
	got := detectTriggers(triggerHistory(), LearnConfig{}.withDefaults())
	if len(got) != 2 {
		t.Fatalf("detectTriggers: want=2 triggers got=%d (%+v)", len(got), got)
	}

	// Weekend sessions jump from an all-zero calm side, so their relative
	// increase dwarfs the overdue-task one and ranks first.
	if got[0].Dimension != "weekend_work_sessions" {
		t.Fatalf("triggers[0].Dimension: want=weekend_work_sessions got=%s", got[0].Dimension)
	}
	if !approxEq(got[0].CalmMean, 0) || !approxEq(got[0].StressedMean, 3) {
		t.Fatalf("weekend means: want=0/3 got=%v/%v", got[0].CalmMean, got[0].StressedMean)
	}
	if !approxEq(got[0].Increase, 30) {
		t.Fatalf("weekend Increase: want=30 got=%v", got[0].Increase)
	}

	if got[1].Dimension != "overdue_tasks" {
		t.Fatalf("triggers[1].Dimension: want=overdue_tasks got=%s", got[1].Dimension)
	}
	if !approxEq(got[1].CalmMean, 2) || !approxEq(got[1].StressedMean, 4) {
		t.Fatalf("overdue means: want=2/4 got=%v/%v", got[1].CalmMean, got[1].StressedMean)
	}
	if !approxEq(got[1].Increase, 1) {
		t.Fatalf("overdue Increase: want=1 got=%v", got[1].Increase)
	}
}

func TestDetectTriggersAbsoluteFloorHoldsBackNoise(t *testing.T) {
	// Late-night sessions average one third on red days: over zero calm
	// days but under the absolute floor, so they must not fire.
	for _, trig := range detectTriggers(triggerHistory(), LearnConfig{}.withDefaults()) {
		if trig.Dimension == "late_night_work_sessions" {
			t.Fatalf("late_night_work_sessions fired below the absolute floor: %+v", trig)
		}
	}
}

func TestDetectTriggersRelativeBoundary(t *testing.T) {
	// Stressed mean exactly 1.5x the calm mean fires; just under does not.
	build := func(redOverdue int) []HistoryRecord {
		calm := UserMetrics{OverdueTasks: 2}
		red := UserMetrics{OverdueTasks: redOverdue}
		return []HistoryRecord{
			histRecord(0, LevelGreen, 20, calm),
			histRecord(1, LevelGreen, 20, calm),
			histRecord(2, LevelGreen, 20, calm),
			histRecord(3, LevelRed, 70, red),
			histRecord(4, LevelRed, 70, red),
			histRecord(5, LevelRed, 70, red),
		}
	}
	if got := detectTriggers(build(3), LearnConfig{}.withDefaults()); len(got) != 1 {
		t.Fatalf("at exactly 1.5x: want=1 trigger got=%d", len(got))
	}
	if got := detectTriggers(build(2), LearnConfig{}.withDefaults()); len(got) != 0 {
		t.Fatalf("at 1.0x: want=0 triggers got=%d", len(got))
	}
}

func TestDetectTriggersNeedBothSubsets(t *testing.T) {
	// Two red days only: no dimension may fire, however large the delta.
	records := []HistoryRecord{
		histRecord(0, LevelGreen, 20, UserMetrics{}),
		histRecord(1, LevelGreen, 20, UserMetrics{}),
		histRecord(2, LevelGreen, 20, UserMetrics{}),
		histRecord(3, LevelRed, 80, UserMetrics{OverdueTasks: 9, WeekendWorkSessions: 9}),
		histRecord(4, LevelRed, 80, UserMetrics{OverdueTasks: 9, WeekendWorkSessions: 9}),
		histRecord(5, LevelYellow, 50, UserMetrics{OverdueTasks: 9}),
	}
	if got := detectTriggers(records, LearnConfig{}.withDefaults()); len(got) != 0 {
		t.Fatalf("with 2 red days: want=0 triggers got=%+v", got)
	}
}

func TestLearnPatternsCarriesTriggers(t *testing.T) {
	records := append(triggerHistory(), histRecord(6, LevelYellow, 50, UserMetrics{}))
	p := LearnPatterns(records, LearnConfig{})
	if p == nil {
		t.Fatalf("LearnPatterns: want patterns, got nil")
	}
	if len(p.StressTriggers) != 2 {
		t.Fatalf("StressTriggers: want=2 got=%d", len(p.StressTriggers))
	}
	if p.StressTriggers[0].Dimension != "weekend_work_sessions" || p.StressTriggers[1].Dimension != "overdue_tasks" {
		t.Fatalf("trigger order: got=%s,%s", p.StressTriggers[0].Dimension, p.StressTriggers[1].Dimension)
	}
	if p.SampleDays != 7 {
		t.Fatalf("SampleDays: want=7 got=%d", p.SampleDays)
	}
}

func TestMergeTriggers(t *testing.T) {
	existing := []StressTrigger{
		{Dimension: "overdue_tasks", CalmMean: 2, StressedMean: 6, Increase: 2.0},
		{Dimension: "back_to_back_meetings", CalmMean: 1, StressedMean: 2, Increase: 1.0},
	}
	fresh := []StressTrigger{
		{Dimension: "back_to_back_meetings", CalmMean: 1, StressedMean: 4, Increase: 3.0},
		{Dimension: "weekend_work_sessions", CalmMean: 2, StressedMean: 3, Increase: 0.5},
	}
	got := MergeTriggers(existing, fresh)
	if len(got) != 3 {
		t.Fatalf("MergeTriggers: want=3 got=%d (%+v)", len(got), got)
	}
	if got[0].Dimension != "back_to_back_meetings" || !approxEq(got[0].Increase, 3.0) {
		t.Fatalf("merged[0]: want back_to_back_meetings@3.0 got=%+v", got[0])
	}
	if got[1].Dimension != "overdue_tasks" {
		t.Fatalf("merged[1]: want overdue_tasks got=%+v", got[1])
	}
	if got[2].Dimension != "weekend_work_sessions" {
		t.Fatalf("merged[2]: want weekend_work_sessions got=%+v", got[2])
	}
}

func TestMergeTriggersTieBreaksOnDimension(t *testing.T) {
	got := MergeTriggers(
		[]StressTrigger{{Dimension: "weekend_work_sessions", Increase: 1.0}},
		[]StressTrigger{{Dimension: "consecutive_work_days", Increase: 1.0}},
	)
	if len(got) != 2 {
		t.Fatalf("MergeTriggers: want=2 got=%d", len(got))
	}
	if got[0].Dimension != "consecutive_work_days" {
		t.Fatalf("tie break: want consecutive_work_days first got=%s", got[0].Dimension)
	}
}

func TestMedianOf(t *testing.T) {
	if got := medianOf([]float64{30, 10, 20}); !approxEq(got, 20) {
		t.Fatalf("medianOf odd: want=20 got=%v", got)
	}
	if got := medianOf([]float64{40, 10, 30, 20}); !approxEq(got, 25) {
		t.Fatalf("medianOf even: want=25 got=%v", got)
	}
	if got := medianOf(nil); !approxEq(got, 0) {
		t.Fatalf("medianOf empty: want=0 got=%v", got)
	}
}
