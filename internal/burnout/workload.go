package burnout

import "sort"

// Group caps. Raw sub-component points may sum past the cap; the group
// score never does, and the four caps sum to the 100-point ceiling.
const (
	TaskScoreCap    = 30
	TimeScoreCap    = 30
	MeetingScoreCap = 25
	PatternScoreCap = 15
)

// Share of a group's cap at or above which the group is reported as a
// primary issue.
const primaryIssueShare = 0.4

const IssueNormalRange = "within normal range"

type TaskComponents struct {
	ActiveTasks    int `json:"active_tasks"`
	OverdueTasks   int `json:"overdue_tasks"`
	CompletionRate int `json:"completion_rate"`
}

type TimeComponents struct {
	DailyHours        int `json:"daily_hours"`
	WeeklyHours       int `json:"weekly_hours"`
	WeekendSessions   int `json:"weekend_sessions"`
	LateNightSessions int `json:"late_night_sessions"`
}

type MeetingComponents struct {
	MeetingCount int `json:"meeting_count"`
	MeetingHours int `json:"meeting_hours"`
	BackToBack   int `json:"back_to_back"`
}

type PatternComponents struct {
	DaysWithoutBreaks   int `json:"days_without_breaks"`
	ConsecutiveWorkDays int `json:"consecutive_work_days"`
	WorkloadTrend       int `json:"workload_trend"`
}

type ComponentPoints struct {
	Task    TaskComponents    `json:"task"`
	Time    TimeComponents    `json:"time"`
	Meeting MeetingComponents `json:"meeting"`
	Pattern PatternComponents `json:"pattern"`
}

// WorkloadBreakdown is the component-broken-down quantitative overload
// score. Group scores are capped; Components carries the raw staircase
// points behind each group.
type WorkloadBreakdown struct {
	TaskScore     int             `json:"task_score"`
	TimeScore     int             `json:"time_score"`
	MeetingScore  int             `json:"meeting_score"`
	PatternScore  int             `json:"pattern_score"`
	Total         int             `json:"total"`
	Components    ComponentPoints `json:"components"`
	PrimaryIssues []string        `json:"primary_issues"`
}

// CalculateWorkload converts one day of metrics into the 0-100 workload
// score. Pure and deterministic; out-of-range inputs are clamped, never
// rejected.
func CalculateWorkload(m UserMetrics) WorkloadBreakdown {
	m = m.Normalized()

	comps := ComponentPoints{
		Task: TaskComponents{
			ActiveTasks:  activeTasksPoints(m.TotalActiveTasks),
			OverdueTasks: overdueTasksPoints(m.OverdueTasks),
		},
		Time: TimeComponents{
			DailyHours:        dailyHoursPoints(m.WorkHoursToday),
			WeeklyHours:       weeklyHoursPoints(m.WorkHoursThisWeek),
			WeekendSessions:   offHoursSessionPoints(m.WeekendWorkSessions),
			LateNightSessions: offHoursSessionPoints(m.LateNightWorkSessions),
		},
		Meeting: MeetingComponents{
			MeetingCount: meetingCountPoints(m.MeetingsToday),
			MeetingHours: meetingHoursPoints(m.MeetingHoursToday),
			BackToBack:   backToBackPoints(m.BackToBackMeetings),
		},
		Pattern: PatternComponents{
			DaysWithoutBreaks:   daysWithoutBreaksPoints(m.DaysWithoutBreaks),
			ConsecutiveWorkDays: consecutiveDaysPoints(m.ConsecutiveWorkDays),
			WorkloadTrend:       workloadTrendPoints(m.WorkloadTrend),
		},
	}
	if m.hasTaskSignal() {
		comps.Task.CompletionRate = completionRatePoints(m.CompletionRate)
	}

	task := clampInt(comps.Task.ActiveTasks+comps.Task.OverdueTasks+comps.Task.CompletionRate, 0, TaskScoreCap)
	timeScore := clampInt(comps.Time.DailyHours+comps.Time.WeeklyHours+comps.Time.WeekendSessions+comps.Time.LateNightSessions, 0, TimeScoreCap)
	meeting := clampInt(comps.Meeting.MeetingCount+comps.Meeting.MeetingHours+comps.Meeting.BackToBack, 0, MeetingScoreCap)
	pattern := clampInt(comps.Pattern.DaysWithoutBreaks+comps.Pattern.ConsecutiveWorkDays+comps.Pattern.WorkloadTrend, 0, PatternScoreCap)

	return WorkloadBreakdown{
		TaskScore:     task,
		TimeScore:     timeScore,
		MeetingScore:  meeting,
		PatternScore:  pattern,
		Total:         clampInt(task+timeScore+meeting+pattern, 0, 100),
		Components:    comps,
		PrimaryIssues: primaryIssues(task, timeScore, meeting, pattern),
	}
}

func activeTasksPoints(count int) int {
	switch {
	case count <= 5:
		return 0
	case count <= 8:
		return 3
	case count <= 12:
		return 6
	default:
		return 10
	}
}

func overdueTasksPoints(count int) int {
	switch {
	case count == 0:
		return 0
	case count == 1:
		return 3
	case count <= 3:
		return 6
	case count <= 5:
		return 9
	default:
		return 12
	}
}

// Inverted staircase: lower completion means more points.
func completionRatePoints(rate float64) int {
	switch {
	case rate >= 0.8:
		return 0
	case rate >= 0.6:
		return 3
	case rate >= 0.4:
		return 5
	default:
		return 8
	}
}

func dailyHoursPoints(hours float64) int {
	switch {
	case hours <= 8:
		return 0
	case hours <= 10:
		return 4
	case hours <= 12:
		return 7
	default:
		return 10
	}
}

func weeklyHoursPoints(hours float64) int {
	switch {
	case hours <= 40:
		return 0
	case hours <= 50:
		return 4
	case hours <= 60:
		return 7
	default:
		return 10
	}
}

// Weekend and late-night session counts share one staircase shape.
func offHoursSessionPoints(count int) int {
	switch {
	case count == 0:
		return 0
	case count <= 2:
		return 2
	case count <= 4:
		return 4
	default:
		return 5
	}
}

func meetingCountPoints(count int) int {
	switch {
	case count <= 3:
		return 0
	case count <= 5:
		return 4
	case count <= 7:
		return 7
	default:
		return 10
	}
}

func meetingHoursPoints(hours float64) int {
	switch {
	case hours <= 2:
		return 0
	case hours <= 4:
		return 3
	case hours <= 6:
		return 6
	default:
		return 8
	}
}

func backToBackPoints(count int) int {
	switch {
	case count == 0:
		return 0
	case count <= 2:
		return 3
	case count <= 4:
		return 5
	default:
		return 7
	}
}

func daysWithoutBreaksPoints(days int) int {
	switch {
	case days <= 2:
		return 0
	case days <= 5:
		return 3
	case days <= 10:
		return 5
	default:
		return 7
	}
}

func consecutiveDaysPoints(days int) int {
	switch {
	case days <= 5:
		return 0
	case days <= 10:
		return 2
	case days <= 15:
		return 4
	default:
		return 5
	}
}

func workloadTrendPoints(trend float64) int {
	switch {
	case trend < 0:
		return 0
	case trend <= 0.3:
		return 1
	case trend <= 0.7:
		return 2
	default:
		return 3
	}
}

func primaryIssues(task, timeScore, meeting, pattern int) []string {
	type groupShare struct {
		label string
		share float64
	}
	groups := []groupShare{
		{"heavy task load", float64(task) / TaskScoreCap},
		{"long working hours", float64(timeScore) / TimeScoreCap},
		{"meeting overload", float64(meeting) / MeetingScoreCap},
		{"unsustainable work patterns", float64(pattern) / PatternScoreCap},
	}
	flagged := make([]groupShare, 0, len(groups))
	for _, g := range groups {
		if g.share >= primaryIssueShare {
			flagged = append(flagged, g)
		}
	}
	if len(flagged) == 0 {
		return []string{IssueNormalRange}
	}
	sort.SliceStable(flagged, func(i, j int) bool { return flagged[i].share > flagged[j].share })
	out := make([]string, 0, len(flagged))
	for _, g := range flagged {
		out = append(out, g.label)
	}
	return out
}
