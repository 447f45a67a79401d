package burnout

// UserMetrics is one day of quantitative workload signals for a user,
// submitted by whatever tracker integrations the caller runs. The zero
// value means "no signal" on every dimension.
type UserMetrics struct {
	TotalActiveTasks     int     `json:"total_active_tasks"`
	OverdueTasks         int     `json:"overdue_tasks"`
	TasksDueThisWeek     int     `json:"tasks_due_this_week"`
	CompletionRate       float64 `json:"completion_rate"`
	AvgTaskDurationHours float64 `json:"avg_task_duration_hours"`
	PostponedTasks       int     `json:"postponed_tasks"`

	WorkHoursToday        float64 `json:"work_hours_today"`
	WorkHoursThisWeek     float64 `json:"work_hours_this_week"`
	WeekendWorkSessions   int     `json:"weekend_work_sessions"`
	LateNightWorkSessions int     `json:"late_night_work_sessions"`
	ConsecutiveWorkDays   int     `json:"consecutive_work_days"`

	MeetingsToday           int     `json:"meetings_today"`
	MeetingHoursToday       float64 `json:"meeting_hours_today"`
	BackToBackMeetings      int     `json:"back_to_back_meetings"`
	AvgMeetingDurationHours float64 `json:"avg_meeting_duration_hours"`

	DaysWithoutBreaks int     `json:"days_without_breaks"`
	WorkloadTrend     float64 `json:"workload_trend"`
}

// Normalized clamps out-of-range values into their documented bounds.
// Malformed numeric input never rejects a submission; the only fatal
// input error (a missing user id) is checked at the service boundary.
func (m UserMetrics) Normalized() UserMetrics {
	m.TotalActiveTasks = maxInt(m.TotalActiveTasks, 0)
	m.OverdueTasks = maxInt(m.OverdueTasks, 0)
	m.TasksDueThisWeek = maxInt(m.TasksDueThisWeek, 0)
	m.CompletionRate = clampFloat(m.CompletionRate, 0, 1)
	m.AvgTaskDurationHours = maxFloat(m.AvgTaskDurationHours, 0)
	m.PostponedTasks = maxInt(m.PostponedTasks, 0)

	m.WorkHoursToday = clampFloat(m.WorkHoursToday, 0, 24)
	m.WorkHoursThisWeek = clampFloat(m.WorkHoursThisWeek, 0, 168)
	m.WeekendWorkSessions = maxInt(m.WeekendWorkSessions, 0)
	m.LateNightWorkSessions = maxInt(m.LateNightWorkSessions, 0)
	m.ConsecutiveWorkDays = maxInt(m.ConsecutiveWorkDays, 0)

	m.MeetingsToday = maxInt(m.MeetingsToday, 0)
	m.MeetingHoursToday = clampFloat(m.MeetingHoursToday, 0, 24)
	m.BackToBackMeetings = maxInt(m.BackToBackMeetings, 0)
	m.AvgMeetingDurationHours = maxFloat(m.AvgMeetingDurationHours, 0)

	m.DaysWithoutBreaks = maxInt(m.DaysWithoutBreaks, 0)
	m.WorkloadTrend = clampFloat(m.WorkloadTrend, -1, 1)
	return m
}

// RangeViolations describes the fields Normalized would clamp, one
// message per field, wire names. Violations never reject a submission;
// they feed the data quality counters.
func (m UserMetrics) RangeViolations() []string {
	n := m.Normalized()
	fields := []struct {
		name    string
		clamped bool
	}{
		{"total_active_tasks", m.TotalActiveTasks != n.TotalActiveTasks},
		{"overdue_tasks", m.OverdueTasks != n.OverdueTasks},
		{"tasks_due_this_week", m.TasksDueThisWeek != n.TasksDueThisWeek},
		{"completion_rate", m.CompletionRate != n.CompletionRate},
		{"avg_task_duration_hours", m.AvgTaskDurationHours != n.AvgTaskDurationHours},
		{"postponed_tasks", m.PostponedTasks != n.PostponedTasks},
		{"work_hours_today", m.WorkHoursToday != n.WorkHoursToday},
		{"work_hours_this_week", m.WorkHoursThisWeek != n.WorkHoursThisWeek},
		{"weekend_work_sessions", m.WeekendWorkSessions != n.WeekendWorkSessions},
		{"late_night_work_sessions", m.LateNightWorkSessions != n.LateNightWorkSessions},
		{"consecutive_work_days", m.ConsecutiveWorkDays != n.ConsecutiveWorkDays},
		{"meetings_today", m.MeetingsToday != n.MeetingsToday},
		{"meeting_hours_today", m.MeetingHoursToday != n.MeetingHoursToday},
		{"back_to_back_meetings", m.BackToBackMeetings != n.BackToBackMeetings},
		{"avg_meeting_duration_hours", m.AvgMeetingDurationHours != n.AvgMeetingDurationHours},
		{"days_without_breaks", m.DaysWithoutBreaks != n.DaysWithoutBreaks},
		{"workload_trend", m.WorkloadTrend != n.WorkloadTrend},
	}
	var out []string
	for _, f := range fields {
		if f.clamped {
			out = append(out, f.name+" out of range")
		}
	}
	return out
}

// hasTaskSignal reports whether the task tracker sent anything at all.
// A zero completion rate alongside zero active tasks is an unreported
// rate, not a 0% one, and must not score.
func (m UserMetrics) hasTaskSignal() bool {
	return m.TotalActiveTasks > 0 || m.CompletionRate > 0
}

func maxInt(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}

func maxFloat(v, floor float64) float64 {
	if v < floor {
		return floor
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
