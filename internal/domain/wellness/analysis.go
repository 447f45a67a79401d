package wellness

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BurnoutAnalysis is one scored day for one user. Rows are append-only:
// reruns for the same (user_id, analysis_date) hit the unique index and
// surface as a conflict instead of rewriting history.
type BurnoutAnalysis struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_burnout_analysis_user_date" json:"user_id"`
	AnalysisDate time.Time `gorm:"type:date;not null;uniqueIndex:uq_burnout_analysis_user_date" json:"analysis_date"`

	FinalScore int    `gorm:"column:final_score;not null" json:"final_score"`
	Level      string `gorm:"column:level;not null;index" json:"level"`

	WorkloadScore int `gorm:"column:workload_score;not null" json:"workload_score"`
	TaskScore     int `gorm:"column:task_score;not null" json:"task_score"`
	TimeScore     int `gorm:"column:time_score;not null" json:"time_score"`
	MeetingScore  int `gorm:"column:meeting_score;not null" json:"meeting_score"`
	PatternScore  int `gorm:"column:pattern_score;not null" json:"pattern_score"`

	SentimentScore      float64 `gorm:"column:sentiment_score;not null;default:0" json:"sentiment_score"`
	SentimentSource     string  `gorm:"column:sentiment_source" json:"sentiment_source"`
	SentimentAdjustment int     `gorm:"column:sentiment_adjustment;not null;default:0" json:"sentiment_adjustment"`

	Metrics   datatypes.JSON `gorm:"column:metrics;type:jsonb" json:"metrics"`
	Breakdown datatypes.JSON `gorm:"column:breakdown;type:jsonb" json:"breakdown"`
	Insights  datatypes.JSON `gorm:"column:insights;type:jsonb" json:"insights"`

	PreviousScore      *int   `gorm:"column:previous_score" json:"previous_score,omitempty"`
	ScoreChange        *int   `gorm:"column:score_change" json:"score_change,omitempty"`
	Trend              string `gorm:"column:trend;not null" json:"trend"`
	DaysInCurrentLevel int    `gorm:"column:days_in_current_level;not null;default:1" json:"days_in_current_level"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (BurnoutAnalysis) TableName() string { return "burnout_analysis" }
