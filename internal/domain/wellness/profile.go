package wellness

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BehavioralProfile is the learned per-user picture: calm baseline, daily
// averages and the ranked stress triggers mined from analysis history.
// One row per user, replaced in place as the learner reruns.
type BehavioralProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	BaselineScore  float64 `gorm:"column:baseline_score;not null;default:0" json:"baseline_score"`
	BaselineSource string  `gorm:"column:baseline_source" json:"baseline_source"`
	AvgTasksPerDay float64 `gorm:"column:avg_tasks_per_day;not null;default:0" json:"avg_tasks_per_day"`
	AvgHoursPerDay float64 `gorm:"column:avg_hours_per_day;not null;default:0" json:"avg_hours_per_day"`

	StressTriggers datatypes.JSON `gorm:"column:stress_triggers;type:jsonb" json:"stress_triggers"`
	SampleDays     int            `gorm:"column:sample_days;not null;default:0" json:"sample_days"`

	RecommendationsReceived  int `gorm:"column:recommendations_received;not null;default:0" json:"recommendations_received"`
	RecommendationsAccepted  int `gorm:"column:recommendations_accepted;not null;default:0" json:"recommendations_accepted"`
	RecommendationsCompleted int `gorm:"column:recommendations_completed;not null;default:0" json:"recommendations_completed"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (BehavioralProfile) TableName() string { return "behavioral_profile" }
