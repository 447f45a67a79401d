package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/emberwell/pulsecheck-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: "Test User",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedAnalysis inserts one scored day. daysAgo counts back from today so
// tests can lay out a history without juggling dates.
func SeedAnalysis(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, daysAgo int, score int, level string) *types.BurnoutAnalysis {
	tb.Helper()
	day := time.Now().UTC().AddDate(0, 0, -daysAgo)
	a := &types.BurnoutAnalysis{
		ID:           uuid.New(),
		UserID:       userID,
		AnalysisDate: time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		FinalScore:   score,
		Level:        level,
		Trend:        "stable",
		Metrics:      datatypes.JSON([]byte(fmt.Sprintf(`{"total_active_tasks":%d}`, score/10))),
		Breakdown:    datatypes.JSON([]byte("{}")),
		Insights:     datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed analysis: %v", err)
	}
	return a
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, baseline float64) *types.BehavioralProfile {
	tb.Helper()
	p := &types.BehavioralProfile{
		ID:             uuid.New(),
		UserID:         userID,
		BaselineScore:  baseline,
		BaselineSource: "green",
		StressTriggers: datatypes.JSON([]byte("[]")),
		SampleDays:     7,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedJobRun(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, jobType, status string) *types.JobRun {
	tb.Helper()
	j := &types.JobRun{
		ID:      uuid.New(),
		UserID:  userID,
		JobType: jobType,
		Status:  status,
		Stage:   "queued",
		Payload: datatypes.JSON([]byte(fmt.Sprintf(`{"user_id":%q}`, userID))),
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed job run: %v", err)
	}
	return j
}

func PtrTime(v time.Time) *time.Time { return &v }
